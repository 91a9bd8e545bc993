package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"

	"github.com/parishrama/diagnostic-api/internal/apperr"
	"github.com/parishrama/diagnostic-api/internal/middleware"
	"github.com/parishrama/diagnostic-api/internal/upload"
)

// MaxBodySize bounds JSON bodies and in-memory multipart data.
const MaxBodySize = 10 << 20

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	CORSOrigins []string
	UploadDir   string
	Metrics     *middleware.Metrics
	// LoginLimiter guards login and registration. Nil disables it.
	LoginLimiter gin.HandlerFunc
	Database     Pinger
	// RequestLogging enables per-request access logs.
	RequestLogging bool
}

// corsConfig opens CORS to every origin when origins is empty or holds "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func limitBody(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodySize+1<<20)
	}
	c.Next()
}

func limited(limiter, handler gin.HandlerFunc) []gin.HandlerFunc {
	if limiter == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{limiter, handler}
}

// NewRouter mounts every route on a new engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = MaxBodySize

	if opts.RequestLogging {
		r.Use(ginzap.Ginzap(h.log, time.RFC3339, true))
	}
	r.Use(ginzap.RecoveryWithZap(h.log, true))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(limitBody)

	if opts.UploadDir != "" {
		r.Static(upload.PublicPrefix, opts.UploadDir)
	}

	r.GET("/", h.Root)

	api := r.Group("/api")
	api.GET("/health", h.Health(opts.Database))

	appointments := api.Group("/appointments")
	{
		appointments.GET("", h.GetAppointments)
		appointments.GET("/stats", h.AppointmentStats)
		appointments.GET("/search/:query", h.SearchAppointments)
		appointments.GET("/categories", h.GetCategories)
		appointments.GET("/category/:category", h.GetAppointmentsByCategory)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("", h.CreateAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}

	doctors := api.Group("/doctor")
	{
		doctors.GET("", h.GetDoctors)
		doctors.GET("/active", h.GetActiveDoctors)
		doctors.GET("/stats", h.DoctorStats)
		doctors.GET("/search/:query", h.SearchDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.POST("", h.CreateDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.PATCH("/:id/toggle-status", h.ToggleDoctorStatus)
		doctors.DELETE("/:id", h.DeleteDoctor)
	}

	home := api.Group("/home")
	{
		home.GET("", h.GetHomeItems)
		home.GET("/active", h.GetActiveHomeItems)
		home.GET("/stats", h.HomeStats)
		home.GET("/search/:query", h.SearchHomeItems)
		home.GET("/:id", h.GetHomeItem)
		home.POST("", h.CreateHomeItem)
		home.PUT("/:id", h.UpdateHomeItem)
		home.DELETE("/:id", h.DeleteHomeItem)
	}

	laboratory := api.Group("/laboratory")
	{
		laboratory.GET("", h.GetLaboratoryTests)
		laboratory.GET("/stats", h.LaboratoryStats)
		laboratory.GET("/search/:query", h.SearchLaboratoryTests)
		laboratory.GET("/:id", h.GetLaboratoryTest)
		laboratory.POST("", h.CreateLaboratoryTest)
		laboratory.PUT("/:id", h.UpdateLaboratoryTest)
		laboratory.DELETE("/:id", h.DeleteLaboratoryTest)
	}

	packages := api.Group("/package-laboratory-test")
	{
		packages.GET("", h.GetPackageTests)
		packages.GET("/stats", h.PackageTestStats)
		packages.GET("/search/:query", h.SearchPackageTests)
		packages.GET("/:id", h.GetPackageTest)
		packages.POST("", h.CreatePackageTest)
		packages.PUT("/:id", h.UpdatePackageTest)
		packages.DELETE("/permanent/:id", h.DeletePackageTestPermanently)
		packages.DELETE("/:id", h.DeletePackageTest)
	}

	precision := api.Group("/precision")
	{
		precision.GET("", h.GetPrecisions)
		precision.GET("/active", h.GetActivePrecisions)
		precision.GET("/stats", h.PrecisionStats)
		precision.GET("/stats/overview", h.PrecisionStats)
		precision.GET("/search/:query", h.SearchPrecisions)
		precision.GET("/:id", h.GetPrecision)
		precision.POST("", h.CreatePrecision)
		precision.PUT("/:id", h.UpdatePrecision)
		precision.DELETE("/:id", h.DeletePrecision)
	}

	samples := api.Group("/sampleCollection")
	{
		samples.GET("", h.GetSampleCollections)
		samples.GET("/stats", h.SampleCollectionStats)
		samples.GET("/search/:query", h.SearchSampleCollections)
		samples.GET("/:id", h.GetSampleCollection)
		samples.POST("", h.CreateSampleCollection)
		samples.PUT("/:id", h.UpdateSampleCollection)
		samples.DELETE("/:id", h.DeleteSampleCollection)
	}

	sections := api.Group("/service-section")
	{
		sections.GET("", h.GetServiceSections)
		sections.GET("/active", h.GetActiveServiceSections)
		sections.GET("/stats", h.ServiceSectionStats)
		sections.GET("/search/:query", h.SearchServiceSections)
		sections.GET("/:id", h.GetServiceSection)
		sections.POST("", h.CreateServiceSection)
		sections.PUT("/:id", h.UpdateServiceSection)
		sections.DELETE("/:id", h.DeleteServiceSection)
	}

	login := api.Group("/login")
	{
		login.POST("", limited(opts.LoginLimiter, h.Login)...)
		login.POST("/register", limited(opts.LoginLimiter, h.Register)...)
		login.GET("/verify", middleware.AuthMiddleware(h.tokens), h.Verify)
		login.POST("/logout", h.Logout)
	}

	r.NoRoute(func(c *gin.Context) {
		h.fail(c, apperr.New(apperr.KindNotFound, "Route "+c.Request.URL.Path+" not found"))
	})
	return r
}
