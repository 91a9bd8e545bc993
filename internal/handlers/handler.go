package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/parishrama/diagnostic-api/internal/apperr"
	"github.com/parishrama/diagnostic-api/internal/models"
	"github.com/parishrama/diagnostic-api/internal/services"
	"github.com/parishrama/diagnostic-api/internal/store"
	"github.com/parishrama/diagnostic-api/internal/upload"
	"github.com/parishrama/diagnostic-api/internal/utils"
	"github.com/parishrama/diagnostic-api/internal/validation"
)

// Stores holds one repository per resource.
type Stores struct {
	Appointments      store.Repository[models.Appointment]
	Doctors           store.Repository[models.Doctor]
	Home              store.Repository[models.HomeItem]
	Laboratory        store.Repository[models.LaboratoryTest]
	PackageTests      store.Repository[models.PackageTest]
	Precision         store.Repository[models.Precision]
	SampleCollections store.Repository[models.SampleCollection]
	ServiceSections   store.Repository[models.ServiceSection]
	Accounts          store.Repository[models.LoginAccount]
}

func MongoStores(db *mongo.Database) Stores {
	return Stores{
		Appointments:      store.NewMongo[models.Appointment](db, store.AppointmentsCollection),
		Doctors:           store.NewMongo[models.Doctor](db, store.DoctorsCollection),
		Home:              store.NewMongo[models.HomeItem](db, store.HomeCollection),
		Laboratory:        store.NewMongo[models.LaboratoryTest](db, store.LaboratoryCollection),
		PackageTests:      store.NewMongo[models.PackageTest](db, store.PackageTestsCollection),
		Precision:         store.NewMongo[models.Precision](db, store.PrecisionCollection),
		SampleCollections: store.NewMongo[models.SampleCollection](db, store.SampleCollectionCollection),
		ServiceSections:   store.NewMongo[models.ServiceSection](db, store.ServiceSectionsCollection),
		Accounts:          store.NewMongo[models.LoginAccount](db, store.LoginCollection),
	}
}

// UnavailableStores is used when no database is configured.
func UnavailableStores() Stores {
	return Stores{
		Appointments:      store.Unavailable[models.Appointment]{},
		Doctors:           store.Unavailable[models.Doctor]{},
		Home:              store.Unavailable[models.HomeItem]{},
		Laboratory:        store.Unavailable[models.LaboratoryTest]{},
		PackageTests:      store.Unavailable[models.PackageTest]{},
		Precision:         store.Unavailable[models.Precision]{},
		SampleCollections: store.Unavailable[models.SampleCollection]{},
		ServiceSections:   store.Unavailable[models.ServiceSection]{},
		Accounts:          store.Unavailable[models.LoginAccount]{},
	}
}

// Uploaders holds the image folder of each resource that accepts one.
type Uploaders struct {
	Doctors           *upload.Uploader
	Home              *upload.Uploader
	Laboratory        *upload.Uploader
	PackageTests      *upload.Uploader
	Precision         *upload.Uploader
	SampleCollections *upload.Uploader
}

func NewUploaders(root string, log *zap.Logger) Uploaders {
	return Uploaders{
		Doctors:           upload.New(root, upload.DoctorsDir, log),
		Home:              upload.New(root, upload.HomeDir, log),
		Laboratory:        upload.New(root, upload.LaboratoryDir, log),
		PackageTests:      upload.New(root, upload.PackageTestsDir, log),
		Precision:         upload.New(root, upload.PrecisionDir, log),
		SampleCollections: upload.New(root, upload.SampleCollectionDir, log),
	}
}

type Handler struct {
	stores   Stores
	uploads  Uploaders
	tokens   *utils.TokenIssuer
	notifier services.Notifier
	log      *zap.Logger
	now      func() time.Time

	appointments    *resource[models.Appointment]
	doctors         *resource[models.Doctor]
	home            *resource[models.HomeItem]
	laboratory      *resource[models.LaboratoryTest]
	packageTests    *resource[models.PackageTest]
	precision       *resource[models.Precision]
	samples         *resource[models.SampleCollection]
	serviceSections *resource[models.ServiceSection]
}

func NewHandler(stores Stores, uploads Uploaders, tokens *utils.TokenIssuer, notifier services.Notifier, log *zap.Logger) *Handler {
	if notifier == nil {
		notifier = services.NopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		stores:   stores,
		uploads:  uploads,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },

		appointments: newResource("Appointment", stores.Appointments, newestFirst,
			"name", "email", "phone", "service", "category"),
		doctors: newResource("Doctor", stores.Doctors, newestFirst,
			"name", "specialization", "qualification", "description"),
		home: newResource("Home item", stores.Home, newestFirst,
			"title", "text", "features"),
		laboratory: newResource("Laboratory test", stores.Laboratory, recentlyUpdated,
			"title", "text", "features"),
		packageTests: newResource("Package laboratory test", stores.PackageTests, oldestFirst,
			"title", "text", "description", "features"),
		precision: newResource("Precision section", stores.Precision, newestFirst,
			"title", "subtitle", "description"),
		samples: newResource("Sample collection", stores.SampleCollections, newestFirst,
			"title", "text", "features"),
		serviceSections: newResource("Service section", stores.ServiceSections, newestFirst,
			"title", "subtitle", "description", "services.title"),
	}
}

// input is a request payload that cleans itself up before validation.
type input interface {
	Normalize()
}

// imageField is the multipart field carrying a resource image.
const imageField = "image"

// bindInput decodes the body into in, stores an uploaded image and validates
// the result. The image ends up as the uploaded file, else the image given
// in the body, else previous. It returns the stored upload path, if any, so
// the caller can clean it up when persisting fails.
func (h *Handler) bindInput(c *gin.Context, in input, up *upload.Uploader, image *string, previous string) (string, error) {
	if err := c.ShouldBind(in); err != nil {
		if upload.IsTooLarge(err) && c.ContentType() == binding.MIMEMultipartPOSTForm {
			return "", upload.ErrTooLarge
		}
		return "", apperr.Validation("Invalid request body: " + err.Error())
	}

	var stored string
	if up != nil && image != nil {
		path, found, err := up.Accept(c, imageField)
		if err != nil {
			return "", err
		}
		if found {
			stored = path
			*image = path
		} else {
			// Image fields are not form-bound: a file part under the same
			// name would fail binding. A plain path is read here instead.
			if strings.TrimSpace(*image) == "" && c.ContentType() != binding.MIMEJSON {
				*image = c.PostForm(imageField)
			}
			if strings.TrimSpace(*image) == "" {
				*image = previous
			}
		}
	}

	in.Normalize()
	if err := validation.Struct(in); err != nil {
		if stored != "" {
			up.Remove(stored)
		}
		return "", err
	}
	return stored, nil
}

// replaceImage removes the image a successful update has replaced with a
// new upload.
func replaceImage(up *upload.Uploader, stored, old, current string) {
	if stored == "" || old == "" || old == current {
		return
	}
	up.Remove(old)
}

// discardUpload removes a stored upload whose record was never saved.
func discardUpload(up *upload.Uploader, stored string) {
	if stored != "" {
		up.Remove(stored)
	}
}

func parseID(c *gin.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.KindInvalidID, "Invalid "+strings.ToLower(name)+" ID")
	}
	return id, nil
}

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// pageParams reads page and limit. Values that are not positive integers
// fall back to the defaults; limit is capped.
func pageParams(c *gin.Context) (page, limit int) {
	page = positiveInt(c.Query("page"), defaultPage)
	limit = positiveInt(c.Query("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(c *gin.Context, key string) (bool, bool) {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return false, false
	}
	return v, true
}
