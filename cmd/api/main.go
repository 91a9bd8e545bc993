package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/parishrama/diagnostic-api/internal/config"
	"github.com/parishrama/diagnostic-api/internal/handlers"
	"github.com/parishrama/diagnostic-api/internal/logger"
	"github.com/parishrama/diagnostic-api/internal/middleware"
	"github.com/parishrama/diagnostic-api/internal/services"
	"github.com/parishrama/diagnostic-api/internal/store"
	"github.com/parishrama/diagnostic-api/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "api",
		Short:        "Diagnostic laboratory website API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
	rootCmd.AddCommand(serveCmd(), indexesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func indexesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Create the collection indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			dropLegacy, _ := cmd.Flags().GetBool("drop-legacy")
			return runIndexes(dropLegacy)
		},
	}
	cmd.Flags().Bool("drop-legacy", false, "also drop indexes left by earlier releases")
	return cmd
}

func setup() (*config.Config, *zap.Logger, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, sync, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, sync, nil
}

// connect opens the MongoDB client. A failed ping is logged and the client
// is kept; the driver reconnects on its own.
func connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Warn("mongodb not reachable yet", zap.Error(err))
	} else {
		log.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
	}
	return client, nil
}

type mongoPinger struct{ client *mongo.Client }

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

func runServer() error {
	cfg, log, sync, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = sync() }()

	gin.SetMode(cfg.GinMode)
	if cfg.JWTSecretGenerated {
		log.Warn("JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := handlers.UnavailableStores()
	var pinger handlers.Pinger
	if cfg.MongoURI == "" {
		log.Warn("MONGO_URI is not set; data routes will answer with errors")
	} else {
		client, err := connect(ctx, cfg, log)
		if err != nil {
			log.Warn("mongodb client could not be created", zap.Error(err))
		} else {
			defer func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(disconnectCtx)
			}()
			stores = handlers.MongoStores(client.Database(cfg.MongoDatabase))
			pinger = mongoPinger{client: client}
		}
	}

	var loginLimiter gin.HandlerFunc
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Warn("login rate limiting disabled", zap.Error(err))
	} else if rdb != nil {
		defer rdb.Close()
		loginLimiter = middleware.RateLimiter(redis.Cmdable(rdb), middleware.RateLimitConfig{
			Limit:  cfg.LoginRateLimit,
			Window: cfg.LoginRateWindow,
		}, log)
		log.Info("login rate limiting enabled", zap.Int("limit", cfg.LoginRateLimit), zap.Duration("window", cfg.LoginRateWindow))
	}

	h := handlers.NewHandler(
		stores,
		handlers.NewUploaders(cfg.UploadDir, log),
		utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		services.NewNotifier(cfg.TextbeltAPIKey, cfg.TextbeltURL, log),
		log,
	)
	router := handlers.NewRouter(h, handlers.RouterOptions{
		CORSOrigins:    cfg.CORSOrigins,
		UploadDir:      cfg.UploadDir,
		Metrics:        middleware.NewMetrics(),
		LoginLimiter:   loginLimiter,
		Database:       pinger,
		RequestLogging: true,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runIndexes(dropLegacy bool) error {
	cfg, log, sync, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = sync() }()

	if cfg.MongoURI == "" {
		return errors.New("MONGO_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDatabase)
	if dropLegacy {
		if err := store.DropLegacyIndexes(ctx, db, log); err != nil {
			return err
		}
	}
	return store.EnsureIndexes(ctx, db, log)
}
