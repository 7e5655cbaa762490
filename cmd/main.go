package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/abiosite/abio-api/config"
	"github.com/abiosite/abio-api/internal/container"
	pginfra "github.com/abiosite/abio-api/internal/infrastructure/postgres"
	"github.com/abiosite/abio-api/internal/router"
	"github.com/abiosite/abio-api/pkg/helpers"
	"github.com/abiosite/abio-api/pkg/mailer"
	mailtpl "github.com/abiosite/abio-api/pkg/mailer/templates"
	"github.com/abiosite/abio-api/pkg/metrics"
	"github.com/abiosite/abio-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis backs the rate limiter only
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil && cfg.RateLimitEnabled {
		logger.WithError(err).Warn("redis unreachable; rate limiting fails open")
	}
	defer func() { _ = rdb.Close() }()

	// GCS is optional; uploads answer 500 without a bucket
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
	} else {
		logger.Warn("GCS_BUCKET not set; image uploads are disabled")
	}

	// Elasticsearch is optional; public search answers empty without it
	esClient, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("failed to init elasticsearch client: %v", err)
	}
	if esClient == nil {
		logger.Info("ELASTICSEARCH_ADDRS not set; profile search is disabled")
	}

	appMetrics := metrics.New("abio")

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetES(esClient)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn))
	container.SetNotifier(newNotifier(cfg, logger))
	container.SetMetrics(appMetrics)

	r := router.New(router.BuildDeps())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// newNotifier delivers through Mailgun when configured and enabled,
// otherwise messages are only logged.
func newNotifier(cfg *config.Config, logger *logrus.Logger) *mailer.Notifier {
	var sender mailer.Sender = mailer.LogSender{Logger: logger}
	switch {
	case !cfg.MailSendEnabled:
		logger.Info("MAIL_SEND_ENABLED=false; emails are logged, not sent")
	case cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "":
		logger.Warn("Mailgun not configured; emails are logged, not sent")
	default:
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	}

	var geo mailtpl.GeoResolver
	if cfg.MailGeoLookup {
		geo = mailtpl.IPAPIResolver{}
	}
	branding := mailtpl.Branding{
		OrganizationName: cfg.OrganizationName,
		AppName:          cfg.AppName,
		LogoURL:          cfg.LogoURL,
		SupportURL:       cfg.SupportURL,
	}
	return mailer.NewNotifier(sender, branding, geo, logger)
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
