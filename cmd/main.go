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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rakapratama/go-admin-backend/config"
	"github.com/rakapratama/go-admin-backend/internal/container"
	pginfra "github.com/rakapratama/go-admin-backend/internal/infrastructure/postgres"
	"github.com/rakapratama/go-admin-backend/internal/interface/middleware"
	"github.com/rakapratama/go-admin-backend/internal/router"
	"github.com/rakapratama/go-admin-backend/internal/session"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
	"github.com/rakapratama/go-admin-backend/pkg/mailer"
	"github.com/rakapratama/go-admin-backend/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis: sessions, flashes and rate limiting
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	sessions := session.NewManager(
		session.NewRedisBackend(rdb, cfg.SessionTTL),
		cfg.SessionCookie, cfg.SessionTTL, cfg.CookieDomain, cfg.CookieSecure,
	)

	// GCS image store for avatar uploads, optional
	if cfg.GCSBucket != "" {
		images, err := helpers.NewGCSImageStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS image store: %v", err)
		}
		defer func() { _ = images.Close() }()
		container.SetImageStore(images)
	}

	// Elasticsearch mirror for user search, optional
	if len(cfg.ESAddrs()) > 0 {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, user search disabled")
		} else {
			container.SetES(es)
		}
	}

	// RabbitMQ publisher for the email worker, optional; without it the
	// notifier sends through Mailgun directly.
	if cfg.RabbitMQURL != "" && cfg.RabbitMQEmailQueue != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, sending mail inline")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	var direct mailer.Sender
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		direct = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender())
	}
	var queue mailer.QueuePublisher
	if p := container.GetRabbitPub(); p != nil {
		queue = p
	}
	notifier := mailer.NewNotifier(cfg, queue, direct, logger)

	jwtManager := helpers.NewJWTManager(cfg.ServiceTokenSecret, cfg.ServiceTokenTTL)

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetSessions(sessions)
	container.SetNotifier(notifier)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	r.Use(sessions.Ensure())
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
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
