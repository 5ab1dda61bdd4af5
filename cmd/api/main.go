// @title Event Invites API
// @version 1.0
// @description Paid digital invitations: pricing, payment, activation, guest admission and expiry.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventinvites/config"
	_ "eventinvites/docs"
	"eventinvites/internal/adapters/auth"
	"eventinvites/internal/adapters/broker"
	"eventinvites/internal/adapters/cache"
	"eventinvites/internal/adapters/email"
	"eventinvites/internal/clock"
	httpdelivery "eventinvites/internal/delivery/http"
	"eventinvites/internal/delivery/http/controllers"
	"eventinvites/internal/domain"
	"eventinvites/internal/repository/postgres"
	"eventinvites/internal/scheduler"
	"eventinvites/internal/services"
	"eventinvites/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		log.Fatal(err)
	}
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpen)
	db.SetMaxIdleConns(cfg.DBMaxIdle)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (domain.EventPublisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, lifecycle messages are dropped")
		return broker.NoopPublisher{}, func() {}, nil
	}
	p, err := broker.NewPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func newPreviewCache(cfg *config.Config, logger *slog.Logger) (domain.PreviewCache, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, invitation previews are not cached")
		return cache.NoopCache{}, func() {}, nil
	}
	client, err := cache.NewClient(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewPreviewCache(client), client.Close, nil
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Apply(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	logger.Info("database ready")

	eventRepo := postgres.NewEventRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	txManager := postgres.NewTxManager(db)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	catalog, err := services.LoadCatalog(loadCtx, postgres.NewCatalogRepository(db))
	cancelLoad()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	pricing := services.NewPricingEngine(catalog)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("broker: %w", err)
	}
	defer closePublisher()

	previewCache, closeCache, err := newPreviewCache(cfg, logger)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer closeCache()

	clk := clock.NewSystem()
	notifier := services.NewNotifier(publisher, emailService, previewCache, cfg.PublicBaseURL, clk, logger)
	slugs := services.NewSlugAllocator(eventRepo, nil, logger)

	eventService := services.NewEventService(eventRepo, paymentRepo, templateRepo, catalog, txManager,
		slugs, notifier, clk, cfg.InvitationValidity, cfg.RequestTimeout)
	paymentService := services.NewPaymentService(eventRepo, paymentRepo, pricing, txManager, notifier, clk, cfg.RequestTimeout)
	expiryService := services.NewExpiryService(eventRepo, notifier, clk, logger)
	admissionService := services.NewAdmissionService(eventRepo, guestRepo, templateRepo, catalog, txManager,
		expiryService, notifier, clk, logger, cfg.RequestTimeout)
	invitationService := services.NewInvitationService(eventRepo, templateRepo, previewCache, clk,
		cfg.PreviewCacheTTL, logger, cfg.RequestTimeout)

	router := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Health:         controllers.NewHealthController(logger, db),
		Catalog:        controllers.NewCatalogController(logger, catalog, pricing, templateRepo),
		Events:         controllers.NewEventController(logger, eventService, paymentService),
		Guests:         controllers.NewGuestController(logger, admissionService),
		Invitations:    controllers.NewInvitationController(logger, invitationService, admissionService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := scheduler.New(expiryService, cfg.ExpirySweepInterval, logger)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweeper.Start(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		stop()
		<-sweeperDone
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	<-sweeperDone
	logger.Info("server stopped gracefully")
	return nil
}
