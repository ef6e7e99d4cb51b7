package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/application/content"
	discountapp "github.com/storefront/backend/internal/application/discount"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/mail"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Storefront backend: catalog, cart, coupons, checkout and payments

//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry
	telemetryCfg := telemetry.ConfigFrom(cfg.App, cfg.Telemetry)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetryCfg,
		cfg.Telemetry.MetricsInterval, cfg.Telemetry.MetricsEnabled, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	businessMetrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter("storefront"))
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	// Database
	if cfg.Database.AutoMigrate {
		if err := migration.ApplyEmbedded(cfg.Database.DSN(), log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracing(cfg.Telemetry, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Carts, checkout sessions, pending payments and idempotency keys
	stores, err := cache.NewStoreFactory(cfg, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing stores", zap.Error(err))
		}
	}()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	resetRepo := persistence.NewGormPasswordResetRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	ratingRepo := persistence.NewGormRatingRepository(db.DB)
	discountRepo := persistence.NewGormDiscountRepository(db.DB)
	redemptionRepo := persistence.NewGormRedemptionRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	faqRepo := persistence.NewGormFAQRepository(db.DB)
	inquiryRepo := persistence.NewGormInquiryRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLoggingHandler(log))
	if cfg.Kafka.Enabled {
		serializer := event.NewEventSerializer()
		event.RegisterAllEvents(serializer)
		forwarder := event.NewKafkaForwarder(event.NewKafkaWriter(cfg.Kafka), serializer, log)
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Error("Error closing Kafka writer", zap.Error(err))
			}
		}()
		eventBus.Subscribe(event.NewIdempotentHandler(forwarder, stores.Idempotency, "kafka", 24*time.Hour, log))
		log.Info("Kafka forwarder registered",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
			zap.Strings("events", forwarder.EventTypes()),
		)
	}
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbound integrations
	gateway, err := payment.NewGateway(cfg.Payment, log)
	if err != nil {
		log.Fatal("Failed to create payment gateway", zap.Error(err))
	}
	log.Info("Payment gateway ready", zap.String("gateway", string(gateway.Type())))

	notifier := mail.NewNotifier(mail.NewSender(cfg.Mail, log), cfg.Mail.AdminAddress, cfg.App.PublicURL)

	var images catalogapp.ImageStorage
	var memoryImages *storage.MemoryImageStorage
	if cfg.Storage.Enabled {
		s3Images, err := storage.NewS3ImageStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Images.EnsureBucket(ctx); err != nil {
			log.Warn("Object storage bucket check failed", zap.String("bucket", s3Images.Bucket()), zap.Error(err))
		}
		cancel()
		images = s3Images
	} else {
		memoryImages = storage.NewMemoryImageStorage("/uploads")
		images = memoryImages
		log.Warn("Object storage disabled, product images are kept in memory")
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Client)
	}

	authService := identityapp.NewAuthService(identityapp.AuthServiceConfig{
		Users:          userRepo,
		Resets:         resetRepo,
		JWT:            jwtService,
		Blacklist:      blacklist,
		Mailer:         notifier,
		EventPublisher: eventBus,
		Logger:         log,
	})
	categoryService := catalogapp.NewCategoryService(categoryRepo, log)
	productService := catalogapp.NewProductService(catalogapp.ProductServiceConfig{
		Products:          productRepo,
		Categories:        categoryRepo,
		Images:            images,
		EventPublisher:    eventBus,
		Logger:            log,
		SuggestionTimeout: cfg.Catalog.SuggestionTimeout,
		SuggestionLimit:   cfg.Catalog.SuggestionLimit,
	})
	ratingService := catalogapp.NewRatingService(ratingRepo, productRepo, log)

	cartStore := cartapp.NewStore(stores.Carts, productRepo, log,
		cartapp.WithEventPublisher(eventBus),
		cartapp.WithRelay(stores.Relay),
		cartapp.WithMetrics(businessMetrics),
	)
	cartCtx, stopCart := context.WithCancel(context.Background())
	defer stopCart()
	go func() {
		if err := cartStore.Run(cartCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Cart relay stopped", zap.Error(err))
		}
	}()

	discountService := discountapp.NewService(discountRepo, eventBus, log)
	checkoutService := checkout.NewService(discountRepo, redemptionRepo, orderRepo, cartStore, stores.Sessions, cfg.Checkout, log)
	checkoutService.SetMetrics(businessMetrics)

	orderService := orderapp.NewService(orderapp.ServiceConfig{
		Orders:               orderRepo,
		PendingPayments:      stores.PendingPayments,
		Gateway:              gateway,
		Idempotency:          stores.Idempotency,
		Discounts:            discountRepo,
		Redemptions:          redemptionRepo,
		Checkout:             checkoutService,
		Carts:                cartStore,
		EventPublisher:       eventBus,
		Metrics:              businessMetrics,
		Logger:               log,
		Currency:             cfg.Payment.Currency,
		IdempotencyTTL:       cfg.Payment.IdempotencyTTL,
		RedirectAfterSeconds: cfg.Checkout.RedirectAfterSeconds,
		CaptureWait:          cfg.Payment.CaptureWait,
	})

	faqService := content.NewFAQService(faqRepo, log)
	inquiryService := content.NewInquiryService(inquiryRepo, notifier, log)

	// HTTP handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(categoryService),
		Rating:   handler.NewRatingHandler(ratingService),
		Cart:     handler.NewCartHandler(cartStore, handler.WithCartLogger(log)),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Discount: handler.NewDiscountHandler(discountService),
		Order:    handler.NewOrderHandler(orderService),
		Webhook:  handler.NewPaymentWebhookHandler(orderService),
		FAQ:      handler.NewFAQHandler(faqService),
		Inquiry:  handler.NewInquiryHandler(inquiryService),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id first so every later log line and span carries it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetrics(meterProvider, log))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimitWithUploads(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize))

	guards := router.Guards{
		Identify: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Optional:       true,
			Logger:         log,
		}),
	}
	if cfg.RateLimit.Enabled {
		apiLimiter := newLimiter(stores, "ratelimit:api", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		authLimiter := newLimiter(stores, "ratelimit:auth", cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
		engine.Use(middleware.RateLimit(apiLimiter, log))
		guards.AuthLimit = middleware.RateLimit(authLimiter, log)
		guards.CartLimit = middleware.RateLimitByKey(
			newLimiter(stores, "ratelimit:cart", cfg.RateLimit.Requests, cfg.RateLimit.Window), log, ownerKey)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Duration("window", cfg.RateLimit.Window),
			zap.Int("auth_requests", cfg.RateLimit.AuthRequests),
		)
	}

	healthChecks := []handler.HealthCheck{{Name: "database", Check: db.Ping}}
	if stores.Client != nil {
		healthChecks = append(healthChecks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return stores.Client.Ping(ctx).Err() },
		})
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, healthChecks...)
	engine.GET("/health", systemHandler.Health)

	if memoryImages != nil {
		engine.GET(memoryImages.Prefix()+"/*key", handler.NewUploadsHandler(memoryImages).Serve)
	}

	r := router.NewRouter(engine)
	system := router.NewDomainGroup("system", "/system")
	system.GET("/info", systemHandler.Info)
	ping := router.NewDomainGroup("ping", "/ping")
	ping.GET("", systemHandler.Ping)
	routes := router.RegisterStorefront(r, handlers, guards).
		Register(system).
		Register(ping).
		Setup()
	log.Info("Routes mounted", zap.Int("count", routes), zap.String("base_path", r.BasePath()))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Cart streams only end when their subscriber goes away
	stopCart()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

// newLimiter shares counters through Redis when the stores run on Redis
func newLimiter(stores *cache.Stores, prefix string, limit int, window time.Duration) middleware.Limiter {
	if stores.Client != nil {
		return middleware.NewRedisRateLimiter(stores.Client, prefix, limit, window)
	}
	return middleware.NewRateLimiter(limit, window)
}

// ownerKey throttles per signed-in user, then per guest session, then per IP
func ownerKey(c *gin.Context) string {
	if userID := middleware.GetJWTUserID(c); userID != "" {
		return "user:" + userID
	}
	if session := c.GetHeader(middleware.CartSessionHeader); session != "" {
		return "guest:" + session
	}
	return "ip:" + c.ClientIP()
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
