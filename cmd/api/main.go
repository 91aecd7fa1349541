package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/glowdesk/salon-platform/cmd/mainconfig"
	"github.com/glowdesk/salon-platform/internal/api/router"
	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/internal/catalog"
	appconfig "github.com/glowdesk/salon-platform/internal/config"
	"github.com/glowdesk/salon-platform/internal/customers"
	"github.com/glowdesk/salon-platform/internal/gallery"
	"github.com/glowdesk/salon-platform/internal/identity"
	"github.com/glowdesk/salon-platform/internal/marketing"
	"github.com/glowdesk/salon-platform/internal/notify"
	"github.com/glowdesk/salon-platform/internal/observability/metrics"
	"github.com/glowdesk/salon-platform/internal/reports"
	"github.com/glowdesk/salon-platform/internal/stylists"
	"github.com/glowdesk/salon-platform/internal/suggest"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.AuthJWTSecret == "" {
		logger.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	// Storage layer.
	catalogRepo := catalog.NewRepository(dynamoClient, cfg.SalonTable, logger.Named("catalog"))
	var catalogStore catalog.Store = catalogRepo
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		catalogStore = catalog.NewCachedRepository(catalogRepo, redisClient, cfg.CatalogCacheTTL, logger.Named("catalog"))
		logger.Info("catalog cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CatalogCacheTTL.String())
	}
	stylistsRepo := stylists.NewRepository(dynamoClient, cfg.SalonTable, logger.Named("stylists"))
	customersRepo := customers.NewRepository(dynamoClient, cfg.SalonTable, logger.Named("customers"))
	bookingRepo := booking.NewRepository(dynamoClient, cfg.SalonTable, logger.Named("booking"))
	identityRepo := identity.NewRepository(dynamoClient, cfg.SalonTable, logger.Named("identity"))
	galleryRepo := gallery.NewRepository(dynamoClient, cfg.SalonTable, logger.Named("gallery"))

	// Notification pipeline. Without a queue URL booking events are dropped.
	var publisher booking.EventPublisher
	if cfg.NotifyQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsCfg)
		queue := notify.NewSQSQueue(sqsClient, cfg.NotifyQueueURL)
		publisher = notify.NewPublisher(queue, logger.Named("notify"))
	} else {
		logger.Warn("NOTIFY_QUEUE_URL not set; booking notifications disabled")
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	coordinator := booking.NewCoordinator(
		bookingRepo,
		catalog.NewBookingLookup(catalogRepo),
		stylists.NewBookingLookup(stylistsRepo),
		publisher,
		bookingMetrics,
		logger.Named("booking"),
	)

	// LLM stack: Gemini primary, Bedrock Converse fallback.
	var llm suggest.LLMClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := suggest.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		llm = gemini
	}
	if cfg.BedrockModelID != "" {
		bedrock := suggest.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		if llm != nil {
			llm = suggest.NewFallbackLLMClient(llm, bedrock, logger.Logger)
		} else {
			llm = bedrock
		}
	}
	if llm == nil {
		logger.Warn("no LLM configured; slot suggestions use the deterministic sweep only")
	}

	suggestSvc := suggest.NewService(llm, cfg.GeminiModelID, cfg.SuggestTimeout, bookingMetrics, logger.Named("suggest"))

	// Gallery object storage.
	s3Client := s3.NewFromConfig(awsCfg)
	objectStore := gallery.NewObjectStore(s3.NewPresignClient(s3Client), s3Client, cfg.GalleryBucket, logger.Named("gallery"))
	if !objectStore.Enabled() {
		logger.Warn("GALLERY_BUCKET not set; gallery image URLs disabled")
	}

	// Identity.
	issuer := identity.NewTokenIssuer(cfg.AuthJWTSecret, cfg.SessionTTL)
	identitySvc := identity.NewService(identityRepo, issuer, customersRepo, logger.Named("identity"))

	// Marketing shares the suggestion stack's LLM client.
	var marketingHandler *marketing.Handler
	if llm != nil {
		generator := marketing.NewGenerator(llm, catalogStore, cfg.GeminiModelID, cfg.SuggestTimeout, logger.Named("marketing"))
		marketingHandler = marketing.NewHandler(generator, logger.Named("marketing"))
	}

	reportsSvc := reports.NewService(bookingRepo, logger.Named("reports"))

	r := router.New(router.Config{
		Logger:             logger,
		CatalogHandler:     catalog.NewHandler(catalogStore, logger.Named("catalog")),
		StylistsHandler:    stylists.NewHandler(stylistsRepo, logger.Named("stylists")),
		CustomersHandler:   customers.NewHandler(customersRepo, logger.Named("customers")),
		BookingHandler:     booking.NewHandler(coordinator, bookingRepo, logger.Named("booking")),
		SuggestHandler:     suggest.NewHandler(suggestSvc, catalog.NewBookingLookup(catalogRepo), stylists.NewSuggestRoster(stylistsRepo), bookingRepo, logger.Named("suggest")),
		GalleryHandler:     gallery.NewHandler(galleryRepo, objectStore, logger.Named("gallery")),
		AuthHandler:        identity.NewHandler(identitySvc, logger.Named("identity")),
		MarketingHandler:   marketingHandler,
		ReportsHandler:     reports.NewHandler(reportsSvc, logger.Named("reports")),
		TokenIssuer:        issuer,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:      cfg.AuthRateLimit,
		AuthRateBurst:      cfg.AuthRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
