package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"shopfront-backend/internal/audit"
	auditrepo "shopfront-backend/internal/audit/repository"
	authhandler "shopfront-backend/internal/auth/handler"
	authservice "shopfront-backend/internal/auth/service"
	"shopfront-backend/internal/blobstore"
	cartcache "shopfront-backend/internal/cart/cache"
	carthandler "shopfront-backend/internal/cart/handler"
	cartrepo "shopfront-backend/internal/cart/repository"
	cartservice "shopfront-backend/internal/cart/service"
	companyhandler "shopfront-backend/internal/company/handler"
	companyrepo "shopfront-backend/internal/company/repository"
	"shopfront-backend/internal/config"
	"shopfront-backend/internal/db"
	"shopfront-backend/internal/logging"
	producthandler "shopfront-backend/internal/product/handler"
	productrepo "shopfront-backend/internal/product/repository"
	samplehandler "shopfront-backend/internal/sample/handler"
	samplerepo "shopfront-backend/internal/sample/repository"
	"shopfront-backend/internal/security"
	"shopfront-backend/internal/server"
	"shopfront-backend/internal/server/middleware"
	sessionrepo "shopfront-backend/internal/session/repository"
	"shopfront-backend/internal/telemetry"
	telemetryotel "shopfront-backend/internal/telemetry/otel"
	"shopfront-backend/internal/telemetry/producer"
	userrepo "shopfront-backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	ctx := context.Background()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	companies := companyrepo.NewPostgresRepository(conn)
	products := productrepo.NewPostgresRepository(conn)
	samples := samplerepo.NewPostgresRepository(conn)
	carts := cartrepo.NewPostgresRepository(conn)
	auditLog := audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.GetClientIP, logger)

	var cache cartcache.CartCache = cartcache.Noop{}
	if cfg.RedisAddr != "" {
		cache = cartcache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	var blobs blobstore.Store
	if cfg.S3Bucket != "" {
		blobs, err = blobstore.NewS3(ctx, blobstore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("blobstore: %v", err)
		}
	} else {
		logger.Warn(ctx, "no S3 bucket configured, using in-memory blob store")
		blobs = blobstore.NewMemory()
	}

	var emitter telemetry.EventEmitter
	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	if kafkaProducer != nil {
		emitter = kafkaProducer
		defer kafkaProducer.Close()
	}

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "shopfront-backend", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	authSvc := authservice.NewAuthService(users, sessions, hasher, tokens, cfg.CookieSessionTTL())
	cartSvc := cartservice.NewCartService(carts, products, cache, logger)

	gate := middleware.NewGate(tokens, users, sessions, logger)
	cookieSecure := cfg.Env == "production"
	handlers := server.Handlers{
		Auth:      authhandler.NewAuthHandler(authSvc, auditLog, emitter, logger, cookieSecure),
		Companies: companyhandler.NewCompanyHandler(companies, auditLog, logger),
		Products:  producthandler.NewProductHandler(products, companies, samples, blobs, auditLog, logger),
		Samples:   samplehandler.NewSampleHandler(samples, products, blobs, auditLog, logger),
		Cart:      carthandler.NewCartHandler(cartSvc, emitter, logger),
	}

	router := server.NewRouter(gate, handlers)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info(ctx, "http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http shutdown failed", "error", err)
	}

	// Let in-flight async telemetry emits finish before tearing providers down.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "otel shutdown failed", "error", err)
	}
	logger.Info(ctx, "http server stopped")
}
