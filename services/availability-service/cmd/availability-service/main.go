package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/tutorslots/libs/db"
	"github.com/md-rashed-zaman/tutorslots/libs/grpcx"
	"github.com/md-rashed-zaman/tutorslots/libs/httpx"
	"github.com/md-rashed-zaman/tutorslots/libs/kafkax"
	otelx "github.com/md-rashed-zaman/tutorslots/libs/otel"
	"github.com/md-rashed-zaman/tutorslots/libs/runtime"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/consumer"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/handlers"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/inbox"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/outbox"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/storage"
	"github.com/md-rashed-zaman/tutorslots/services/availability-service/internal/timezone"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type userStore interface {
	availability.UserDirectory
	consumer.UserWriter
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		runtime.NewLogger("availability-service").Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := runtime.NewLoggerWithOptions(cfg.ServiceName, runtime.LogOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelCfg, err := otelx.ConfigFromEnv(cfg.ServiceName)
	if err != nil {
		logger.Error("otel config invalid", "err", err)
		os.Exit(1)
	}
	otelShutdown, err := otelx.Setup(ctx, otelCfg)
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	zones, err := timezone.Load(cfg.ZoneTablePath)
	if err != nil {
		logger.Error("zone table load failed", "err", err, "path", cfg.ZoneTablePath)
		os.Exit(1)
	}
	logger.Info("zone table loaded", "countries", zones.Len())

	seed, err := loadSeedUsers(cfg.UsersSeedPath)
	if err != nil {
		logger.Error("users seed load failed", "err", err)
		os.Exit(1)
	}

	var (
		store  availability.BookingStore
		users  userStore
		checks []runtime.ReadyCheck
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if cfg.AutoMigrate {
			if err := storage.RunMigrations(ctx, pool); err != nil {
				logger.Error("migrations failed", "err", err)
				os.Exit(1)
			}
		}

		outboxRepo := outbox.NewRepository()
		store = storage.NewPostgresStore(pool, outboxRepo)
		users = storage.NewPostgresUsers(pool)
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})

		publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			PollEvery: 2 * time.Second,
			BatchSize: 50,
		})
		go publisher.Run(ctx)

		if cfg.KafkaBrokers != "" {
			profiles := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
				Brokers: cfg.KafkaBrokers,
				GroupID: cfg.KafkaGroupID,
				Topic:   cfg.ProfileTopic,
			}, consumer.ProfileHandler(logger, users, zones))
			go profiles.Run(ctx)
			checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
		}
		logger.Info("storage: postgres")
	} else {
		store = storage.NewMemoryStore()
		users = storage.NewMemoryUsers()
		logger.Warn("storage: in-memory (DATABASE_URL not set); bookings are lost on restart")
	}
	for _, u := range seed {
		if err := users.PutUser(ctx, u); err != nil {
			logger.Error("seed user failed", "err", err, "user_id", u.ID)
			os.Exit(1)
		}
	}
	if len(seed) > 0 {
		logger.Info("users seeded", "count", len(seed))
	}

	svc := availability.NewService(cfg.Config, zones, store, availability.WithLogger(logger))

	var limiter httpx.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		limiter = httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, cfg.RateLimitPrefix)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
		logger.Info("rate limiting enabled (redis)", "per_minute", cfg.RateLimitPerMinute, "redis_addr", cfg.RedisAddr)
	} else {
		limiter = httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		logger.Info("rate limiting enabled (in-memory)", "per_minute", cfg.RateLimitPerMinute)
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.New(svc, users, logger).Register(mux)

	handler := httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(httpx.ParseOrigins(cfg.CORSAllowedOrigins))),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(cfg.BodyLimitBytes),
		httpx.WithTimeout(cfg.RequestTimeout),
		httpx.RateLimit(limiter, cfg.RateLimitFailOpen, func(err error) {
			logger.Warn("rate limiter error", "err", err)
		}),
	)
	handler = otelhttp.NewHandler(handler, "availability")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpcx.NewServer(logger)
	grpcServer.Health.SetServingStatus(cfg.ServiceName, healthpb.HealthCheckResponse_SERVING)
	go func() {
		if err := grpcServer.Serve(ctx, net.JoinHostPort("", cfg.GRPCPort), logger); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	runtime.ServeHTTP(ctx, srv, logger, 10*time.Second)
}
