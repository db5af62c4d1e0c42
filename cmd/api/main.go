package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	httpadp "github.com/GopalDev98/creditcard-backend/internal/adapter/http"
	"github.com/GopalDev98/creditcard-backend/internal/adapter/middleware"
	"github.com/GopalDev98/creditcard-backend/internal/adapter/publisher"
	"github.com/GopalDev98/creditcard-backend/internal/adapter/repository/mysql"
	"github.com/GopalDev98/creditcard-backend/internal/config"
	appDomain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
	"github.com/GopalDev98/creditcard-backend/internal/domain/credit"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/cache"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/db"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/logging"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/metrics"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/tracing"
	appuc "github.com/GopalDev98/creditcard-backend/internal/usecase/application"
	"github.com/GopalDev98/creditcard-backend/internal/usecase/audit"
	"github.com/GopalDev98/creditcard-backend/internal/usecase/auth"
)

const (
	serviceName     = "creditcard-backend"
	shutdownTimeout = 15 * time.Second
	bodyLimit       = "1M"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	log := logrus.StandardLogger()
	logging.Apply(log, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	shutdownTracing, err := tracing.Init(tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.AppEnv,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SampleRatio:  cfg.TracingSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	gdb, err := db.OpenGorm(db.Options{Driver: cfg.DBDriver, DSN: cfg.DSN(), LogLevel: cfg.GormLogLevel()})
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.DBAutoMigrate {
		if err := mysql.Migrate(gdb); err != nil {
			return err
		}
	}

	rdb := openRedis(cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	m := metrics.New()

	apps := mysql.NewApplicationRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	audits := mysql.NewAuditRepository(gdb)

	var seq appDomain.Sequencer = mysql.NewDaySequenceRepository(gdb)
	if cfg.SequenceBackend == "redis" {
		if rdb == nil {
			return errors.New("SEQUENCE_BACKEND=redis but redis is unreachable")
		}
		seq = cache.NewRedisSequencer(rdb, cache.SeedFromRepository(apps))
	}

	recOpts := []audit.Option{audit.WithMetrics(m), audit.WithLogger(logrus.NewEntry(log))}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		pub, err := publisher.NewKafkaPublisher(publisher.KafkaConfig{Brokers: brokers, Topic: cfg.KafkaAuditTopic})
		if err != nil {
			return err
		}
		defer pub.Close()
		recOpts = append(recOpts, audit.WithPublisher(pub))
	}
	recorder := audit.NewRecorder(audits, cfg.AuditQueueSize, recOpts...)

	appUC := appuc.NewUsecase(apps, mysql.NewGormUoW(gdb), seq, credit.NewBureau(), recorder, appuc.WithMetrics(m))
	authUC := auth.NewUsecase(users, auth.Config{
		AccessSecret:     cfg.JWTSecret,
		AccessTTL:        cfg.JWTExpiresIn,
		RefreshSecret:    cfg.RefreshSecret,
		RefreshTTL:       cfg.RefreshExpiresIn,
		AllowAdminSignup: cfg.AuthAllowAdminSignup,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.HTTPErrorHandler = httpadp.ErrorHandler()

	e.Use(
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}),
		middleware.RequestContext(log),
		middleware.RequestLogger(log),
		middleware.Metrics(m),
		echomw.Recover(),
		echomw.Secure(),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: cfg.Origins(),
			AllowHeaders: []string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
				echo.HeaderAuthorization, "Idempotency-Key", "X-Request-At",
			},
			AllowCredentials: true,
		}),
		echomw.Gzip(),
		echomw.BodyLimit(bodyLimit),
		middleware.RateLimit(middleware.RateLimitConfig{
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return p == "/api/health" || p == "/metrics"
			},
			Window:  cfg.RateLimitWindow,
			Max:     cfg.RateLimitMax,
			Redis:   rdb,
			Metrics: m,
		}),
	)

	httpadp.Register(e, httpadp.Deps{
		Health:         httpadp.NewHandler(serviceName, version),
		Applications:   httpadp.NewApplicationHandler(appUC),
		Auth:           httpadp.NewAuthHandler(authUC),
		Audit:          httpadp.NewAuditHandler(audit.NewUsecase(audits)),
		Authenticator:  authUC,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		Gatherer:       m.Registry,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.AppEnv, "db": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	// in-flight handlers are done, so every audit entry is queued by now
	if err := recorder.Close(sctx); err != nil {
		log.WithError(err).Warn("audit drain incomplete")
	}
	return nil
}

// openRedis returns nil when redis is not configured or unreachable; callers degrade.
func openRedis(cfg *config.Config, log *logrus.Logger) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Warn("redis disabled: idempotency off, rate limits per process")
		return nil
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unreachable: idempotency off, rate limits per process")
		return nil
	}
	return rdb
}
