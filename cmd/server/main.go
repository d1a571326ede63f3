package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/gig-board/internal/config"
	"github.com/iliyamo/gig-board/internal/database"
	"github.com/iliyamo/gig-board/internal/handler"
	"github.com/iliyamo/gig-board/internal/metrics"
	"github.com/iliyamo/gig-board/internal/middleware"
	"github.com/iliyamo/gig-board/internal/queue"
	"github.com/iliyamo/gig-board/internal/repository"
	"github.com/iliyamo/gig-board/internal/router"
	"github.com/iliyamo/gig-board/internal/service"
)

func main() {
	cfg := config.Load()
	e := echo.New()
	e.HideBanner = true
	lvl, _ := config.ParseLogLevel(cfg.LogLevel)
	e.Logger.SetLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, ping, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		e.Logger.Fatalf("open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	m := metrics.New()
	opts := service.Options{
		LowercaseLocation: cfg.LocationPolicy == config.LocationLowercase,
		NewestFirst:       cfg.ListOrder == config.OrderNewest,
		StoreTimeout:      cfg.StoreTimeout,
		Metrics:           m,
		Logger:            e.Logger,
	}
	if cfg.EventsEnabled {
		opts.Publisher = service.NewRabbitPublisher(cfg.RabbitMQURL)
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				e.Logger.Errorf("gig consumer stopped: %v", err)
			}
		}()
	}
	svc := service.NewGigService(store, opts)

	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		e.Logger.Warnf("redis unavailable, cache and rate limiting disabled: %v", err)
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e.Use(echomw.Recover())
	e.Use(requestLogger())
	e.Use(middleware.Instrument(m))

	router.RegisterRoutes(e, m, ping)
	router.RegisterGigs(e, handler.NewGigHandler(svc, cache.Invalidate), cache, limiter)

	go func() {
		addr := ":" + cfg.Port
		e.Logger.Infof("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("shutdown: %v", err)
	}
}

// openStore connects the configured GigStore and returns it together with
// a readiness ping and a close function.
func openStore(ctx context.Context, cfg config.Config) (repository.GigStore, func(context.Context) error, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewMySQLGigRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return repo, db.PingContext, func() { _ = db.Close() }, nil
	case config.DriverMemory:
		return repository.NewMemoryGigRepo(), nil, func() {}, nil
	default:
		client, err := database.OpenMongo(cfg.MongoURI)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewMongoGigRepo(client.Database(cfg.MongoDB), cfg.MongoCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return repo, ping, func() { _ = client.Disconnect(context.Background()) }, nil
	}
}

// requestLogger logs one line per request through the echo logger.
func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s -> %d (%s) from %s: %v", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s -> %d (%s) from %s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			return nil
		},
	})
}
