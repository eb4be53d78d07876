package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"opening_tree/internal/adapters"
	"opening_tree/internal/bootstrap"
	analysisDelivery "opening_tree/internal/delivery/analysis"
	gameDelivery "opening_tree/internal/delivery/game"
	errs "opening_tree/internal/errors"
	ownMiddleware "opening_tree/internal/middleware"
	"opening_tree/internal/pgn"
	repo "opening_tree/internal/repository"
	"opening_tree/internal/rules"
	gameuc "opening_tree/internal/usecase/game"
	"opening_tree/internal/usecase/moves"
	"opening_tree/internal/usecase/session"
)

type mainDeliveryHandler struct {
	game     *gameDelivery.GameHandler
	analysis *analysisDelivery.AnalysisHandler
	metrics  http.Handler
}

// storeAdapter is any of the database adapters.
type storeAdapter interface {
	Init(ctx context.Context) error
	Close(ctx context.Context) error
}

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		NewLogger("info").Errorf("Failed to setup configuration: %v", err)
		return
	}
	logger := NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter, durable, err := initStore(ctx, logger, *cfg)
	if err != nil {
		logger.Fatalf("Не удалось инициализировать хранилище %s: %v", cfg.StoreBackend, err)
	}
	defer adapter.Close(context.Background())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cache := session.NewCache(durable, logger, session.Options{
		Window:     cfg.FlushWindow,
		MaxPayload: cfg.MaxPayloadBytes,
		Registerer: registry,
	})

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, cache, registry)
	handlers.Router(r, cfg.IsLocalCors)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Server is running on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("server shutdown: %v", err)
		}
		return cache.Close(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Server stopped with error: %v", err)
	}
}

func NewLogger(level string) *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", h.metrics)
	h.game.Routes(r)
	h.analysis.Routes(r)
}

// initStore opens the configured backend and returns the durable view the
// session cache writes to.
func initStore(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) (storeAdapter, session.Durable, error) {
	var (
		adapter storeAdapter
		durable func() session.Durable
	)
	switch cfg.StoreBackend {
	case bootstrap.BackendBadger:
		a := adapters.NewAdapterBadger(&cfg, log)
		adapter, durable = a, func() session.Durable { return repo.NewBadgerSessionStore(a.GetDB()) }
	case bootstrap.BackendRedis:
		a := adapters.NewAdapterRedis(&cfg, log)
		adapter, durable = a, func() session.Durable { return repo.NewRedisSessionStore(a.GetClient()) }
	case bootstrap.BackendSqlite:
		a := adapters.NewAdapterSqlite(&cfg, log)
		adapter, durable = a, func() session.Durable { return repo.NewSqliteSessionStore(a.GetDB()) }
	case bootstrap.BackendMongo:
		a := adapters.NewAdapterMongo(&cfg, log)
		adapter, durable = a, func() session.Durable { return repo.NewMongoSessionStore(a.Database) }
	default:
		return nil, nil, fmt.Errorf("%w: %q", errs.ErrUnknownBackend, cfg.StoreBackend)
	}

	if err := adapter.Init(ctx); err != nil {
		return nil, nil, err
	}
	log.Infof("Хранилище сессий инициализировано (%s)", cfg.StoreBackend)
	return adapter, durable(), nil
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	cache *session.Cache,
	registry *prometheus.Registry,
) *mainDeliveryHandler {
	engine := rules.NewNotnil()
	applier := moves.NewApplier(engine, log)
	codec := pgn.NewCodec(engine, nil, log)
	gameUC := gameuc.NewGameUseCase(cache, applier, codec, log, gameuc.Options{
		HistoryLimit: cfg.HistoryLimit,
		ChunkSize:    cfg.ImportChunkSize,
	})

	return &mainDeliveryHandler{
		game:     gameDelivery.NewGameHandler(cfg, log, gameUC),
		analysis: analysisDelivery.NewAnalysisHandler(cfg, log, gameUC),
		metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
}
