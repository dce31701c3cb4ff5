package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"dexrank/internal/audit"
	boxhandler "dexrank/internal/box/handler"
	boxservice "dexrank/internal/box/service"
	boxstore "dexrank/internal/box/store"
	cataloghandler "dexrank/internal/catalog/handler"
	catalogstore "dexrank/internal/catalog/store"
	jwttoken "dexrank/internal/jwt_token"
	"dexrank/internal/platform/config"
	"dexrank/internal/platform/database"
	"dexrank/internal/platform/httpserver"
	"dexrank/internal/platform/logger"
	"dexrank/internal/platform/metrics"
	platformredis "dexrank/internal/platform/redis"
	rankinghandler "dexrank/internal/ranking/handler"
	rankingservice "dexrank/internal/ranking/service"
	rankingstore "dexrank/internal/ranking/store"
	"dexrank/internal/stats"
	userhandler "dexrank/internal/user/handler"
	userservice "dexrank/internal/user/service"
	userstore "dexrank/internal/user/store"
)

const (
	tokenIssuer      = "dexrank"
	tokenAudience    = "dexrank"
	auditInboxBuffer = 256
	shutdownTimeout  = 10 * time.Second
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	deps, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	cache, err := buildCache(log)
	if err != nil {
		return err
	}
	tracker := stats.NewTracker(cache, log)

	publisher := audit.NewChannelPublisher(auditInboxBuffer, log)
	sinks := []audit.Sink{audit.NewMemoryStore()}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("audit events publishing to kafka", "topic", audit.Topic)
	}
	worker := audit.NewWorker(publisher.Inbox(), log, sinks...)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, tokenIssuer, tokenAudience)
	validator := jwttoken.NewServiceAdapter(tokens)

	userSvc := userservice.NewService(deps.userTx, tokens, cache, publisher, m, log)
	rankingSvc := rankingservice.NewService(deps.rankingTx, tracker, publisher, log)
	boxSvc := boxservice.NewService(deps.boxTx, deps.catalog, publisher, log)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rankinghandler.New(rankingSvc, log, m, validator).Register(router)
	boxhandler.New(boxSvc, log, m, validator).Register(router)
	cataloghandler.New(deps.catalog, log, m).Register(router)
	userhandler.New(userSvc, log, m, validator).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting dexrank", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// storeDeps carries the persistence seam handed to the services. Postgres
// when DATABASE_URL is set, in-memory otherwise so the server runs without
// external infrastructure in development.
type storeDeps struct {
	userTx    userservice.StoreTx
	rankingTx rankingservice.StoreTx
	boxTx     boxservice.StoreTx
	catalog   catalogstore.Store
}

func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*storeDeps, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("no DATABASE_URL set, using in-memory stores")
		users := userstore.NewInMemory()
		return &storeDeps{
			userTx: userservice.NewInMemoryTx(users),
			rankingTx: rankingservice.NewInMemoryTx(rankingservice.Stores{
				Users:    users,
				Rankings: rankingstore.NewInMemory(),
			}),
			boxTx: boxservice.NewInMemoryTx(boxservice.Stores{
				Users: users,
				Boxes: boxstore.NewInMemory(),
			}),
			catalog: catalogstore.NewInMemory(catalogstore.BootstrapDex()),
		}, func() {}, nil
	}

	db, err := database.Connect(cfg.DatabaseURL, 30*time.Second)
	if err != nil {
		return nil, nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	catalog := catalogstore.NewPostgres(db)
	if err := catalog.Seed(ctx, catalogstore.BootstrapDex()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return &storeDeps{
		userTx:    newUserPostgresTx(db, cfg.TxTimeout),
		rankingTx: newRankingPostgresTx(db, cfg.TxTimeout),
		boxTx:     newBoxPostgresTx(db, cfg.TxTimeout),
		catalog:   catalog,
	}, func() { _ = db.Close() }, nil
}

func buildCache(log *slog.Logger) (stats.Cache, error) {
	client, err := platformredis.New(config.RedisFromEnv())
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("no REDIS_URL set, using in-memory leaderboard cache")
		return stats.NewMemoryCache(), nil
	}
	return stats.NewRedisCache(client.Client), nil
}
