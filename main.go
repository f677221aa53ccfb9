package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dining-concierge/server/internal/concierge/dialogue"
	"github.com/dining-concierge/server/internal/concierge/fulfillment"
	"github.com/dining-concierge/server/internal/concierge/model"
	"github.com/dining-concierge/server/internal/concierge/notify"
	"github.com/dining-concierge/server/internal/concierge/repo"
	"github.com/dining-concierge/server/internal/core"
	"github.com/dining-concierge/server/internal/httpapi"
	"github.com/dining-concierge/server/internal/observability"
	logx "github.com/dining-concierge/server/pkg/logger"
	pkgpostgres "github.com/dining-concierge/server/pkg/postgres"
	pkgqdrant "github.com/dining-concierge/server/pkg/qdrant"
	pkgredis "github.com/dining-concierge/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Role     string `envconfig:"APP_ROLE" default:"all"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Infrastructure
	Redis    pkgredis.Config
	Database pkgpostgres.Config `envconfig:"DATABASE"`
	Qdrant   pkgqdrant.Config
	Supabase model.SupabaseConfig

	// Pipeline
	Drivers  model.DriverConfig
	Dialogue model.DialogueConfig
	Queue    model.QueueConfig
	Worker   model.WorkerConfig
	Mail     model.MailConfig
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logx.Warn().Err(err).Msg("could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}

	env := core.ParseEnvironment(cfg.Env)
	logx.Init(logx.LoggerOpts{Environment: env, Service: "dining-concierge"})

	role, err := core.ParseRole(cfg.Role)
	if err != nil {
		logx.Fatal().Err(err).Msg("invalid APP_ROLE")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, role); err != nil {
		logx.Fatal().Err(err).Msg("service stopped with error")
	}
	logx.Info().Msg("service stopped")
}

func run(ctx context.Context, cfg AppConfig, role core.Role) error {
	stateTTL := mustDuration("STATE_TTL", cfg.Dialogue.StateTTL)
	visibility := mustDuration("QUEUE_VISIBILITY_TIMEOUT", cfg.Queue.VisibilityTimeout)
	pollInterval := mustDuration("WORKER_POLL_INTERVAL", cfg.Worker.PollInterval)

	backends, closeBackends, err := connectBackends(ctx, cfg, role)
	if err != nil {
		return err
	}
	defer closeBackends()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics("concierge", reg)

	queue, err := repo.NewRequestQueue(cfg.Drivers.Queue, backends, cfg.Queue.Name, visibility)
	if err != nil {
		return err
	}
	if repo.NormalizeDriver(cfg.Drivers.Queue) == repo.DriverMemory && role != core.RoleAll {
		logx.Warn().Str("role", string(role)).Msg("memory queue is process local; run with APP_ROLE=all")
	}

	g, gctx := errgroup.WithContext(ctx)

	if role.RunsAPI() {
		state, err := repo.NewStateStore(ctx, cfg.Drivers.State, backends, stateTTL)
		if err != nil {
			return err
		}
		mgr, err := dialogue.NewManager(ctx, state, queue, metrics)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.New(mgr, metrics, string(role)).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logx.Info().Str("addr", cfg.HTTPAddr).Msg("dialogue api listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if role.RunsWorker() {
		index, details, err := repo.NewCatalog(ctx, cfg.Drivers.Index, cfg.Drivers.Detail, backends)
		if err != nil {
			return err
		}
		mailer, err := notify.New(cfg.Mail)
		if err != nil {
			return err
		}

		n := cfg.Worker.Concurrency
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			w := fulfillment.NewWorker(queue, index, details, mailer, metrics, pollInterval)
			g.Go(func() error { return w.Run(gctx) })
		}
		logx.Info().Int("workers", n).Str("index", cfg.Drivers.Index).Str("details", cfg.Drivers.Detail).Msg("fulfillment workers started")
	}

	return g.Wait()
}

type backendSet struct {
	redis, postgres, qdrant bool
}

// backendsFor lists the clients the selected drivers use in this role.
func backendsFor(d model.DriverConfig, role core.Role) backendSet {
	state := repo.NormalizeDriver(d.State)
	queue := repo.NormalizeDriver(d.Queue)
	index := repo.NormalizeDriver(d.Index)
	detail := repo.NormalizeDriver(d.Detail)

	api, worker := role.RunsAPI(), role.RunsWorker()
	return backendSet{
		redis:    queue == repo.DriverRedis || (api && state == repo.DriverRedis),
		postgres: (api && state == repo.DriverPostgres) || (worker && detail == repo.DriverPostgres),
		qdrant:   worker && index == repo.DriverQdrant,
	}
}

// connectBackends opens only the clients the selected drivers need.
func connectBackends(ctx context.Context, cfg AppConfig, role core.Role) (repo.Backends, func(), error) {
	b := repo.Backends{
		QdrantCollection: cfg.Qdrant.Collection,
		SupabaseURL:      cfg.Supabase.URL,
		SupabaseAPIKey:   cfg.Supabase.APIKey,
		SupabaseTable:    cfg.Supabase.Table,
	}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	need := backendsFor(cfg.Drivers, role)

	if need.redis {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return b, func() {}, err
		}
		logx.Info().Msg("connected to redis")
		b.Redis = rdb
		closers = append(closers, func() { _ = rdb.Close() })
	}

	if need.postgres {
		pool, err := cfg.Database.New(ctx)
		if err != nil {
			closeAll()
			return b, func() {}, err
		}
		logx.Info().Msg("connected to postgres")
		b.Postgres = pool
		closers = append(closers, pool.Close)
	}

	if need.qdrant {
		client, err := cfg.Qdrant.New()
		if err != nil {
			closeAll()
			return b, func() {}, err
		}
		logx.Info().Str("collection", cfg.Qdrant.Collection).Msg("qdrant client ready")
		b.Qdrant = client
		closers = append(closers, func() { _ = client.Close() })
	}

	return b, closeAll, nil
}

func mustDuration(name, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		logx.Fatal().Err(err).Msgf("invalid %s '%s'", name, v)
	}
	return d
}
