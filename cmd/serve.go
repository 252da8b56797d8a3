package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/fitquest/internal/adapters/cache"
	"github.com/okian/fitquest/internal/adapters/coach"
	"github.com/okian/fitquest/internal/adapters/http/api"
	"github.com/okian/fitquest/internal/adapters/mq/queue"
	"github.com/okian/fitquest/internal/adapters/mq/sink"
	"github.com/okian/fitquest/internal/adapters/mq/worker"
	"github.com/okian/fitquest/internal/adapters/repository"
	"github.com/okian/fitquest/internal/adapters/repository/postgres"
	service "github.com/okian/fitquest/internal/app"
	"github.com/okian/fitquest/internal/config"
	"github.com/okian/fitquest/internal/domain/dedupe"
	"github.com/okian/fitquest/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Log rotation used when FITQUEST_LOG_FILE is set.
const (
	logMaxSizeMB  = 100
	logMaxBackups = 5
	logMaxAgeDays = 28
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

type sinkCloser interface {
	worker.Sink
	Close() error
}

// components is everything serve wires together from config.
type components struct {
	store repository.Store
	cache cache.LeaderboardCache
	sink  sinkCloser
	queue *queue.InMemoryQueue
	pool  *worker.Pool
	svc   *service.Service
}

func (c *components) close(ctx context.Context) {
	log := logger.Get()
	if err := c.queue.Close(); err != nil {
		log.Warn(ctx, "failed to close event queue", logger.Error(err))
	}
	if err := c.sink.Close(); err != nil {
		log.Warn(ctx, "failed to close event sink", logger.Error(err))
	}
	if err := c.cache.Close(); err != nil {
		log.Warn(ctx, "failed to close leaderboard cache", logger.Error(err))
	}
	if err := c.store.Close(); err != nil {
		log.Warn(ctx, "failed to close store", logger.Error(err))
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Our own system metrics replace the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	c, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close(context.WithoutCancel(ctx))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(c.svc, api.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, c.svc.SignIn)).Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Workers outlive the signal; stopServing drains them after the server.
	c.pool.Start(context.WithoutCancel(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		return stopServing(context.WithoutCancel(gctx), srv, c.pool)
	})
	g.Go(func() error {
		runMetricsUpdaters(gctx, c.queue, c.pool)
		return nil
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// stopServing stops the HTTP server before the worker pool so events
// enqueued by in-flight requests still reach the sink.
func stopServing(ctx context.Context, srv, pool shutdowner) error {
	sctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	srvErr := srv.Shutdown(sctx)
	if srvErr != nil {
		srvErr = fmt.Errorf("http shutdown: %w", srvErr)
	}

	pctx, pcancel := context.WithTimeout(ctx, shutdownTimeout)
	defer pcancel()
	poolErr := pool.Shutdown(pctx)
	if poolErr != nil {
		poolErr = fmt.Errorf("worker shutdown: %w", poolErr)
	}
	return errors.Join(srvErr, poolErr)
}

func initLogger(cfg *config.Config) error {
	opts := []logger.Option{logger.WithJSON(cfg.LogJSON)}
	if cfg.LogFile != "" {
		opts = append(opts,
			logger.WithFile(cfg.LogFile),
			logger.WithRotation(logMaxSizeMB, logMaxBackups, logMaxAgeDays, true))
	}
	if err := logger.Init(opts...); err != nil {
		// Logger isn't available yet.
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// buildComponents picks Postgres, Redis and Kafka when configured and the
// in-process implementations otherwise.
func buildComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	log := logger.Get()
	c := &components{}

	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.MigrateOnStart {
			if err := postgres.Migrate(pool, postgres.Up); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		c.store = postgres.NewStore(pool)
		log.Info(ctx, "using postgres store")
	} else {
		c.store = repository.NewMemoryStore()
		log.Warn(ctx, "FITQUEST_DATABASE_URL not set; data is kept in memory")
	}

	switch ttl := cfg.LeaderboardCacheTTL(); {
	case cfg.RedisAddr != "":
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			_ = c.store.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.cache = cache.NewRedis(rdb, ttl)
	case ttl > 0:
		c.cache = cache.NewMemory(ttl)
	default:
		c.cache = cache.Nop{}
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		c.sink = sink.NewKafka(sink.NewKafkaWriter(brokers, cfg.KafkaTopic), cfg.KafkaTopic)
	} else {
		c.sink = sink.NewLog(log.Named("events"))
	}

	c.queue = queue.NewInMemoryQueue(queue.WithCapacity(cfg.EventQueueSize))
	c.pool = worker.NewPool(cfg.WorkerCount, c.queue, c.sink)

	coachClient := coach.New(
		coach.WithAPIKey(cfg.GeminiAPIKey),
		coach.WithModel(cfg.GeminiModel),
		coach.WithDryRun(cfg.CoachDryRun),
		coach.WithRateLimit(float64(cfg.CoachRPS), cfg.CoachBurst),
		coach.WithTimeout(cfg.CoachTimeout()),
	)
	if !coachClient.Available() {
		log.Warn(ctx, "FITQUEST_GEMINI_API_KEY not set; coach endpoints return 503")
	}

	c.svc = service.New(c.store,
		service.WithCache(c.cache),
		service.WithEventQueue(c.queue),
		service.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))),
		service.WithCoach(coachClient),
		service.WithMaxWorkoutsLimit(cfg.MaxWorkoutsLimit),
		service.WithLogger(log.Named("service")),
	)
	return c, nil
}
