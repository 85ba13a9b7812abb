package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"

	reviewpanel "agora/contexts/moderation-safety/review-panel"
	reviewpostgres "agora/contexts/moderation-safety/review-panel/adapters/postgres"
	debateservice "agora/contexts/participation/debate-service"
	debatepostgres "agora/contexts/participation/debate-service/adapters/postgres"
	lifecycleengine "agora/contexts/participation/lifecycle-engine"
	lifecyclepostgres "agora/contexts/participation/lifecycle-engine/adapters/postgres"
	"agora/contexts/participation/lifecycle-engine/application/workers"
	lifecycleentities "agora/contexts/participation/lifecycle-engine/domain/entities"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
	sharedevents "agora/internal/shared/events"
	sharedoutbox "agora/internal/shared/outbox"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	relays   []sharedoutbox.Relay
	sweep    workers.PhaseSweep
	cfg      config.Config
	logger   *slog.Logger
}

type publisher interface {
	Publish(ctx context.Context, topic string, envelope sharedevents.Envelope) error
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	pg, bus, err := buildInfra(cfg, logger)
	if err != nil {
		return nil, err
	}

	lifecycle, reviews, debates, err := buildModules(cfg, pg, bus, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(lifecycle, reviews, debates, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	pg, bus, err := buildInfra(cfg, logger)
	if err != nil {
		return nil, err
	}

	lifecycle, reviews, debates, err := buildModules(cfg, pg, bus, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	lifecycleRelay := lifecycle.Relay
	lifecycleRelay.BatchSize = cfg.OutboxBatchSize
	reviewRelay := reviews.Relay
	reviewRelay.BatchSize = cfg.OutboxBatchSize
	debateRelay := debates.Relay
	debateRelay.BatchSize = cfg.OutboxBatchSize

	return &WorkerApp{
		postgres: pg,
		relays:   []sharedoutbox.Relay{lifecycleRelay, reviewRelay, debateRelay},
		sweep:    lifecycle.PhaseSweep,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func buildInfra(cfg config.Config, logger *slog.Logger) (*db.Postgres, publisher, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}

	var bus publisher
	switch cfg.EventBus {
	case "redis":
		redisBus, err := messaging.NewRedisPublisher(cfg.RedisURL, logger)
		if err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		bus = redisBus
	default:
		bus = messaging.NewBus(logger)
	}
	return pg, bus, nil
}

func buildModules(
	cfg config.Config,
	pg *db.Postgres,
	bus publisher,
	logger *slog.Logger,
) (lifecycleengine.Module, reviewpanel.Module, debateservice.Module, error) {
	schema := lifecycleentities.DefaultFieldSchema()
	if cfg.PolicyFieldSchema != "" {
		parsed, err := lifecycleentities.ParseFieldSchema(cfg.PolicyFieldSchema)
		if err != nil {
			return lifecycleengine.Module{}, reviewpanel.Module{}, debateservice.Module{}, err
		}
		schema = parsed
	}

	lifecycleRepo := lifecyclepostgres.NewRepository(pg.DB, logger)
	lifecycle := lifecycleengine.NewModule(lifecycleengine.Dependencies{
		Proposals:  lifecycleRepo,
		Supporters: lifecycleRepo,
		Votes:      lifecycleRepo,
		Quorums:    lifecycleRepo,
		Moderation: lifecycleRepo,
		Outbox:     lifecycleRepo,
		OutboxRepo: lifecycleRepo,
		Publisher:  bus,
		Clock:      lifecyclepostgres.SystemClock{},
		IDGen:      lifecyclepostgres.UUIDGenerator{},
		Config: lifecycleentities.LifecycleConfig{
			MinInitiators:             cfg.MinInitiators,
			ModeratorPercentage:       cfg.ModeratorPercentage,
			ModeratorVoteFloor:        cfg.ModeratorVoteFloor,
			SpeedPhaseEnd:             cfg.SpeedPhaseEnd,
			AbstentionStart:           cfg.AbstentionStart,
			PolicySupportMinimumDays:  cfg.PolicySupportMinimumDays,
			PolicySupportMaximumDays:  cfg.PolicySupportMaximumDays,
			PolicySupportCooldownDays: cfg.PolicySupportCooldownDays,
			PolicyDiscussionDays:      cfg.PolicyDiscussionDays,
			PolicyVotingDays:          cfg.PolicyVotingDays,
			PolicyMoratoriumDays:      cfg.PolicyMoratoriumDays,
		},
		Schema: schema,
		Logger: logger,
	})

	reviewRepo := reviewpostgres.NewRepository(pg.DB, logger)
	reviews := reviewpanel.NewModule(reviewpanel.Dependencies{
		Reviews:    reviewRepo,
		Roster:     reviewRepo,
		Outbox:     reviewRepo,
		OutboxRepo: reviewRepo,
		Publisher:  bus,
		Clock:      reviewpostgres.SystemClock{},
		IDGen:      reviewpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	debateRepo := debatepostgres.NewRepository(pg.DB, logger)
	debates := debateservice.NewModule(debateservice.Dependencies{
		Arguments:  debateRepo,
		Comments:   debateRepo,
		Likes:      debateRepo,
		Outbox:     debateRepo,
		OutboxRepo: debateRepo,
		Publisher:  bus,
		Clock:      debatepostgres.SystemClock{},
		IDGen:      debatepostgres.UUIDGenerator{},
		Logger:     logger,
	})

	return lifecycle, reviews, debates, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run schedules the outbox relays and the phase sweep on cron specs and
// blocks until the context is cancelled. Relay failures are logged by the
// relays themselves; the next tick retries from the first unpublished row.
func (w *WorkerApp) Run(ctx context.Context) error {
	scheduler := cron.New()

	for i := range w.relays {
		relay := w.relays[i]
		if _, err := scheduler.AddFunc(w.cfg.RelayCronSpec, func() {
			_ = relay.RunOnce(ctx)
		}); err != nil {
			return err
		}
	}
	if _, err := scheduler.AddFunc(w.cfg.SweepCronSpec, func() {
		_ = w.sweep.RunOnce(ctx)
	}); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay_cron", w.cfg.RelayCronSpec,
		"sweep_cron", w.cfg.SweepCronSpec,
	)

	scheduler.Start()
	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
