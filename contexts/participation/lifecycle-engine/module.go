package lifecycleengine

import (
	"log/slog"

	httpadapter "agora/contexts/participation/lifecycle-engine/adapters/http"
	"agora/contexts/participation/lifecycle-engine/adapters/memory"
	application "agora/contexts/participation/lifecycle-engine/application"
	"agora/contexts/participation/lifecycle-engine/application/commands"
	"agora/contexts/participation/lifecycle-engine/application/queries"
	"agora/contexts/participation/lifecycle-engine/application/workers"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	"agora/contexts/participation/lifecycle-engine/ports"
	sharedoutbox "agora/internal/shared/outbox"
)

type Module struct {
	Handler    httpadapter.Handler
	Relay      sharedoutbox.Relay
	PhaseSweep workers.PhaseSweep
	Store      *memory.Store
}

type Dependencies struct {
	Proposals  ports.ProposalRepository
	Supporters ports.SupporterRepository
	Votes      ports.VoteRepository
	Quorums    ports.QuorumRepository
	Moderation ports.ModerationProjection
	Outbox     ports.OutboxWriter
	OutboxRepo ports.OutboxRepository
	Publisher  ports.EventPublisher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Config     entities.LifecycleConfig
	Schema     entities.FieldSchema
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	loader := application.SnapshotLoader{
		Proposals:  deps.Proposals,
		Supporters: deps.Supporters,
		Quorums:    deps.Quorums,
		Moderation: deps.Moderation,
		Clock:      deps.Clock,
		Config:     deps.Config,
		Schema:     deps.Schema,
	}
	proposalUseCase := commands.ProposalUseCase{
		Proposals:  deps.Proposals,
		Supporters: deps.Supporters,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Schema:     deps.Schema,
		Logger:     deps.Logger,
	}
	advanceUseCase := commands.AdvanceUseCase{
		Loader:     loader,
		Proposals:  deps.Proposals,
		Supporters: deps.Supporters,
		Votes:      deps.Votes,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Config:     deps.Config,
		Logger:     deps.Logger,
	}
	supportUseCase := commands.SupportUseCase{
		Proposals:  deps.Proposals,
		Supporters: deps.Supporters,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Proposals: deps.Proposals,
		Votes:     deps.Votes,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Config:    deps.Config,
		Logger:    deps.Logger,
	}
	quorumUseCase := commands.QuorumUseCase{
		Quorums: deps.Quorums,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Proposals: proposalUseCase,
			Advance:   advanceUseCase,
			Support:   supportUseCase,
			Votes:     voteUseCase,
			Quorums:   quorumUseCase,
			Status: queries.StatusQuery{
				Loader: loader,
				Config: deps.Config,
			},
			Tallies: queries.TallyQuery{
				Proposals: deps.Proposals,
				Votes:     deps.Votes,
			},
			Supports: queries.SupportQuery{
				Supporters: deps.Supporters,
				Quorums:    deps.Quorums,
			},
			Logger: deps.Logger,
		},
		Relay: sharedoutbox.Relay{
			Module:    "participation/lifecycle-engine",
			Outbox:    deps.OutboxRepo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		PhaseSweep: workers.PhaseSweep{
			Proposals: deps.Proposals,
			Loader:    loader,
			Advance:   advanceUseCase,
			Config:    deps.Config,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Proposals:  store,
		Supporters: store,
		Votes:      store,
		Quorums:    store,
		Moderation: store,
		Outbox:     store,
		OutboxRepo: store,
		Publisher:  publisher,
		Clock:      store,
		IDGen:      store,
		Config:     entities.DefaultLifecycleConfig(),
		Schema:     entities.DefaultFieldSchema(),
		Logger:     logger,
	})
	module.Store = store
	return module
}
