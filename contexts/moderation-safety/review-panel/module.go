package reviewpanel

import (
	"log/slog"

	httpadapter "agora/contexts/moderation-safety/review-panel/adapters/http"
	"agora/contexts/moderation-safety/review-panel/adapters/memory"
	application "agora/contexts/moderation-safety/review-panel/application"
	"agora/contexts/moderation-safety/review-panel/ports"
	sharedoutbox "agora/internal/shared/outbox"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Relay   sharedoutbox.Relay
	Store   *memory.Store
}

type Dependencies struct {
	Reviews    ports.ReviewRepository
	Roster     ports.RosterRepository
	Outbox     ports.OutboxWriter
	OutboxRepo ports.OutboxRepository
	Publisher  ports.EventPublisher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Reviews: deps.Reviews,
		Roster:  deps.Roster,
		Outbox:  deps.Outbox,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
		Relay: sharedoutbox.Relay{
			Module:    "moderation-safety/review-panel",
			Outbox:    deps.OutboxRepo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Reviews:    store,
		Roster:     store,
		Outbox:     store,
		OutboxRepo: store,
		Publisher:  publisher,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
