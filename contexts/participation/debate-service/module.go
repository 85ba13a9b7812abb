package debateservice

import (
	"log/slog"

	httpadapter "agora/contexts/participation/debate-service/adapters/http"
	"agora/contexts/participation/debate-service/adapters/memory"
	application "agora/contexts/participation/debate-service/application"
	"agora/contexts/participation/debate-service/ports"
	sharedoutbox "agora/internal/shared/outbox"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Relay   sharedoutbox.Relay
	Store   *memory.Store
}

type Dependencies struct {
	Arguments  ports.ArgumentRepository
	Comments   ports.CommentRepository
	Likes      ports.LikeRepository
	Outbox     ports.OutboxWriter
	OutboxRepo ports.OutboxRepository
	Publisher  ports.EventPublisher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Arguments: deps.Arguments,
		Comments:  deps.Comments,
		Likes:     deps.Likes,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
		Relay: sharedoutbox.Relay{
			Module:    "participation/debate-service",
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
		Arguments:  store,
		Comments:   store,
		Likes:      store,
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
