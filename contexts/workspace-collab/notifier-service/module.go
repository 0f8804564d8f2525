package notifierservice

import (
	"log/slog"

	httpadapter "herald/contexts/workspace-collab/notifier-service/adapters/http"
	"herald/contexts/workspace-collab/notifier-service/adapters/memory"
	"herald/contexts/workspace-collab/notifier-service/application"
	"herald/contexts/workspace-collab/notifier-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Documents     ports.DocumentStore
	Collections   ports.CollectionStore
	Teams         ports.TeamStore
	Subscriptions ports.SubscriptionStore
	Access        ports.AccessStore
	Views         ports.ViewStore
	Dispatcher    ports.Dispatcher
	Concurrency   int
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Documents:     deps.Documents,
		Collections:   deps.Collections,
		Teams:         deps.Teams,
		Subscriptions: deps.Subscriptions,
		Access:        deps.Access,
		Views:         deps.Views,
		Dispatcher:    deps.Dispatcher,
		Concurrency:   deps.Concurrency,
		Logger:        deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Documents:     store,
		Collections:   store,
		Teams:         store,
		Subscriptions: store,
		Access:        store,
		Views:         store,
		Dispatcher:    store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
