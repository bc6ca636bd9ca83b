package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	bookHandler "github.com/zhouzirui/z-fairytale/backend/internal/handler/book"
	storyHandler "github.com/zhouzirui/z-fairytale/backend/internal/handler/story"
	middlewarePkg "github.com/zhouzirui/z-fairytale/backend/internal/middleware"
	bookModel "github.com/zhouzirui/z-fairytale/backend/internal/model/book"
	"github.com/zhouzirui/z-fairytale/backend/pkg/utils"
)

// Pinger checks connectivity to the remote storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires HTTP routes to core services. pinger may be nil when storage is unavailable.
func NewRouter(books bookModel.Store, storySvc storyHandler.StoryService, pinger Pinger, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(logger))
	r.Use(middleware.Recoverer)

	pages := storyHandler.New(storySvc, logger)
	pages.RegisterRoutes(r)

	r.Get("/healthz", healthHandler(pinger))

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.CORS)

		bookHandler.New(books, storySvc.Books()).RegisterRoutes(api)
		pages.RegisterAPIRoutes(api)
		storyHandler.NewWebSocketHandler(storySvc, logger).RegisterWebSocketRoutes(api)
	})

	return r
}

func healthHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger == nil {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "storage": "unavailable"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":  "ok",
				"storage": "error",
				"error":   err.Error(),
			})
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "storage": "ok"})
	}
}
