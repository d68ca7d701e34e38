package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dzenfone819-debug/neko-finance/internal/handlers"
	"github.com/dzenfone819-debug/neko-finance/internal/middleware"
)

// NewRouter mounts the backup API behind auth. /health stays public.
func NewRouter(deps *handlers.Deps, auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Heartbeat("/health"))

	bh := handlers.NewBackupHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Mount("/backup", bh.BackupRoutes())
	})
	return r
}
