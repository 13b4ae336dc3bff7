package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"corpusqa/internal/handlers"
	"corpusqa/internal/rag"
	"corpusqa/internal/storage"
	"corpusqa/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB            *sql.DB
	Vectors       vectorstore.VectorStore
	Tenants       handlers.TenantManager
	Pipeline      handlers.Ingestor
	Engine        rag.Engine
	Conversations storage.ConversationStore
}

// NewRouter creates the API router.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(CORS)

	tenantHandler := handlers.NewTenantHandler(deps.Tenants)
	documentHandler := handlers.NewDocumentHandler(deps.Tenants, deps.Pipeline)
	askHandler := handlers.NewAskHandler(deps.Engine)
	conversationHandler := handlers.NewConversationHandler(deps.Tenants, deps.Conversations)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Vectors, deps.Pipeline)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", tenantHandler.List)
			r.Post("/", tenantHandler.Create)

			r.Route("/{tenant}", func(r chi.Router) {
				r.Delete("/", tenantHandler.Delete)
				r.Get("/stats", tenantHandler.Stats)
				r.Post("/documents", documentHandler.Upload)
				r.Post("/segments", documentHandler.IngestSegments)
				r.Method(http.MethodPost, "/ask", askHandler)
				r.Get("/conversations", conversationHandler.List)
				r.Delete("/conversations", conversationHandler.Clear)
			})
		})
	})

	return r
}
