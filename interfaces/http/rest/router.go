package rest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Jabramco/memebase/infrastructure/di"
	"github.com/Jabramco/memebase/interfaces/http/rest/handlers"
	"github.com/Jabramco/memebase/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container
	logger := c.Logger
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(logger))
	if c.Metrics != nil {
		router.Use(middleware.Metrics(c.Metrics))
	}

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	if c.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", c.Metrics.Handler())
	}
	if c.Images != nil {
		router.Get("/images/*", rt.serveImage)
	}

	maxUpload := c.Config.MaxUploadBytes
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/memes", func(r chi.Router) {
			memeHandler := handlers.NewMemeHandler(c.Memes, maxUpload, logger)
			r.Get("/", memeHandler.ListMemes)
			r.Post("/", memeHandler.UploadMeme)
			r.Delete("/{memeID}", memeHandler.DeleteMeme)

			bulkHandler := handlers.NewBulkHandler(c.Bulk, maxUpload, logger)
			r.Post("/bulk/preview", bulkHandler.Preview)
			r.Post("/bulk", bulkHandler.SaveAll)

			interactionHandler := handlers.NewInteractionHandler(c.Interactions, logger)
			r.Post("/{memeID}/interactions", interactionHandler.RecordInteraction)
			r.Get("/{memeID}/stats", interactionHandler.GetStats)
		})

		r.Get("/champion", handlers.NewChampionHandler(c.Champion, logger).GetChampion)
		r.Get("/titles/suggest", handlers.NewTitleHandler(c.Suggester, logger).Suggest)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// serveImage serves images held by the in-memory object store
func (rt *Router) serveImage(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(chi.URLParam(req, "*"), "/")
	data, contentType, ok := rt.container.Images.Get(path)
	if !ok {
		http.NotFound(w, req)
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(data)
}
