package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/seckatie/linkhoard/internal/core"
	"github.com/seckatie/linkhoard/internal/core/db"
	"go.uber.org/zap"
)

type Server struct {
	db        *db.DB
	enricher  *core.Enricher
	log       *zap.Logger
	jwtSecret []byte
}

// StartServer builds the router and serves until the listener fails.
func StartServer(addr string, database *db.DB, enricher *core.Enricher, jwtSecret string, log *zap.Logger) {
	ws := NewServer(database, enricher, jwtSecret, log)

	log.Info("starting web server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, ws.Router()); err != nil {
		log.Fatal("web server failed", zap.Error(err))
	}
}

func NewServer(database *db.DB, enricher *core.Enricher, jwtSecret string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		db:        database,
		enricher:  enricher,
		log:       log,
		jwtSecret: []byte(jwtSecret),
	}
}

// Router assembles the HTTP API. Everything under /api requires a verified
// owner identity; /healthz does not.
func (ws *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(ws.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", ws.handleHealthz)

	r.Route("/api", func(api chi.Router) {
		api.Use(ws.authMiddleware)

		api.Route("/bookmarks", func(b chi.Router) {
			b.Get("/", ws.listBookmarks)
			b.Post("/", ws.createBookmark)
			b.Get("/search", ws.searchBookmarks)
			b.Put("/reorder", ws.reorderBookmarks)
			b.Delete("/{id}", ws.deleteBookmark)
			b.Patch("/{id}/tags", ws.updateTags)
			b.Post("/{id}/refresh", ws.refreshBookmark)
		})

		api.Get("/analytics", ws.handleAnalytics)
	})

	return r
}

func (ws *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	ws.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (ws *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		ws.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
