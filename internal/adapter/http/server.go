package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/case-map-service/internal/view"
	"github.com/couchcryptid/case-map-service/internal/view/mapview"
	"github.com/couchcryptid/case-map-service/internal/view/rank"
	"github.com/couchcryptid/case-map-service/internal/view/syncview"
)

// Deps are the components behind the API routes.
type Deps struct {
	Ready    sharedobs.ReadinessChecker
	Data     DataProvider
	Views    *view.Registry
	Map      *mapview.MapView
	Animator *mapview.Animator
	Rank     *rank.Rank
	Sync     *syncview.SyncView
	Client   ClientConfig
}

// ClientConfig is handed to the browser client as-is.
type ClientConfig struct {
	Mode        string `json:"mode"`
	Fragment    string `json:"fragment"`
	MapboxToken string `json:"mapboxToken,omitempty"`
}

// Server exposes health, readiness, metrics, and the view API.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health and API routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/config", s.handleClientConfig)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/dates", s.handleDates)
	mux.HandleFunc("GET /api/countries", s.handleCountries)
	mux.HandleFunc("GET /api/countries/{code}", s.handleCountry)
	mux.HandleFunc("GET /api/graph", s.handleGraph)

	mux.HandleFunc("GET /api/views", s.handleViews)
	mux.HandleFunc("POST /api/views/{id}", s.handleActivateView)
	mux.HandleFunc("POST /api/theme", s.handleTheme)

	mux.HandleFunc("GET /api/map/scene", s.handleMapScene)
	mux.HandleFunc("POST /api/map/date/{date}", s.handleMapDate)
	mux.HandleFunc("POST /api/map/style", s.handleMapStyle)
	mux.HandleFunc("POST /api/map/fly/{code}", s.handleMapFly)
	mux.HandleFunc("GET /api/map/popup", s.handleMapPopup)
	mux.HandleFunc("GET /api/map/legend", s.handleMapLegend)
	mux.HandleFunc("POST /api/map/animate", s.handleMapAnimate)

	mux.HandleFunc("GET /api/rank", s.handleRank)
	mux.HandleFunc("POST /api/rank/scroll", s.handleRankScroll)
	mux.HandleFunc("GET /api/sync", s.handleSync)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
