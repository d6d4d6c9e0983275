// Package server runs the EventHubX daemon: an HTTP service that renders
// entity tables as HTML fragments from the gateway cache, alongside status
// and Prometheus metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eventhubx/eventhubx/internal/gateway"
	"github.com/eventhubx/eventhubx/internal/match"
	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/storage"
	"github.com/eventhubx/eventhubx/internal/view"
	"github.com/eventhubx/eventhubx/internal/viewstate"
)

// Server is the daemon. View state arrives per request as query parameters
// layered over each entity's persisted store, so concurrent clients never
// share a mutable cursor.
type Server struct {
	gw     *gateway.Gateway
	store  storage.Store
	engine *view.Engine
	states map[record.EntityType]*viewstate.Store
	logger *zap.Logger

	mux    *http.ServeMux
	server *http.Server

	reqTotal    *prometheus.CounterVec
	renderDur   prometheus.Summary
	cacheHits   prometheus.GaugeFunc
	cacheMisses prometheus.GaugeFunc
}

// New wires the daemon. states supplies the persisted per-entity defaults.
func New(addr string, gw *gateway.Gateway, store storage.Store, engine *view.Engine, states map[record.EntityType]*viewstate.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		gw:     gw,
		store:  store,
		engine: engine,
		states: states,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	registry := prometheus.NewRegistry()
	s.reqTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventhubx",
		Name:      "requests_total",
		Help:      "Number of table requests by entity and status",
	}, []string{"entity", "status"})
	s.renderDur = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "eventhubx",
		Name:      "render_duration_seconds",
		Help:      "Time spent building and rendering tables",
	})
	s.cacheHits = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "eventhubx",
		Name:      "gateway_cache_hits",
		Help:      "Cumulative gateway cache hits",
	}, func() float64 { hits, _ := gw.Counters(); return float64(hits) })
	s.cacheMisses = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "eventhubx",
		Name:      "gateway_cache_misses",
		Help:      "Cumulative gateway cache misses",
	}, func() float64 { _, misses := gw.Counters(); return float64(misses) })
	registry.MustRegister(s.reqTotal, s.renderDur, s.cacheHits, s.cacheMisses)

	s.mux.HandleFunc("GET /tables/{entity}", s.handleTable)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("POST /refresh/{scope}", s.handleRefresh)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the routing mux for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("daemon listening", zap.String("addr", s.server.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestState layers query parameters over the entity's persisted state.
func (s *Server) requestState(entity record.EntityType, r *http.Request) viewstate.State {
	var state viewstate.State
	if st, ok := s.states[entity.Base()]; ok {
		state = st.State()
	} else {
		state = view.DefaultState(entity, 25)
	}

	q := r.URL.Query()
	if tab := q.Get("tab"); tab != "" {
		state.FilterTab = tab
	}
	if sortCol := q.Get("sort"); sortCol != "" {
		state.SortColumn = sortCol
	}
	if dir := q.Get("dir"); dir == string(viewstate.Desc) {
		state.SortDirection = viewstate.Desc
	} else if dir == string(viewstate.Asc) {
		state.SortDirection = viewstate.Asc
	}
	if search := q.Get("q"); search != "" {
		state.SearchQuery = search
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page >= 1 {
		state.CurrentPage = page
	}
	if size, err := strconv.Atoi(q.Get("size")); err == nil && size >= 1 {
		state.PageSize = size
	}
	return state
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { s.renderDur.Observe(time.Since(start).Seconds()) }()

	entity := record.EntityType(r.PathValue("entity"))
	if !entity.Valid() || entity == record.Projects {
		s.reqTotal.WithLabelValues(string(entity), "bad_request").Inc()
		http.Error(w, "unknown entity type", http.StatusBadRequest)
		return
	}

	scope := record.Scope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = record.ScopeAll
	}

	state := s.requestState(entity, r)
	if !view.ValidTab(entity, state.FilterTab) {
		s.reqTotal.WithLabelValues(string(entity), "bad_request").Inc()
		http.Error(w, "unknown filter tab", http.StatusBadRequest)
		return
	}

	records := s.gw.Fetch(r.Context(), scope, entity)

	// Events carry the project-tracker cross-reference, joined by fuzzy
	// name match on a per-request engine copy so concurrent requests never
	// share mutable candidates.
	engine := s.engine
	if entity.Base() == record.Events {
		candidates := s.gw.Fetch(r.Context(), record.ScopeAll, record.Projects)
		if len(candidates) > 0 {
			engine = engine.WithXRef(&view.XRef{Matcher: match.Substring{}, Candidates: candidates})
		}
	}

	table := engine.Build(entity, records, state)

	html, err := view.HTML(table)
	if err != nil {
		s.reqTotal.WithLabelValues(string(entity), "error").Inc()
		s.logger.Error("render failed", zap.String("entity", string(entity)), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	s.reqTotal.WithLabelValues(string(entity), "ok").Inc()
	s.logger.Debug("table rendered",
		zap.String("entity", string(entity)),
		zap.String("scope", string(scope)),
		zap.Int("rows", len(table.Rows)),
		zap.Int("matching", table.TotalFiltered))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, html)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}

	hits, misses := s.gw.Counters()
	out := map[string]any{
		"events":       stats.Events,
		"subpage_rows": stats.SubpageRows,
		"records":      stats.Records,
		"last_updated": stats.LastUpdated.UTC().Format(time.RFC3339),
		"cache_hits":   hits,
		"cache_misses": misses,
		"per_type":     stats.PerType,
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// handleRefresh evicts the gateway cache for one scope ("all" drops
// everything), forcing the next read through the mirror.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	scope := record.Scope(r.PathValue("scope"))
	if scope == record.ScopeAll {
		s.gw.InvalidateAll()
	} else {
		s.gw.Invalidate(scope)
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"status":"refreshed"}`))
}
