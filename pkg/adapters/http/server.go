package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/lookahead"
	"github.com/aretw0/lookahead/internal/presentation/graph"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/fleet"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/trade"
)

// Server exposes a fleet of planning agents over HTTP.
type Server struct {
	Fleet   *fleet.Fleet
	Streams *StreamManager
	Logger  *slog.Logger

	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics serves the gatherer's metrics on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// PriceUpdate is the body of PUT /stations/{station}/goods/{good}.
type PriceUpdate struct {
	SellPrice int64 `json:"sell_price"`
	BuyPrice  int64 `json:"buy_price"`
}

// StepResponse pairs an executed step with the merchant's resource changes.
type StepResponse struct {
	Step *runner.StepResult `json:"step"`
	Diff *trade.StateDiff   `json:"diff,omitempty"`
}

// TreeResponse is the JSON form of GET /agents/{id}/tree.
type TreeResponse struct {
	Nodes int           `json:"nodes"`
	Depth int           `json:"depth"`
	Edges []domain.Edge `json:"edges"`
	Plan  []string      `json:"plan,omitempty"`
	Gain  float64       `json:"gain"`
}

// NewHandler creates the HTTP handler for a fleet.
func NewHandler(f *fleet.Fleet, opts ...Option) http.Handler {
	return NewServer(f, opts...).Routes()
}

// NewServer creates a Server for a fleet.
func NewServer(f *fleet.Fleet, opts ...Option) *Server {
	s := &Server{
		Fleet:   f,
		Streams: NewStreamManager(),
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the router. Requests are checked against the embedded
// OpenAPI description before they reach a handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)
	if router, err := openAPIRouter(); err != nil {
		s.Logger.Error("request validation disabled", "err", err)
	} else {
		r.Use(s.validateRequests(router))
	}

	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/agents", s.ListAgents)
	r.Route("/agents/{id}", func(r chi.Router) {
		r.Get("/", s.GetAgent)
		r.Get("/plan", s.GetPlan)
		r.Post("/plan", s.Replan)
		r.Post("/step", s.Step)
		r.Get("/tree", s.GetTree)
	})
	r.Put("/stations/{station}/goods/{good}", s.PutPrices)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":      "lookahead-http",
		"version":  strings.TrimSpace(lookahead.Version),
		"agents":   len(s.Fleet.Agents()),
		"stations": s.Fleet.World.Stations(),
	})
}

// ListAgents handles GET /agents.
func (s *Server) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents := make([]fleet.MerchantView, 0)
	for _, id := range s.Fleet.Agents() {
		m, err := s.Fleet.Merchant(id)
		if err != nil {
			s.fail(w, "ListAgents", err)
			return
		}
		agents = append(agents, m)
	}
	s.writeJSON(w, http.StatusOK, agents)
}

// GetAgent handles GET /agents/{id}.
func (s *Server) GetAgent(w http.ResponseWriter, r *http.Request) {
	m, err := s.Fleet.Merchant(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetAgent", err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// GetPlan handles GET /agents/{id}/plan.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	view, err := s.Fleet.Plan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetPlan", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// Replan handles POST /agents/{id}/plan.
func (s *Server) Replan(w http.ResponseWriter, r *http.Request) {
	view, err := s.Fleet.Replan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Replan", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

// Step handles POST /agents/{id}/step.
func (s *Server) Step(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")
	res, diff, err := s.Fleet.Step(r.Context(), agentID)
	if err != nil {
		s.fail(w, "Step", err)
		return
	}

	if diff != nil && !diff.IsEmpty() {
		s.Logger.Debug("Step: Diff calculated", "diff", diff, "agent", agentID)
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(agentID, string(bytes))
		}
	}
	s.writeJSON(w, http.StatusOK, StepResponse{Step: res, Diff: diff})
}

// GetTree handles GET /agents/{id}/tree. With ?format=mermaid the tree is
// rendered as a Mermaid flowchart with the selected path highlighted.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, plan, err := s.Fleet.Tree(r.Context(), chi.URLParam(r, "id"))
	if err != nil && tree == nil {
		s.fail(w, "GetTree", err)
		return
	}

	if r.URL.Query().Get("format") == "mermaid" {
		var overlay *graph.GraphOverlay
		if plan != nil {
			overlay = graph.NewOverlay(tree.Path(tree.Node(plan.Target)))
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, graph.GenerateMermaid(tree.Nodes(), overlay))
		return
	}

	resp := TreeResponse{
		Nodes: tree.Len(),
		Depth: tree.Depth(),
		Edges: tree.Edges(),
	}
	if plan != nil {
		resp.Gain = plan.Gain
		for _, a := range plan.Actions {
			resp.Plan = append(resp.Plan, domain.Label(a))
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// PutPrices handles PUT /stations/{station}/goods/{good}.
func (s *Server) PutPrices(w http.ResponseWriter, r *http.Request) {
	var body PriceUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("PutPrices: Invalid request body", "err", err)
		return
	}

	station, good := chi.URLParam(r, "station"), chi.URLParam(r, "good")
	if err := s.Fleet.SetPrices(station, good, body.SellPrice, body.BuyPrice); err != nil {
		http.Error(w, fmt.Sprintf("Price update rejected: %v", err), http.StatusBadRequest)
		s.Logger.Warn("PutPrices: rejected", "err", err, "station", station, "good", good)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"version": s.Fleet.World.Version()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAgentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrPlanExhausted), errors.Is(err, domain.ErrActionNotApplicable):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNoPlan):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // AgentID -> Set of Channels
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a listener for an agent. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(agentID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[agentID]; !ok {
		sm.subscribers[agentID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[agentID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[agentID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, agentID)
			}
		}
	}
}

// Subscribers returns the number of listeners of an agent.
func (sm *StreamManager) Subscribers(agentID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[agentID])
}

// Broadcast sends msg to every listener of an agent without blocking.
func (sm *StreamManager) Broadcast(agentID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[agentID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "agent", agentID)
		}
	}
}

// SubscribeEvents handles GET /events?agent_id=...&watch=location,money,stock
// and streams the merchant's state diffs as server-sent events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		http.Error(w, "agent_id is required", http.StatusBadRequest)
		return
	}
	if _, err := s.Fleet.Merchant(agentID); err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(agentID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func watched(msg string, fields []string) bool {
	var diff trade.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "location":
			if diff.Location != nil {
				return true
			}
		case "money":
			if diff.MoneyDelta != 0 {
				return true
			}
		case "stock":
			if len(diff.StockDelta) > 0 {
				return true
			}
		}
	}
	return false
}
