package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tend"
	"github.com/aretw0/tend/internal/logging"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/observability"
	"github.com/aretw0/tend/pkg/observable"
	"github.com/aretw0/tend/pkg/tasks"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// publishTimeout bounds the repository read done after each item mutation.
const publishTimeout = 5 * time.Second

// App is the part of *tend.App served over HTTP.
type App interface {
	Tasks() *tasks.Manager
	Servers() *observable.Store[int]
	Region() string
	Metrics() *observability.Metrics
}

var _ App = (*tend.App)(nil)

// Server exposes an App as a REST API with SSE and WebSocket push.
type Server struct {
	App     App
	Streams *StreamManager

	doc      *openapi3.T
	logger   *slog.Logger
	upgrader websocket.Upgrader
	handler  http.Handler

	snapMu   sync.Mutex
	snapshot []domain.Item

	unsubscribe []func()
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for request errors and stream events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer builds the handler tree and starts forwarding store changes to
// stream clients. Call Close to stop forwarding.
func NewServer(ctx context.Context, app App, opts ...Option) (*Server, error) {
	s := &Server{
		App:    app,
		logger: logging.NewNop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS is open for the whole API
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}
	s.doc = doc

	items, err := app.Tasks().Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	s.snapshot = nonNil(items)

	if err := s.routes(); err != nil {
		return nil, err
	}

	servers := app.Servers()
	serversTok := servers.Subscribe(s.publishServers)
	revision := app.Tasks().Revision()
	revisionTok := revision.Subscribe(s.publishItems)
	s.unsubscribe = []func(){
		func() { servers.Unsubscribe(serversTok) },
		func() { revision.Unsubscribe(revisionTok) },
	}

	return s, nil
}

// NewHandler is NewServer for callers that never need to Close it.
func NewHandler(ctx context.Context, app App, opts ...Option) (http.Handler, error) {
	s, err := NewServer(ctx, app, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops forwarding store changes. Open streams stay connected until their clients leave.
func (s *Server) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

func (s *Server) routes() error {
	validate, err := validateRequests(s.doc, s.logger)
	if err != nil {
		return err
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawOpenAPI)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if m := s.App.Metrics(); m != nil {
		r.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	}
	r.Get("/ws/servers", s.ServersSocket)

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)

		r.Get("/items", s.ListItems)
		r.Post("/items", s.AddItem)
		r.Get("/items/{id}", s.GetItem)
		r.Delete("/items/{id}", s.DeleteItem)
		r.Post("/items/{id}/complete", s.CompleteItem)
		r.Post("/items/{id}/reopen", s.ReopenItem)

		r.Get("/servers", s.GetServers)
		r.Put("/servers", s.SetServers)

		r.Get("/events", s.SubscribeEvents)
	})

	s.handler = enableCORS(r)
	return nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>tend API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "tend-http",
		"version":     strings.TrimSpace(tend.Version),
		"api_version": apiVersion,
	})
}

// ListItems handles the GET /items request.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.App.Tasks().Items(r.Context())
	if err != nil {
		s.writeDomainError(w, "ListItems", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

type newItemRequest struct {
	Name        string `json:"name"`
	IsCompleted bool   `json:"is_completed"`
}

// AddItem handles the POST /items request.
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	var body newItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("AddItem: Invalid request body", "err", err)
		return
	}

	item, err := s.App.Tasks().AddItem(r.Context(), domain.Item{Name: body.Name, IsCompleted: body.IsCompleted})
	if err != nil {
		s.writeDomainError(w, "AddItem", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// GetItem handles the GET /items/{id} request.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}
	item, err := s.App.Tasks().Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, "GetItem", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles the DELETE /items/{id} request.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}
	if err := s.App.Tasks().Remove(r.Context(), id); err != nil {
		s.writeDomainError(w, "DeleteItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteItem handles the POST /items/{id}/complete request.
func (s *Server) CompleteItem(w http.ResponseWriter, r *http.Request) {
	s.setCompleted(w, r, true)
}

// ReopenItem handles the POST /items/{id}/reopen request.
func (s *Server) ReopenItem(w http.ResponseWriter, r *http.Request) {
	s.setCompleted(w, r, false)
}

func (s *Server) setCompleted(w http.ResponseWriter, r *http.Request, completed bool) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}

	mgr := s.App.Tasks()
	op := mgr.Reopen
	if completed {
		op = mgr.Complete
	}
	item, err := op(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, "SetCompleted", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetServers handles the GET /servers request.
func (s *Server) GetServers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.serverStatus(s.App.Servers().Get()))
}

type serverUpdate struct {
	Online *int `json:"online"`
}

// SetServers handles the PUT /servers request.
func (s *Server) SetServers(w http.ResponseWriter, r *http.Request) {
	var body serverUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Online == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: expected {\"online\": n}")
		return
	}

	s.App.Servers().Set(*body.Online)
	writeJSON(w, http.StatusOK, s.serverStatus(s.App.Servers().Get()))
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = TopicServers
	}
	if topic != TopicServers && topic != TopicItems {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown topic %q", topic))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Subscribe before taking the snapshot so no change falls in between.
	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	s.logger.Info("SSE: Client subscribed", "topic", topic)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if snapshot, err := s.snapshotMessage(r.Context(), topic); err != nil {
		s.logger.Warn("SSE: Failed to build snapshot", "topic", topic, "err", err)
	} else {
		fmt.Fprintf(w, "data: %s\n\n", snapshot)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) snapshotMessage(ctx context.Context, topic string) (string, error) {
	var payload any
	switch topic {
	case TopicItems:
		items, err := s.App.Tasks().Items(ctx)
		if err != nil {
			return "", err
		}
		diff := domain.Diff(nil, nonNil(items))
		diff.Revision = s.App.Tasks().Revision().Get()
		payload = diff
	default:
		payload = s.serverStatus(s.App.Servers().Get())
	}

	data, err := json.Marshal(payload)
	return string(data), err
}

func (s *Server) publishServers() {
	data, err := json.Marshal(s.serverStatus(s.App.Servers().Get()))
	if err != nil {
		s.logger.Error("Failed to encode server status", "err", err)
		return
	}
	s.Streams.Broadcast(TopicServers, string(data))
}

// publishItems broadcasts what changed since the last published snapshot.
func (s *Server) publishItems() {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	items, err := s.App.Tasks().Items(ctx)
	if err != nil {
		s.logger.Error("Failed to reload items after mutation", "err", err)
		return
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	diff := domain.Diff(s.snapshot, nonNil(items))
	s.snapshot = nonNil(items)
	if diff == nil {
		s.logger.Debug("Items: No diff calculated")
		return
	}
	diff.Revision = s.App.Tasks().Revision().Get()

	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("Failed to encode items diff", "err", err)
		return
	}
	s.Streams.Broadcast(TopicItems, string(data))
}

func (s *Server) serverStatus(online int) domain.ServerStatus {
	return domain.ServerStatus{Region: s.App.Region(), Online: online}
}

// -- Helpers --

func (s *Server) itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < domain.FirstID {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid item id %q", raw))
		return 0, false
	}
	return id, true
}

func (s *Server) writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmptyName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s error: %v", op, err))
		s.logger.Error(op+" failed", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func nonNil(items []domain.Item) []domain.Item {
	if items == nil {
		return []domain.Item{}
	}
	return items
}
