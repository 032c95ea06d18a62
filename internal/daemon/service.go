// Package daemon provides the long-running HTTP API service behind `pmx serve`.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/genai"
	"github.com/theirongolddev/pmx/internal/store"
)

// Config controls the service runtime behavior.
type Config struct {
	Addr         string
	Owner        string // used when a request carries no X-PMX-Owner header
	StoreDriver  string
	EventsBuffer int
	Clock        clock.Clock
	Logger       *slog.Logger
}

// Event is emitted whenever a project record changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Owner     string    `json:"owner,omitempty"`
	ProjectID string    `json:"project_id,omitempty"`
	Name      string    `json:"name,omitempty"`
}

// Event types.
const (
	EventProjectSaved   = "project_saved"
	EventProjectDeleted = "project_deleted"
	EventNoteSaved      = "note_saved"
	eventHello          = "hello"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Addr            string    `json:"addr"`
	StoreDriver     string    `json:"store_driver"`
	Model           string    `json:"model,omitempty"`
	LLMConfigured   bool      `json:"llm_configured"`
	RequestCount    int64     `json:"request_count"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the HTTP API.
type Service struct {
	cfg   Config
	store store.Store
	llm   *genai.Client
	log   *slog.Logger
	clock clock.Clock

	mu           sync.RWMutex
	startedAt    time.Time
	requestCount int64
	lastError    string
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service over st. llm may be nil, in which case the LLM
// endpoints answer 500.
func New(cfg Config, st store.Store, llm *genai.Client) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Owner == "" {
		cfg.Owner = "local"
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		llm:       llm,
		log:       cfg.Logger,
		clock:     cfg.Clock,
		startedAt: cfg.Clock.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the routed, request-logging handler.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)

	mux.HandleFunc("/api/assistant", postOnly(s.handleAssistant))
	mux.HandleFunc("/api/extract-pdf", postOnly(s.handleExtract))
	mux.HandleFunc("/api/generate-charter", postOnly(s.handleGenerateCharter))

	mux.HandleFunc("GET /api/projects", s.handleProjectList)
	mux.HandleFunc("POST /api/projects", s.handleProjectCreate)
	mux.HandleFunc("GET /api/projects/{id}", s.handleProjectGet)
	mux.HandleFunc("PUT /api/projects/{id}", s.handleProjectUpdate)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleProjectDelete)

	mux.HandleFunc("GET /api/notes", s.handleNoteGet)
	mux.HandleFunc("PUT /api/notes", s.handleNotePut)

	return s.logRequests(mux)
}

// Run serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("pmx api listening", "addr", s.cfg.Addr, "store", s.cfg.StoreDriver, "llm", s.llm != nil)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("pmx http server: %w", err)
	}
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}

func (s *Service) publish(typ, owner, projectID, name string) {
	s.mu.Lock()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: s.clock.Now(),
		Owner:     owner,
		ProjectID: projectID,
		Name:      name,
	}
	s.mu.Unlock()
	s.publishEvent(ev)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		StoreDriver:     s.cfg.StoreDriver,
		Model:           s.llm.Model(),
		LLMConfigured:   s.llm != nil,
		RequestCount:    s.requestCount,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, Event{Type: eventHello, Timestamp: s.clock.Now()})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.mu.Lock()
		s.requestCount++
		s.mu.Unlock()

		level := slog.LevelInfo
		if rec.status >= 500 {
			level = slog.LevelWarn
		}
		s.log.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
