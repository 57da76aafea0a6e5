package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/errors"
	"github.com/manvi18ux/assistive-har-system/internal/logger"
)

const logsReadLimit = 100

// LogReader reads back entries from the durable alert log.
type LogReader interface {
	Read(limit int) ([]json.RawMessage, error)
}

// ServerConfig wires the HTTP surface to its collaborators. OnActivity
// and OnEvent are optional hooks into the tracker and dispatcher for
// classifier processes that talk to the daemon over HTTP.
type ServerConfig struct {
	ListenAddress string
	OnActivity    func(activity string, now time.Time)
	OnEvent       func(event alert.Event) bool
	Logs          LogReader
	StatsPath     string
}

// Server exposes the telemetry store over HTTP.
type Server struct {
	store *Store
	cfg   ServerConfig
	http  *http.Server
}

func NewServer(store *Store, cfg ServerConfig) *Server {
	s := &Server{store: store, cfg: cfg}
	s.http = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the route table; exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/alert", s.handleAlert)
	mux.HandleFunc("/api/event", s.handleEvent)
	mux.HandleFunc("/api/activity", s.handleActivity)
	mux.HandleFunc("/api/activity_duration", s.handleActivityDuration)
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/api/stats", s.handleStats)

	return mux
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		logger.Info().Str("address", s.cfg.ListenAddress).Msg("Telemetry server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithCode(errors.New().Wrap(ErrServerStart, err)).Send()
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return errors.New().Wrap(ErrServerShutdown, err)
	}

	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// eventPayload is the wire form of an inbound alert. Speak is a pointer
// so an absent field keeps its default of true.
type eventPayload struct {
	ID          string `json:"id"`
	Kind        string `json:"type"`
	Message     string `json:"message"`
	Priority    string `json:"priority"`
	CooldownKey string `json:"cooldown_key"`
	Cooldown    int    `json:"cooldown"`
	Speak       *bool  `json:"speak"`
}

func (p eventPayload) toEvent() (alert.Event, bool) {
	if p.Kind == "" || p.Message == "" || p.Cooldown < 0 {
		return alert.Event{}, false
	}

	priority := alert.Priority(p.Priority)
	if p.Priority == "" {
		priority = alert.PriorityNormal
	} else if !priority.IsValid() {
		return alert.Event{}, false
	}

	event := alert.NewEvent(p.Kind, p.Message, priority, p.Cooldown)
	if p.ID != "" {
		event.ID = p.ID
	}
	if p.CooldownKey != "" {
		event = event.WithCooldownKey(p.CooldownKey)
	}
	if p.Speak != nil {
		event = event.WithSpeak(*p.Speak)
	}

	return event, true
}

func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	event, ok := payload.toEvent()
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid alert fields")
		return
	}

	s.store.RecordAlert(event)
	writeSuccess(w)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.cfg.OnEvent == nil {
		writeError(w, http.StatusServiceUnavailable, "event ingest not configured")
		return
	}

	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	event, ok := payload.toEvent()
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid alert fields")
		return
	}

	accepted := s.cfg.OnEvent(event)
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "accepted": accepted})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload struct {
		Activity string `json:"activity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Activity == "" {
		writeError(w, http.StatusBadRequest, "activity is required")
		return
	}

	now := time.Now()
	s.store.RecordActivity(payload.Activity, now)
	if s.cfg.OnActivity != nil {
		s.cfg.OnActivity(payload.Activity, now)
	}

	writeSuccess(w)
}

func (s *Server) handleActivityDuration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var update DurationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.store.RecordActivityDuration(update)
	writeSuccess(w)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := []json.RawMessage{}
	if s.cfg.Logs != nil {
		read, err := s.cfg.Logs.Read(logsReadLimit)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read alert log")
		} else if read != nil {
			entries = read
		}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if s.cfg.StatsPath == "" {
		w.Write([]byte("{}"))
		return
	}

	data, err := os.ReadFile(s.cfg.StatsPath)
	if err != nil || !json.Valid(data) {
		w.Write([]byte("{}"))
		return
	}
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"status": "error", "message": message})
}
