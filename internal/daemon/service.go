// Package daemon keeps the number fresh in the background and mirrors it over
// a read-only HTTP/SSE API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/service"
)

// Event types.
const (
	EventSnapshot    = "snapshot"
	EventNumberDelta = "number_delta"
	EventRollover    = "rollover"
)

// NumberSource computes the current number. *service.Service implements it.
type NumberSource interface {
	Number(ctx context.Context) (model.BudgetNumber, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	Location     *time.Location
	DBPath       string
}

// Snapshot is the compact state carried by events.
type Snapshot struct {
	At             time.Time `json:"at"`
	Configured     bool      `json:"configured"`
	TheNumber      float64   `json:"the_number"`
	TodaySpending  float64   `json:"today_spending"`
	RemainingToday float64   `json:"remaining_today"`
	IsOverBudget   bool      `json:"is_over_budget"`
	DaysRemaining  float64   `json:"days_remaining"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	TheNumber         float64 `json:"the_number"`
	TodaySpending     float64 `json:"today_spending"`
	RemainingToday    float64 `json:"remaining_today"`
	OverBudgetChanged bool    `json:"over_budget_changed,omitempty"`
	ConfiguredChanged bool    `json:"configured_changed,omitempty"`
}

// Values within half a cent count as unchanged.
const centEpsilon = 0.005

func (d Delta) isZero() bool {
	return math.Abs(d.TheNumber) < centEpsilon &&
		math.Abs(d.TodaySpending) < centEpsilon &&
		math.Abs(d.RemainingToday) < centEpsilon &&
		!d.OverBudgetChanged &&
		!d.ConfiguredChanged
}

// Event is emitted whenever the number changes or the day rolls over.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path,omitempty"`
	Timezone        string    `json:"timezone"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	source NumberSource
	log    logrus.FieldLogger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	number      model.BudgetNumber
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service reading from source.
func New(cfg Config, source NumberSource, log logrus.FieldLogger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if log == nil {
		quiet := logrus.New()
		quiet.SetLevel(logrus.PanicLevel)
		log = quiet
	}

	return &Service{
		cfg:       cfg,
		source:    source,
		log:       log.WithField("component", "daemon"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the read-only HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/number", s.handleNumber)
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Run serves the API and recomputes the number on the interval and at every
// local midnight until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	c, err := s.scheduler(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx, "")

	c.Start()
	defer c.Stop()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// scheduler registers the interval refresh and the midnight rollover.
func (s *Service) scheduler(ctx context.Context) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.cfg.Location))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.cfg.Interval), func() { s.pollOnce(ctx, "") }); err != nil {
		return nil, fmt.Errorf("scheduling refresh: %w", err)
	}
	if _, err := c.AddFunc("0 0 * * *", func() { s.pollOnce(ctx, EventRollover) }); err != nil {
		return nil, fmt.Errorf("scheduling rollover: %w", err)
	}
	return c, nil
}

// pollOnce recomputes the number. A non-empty force publishes an event of
// that type even when nothing changed.
func (s *Service) pollOnce(ctx context.Context, force string) {
	now := time.Now()
	n, err := s.source.Number(ctx)

	var snap Snapshot
	switch {
	case err == nil:
		snap = snapshotFromNumber(n, now)
	case errors.Is(err, service.ErrNotConfigured):
		snap = Snapshot{At: now}
	default:
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("poll failed")
		return
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.number = n
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	if !snap.Configured {
		s.lastError = service.ErrNotConfigured.Error()
	}

	delta := diffSnapshots(prev, snap)
	evType := ""
	switch {
	case force != "":
		evType = force
	case !prevExists:
		evType = EventSnapshot
		delta = Delta{}
	case !delta.isZero():
		evType = EventNumberDelta
	}
	if evType != "" {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      evType,
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.WithFields(logrus.Fields{"event": ev.Type, "the_number": snap.TheNumber}).Debug("publishing")
		s.publishEvent(ev)
	}
}

func snapshotFromNumber(n model.BudgetNumber, at time.Time) Snapshot {
	return Snapshot{
		At:             at,
		Configured:     true,
		TheNumber:      n.TheNumber,
		TodaySpending:  n.TodaySpending,
		RemainingToday: n.RemainingToday,
		IsOverBudget:   n.IsOverBudget,
		DaysRemaining:  n.DaysRemaining,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		TheNumber:         curr.TheNumber - prev.TheNumber,
		TodaySpending:     curr.TodaySpending - prev.TodaySpending,
		RemainingToday:    curr.RemainingToday - prev.RemainingToday,
		OverBudgetChanged: curr.IsOverBudget != prev.IsOverBudget,
		ConfiguredChanged: curr.Configured != prev.Configured,
	}
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
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Timezone:        s.cfg.Location.String(),
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleNumber(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	n, snap, ok := s.number, s.snapshot, s.hasSnapshot
	s.mu.RUnlock()

	switch {
	case !ok:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "not computed yet"})
	case !snap.Configured:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": service.ErrNotConfigured.Error()})
	default:
		writeJSON(w, http.StatusOK, n)
	}
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

	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
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
