package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/service"
)

type stubSource struct {
	mu  sync.Mutex
	n   model.BudgetNumber
	err error
}

func (s *stubSource) Number(context.Context) (model.BudgetNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n, s.err
}

func (s *stubSource) set(n model.BudgetNumber, err error) {
	s.mu.Lock()
	s.n, s.err = n, err
	s.mu.Unlock()
}

func newTestDaemon(src NumberSource, buffer int) *Service {
	return New(Config{Interval: 10 * time.Second, EventsBuffer: buffer, Location: time.UTC}, src, nil)
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Configured: true, TheNumber: 66.67, TodaySpending: 10, RemainingToday: 56.67}
	curr := Snapshot{Configured: true, TheNumber: 66.67, TodaySpending: 80, RemainingToday: -13.33, IsOverBudget: true}

	delta := diffSnapshots(prev, curr)
	assert.InDelta(t, 70.0, delta.TodaySpending, 1e-9)
	assert.InDelta(t, -70.0, delta.RemainingToday, 1e-9)
	assert.InDelta(t, 0.0, delta.TheNumber, 1e-9)
	assert.True(t, delta.OverBudgetChanged)
	assert.False(t, delta.isZero())

	assert.True(t, diffSnapshots(curr, curr).isZero())
	assert.True(t, Delta{TheNumber: 0.001}.isZero(), "sub-cent noise is ignored")
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := newTestDaemon(&stubSource{}, 2)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestPollOnce_EmitsOnChangeOnly(t *testing.T) {
	src := &stubSource{n: model.BudgetNumber{TheNumber: 50, RemainingToday: 50}}
	s := newTestDaemon(src, 10)
	ctx := context.Background()

	s.pollOnce(ctx, "")
	s.pollOnce(ctx, "")

	src.set(model.BudgetNumber{TheNumber: 50, TodaySpending: 20, RemainingToday: 30}, nil)
	s.pollOnce(ctx, "")
	s.pollOnce(ctx, EventRollover)

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 3)
	assert.Equal(t, EventSnapshot, s.events[0].Type)
	assert.Equal(t, EventNumberDelta, s.events[1].Type)
	assert.InDelta(t, 20.0, s.events[1].Delta.TodaySpending, 1e-9)
	assert.Equal(t, EventRollover, s.events[2].Type)
	assert.Equal(t, int64(4), s.pollCount)
}

func TestPollOnce_ErrorKeepsLastSnapshot(t *testing.T) {
	src := &stubSource{n: model.BudgetNumber{TheNumber: 50}}
	s := newTestDaemon(src, 10)
	ctx := context.Background()

	s.pollOnce(ctx, "")
	src.set(model.BudgetNumber{}, errors.New("disk on fire"))
	s.pollOnce(ctx, "")

	st := s.snapshotStatus()
	assert.Equal(t, "disk on fire", st.LastError)
	assert.Equal(t, 50.0, st.Summary.TheNumber)
	assert.Equal(t, 1, st.EventCount)
}

func TestHandler_Number(t *testing.T) {
	src := &stubSource{err: service.ErrNotConfigured}
	s := newTestDaemon(src, 10)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/number", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "before first poll")

	s.pollOnce(context.Background(), "")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/number", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "not configured")

	src.set(model.BudgetNumber{Mode: model.ModePaycheck, TheNumber: 66.67}, nil)
	s.pollOnce(context.Background(), "")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/number", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.BudgetNumber
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 66.67, got.TheNumber)
	assert.Equal(t, model.ModePaycheck, got.Mode)
}

func TestHandler_StatusAndHealth(t *testing.T) {
	src := &stubSource{n: model.BudgetNumber{TheNumber: 12}}
	s := newTestDaemon(src, 10)
	s.pollOnce(context.Background(), "")
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var st Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, int64(1), st.PollCount)
	assert.Equal(t, "UTC", st.Timezone)
	assert.True(t, st.Summary.Configured)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "read-only")
}

func TestScheduler_RegistersRefreshAndRollover(t *testing.T) {
	s := newTestDaemon(&stubSource{}, 4)

	c, err := s.scheduler(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", Interval: time.Minute, Location: time.UTC}, &stubSource{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := New(Config{Addr: ln.Addr().String(), Interval: time.Minute, Location: time.UTC}, &stubSource{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = s.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon http server")
}
