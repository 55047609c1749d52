package livehttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebot/internal/engine"
	"strikebot/internal/store/model"
)

type fakeCycles struct {
	rows []model.CycleModel
}

func (f *fakeCycles) FindByTraceID(_ context.Context, id string) (*model.CycleModel, error) {
	for i := range f.rows {
		if f.rows[i].TraceID == id {
			return &f.rows[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCycles) ListRecent(_ context.Context, limit int) ([]model.CycleModel, error) {
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

type fakeLast struct {
	rep *engine.Report
}

func (f fakeLast) Last() (engine.Report, bool) {
	if f.rep == nil {
		return engine.Report{}, false
	}
	return *f.rep, true
}

func row(t *testing.T, id string, outcome engine.Outcome) model.CycleModel {
	raw, err := json.Marshal(engine.Report{TraceID: id, Outcome: outcome})
	require.NoError(t, err)
	return model.CycleModel{TraceID: id, Outcome: string(outcome), Report: raw}
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("strikebot_cycles_total 1\n"))
	})
	h := NewServer(ServerConfig{Metrics: metrics}).Handler()

	rec, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, _ = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "strikebot_cycles_total 1")
}

func TestCyclesEndpoints(t *testing.T) {
	cycles := &fakeCycles{rows: []model.CycleModel{
		row(t, "t-2", engine.OutcomeVetoed),
		row(t, "t-1", engine.OutcomeFilled),
	}}
	h := NewServer(ServerConfig{Cycles: cycles}).Handler()

	rec, body := get(t, h, "/api/live/cycles?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["count"])

	rec, body = get(t, h, "/api/live/cycles/t-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "filled", body["outcome"])

	rec, _ = get(t, h, "/api/live/cycles/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = get(t, h, "/api/live/cycles/last")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t-2", body["trace_id"])
}

func TestLastPrefersInMemoryReport(t *testing.T) {
	h := NewServer(ServerConfig{Last: fakeLast{rep: &engine.Report{TraceID: "mem", Outcome: engine.OutcomeNoMarket}}}).Handler()
	rec, body := get(t, h, "/api/live/cycles/last")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no_market", body["outcome"])

	h = NewServer(ServerConfig{Last: fakeLast{}}).Handler()
	rec, _ = get(t, h, "/api/live/cycles/last")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDisabledStoreAnswersUnavailable(t *testing.T) {
	h := NewServer(ServerConfig{}).Handler()
	rec, _ := get(t, h, "/api/live/cycles")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec, _ = get(t, h, "/api/live/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusAndLogs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "strikebot.log")
	require.NoError(t, os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o644))
	h := NewServer(ServerConfig{
		Status:  func() any { return map[string]any{"live": false} },
		LogPath: logPath,
	}).Handler()

	rec, body := get(t, h, "/api/live/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["live"])

	rec, body = get(t, h, "/api/live/logs?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"two", "three"}, body["lines"])
}
