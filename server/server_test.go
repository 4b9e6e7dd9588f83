package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_server_builder/builder"
	"ai_server_builder/generator"
)

type stubPlanner struct {
	plan generator.Plan
	err  error
}

func (s stubPlanner) GeneratePlan(context.Context, string) (generator.Plan, error) {
	return s.plan, s.err
}

func newTestServer(t *testing.T, p Planner) (*builder.PlanStore, http.Handler) {
	t.Helper()
	store := builder.NewPlanStore()
	srv, err := New(p, store, "!", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store, srv.Routes()
}

func samplePlan() generator.Plan {
	return generator.Plan{
		ServerConfig: &generator.ServerConfig{Name: "Book Club"},
		Categories: []generator.Category{{Name: "📚 Reading", Channels: []generator.Channel{
			{Name: "📖-current-book", Type: generator.ChannelText},
		}}},
		Roles: []generator.Role{{Name: "Reader", Color: "#AA66CC"}},
	}
}

func TestHealthz(t *testing.T) {
	store, h := newTestServer(t, stubPlanner{})
	store.Stage("g1", "alice", samplePlan())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","pending_plans":1}`, rec.Body.String())
}

func TestPlanByGuild(t *testing.T) {
	store, h := newTestServer(t, stubPlanner{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans/g1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	staged := store.Stage("g1", "alice", samplePlan())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans/g1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got builder.StagedPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, staged.ID, got.ID)
	assert.Equal(t, "alice", got.Requester)
	assert.Equal(t, "Book Club", got.Plan.ServerConfig.Name)
}

func TestPlanSummary(t *testing.T) {
	store, h := newTestServer(t, stubPlanner{})
	store.Stage("g1", "alice", samplePlan())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans/g1/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "📁 📚 Reading\n  💬 📖-current-book")
}

func TestPreview(t *testing.T) {
	store, h := newTestServer(t, stubPlanner{plan: samplePlan()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plans/preview", strings.NewReader(`{"description":"a book club"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got previewResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Book Club", got.Plan.ServerConfig.Name)
	assert.Contains(t, got.Summary, "👥 Reader")
	assert.Zero(t, store.Len())
}

func TestPreviewErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"bad body", `{`, nil, http.StatusBadRequest},
		{"empty description", `{"description":"  "}`, nil, http.StatusBadRequest},
		{"invalid plan", `{"description":"x"}`, &generator.ValidationError{Reason: "too many roles (maximum 10)"}, http.StatusUnprocessableEntity},
		{"bad json", `{"description":"x"}`, &generator.DecodeError{Err: errors.New("eof")}, http.StatusUnprocessableEntity},
		{"service down", `{"description":"x"}`, &generator.GenerationError{Err: errors.New("503")}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, h := newTestServer(t, stubPlanner{err: tc.err})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plans/preview", strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t, stubPlanner{})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `server_builder_http_requests_total{method="GET",path="/healthz",status="200"}`)
}
