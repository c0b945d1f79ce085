package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Strangekim/jabdonsani/internal/batch"
	"github.com/Strangekim/jabdonsani/internal/store"
	"github.com/Strangekim/jabdonsani/pkg/crawler"
	"github.com/Strangekim/jabdonsani/pkg/translate"
)

type stubStore struct {
	running bool
	latest  *store.Job
	trends  []store.Trend
}

func (s *stubStore) CreateJob(context.Context, string, time.Time) error     { return nil }
func (s *stubStore) CompleteJob(context.Context, string, int, int) error    { return nil }
func (s *stubStore) FailJob(context.Context, string, string) error          { return nil }
func (s *stubStore) AnyJobRunning(context.Context) (bool, error)            { return s.running, nil }
func (s *stubStore) LatestJob(context.Context) (*store.Job, error)          { return s.latest, nil }
func (s *stubStore) Close() error                                           { return nil }
func (s *stubStore) ListTrends(context.Context, store.ListOpts) ([]store.Trend, error) {
	return s.trends, nil
}
func (s *stubStore) ListTrendComments(context.Context, int64) ([]store.TrendComment, error) {
	return nil, nil
}
func (s *stubStore) ExistingOriginalIDs(context.Context, crawler.Source, []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}
func (s *stubStore) UpsertTrend(context.Context, *translate.ProcessedItem, string) error {
	return nil
}

func newTestServer(st *stubStore) *Server {
	logger := zap.NewNop().Sugar()
	runner := batch.New(st, crawler.Registry{}, nil, nil, nil, logger)
	return New(st, runner, logger, 0)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubStore{})
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleCrawlAccepted(t *testing.T) {
	srv := newTestServer(&stubStore{})
	rec := httptest.NewRecorder()
	srv.handleCrawl(rec, httptest.NewRequest(http.MethodPost, "/api/batch/crawl", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["job_id"])
	assert.Equal(t, store.JobRunning, body["status"])
}

func TestHandleCrawlConflict(t *testing.T) {
	srv := newTestServer(&stubStore{running: true})
	rec := httptest.NewRecorder()
	srv.handleCrawl(rec, httptest.NewRequest(http.MethodPost, "/api/batch/crawl", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleCrawlMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubStore{})
	rec := httptest.NewRecorder()
	srv.handleCrawl(rec, httptest.NewRequest(http.MethodGet, "/api/batch/crawl", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleStatusNone(t *testing.T) {
	srv := newTestServer(&stubStore{})
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/batch/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"none"}`, rec.Body.String())
}

func TestHandleStatusCompletedJob(t *testing.T) {
	srv := newTestServer(&stubStore{latest: &store.Job{
		ID:             "batch_20260829_2200",
		Status:         store.JobCompleted,
		StartedAt:      time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC),
		CompletedAt:    sql.NullTime{Time: time.Date(2026, 8, 29, 22, 9, 0, 0, time.UTC), Valid: true},
		ItemsCollected: 41,
		Errors:         2,
	}})
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/batch/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "batch_20260829_2200", body["job_id"])
	assert.Equal(t, store.JobCompleted, body["status"])
	assert.Equal(t, float64(41), body["items_collected"])
	assert.Equal(t, "2026-08-29T22:09:00Z", body["completed_at"])
}

func TestHandleTrends(t *testing.T) {
	srv := newTestServer(&stubStore{trends: []store.Trend{
		{ID: 1, Source: "hn", Field: "ai", Title: "제목"},
	}})
	rec := httptest.NewRecorder()
	srv.handleTrends(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trends?field=ai&limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data  []store.Trend `json:"data"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "제목", body.Data[0].Title)
}

func TestHandleTrendsBadField(t *testing.T) {
	srv := newTestServer(&stubStore{})
	rec := httptest.NewRecorder()
	srv.handleTrends(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trends?field=crypto", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
