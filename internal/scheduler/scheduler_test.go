package scheduler

import (
	"context"
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

type noopStore struct{}

func (noopStore) CreateJob(context.Context, string, time.Time) error  { return nil }
func (noopStore) CompleteJob(context.Context, string, int, int) error { return nil }
func (noopStore) FailJob(context.Context, string, string) error       { return nil }
func (noopStore) AnyJobRunning(context.Context) (bool, error)         { return false, nil }
func (noopStore) LatestJob(context.Context) (*store.Job, error)       { return nil, nil }
func (noopStore) Close() error                                        { return nil }
func (noopStore) ListTrends(context.Context, store.ListOpts) ([]store.Trend, error) {
	return nil, nil
}
func (noopStore) ListTrendComments(context.Context, int64) ([]store.TrendComment, error) {
	return nil, nil
}
func (noopStore) ExistingOriginalIDs(context.Context, crawler.Source, []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}
func (noopStore) UpsertTrend(context.Context, *translate.ProcessedItem, string) error {
	return nil
}

func newRunner() *batch.Runner {
	return batch.New(noopStore{}, crawler.Registry{}, nil, nil, nil, zap.NewNop().Sugar())
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := New(newRunner(), []string{"not a cron"}, zap.NewNop().Sugar())
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a cron")
}

func TestStartAndStop(t *testing.T) {
	s := New(newRunner(), []string{"0 22 * * *", "0 10 * * *"}, zap.NewNop().Sugar())
	require.NoError(t, s.Start())
	s.Stop()
}
