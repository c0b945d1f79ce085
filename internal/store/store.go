package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Strangekim/jabdonsani/pkg/crawler"
	"github.com/Strangekim/jabdonsani/pkg/translate"
)

// Job status values.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Job records one batch run from start to finish.
type Job struct {
	ID             string         `db:"job_id" json:"job_id"`
	Status         string         `db:"status" json:"status"`
	StartedAt      time.Time      `db:"started_at" json:"started_at"`
	CompletedAt    sql.NullTime   `db:"completed_at" json:"-"`
	ItemsCollected int            `db:"items_collected" json:"items_collected"`
	Errors         int            `db:"errors" json:"errors"`
	ErrorLog       sql.NullString `db:"error_log" json:"-"`
}

// Trend is a translated item persisted for readers.
type Trend struct {
	ID             int64     `db:"id" json:"id"`
	Source         string    `db:"source" json:"source"`
	OriginalID     string    `db:"original_id" json:"original_id"`
	Field          string    `db:"field" json:"field"`
	Title          string    `db:"title" json:"title"`
	Content        string    `db:"content" json:"content"`
	CommentSummary string    `db:"comment_summary" json:"comment_summary"`
	ThumbnailURL   string    `db:"thumbnail_url" json:"thumbnail_url"`
	Score          int       `db:"score" json:"score"`
	URL            string    `db:"url" json:"url"`
	BatchID        string    `db:"batch_id" json:"batch_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// TrendComment is one translated comment attached to a trend.
type TrendComment struct {
	ID      int64  `db:"id" json:"id"`
	TrendID int64  `db:"trend_id" json:"trend_id"`
	Text    string `db:"text" json:"text"`
	Votes   int    `db:"votes" json:"votes"`
}

// ListOpts controls trend listing.
type ListOpts struct {
	Field crawler.Field
	Limit int
}

// Store is the persistence interface.
type Store interface {
	CreateJob(ctx context.Context, jobID string, startedAt time.Time) error
	CompleteJob(ctx context.Context, jobID string, items, errCount int) error
	FailJob(ctx context.Context, jobID string, errLog string) error
	AnyJobRunning(ctx context.Context) (bool, error)
	LatestJob(ctx context.Context) (*Job, error)

	ExistingOriginalIDs(ctx context.Context, src crawler.Source, ids []string) (map[string]bool, error)
	UpsertTrend(ctx context.Context, item *translate.ProcessedItem, batchID string) error
	ListTrends(ctx context.Context, opts ListOpts) ([]Trend, error)
	ListTrendComments(ctx context.Context, trendID int64) ([]TrendComment, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateJob(ctx context.Context, jobID string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO batch_jobs (job_id, status, started_at)
		VALUES (?, ?, ?)
	`, jobID, JobRunning, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("create job %s: %w", jobID, err)
	}
	return nil
}

func (s *SQLiteStore) CompleteJob(ctx context.Context, jobID string, items, errCount int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE batch_jobs
		SET status = ?, completed_at = ?, items_collected = ?, errors = ?
		WHERE job_id = ?
	`, JobCompleted, time.Now().UTC(), items, errCount, jobID)
	if err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("complete job %s: not found", jobID)
	}
	return nil
}

func (s *SQLiteStore) FailJob(ctx context.Context, jobID string, errLog string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE batch_jobs
		SET status = ?, completed_at = ?, error_log = ?
		WHERE job_id = ?
	`, JobFailed, time.Now().UTC(), errLog, jobID)
	if err != nil {
		return fmt.Errorf("fail job %s: %w", jobID, err)
	}
	return nil
}

func (s *SQLiteStore) AnyJobRunning(ctx context.Context) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM batch_jobs WHERE status = ?", JobRunning)
	if err != nil {
		return false, fmt.Errorf("check running jobs: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) LatestJob(ctx context.Context) (*Job, error) {
	var job Job
	err := s.db.GetContext(ctx, &job,
		"SELECT * FROM batch_jobs ORDER BY started_at DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest job: %w", err)
	}
	return &job, nil
}

func (s *SQLiteStore) ExistingOriginalIDs(ctx context.Context, src crawler.Source, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(ids) == 0 {
		return existing, nil
	}

	query, args, err := sqlx.In(
		"SELECT original_id FROM trends WHERE source = ? AND original_id IN (?)",
		string(src), ids)
	if err != nil {
		return nil, fmt.Errorf("build dedup query: %w", err)
	}

	var found []string
	if err := s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query existing ids: %w", err)
	}

	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (s *SQLiteStore) UpsertTrend(ctx context.Context, item *translate.ProcessedItem, batchID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	var trendID int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO trends (source, original_id, field, title, content, comment_summary, thumbnail_url, score, url, batch_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, original_id) DO UPDATE SET
			field = excluded.field,
			title = excluded.title,
			content = excluded.content,
			comment_summary = excluded.comment_summary,
			thumbnail_url = excluded.thumbnail_url,
			score = excluded.score,
			url = excluded.url,
			batch_id = excluded.batch_id
		RETURNING id
	`, string(item.Source), item.OriginalID, string(item.Field), item.TranslatedTitle,
		item.TranslatedContent, item.CommentSummary, item.ThumbnailURL,
		item.Score, item.URL, batchID, item.CreatedAt.UTC()).Scan(&trendID)
	if err != nil {
		return fmt.Errorf("upsert trend %s/%s: %w", item.Source, item.OriginalID, err)
	}

	// Comments are replaced wholesale so re-runs never accumulate duplicates.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM trend_comments WHERE trend_id = ?", trendID); err != nil {
		return fmt.Errorf("clear comments for trend %d: %w", trendID, err)
	}

	for _, c := range item.TranslatedComments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trend_comments (trend_id, text, votes)
			VALUES (?, ?, ?)
		`, trendID, c.Translated, c.Votes); err != nil {
			return fmt.Errorf("insert comment for trend %d: %w", trendID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTrends(ctx context.Context, opts ListOpts) ([]Trend, error) {
	query := "SELECT * FROM trends WHERE 1=1"
	var args []any

	if opts.Field != "" {
		query += " AND field = ?"
		args = append(args, string(opts.Field))
	}

	query += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var trends []Trend
	if err := s.db.SelectContext(ctx, &trends, query, args...); err != nil {
		return nil, fmt.Errorf("list trends: %w", err)
	}
	return trends, nil
}

func (s *SQLiteStore) ListTrendComments(ctx context.Context, trendID int64) ([]TrendComment, error) {
	var comments []TrendComment
	err := s.db.SelectContext(ctx, &comments,
		"SELECT * FROM trend_comments WHERE trend_id = ? ORDER BY votes DESC, id ASC", trendID)
	if err != nil {
		return nil, fmt.Errorf("list comments for trend %d: %w", trendID, err)
	}
	return comments, nil
}
