package store

const schema = `
CREATE TABLE IF NOT EXISTS batch_jobs (
    job_id          TEXT PRIMARY KEY,
    status          TEXT NOT NULL,
    started_at      DATETIME NOT NULL,
    completed_at    DATETIME,
    items_collected INTEGER NOT NULL DEFAULT 0,
    errors          INTEGER NOT NULL DEFAULT 0,
    error_log       TEXT
);

CREATE INDEX IF NOT EXISTS idx_jobs_started ON batch_jobs(started_at);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON batch_jobs(status);

CREATE TABLE IF NOT EXISTS trends (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    source          TEXT NOT NULL,
    original_id     TEXT NOT NULL,
    field           TEXT NOT NULL,
    title           TEXT NOT NULL,
    content         TEXT NOT NULL DEFAULT '',
    comment_summary TEXT NOT NULL DEFAULT '',
    thumbnail_url   TEXT NOT NULL DEFAULT '',
    score           INTEGER NOT NULL DEFAULT 0,
    url             TEXT NOT NULL DEFAULT '',
    batch_id        TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL,
    UNIQUE(source, original_id)
);

CREATE INDEX IF NOT EXISTS idx_trends_field ON trends(field);
CREATE INDEX IF NOT EXISTS idx_trends_created ON trends(created_at);
CREATE INDEX IF NOT EXISTS idx_trends_score ON trends(score);

CREATE TABLE IF NOT EXISTS trend_comments (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    trend_id INTEGER NOT NULL REFERENCES trends(id),
    text     TEXT NOT NULL,
    votes    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trend_comments_trend ON trend_comments(trend_id);
`
