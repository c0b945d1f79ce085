package crawler

import (
	"context"
	"net/http"
	"time"
)

const (
	lobstersBaseURL  = "https://lobste.rs"
	lobstersMinScore = 5
	lobstersDelay    = 500 * time.Millisecond
)

// Lobsters collects hottest stories from the Lobste.rs JSON API.
type Lobsters struct {
	client  *http.Client
	baseURL string
	delay   time.Duration
}

// NewLobsters creates the Lobste.rs adapter.
func NewLobsters() *Lobsters {
	return &Lobsters{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: lobstersBaseURL,
		delay:   lobstersDelay,
	}
}

func (l *Lobsters) Source() Source { return SourceLobsters }

type lobstersStory struct {
	ShortID      string    `json:"short_id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Score        int       `json:"score"`
	CommentCount int       `json:"comment_count"`
	Description  string    `json:"description"`
	SubmittedAt  time.Time `json:"submitted_at"`
	CommentsURL  string    `json:"comments_url"`
}

type lobstersComment struct {
	Comment   string `json:"comment"`
	Score     int    `json:"score"`
	IsDeleted bool   `json:"is_deleted"`
}

type lobstersDetail struct {
	Comments []lobstersComment `json:"comments"`
}

func (l *Lobsters) Crawl(ctx context.Context, cfg Config) ([]RawItem, error) {
	var stories []lobstersStory
	if !fetchJSON(ctx, l.client, l.baseURL+"/hottest.json", &stories) {
		return nil, nil
	}

	var items []RawItem
	for _, story := range stories {
		if len(items) >= cfg.Limit {
			break
		}
		if story.Score < lobstersMinScore {
			continue
		}

		time.Sleep(l.delay)
		comments := l.fetchComments(ctx, story.ShortID)

		url := story.URL
		if url == "" {
			url = story.CommentsURL
		}

		items = append(items, RawItem{
			Source:       SourceLobsters,
			OriginalID:   story.ShortID,
			Title:        story.Title,
			URL:          url,
			Content:      truncate(stripHTML(story.Description), maxContentLen),
			Score:        story.Score,
			CommentCount: story.CommentCount,
			Comments:     comments,
			CreatedAt:    story.SubmittedAt,
		})
	}

	return items, nil
}

func (l *Lobsters) fetchComments(ctx context.Context, shortID string) []RawComment {
	var detail lobstersDetail
	if !fetchJSON(ctx, l.client, l.baseURL+"/s/"+shortID+".json", &detail) {
		return nil
	}

	var comments []RawComment
	for _, c := range detail.Comments {
		if len(comments) >= maxComments {
			break
		}
		if c.IsDeleted || c.Comment == "" {
			continue
		}
		comments = append(comments, RawComment{
			Text:  truncate(stripHTML(c.Comment), maxCommentLen),
			Votes: c.Score,
		})
	}
	return comments
}
