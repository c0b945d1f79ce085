package crawler

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	devtoBaseURL      = "https://dev.to/api"
	devtoCommentDelay = 300 * time.Millisecond
)

// devtoFieldTags maps a configured field to the Dev.to tags crawled for it.
// One adapter instance covers both the ai and robotics source entries.
var devtoFieldTags = map[Field][]string{
	FieldAI:       {"ai", "machinelearning"},
	FieldRobotics: {"robotics"},
	FieldDev:      {"programming", "webdev"},
}

// DevTo collects popular tagged articles from the Dev.to API.
type DevTo struct {
	client  *http.Client
	baseURL string
	delay   time.Duration
}

// NewDevTo creates the Dev.to adapter.
func NewDevTo() *DevTo {
	return &DevTo{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: devtoBaseURL,
		delay:   devtoCommentDelay,
	}
}

func (d *DevTo) Source() Source { return SourceDevTo }

type devtoArticle struct {
	ID                     int       `json:"id"`
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	URL                    string    `json:"url"`
	CoverImage             string    `json:"cover_image"`
	SocialImage            string    `json:"social_image"`
	PositiveReactionsCount int       `json:"positive_reactions_count"`
	CommentsCount          int       `json:"comments_count"`
	PublishedAt            time.Time `json:"published_at"`
}

type devtoComment struct {
	BodyHTML               string `json:"body_html"`
	PositiveReactionsCount int    `json:"positive_reactions_count"`
}

func (d *DevTo) Crawl(ctx context.Context, cfg Config) ([]RawItem, error) {
	field := FallbackField
	if !cfg.Classification.Inferred && cfg.Classification.Fixed != "" {
		field = cfg.Classification.Fixed
	}
	tags, ok := devtoFieldTags[field]
	if !ok {
		tags = []string{"programming"}
	}
	perTag := (cfg.Limit + len(tags) - 1) / len(tags)

	var items []RawItem
	seen := make(map[int]struct{})

	for _, tag := range tags {
		// top=7: most-reacted articles of the last 7 days.
		url := fmt.Sprintf("%s/articles?tag=%s&per_page=%d&top=7", d.baseURL, tag, perTag+5)

		var articles []devtoArticle
		if !fetchJSON(ctx, d.client, url, &articles) {
			continue
		}

		for _, a := range articles {
			// Overlapping tags can return the same article twice.
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}

			time.Sleep(d.delay)
			comments := d.fetchComments(ctx, a.ID)

			thumbnail := a.CoverImage
			if thumbnail == "" {
				thumbnail = a.SocialImage
			}

			items = append(items, RawItem{
				Source:       SourceDevTo,
				OriginalID:   fmt.Sprintf("%d", a.ID),
				Title:        a.Title,
				URL:          a.URL,
				Content:      truncate(a.Description, maxContentLen),
				Score:        a.PositiveReactionsCount,
				CommentCount: a.CommentsCount,
				Comments:     comments,
				ThumbnailURL: thumbnail,
				CreatedAt:    a.PublishedAt,
			})
		}
	}

	if len(items) > cfg.Limit {
		items = items[:cfg.Limit]
	}
	return items, nil
}

func (d *DevTo) fetchComments(ctx context.Context, articleID int) []RawComment {
	var data []devtoComment
	if !fetchJSON(ctx, d.client, fmt.Sprintf("%s/comments?a_id=%d", d.baseURL, articleID), &data) {
		return nil
	}
	if len(data) > maxComments {
		data = data[:maxComments]
	}

	var comments []RawComment
	for _, c := range data {
		comments = append(comments, RawComment{
			Text:  truncate(stripHTML(c.BodyHTML), maxCommentLen),
			Votes: c.PositiveReactionsCount,
		})
	}
	return comments
}
