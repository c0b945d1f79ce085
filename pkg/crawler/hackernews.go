package crawler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	hnBaseURL    = "https://hacker-news.firebaseio.com/v0"
	hnMinScore   = 100
	hnFanout     = 10
	hnOversample = 5
)

// HackerNews collects top stories from the Hacker News Firebase API.
type HackerNews struct {
	client     *http.Client
	thumbnails *Resolver
	baseURL    string
}

// NewHackerNews creates the HN adapter. thumbnails may be nil to skip
// preview image resolution.
func NewHackerNews(thumbnails *Resolver) *HackerNews {
	return &HackerNews{
		client:     &http.Client{Timeout: 30 * time.Second},
		thumbnails: thumbnails,
		baseURL:    hnBaseURL,
	}
}

func (h *HackerNews) Source() Source { return SourceHackerNews }

type hnStory struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Kids        []int  `json:"kids"`
	Time        int64  `json:"time"`
	Type        string `json:"type"`
}

type hnComment struct {
	By      string `json:"by"`
	Text    string `json:"text"`
	Deleted bool   `json:"deleted"`
	Dead    bool   `json:"dead"`
}

func (h *HackerNews) Crawl(ctx context.Context, cfg Config) ([]RawItem, error) {
	var storyIDs []int
	if !fetchJSON(ctx, h.client, h.baseURL+"/topstories.json", &storyIDs) {
		return nil, nil
	}

	// Oversample so the score threshold still leaves enough stories.
	if len(storyIDs) > cfg.Limit*hnOversample {
		storyIDs = storyIDs[:cfg.Limit*hnOversample]
	}

	var items []RawItem
	for start := 0; start < len(storyIDs) && len(items) < cfg.Limit; start += hnFanout {
		end := start + hnFanout
		if end > len(storyIDs) {
			end = len(storyIDs)
		}

		for _, story := range h.fetchBatch(ctx, storyIDs[start:end]) {
			if len(items) >= cfg.Limit {
				break
			}
			if story.Type != "story" || story.Score < hnMinScore {
				continue
			}

			url := story.URL
			if url == "" {
				url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
			}

			var comments []RawComment
			if len(story.Kids) > 0 {
				comments = h.fetchTopComments(ctx, story.Kids)
			}

			var thumbnail string
			if story.URL != "" && h.thumbnails != nil {
				thumbnail = h.thumbnails.Resolve(ctx, story.URL)
			}

			items = append(items, RawItem{
				Source:       SourceHackerNews,
				OriginalID:   fmt.Sprintf("%d", story.ID),
				Title:        story.Title,
				URL:          url,
				Content:      truncate(story.Text, maxContentLen),
				Score:        story.Score,
				CommentCount: story.Descendants,
				Comments:     comments,
				ThumbnailURL: thumbnail,
				CreatedAt:    time.Unix(story.Time, 0).UTC(),
			})
		}
	}

	return items, nil
}

// fetchBatch loads up to hnFanout story details concurrently, keeping the
// topstories ranking order.
func (h *HackerNews) fetchBatch(ctx context.Context, ids []int) []hnStory {
	slots := make([]*hnStory, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			var story hnStory
			if fetchJSON(ctx, h.client, fmt.Sprintf("%s/item/%d.json", h.baseURL, id), &story) {
				slots[i] = &story
			}
		}(i, id)
	}
	wg.Wait()

	var stories []hnStory
	for _, s := range slots {
		if s != nil {
			stories = append(stories, *s)
		}
	}
	return stories
}

// fetchTopComments loads up to maxComments top-level comments. A failed
// comment fetch is omitted, never fatal for the parent story.
func (h *HackerNews) fetchTopComments(ctx context.Context, kids []int) []RawComment {
	if len(kids) > maxComments {
		kids = kids[:maxComments]
	}

	slots := make([]*RawComment, len(kids))
	var wg sync.WaitGroup
	for i, id := range kids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			var c hnComment
			if !fetchJSON(ctx, h.client, fmt.Sprintf("%s/item/%d.json", h.baseURL, id), &c) {
				return
			}
			if c.Deleted || c.Dead || c.Text == "" {
				return
			}
			author := c.By
			if author == "" {
				author = "anonymous"
			}
			slots[i] = &RawComment{
				Author: author,
				Text:   truncate(c.Text, maxCommentLen),
				Votes:  0, // the HN API exposes no comment scoring
			}
		}(i, id)
	}
	wg.Wait()

	var comments []RawComment
	for _, c := range slots {
		if c != nil {
			comments = append(comments, *c)
		}
	}
	return comments
}
