package crawler

import (
	"context"
	"net/http"
	"time"
)

const hfPapersBaseURL = "https://huggingface.co/api/daily_papers"

// HFPapers collects Hugging Face daily papers. It covers today and yesterday
// because the batch runs twice a day and the morning run often predates the
// day's upload.
type HFPapers struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewHFPapers creates the daily papers adapter.
func NewHFPapers() *HFPapers {
	return &HFPapers{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: hfPapersBaseURL,
		now:     time.Now,
	}
}

func (h *HFPapers) Source() Source { return SourceHFPapers }

type hfPaper struct {
	Paper struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Summary     string    `json:"summary"`
		Upvotes     int       `json:"upvotes"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"paper"`
	NumComments int       `json:"numComments"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (h *HFPapers) Crawl(ctx context.Context, cfg Config) ([]RawItem, error) {
	var items []RawItem

	for day := 0; day < 2 && len(items) < cfg.Limit; day++ {
		date := h.now().AddDate(0, 0, -day).UTC().Format("2006-01-02")

		var papers []hfPaper
		if !fetchJSON(ctx, h.client, h.baseURL+"?date="+date, &papers) {
			continue
		}

		for _, p := range papers {
			if len(items) >= cfg.Limit {
				break
			}

			createdAt := p.SubmittedAt
			if createdAt.IsZero() {
				createdAt = p.Paper.PublishedAt
			}
			if createdAt.IsZero() {
				createdAt = h.now().UTC()
			}

			items = append(items, RawItem{
				Source:       SourceHFPapers,
				OriginalID:   p.Paper.ID,
				Title:        p.Paper.Title,
				URL:          "https://huggingface.co/papers/" + p.Paper.ID,
				Content:      truncate(p.Paper.Summary, maxContentLen),
				Score:        p.Paper.Upvotes,
				CommentCount: p.NumComments,
				CreatedAt:    createdAt,
			})
		}
	}

	return items, nil
}
