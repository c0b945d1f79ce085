package crawler

import (
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const thumbnailTimeout = 3 * time.Second

// Resolver extracts a preview image from an external page, best-effort.
// The short client timeout bounds how long any single lookup can block.
type Resolver struct {
	client *http.Client
}

// NewResolver creates a thumbnail resolver.
func NewResolver() *Resolver {
	return &Resolver{client: &http.Client{Timeout: thumbnailTimeout}}
}

// Resolve fetches url and returns its Open Graph image URL, or "" on any
// failure (timeout, non-HTML body, missing tag).
func (r *Resolver) Resolve(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; JabdonsaniBot/1.0)")

	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && img != "" {
		return img
	}
	if img, ok := doc.Find(`meta[name="og:image"]`).Attr("content"); ok {
		return img
	}
	return ""
}
