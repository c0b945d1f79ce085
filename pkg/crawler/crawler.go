package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Source identifies which community an item came from.
type Source string

const (
	SourceHackerNews Source = "hn"
	SourceHFPapers   Source = "hfpapers"
	SourceDevTo      Source = "devto"
	SourceLobsters   Source = "lobsters"
	SourceReddit     Source = "reddit"
)

// Field is the taxonomy every persisted item is classified into.
type Field string

const (
	FieldAI       Field = "ai"
	FieldDev      Field = "dev"
	FieldRobotics Field = "robotics"
)

// FallbackField is substituted when the model infers a field outside the taxonomy.
const FallbackField = FieldDev

// ValidField reports whether f is part of the taxonomy.
func ValidField(f Field) bool {
	return f == FieldAI || f == FieldDev || f == FieldRobotics
}

// Classification says where an item's field comes from: fixed by
// configuration, or inferred per item by the model.
type Classification struct {
	Inferred bool
	Fixed    Field
}

// FixedField returns a classification pinned to f.
func FixedField(f Field) Classification { return Classification{Fixed: f} }

// InferredField returns a classification the model decides per item.
func InferredField() Classification { return Classification{Inferred: true} }

// Config drives one adapter invocation.
type Config struct {
	Source         Source
	Classification Classification
	Limit          int
}

// RawComment is one top comment attached to a RawItem.
type RawComment struct {
	Author string
	Text   string
	Votes  int
}

// RawItem is the uniform shape of one external post before translation.
// (Source, OriginalID) is the natural key used for deduplication and must be
// stable across repeated crawls of the same remote item.
type RawItem struct {
	Source       Source
	OriginalID   string
	Title        string
	URL          string
	Content      string
	Score        int
	CommentCount int
	Comments     []RawComment
	ThumbnailURL string
	CreatedAt    time.Time
}

// Crawler is implemented by every source adapter. Ordinary remote failures
// (network error, non-2xx, malformed body) yield an empty slice, not an
// error; a systemic outage produces no data, never a crash.
type Crawler interface {
	Source() Source
	Crawl(ctx context.Context, cfg Config) ([]RawItem, error)
}

// Registry maps source identifiers to their adapters.
type Registry map[Source]Crawler

// NewRegistry builds a registry keyed by each adapter's source.
func NewRegistry(crawlers ...Crawler) Registry {
	r := make(Registry, len(crawlers))
	for _, c := range crawlers {
		r[c.Source()] = c
	}
	return r
}

const (
	maxContentLen = 3000
	maxCommentLen = 500
	maxComments   = 5
	userAgent     = "JabdonsaniBot/1.0 (batch crawler)"
)

// fetchJSON GETs url and decodes the body into v. Returns false on any
// failure so callers can treat it as "no data for this request".
func fetchJSON(ctx context.Context, client *http.Client, url string, v any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	return json.NewDecoder(resp.Body).Decode(v) == nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// stripHTML removes markup from bodies that sources return as HTML.
func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
