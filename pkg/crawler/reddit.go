package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	redditBaseURL = "https://www.reddit.com"
	redditDelay   = time.Second
)

// redditFieldSubs maps a configured field to the subreddit crawled for it.
var redditFieldSubs = map[Field]string{
	FieldAI:       "LocalLLaMA",
	FieldDev:      "programming",
	FieldRobotics: "robotics",
}

// Reddit collects hot posts from subreddit listings. It uses the public
// .json endpoints with a descriptive User-Agent; no authentication.
type Reddit struct {
	client  *http.Client
	baseURL string
	delay   time.Duration
}

// NewReddit creates the Reddit adapter.
func NewReddit() *Reddit {
	return &Reddit{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: redditBaseURL,
		delay:   redditDelay,
	}
}

func (r *Reddit) Source() Source { return SourceReddit }

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Thumbnail   string  `json:"thumbnail"`
	CreatedUTC  float64 `json:"created_utc"`
	IsSelf      bool    `json:"is_self"`
	Stickied    bool    `json:"stickied"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Kind string     `json:"kind"`
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditCommentListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Author string `json:"author"`
				Body   string `json:"body"`
				Score  int    `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) Crawl(ctx context.Context, cfg Config) ([]RawItem, error) {
	field := FallbackField
	if !cfg.Classification.Inferred && cfg.Classification.Fixed != "" {
		field = cfg.Classification.Fixed
	}
	subreddit, ok := redditFieldSubs[field]
	if !ok {
		subreddit = redditFieldSubs[FieldDev]
	}

	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", r.baseURL, subreddit, cfg.Limit+5)

	var listing redditListing
	if !fetchJSON(ctx, r.client, url, &listing) {
		return nil, nil
	}

	var items []RawItem
	for _, child := range listing.Data.Children {
		if len(items) >= cfg.Limit {
			break
		}
		post := child.Data
		if child.Kind != "t3" || post.Stickied {
			continue
		}

		// Fixed pause between posts: Reddit rate limits unauthenticated
		// clients aggressively.
		time.Sleep(r.delay)
		comments := r.fetchComments(ctx, subreddit, post.ID)

		postURL := post.URL
		if post.IsSelf {
			postURL = redditBaseURL + post.Permalink
		}

		var thumbnail string
		if strings.HasPrefix(post.Thumbnail, "http") {
			thumbnail = post.Thumbnail
		}

		items = append(items, RawItem{
			Source:       SourceReddit,
			OriginalID:   post.ID,
			Title:        post.Title,
			URL:          postURL,
			Content:      truncate(post.Selftext, maxContentLen),
			Score:        post.Score,
			CommentCount: post.NumComments,
			Comments:     comments,
			ThumbnailURL: thumbnail,
			CreatedAt:    time.Unix(int64(post.CreatedUTC), 0).UTC(),
		})
	}

	return items, nil
}

func (r *Reddit) fetchComments(ctx context.Context, subreddit, postID string) []RawComment {
	url := fmt.Sprintf("%s/r/%s/comments/%s.json?limit=%d&sort=top", r.baseURL, subreddit, postID, maxComments)

	// Reddit returns a two-element array: the post listing, then comments.
	var pages []redditCommentListing
	if !fetchJSON(ctx, r.client, url, &pages) {
		return nil
	}
	if len(pages) < 2 {
		return nil
	}

	var comments []RawComment
	for _, child := range pages[1].Data.Children {
		if len(comments) >= maxComments {
			break
		}
		if child.Kind != "t1" || child.Data.Body == "" {
			continue
		}
		author := child.Data.Author
		if author == "" {
			author = "[deleted]"
		}
		comments = append(comments, RawComment{
			Author: author,
			Text:   truncate(child.Data.Body, maxCommentLen),
			Votes:  child.Data.Score,
		})
	}
	return comments
}
