package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedditCrawl(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/LocalLLaMA/hot.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"children":[
			{"kind":"t3","data":{"id":"p1","title":"Pinned post","stickied":true,"score":999}},
			{"kind":"t3","data":{"id":"p2","title":"Link post","url":"https://example.com/model","score":150,"num_comments":20,"thumbnail":"https://img/p2.jpg","created_utc":1756400000}},
			{"kind":"t3","data":{"id":"p3","title":"Self post","url":"https://www.reddit.com/r/LocalLLaMA/comments/p3/","permalink":"/r/LocalLLaMA/comments/p3/","selftext":"My setup","is_self":true,"thumbnail":"self","score":80,"created_utc":1756400000}}
		]}}`)
	})
	mux.HandleFunc("/r/LocalLLaMA/comments/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"data":{"children":[{"kind":"t3","data":{}}]}},
			{"data":{"children":[
				{"kind":"t1","data":{"author":"bob","body":"Works great","score":15}},
				{"kind":"t1","data":{"author":"","body":"anon reply","score":2}},
				{"kind":"more","data":{}}
			]}}
		]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	rd := NewReddit()
	rd.baseURL = srv.URL
	rd.delay = 0

	items, err := rd.Crawl(context.Background(), Config{
		Source:         SourceReddit,
		Classification: FixedField(FieldAI),
		Limit:          10,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "p2", items[0].OriginalID)
	assert.Equal(t, "https://example.com/model", items[0].URL)
	assert.Equal(t, "https://img/p2.jpg", items[0].ThumbnailURL)
	require.Len(t, items[0].Comments, 2)
	assert.Equal(t, "bob", items[0].Comments[0].Author)
	assert.Equal(t, "[deleted]", items[0].Comments[1].Author)

	// Self posts link to the reddit permalink and drop the "self" thumbnail.
	assert.Equal(t, "p3", items[1].OriginalID)
	assert.True(t, strings.HasPrefix(items[1].URL, redditBaseURL))
	assert.Empty(t, items[1].ThumbnailURL)
	assert.Equal(t, "My setup", items[1].Content)
}

func TestRedditCrawlUnknownFieldFallsBack(t *testing.T) {
	var requested string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		fmt.Fprint(w, `{"data":{"children":[]}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	rd := NewReddit()
	rd.baseURL = srv.URL
	rd.delay = 0

	_, err := rd.Crawl(context.Background(), Config{
		Source:         SourceReddit,
		Classification: InferredField(),
		Limit:          5,
	})
	require.NoError(t, err)
	assert.Equal(t, "/r/programming/hot.json", requested)
}
