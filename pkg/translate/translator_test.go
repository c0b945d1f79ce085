package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Strangekim/jabdonsani/pkg/crawler"
)

type fakeClient struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeClient) Complete(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func sampleItem() crawler.RawItem {
	return crawler.RawItem{
		Source:     crawler.SourceHackerNews,
		OriginalID: "12345",
		Title:      "Show HN: A new thing",
		Content:    "Some body text",
		Score:      250,
		Comments: []crawler.RawComment{
			{Author: "alice", Text: "Great work", Votes: 10},
		},
	}
}

func TestTranslateInferredField(t *testing.T) {
	client := &fakeClient{reply: `{
		"translatedTitle": "새로운 것",
		"translatedContent": "요약입니다.",
		"field": "ai",
		"commentSummary": "댓글 요약",
		"translatedComments": [
			{"original": "Great work", "translated": "훌륭한 작업", "votes": 10}
		]
	}`}

	tr := NewTranslator(client)
	got, err := tr.Translate(context.Background(), sampleItem(), crawler.InferredField())
	require.NoError(t, err)

	assert.Equal(t, crawler.FieldAI, got.Field)
	assert.Equal(t, "새로운 것", got.TranslatedTitle)
	assert.Equal(t, "요약입니다.", got.TranslatedContent)
	assert.Equal(t, "댓글 요약", got.CommentSummary)
	require.Len(t, got.TranslatedComments, 1)
	assert.Equal(t, "훌륭한 작업", got.TranslatedComments[0].Translated)
	assert.Equal(t, 10, got.TranslatedComments[0].Votes)

	// The raw item carries through untouched.
	assert.Equal(t, "12345", got.OriginalID)
	assert.Equal(t, 250, got.Score)
}

func TestTranslateInferredFieldInvalidFallsBack(t *testing.T) {
	client := &fakeClient{reply: `{"translatedTitle": "제목", "field": "blockchain"}`}

	tr := NewTranslator(client)
	got, err := tr.Translate(context.Background(), sampleItem(), crawler.InferredField())
	require.NoError(t, err)
	assert.Equal(t, crawler.FallbackField, got.Field)
}

func TestTranslateFixedFieldIgnoresModelField(t *testing.T) {
	client := &fakeClient{reply: `{"translatedTitle": "제목", "field": "ai"}`}

	tr := NewTranslator(client)
	got, err := tr.Translate(context.Background(), sampleItem(), crawler.FixedField(crawler.FieldRobotics))
	require.NoError(t, err)
	assert.Equal(t, crawler.FieldRobotics, got.Field)
}

func TestTranslateMissingTitleIsError(t *testing.T) {
	client := &fakeClient{reply: `{"translatedContent": "요약만 있음"}`}

	tr := NewTranslator(client)
	_, err := tr.Translate(context.Background(), sampleItem(), crawler.FixedField(crawler.FieldDev))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing translated title")
}

func TestTranslateMalformedReplyIsError(t *testing.T) {
	client := &fakeClient{reply: "I am sorry, I refuse."}

	tr := NewTranslator(client)
	_, err := tr.Translate(context.Background(), sampleItem(), crawler.FixedField(crawler.FieldDev))
	require.Error(t, err)
}

func TestTranslateClientErrorPropagates(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}

	tr := NewTranslator(client)
	_, err := tr.Translate(context.Background(), sampleItem(), crawler.FixedField(crawler.FieldDev))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestTranslateNilCommentsBecomeEmptySlice(t *testing.T) {
	client := &fakeClient{reply: `{"translatedTitle": "제목"}`}

	tr := NewTranslator(client)
	got, err := tr.Translate(context.Background(), sampleItem(), crawler.FixedField(crawler.FieldAI))
	require.NoError(t, err)
	require.NotNil(t, got.TranslatedComments)
	assert.Empty(t, got.TranslatedComments)
}

func TestBuildPromptVariants(t *testing.T) {
	item := sampleItem()

	inferring := buildPrompt(item, crawler.InferredField())
	assert.Contains(t, inferring, `"field"`)
	assert.Contains(t, inferring, "Hacker News")
	assert.Contains(t, inferring, "Show HN: A new thing")
	assert.Contains(t, inferring, "[1] alice (votes: 10): Great work")

	fixed := buildPrompt(item, crawler.FixedField(crawler.FieldAI))
	assert.NotContains(t, fixed, `"field"`)
}

func TestBuildPromptEmptyContentAndComments(t *testing.T) {
	item := crawler.RawItem{
		Source:     crawler.SourceLobsters,
		OriginalID: "abc",
		Title:      "A title",
	}

	p := buildPrompt(item, crawler.FixedField(crawler.FieldDev))
	assert.Contains(t, p, "(no content body)")
	assert.Contains(t, p, "(no comments)")
	assert.Contains(t, p, "Lobste.rs")
}
