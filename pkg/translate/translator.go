package translate

import (
	"context"
	"fmt"

	"github.com/Strangekim/jabdonsani/pkg/crawler"
)

// TranslatedComment pairs a source comment with its translation.
type TranslatedComment struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Votes      int    `json:"votes"`
}

// ProcessedItem is a RawItem plus the model's translation output.
type ProcessedItem struct {
	crawler.RawItem
	Field              crawler.Field
	TranslatedTitle    string
	TranslatedContent  string
	CommentSummary     string
	TranslatedComments []TranslatedComment
}

// reply is the JSON object the prompt demands. The field key is only
// present for the inferring prompt variant.
type reply struct {
	TranslatedTitle    string              `json:"translatedTitle"`
	TranslatedContent  string              `json:"translatedContent"`
	Field              string              `json:"field"`
	CommentSummary     string              `json:"commentSummary"`
	TranslatedComments []TranslatedComment `json:"translatedComments"`
}

// Translator turns raw items into processed ones, one model call per item.
// Callers process items strictly sequentially to respect the upstream rate
// limit; the serialization lives in the coordinator, not here.
type Translator struct {
	client Client
}

// NewTranslator creates a translator on top of a completion client.
func NewTranslator(client Client) *Translator {
	return &Translator{client: client}
}

// Translate processes a single item. Any failure (model call, reply parse,
// missing translated title) is returned as an error for the caller to
// count; the item is never partially processed.
func (t *Translator) Translate(ctx context.Context, item crawler.RawItem, cls crawler.Classification) (*ProcessedItem, error) {
	raw, err := t.client.Complete(ctx, buildPrompt(item, cls))
	if err != nil {
		return nil, fmt.Errorf("model call %s/%s: %w", item.Source, item.OriginalID, err)
	}

	var r reply
	if err := ExtractJSON(raw, &r); err != nil {
		return nil, fmt.Errorf("reply %s/%s: %w", item.Source, item.OriginalID, err)
	}
	if r.TranslatedTitle == "" {
		return nil, fmt.Errorf("reply %s/%s: missing translated title", item.Source, item.OriginalID)
	}

	field := cls.Fixed
	if cls.Inferred {
		field = crawler.Field(r.Field)
		if !crawler.ValidField(field) {
			field = crawler.FallbackField
		}
	} else if field == "" {
		field = crawler.FallbackField
	}

	comments := r.TranslatedComments
	if comments == nil {
		comments = []TranslatedComment{}
	}

	return &ProcessedItem{
		RawItem:            item,
		Field:              field,
		TranslatedTitle:    r.TranslatedTitle,
		TranslatedContent:  r.TranslatedContent,
		CommentSummary:     r.CommentSummary,
		TranslatedComments: comments,
	}, nil
}
