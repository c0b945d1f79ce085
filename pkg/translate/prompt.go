package translate

import (
	"fmt"
	"strings"

	"github.com/Strangekim/jabdonsani/pkg/crawler"
)

// inferringPrompt asks the model to classify the field itself, on top of
// the translation work. Used for sources with no fixed classification.
const inferringPrompt = `You are a tech article translator. Translate the following %s post from English to Korean and classify its field.

TITLE: %s

CONTENT: %s

TOP COMMENTS:
%s

Respond ONLY with valid JSON (no markdown fences, no extra text):
{
  "translatedTitle": "the title translated into Korean",
  "translatedContent": "a 2-3 sentence Korean summary of the content. If the content is empty, describe the post briefly from its title alone; never invent details.",
  "field": "ai or dev (ai for AI/ML/LLM topics, dev for general development and programming)",
  "commentSummary": "a 1-2 sentence Korean summary of the main comment discussion",
  "translatedComments": [
    { "original": "original comment text", "translated": "Korean translation", "votes": 0 }
  ]
}`

// fixedPrompt is the translation-only variant for sources whose field is
// decided by configuration.
const fixedPrompt = `You are a tech article translator. Translate the following %s post from English to Korean.

TITLE: %s

CONTENT: %s

TOP COMMENTS:
%s

Respond ONLY with valid JSON (no markdown fences, no extra text):
{
  "translatedTitle": "the title translated into Korean",
  "translatedContent": "a 2-3 sentence Korean summary of the content. If the content is empty, describe the post briefly from its title alone; never invent details.",
  "commentSummary": "a 1-2 sentence Korean summary of the main comment discussion",
  "translatedComments": [
    { "original": "original comment text", "translated": "Korean translation", "votes": 0 }
  ]
}`

func buildPrompt(item crawler.RawItem, cls crawler.Classification) string {
	content := item.Content
	if content == "" {
		content = "(no content body)"
	}

	comments := formatComments(item.Comments)
	name := sourceName(item.Source)

	if cls.Inferred {
		return fmt.Sprintf(inferringPrompt, name, item.Title, content, comments)
	}
	return fmt.Sprintf(fixedPrompt, name, item.Title, content, comments)
}

func formatComments(comments []crawler.RawComment) string {
	if len(comments) == 0 {
		return "(no comments)"
	}
	lines := make([]string, len(comments))
	for i, c := range comments {
		lines[i] = fmt.Sprintf("[%d] %s (votes: %d): %s", i+1, c.Author, c.Votes, c.Text)
	}
	return strings.Join(lines, "\n")
}

func sourceName(s crawler.Source) string {
	switch s {
	case crawler.SourceHackerNews:
		return "Hacker News"
	case crawler.SourceHFPapers:
		return "Hugging Face Daily Papers"
	case crawler.SourceDevTo:
		return "Dev.to"
	case crawler.SourceLobsters:
		return "Lobste.rs"
	case crawler.SourceReddit:
		return "Reddit"
	}
	return string(s)
}
