package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceOpenRe     = regexp.MustCompile("(?i)^```(?:json)?[ \t]*\n?")
	fenceCloseRe    = regexp.MustCompile("(?i)\n?[ \t]*```[ \t]*$")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// ExtractJSON parses the single JSON object embedded in a model reply.
// Replies are not guaranteed well-formed, so a fixed sequence of repairs
// runs before parsing: strip a markdown fence, slice to the substring
// between the first "{" and the last "}", remove trailing commas before a
// closing brace or bracket. The order matters; do not reorder the steps.
func ExtractJSON(text string, v any) error {
	cleaned := fenceOpenRe.ReplaceAllString(strings.TrimSpace(text), "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end != -1 && start < end {
		cleaned = cleaned[start : end+1]
	}

	cleaned = trailingCommaRe.ReplaceAllString(cleaned, "$1")

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("parse model reply: %w", err)
	}
	return nil
}
