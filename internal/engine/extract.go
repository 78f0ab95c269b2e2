package engine

import (
	"strings"
)

// extractSQL pulls the SQL statement out of a model response. Fenced
// blocks marked sql win over plain fenced blocks; when the response has
// no closed fence the whole trimmed text is taken as the statement. The
// returned text never contains a fence marker: stray markers from
// unterminated fences are stripped before the fallback is used.
func extractSQL(response string) string {
	if block, ok := fencedBlock(response, "```sql"); ok {
		return block
	}

	if block, ok := fencedBlock(response, "```"); ok {
		return block
	}

	cleaned := strings.ReplaceAll(response, "```sql", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	return strings.TrimSpace(cleaned)
}

// fencedBlock returns the content of the first code block opened by the
// given marker.
func fencedBlock(text, marker string) (string, bool) {
	start := strings.Index(text, marker)
	if start == -1 {
		return "", false
	}

	rest := text[start+len(marker):]

	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}

	return strings.TrimSpace(rest[:end]), true
}
