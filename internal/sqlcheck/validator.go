// Package sqlcheck guarantees that only read-only SELECT statements
// reach the execution layer. Statements come from an untrusted
// generator, so a failed check discards the statement entirely; there
// is no partial validation and no second chance.
package sqlcheck

import (
	"strings"

	"github.com/querypilot/nl2sql/internal/errors"
)

// Banned keyword substrings. Matching is plain substring on the
// normalized text, which can over-reject literals that merely contain
// one of these words; that trade-off is intentional for a security
// boundary.
var bannedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "TRUNCATE",
	"ALTER", "CREATE", "GRANT", "REVOKE",
}

// ValidateReadOnly rejects any statement that is not a single read-only
// query.
func ValidateReadOnly(sqlText string) error {
	normalized := strings.ToUpper(strings.TrimSpace(stripComments(sqlText)))

	if !strings.HasPrefix(normalized, "SELECT") {
		return errors.New(errors.ErrTypeSecurityViolation,
			"only SELECT statements are allowed")
	}

	for _, keyword := range bannedKeywords {
		if strings.Contains(normalized, keyword) {
			return errors.Newf(errors.ErrTypeSecurityViolation,
				"statement contains forbidden keyword: %s", keyword)
		}
	}

	return nil
}

// stripComments removes -- line comments and /* */ block comments
func stripComments(sqlText string) string {
	var sb strings.Builder

	inLineComment := false
	inBlockComment := false

	for i := 0; i < len(sqlText); i++ {
		if inLineComment {
			if sqlText[i] == '\n' {
				inLineComment = false

				sb.WriteByte('\n')
			}

			continue
		}

		if inBlockComment {
			if sqlText[i] == '*' && i+1 < len(sqlText) && sqlText[i+1] == '/' {
				inBlockComment = false
				i++
			}

			continue
		}

		if sqlText[i] == '-' && i+1 < len(sqlText) && sqlText[i+1] == '-' {
			inLineComment = true
			i++

			continue
		}

		if sqlText[i] == '/' && i+1 < len(sqlText) && sqlText[i+1] == '*' {
			inBlockComment = true
			i++

			continue
		}

		sb.WriteByte(sqlText[i])
	}

	return sb.String()
}
