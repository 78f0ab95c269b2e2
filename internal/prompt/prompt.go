// Package prompt renders schema models and questions into the text
// templates sent to the language model. All renderers are pure:
// identical inputs always produce byte-identical prompts.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/querypilot/nl2sql/internal/schema"
)

// DefaultEvidence is the literal used when the caller supplies none.
const DefaultEvidence = "无"

// SchemaInfo converts the schema model to the readable block embedded
// in the generation prompt. Tables and columns are emitted in declared
// order.
func SchemaInfo(model *schema.Model) string {
	var sb strings.Builder

	for _, table := range model.Tables {
		if table.Description != "" && table.Description != table.Name {
			sb.WriteString(fmt.Sprintf("Table: %s (%s)\n", table.Name, table.Description))
		} else {
			sb.WriteString(fmt.Sprintf("Table: %s\n", table.Name))
		}

		primaryKeys := make(map[string]bool, len(table.PrimaryKeys))
		for _, pk := range table.PrimaryKeys {
			primaryKeys[pk] = true
		}

		for _, column := range table.Columns {
			sb.WriteString("  - ")
			sb.WriteString(formatColumn(column, primaryKeys[column.Name]))
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
	}

	if len(model.ForeignKeys) > 0 {
		sb.WriteString("Foreign keys:\n")

		for _, fk := range model.ForeignKeys {
			sb.WriteString("  - ")
			sb.WriteString(fk)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// formatColumn renders one column descriptor line
func formatColumn(column schema.Column, primaryKey bool) string {
	parts := []string{fmt.Sprintf("%s:%s", column.Name, column.Type)}

	if column.Description != "" && column.Description != column.Name {
		parts = append(parts, column.Description)
	}

	if primaryKey {
		parts = append(parts, "Primary Key")
	}

	if len(column.SampleValues) > 0 {
		parts = append(parts, fmt.Sprintf("Examples: [%s]", strings.Join(column.SampleValues, ",")))
	}

	if len(column.ValueMapping) > 0 {
		// Map iteration order is random; sort keys so the prompt is stable.
		keys := make([]string, 0, len(column.ValueMapping))
		for k := range column.ValueMapping {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, column.ValueMapping[k]))
		}

		parts = append(parts, fmt.Sprintf("ValueMapping: {%s}", strings.Join(pairs, ",")))
	}

	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

const generationTemplate = `You are an expert at converting natural language questions into %s SQL queries.
Generate exactly one SELECT statement that answers the question against the schema below.

Rules:
1. Use proper %s syntax.
2. Only query tables and columns that exist in the schema.
3. Emit a single read-only SELECT statement, nothing else.
4. Wrap the statement in a fenced code block marked sql.

Database Schema:
%s
Question: %s

Evidence: %s

Execution intent: %s
`

// GenerationPrompt renders the SQL generation prompt
func GenerationPrompt(dialect, question, schemaInfo, evidence, executionDesc string) string {
	if strings.TrimSpace(evidence) == "" {
		evidence = DefaultEvidence
	}

	return fmt.Sprintf(
		generationTemplate,
		dialect, dialect, schemaInfo, question, evidence, executionDesc,
	)
}

const filterTemplate = `Given the question and the list of database tables below, select the tables needed to answer the question.

Question: %s

Tables: %s

Respond with only a JSON array of table names, for example ["orders","customers"].
`

// FilterPrompt renders the schema relevance filter prompt
func FilterPrompt(question string, tableNames []string) string {
	return fmt.Sprintf(filterTemplate, question, strings.Join(tableNames, ", "))
}
