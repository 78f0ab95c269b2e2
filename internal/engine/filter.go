package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/querypilot/nl2sql/internal/llm"
	"github.com/querypilot/nl2sql/internal/logging"
	"github.com/querypilot/nl2sql/internal/metrics"
	"github.com/querypilot/nl2sql/internal/prompt"
	"github.com/querypilot/nl2sql/internal/schema"
)

// DefaultFilterThreshold is the table count at which the relevance
// filter starts issuing a model call.
const DefaultFilterThreshold = 10

// FilterResult reports what the relevance filter did with a schema
// model. Err is advisory: when the filter fails the model is left
// untouched and generation proceeds with the full schema.
type FilterResult struct {
	Model    *schema.Model
	Filtered bool
	Err      error
}

// RelevanceFilter shrinks large schema models to the tables a model
// call deems relevant to the question. It is strictly best-effort and
// never fails the enclosing request.
type RelevanceFilter struct {
	service   llm.Service
	threshold int
}

// NewRelevanceFilter creates a filter with the given table count
// threshold. A non-positive threshold falls back to the default.
func NewRelevanceFilter(service llm.Service, threshold int) *RelevanceFilter {
	if threshold <= 0 {
		threshold = DefaultFilterThreshold
	}

	return &RelevanceFilter{service: service, threshold: threshold}
}

// Filter returns the model to use for prompt assembly. Schemas below
// the threshold pass through without a model call; at the threshold and
// above the filter asks the model which tables matter. Any failure,
// unparseable response, or empty selection leaves the model unchanged.
func (f *RelevanceFilter) Filter(
	ctx context.Context,
	model *schema.Model,
	question string,
) FilterResult {
	if model.TableCount < f.threshold {
		return FilterResult{Model: model, Filtered: false}
	}

	metrics.IncrementModelCall(metrics.StageFilter)

	response, err := f.service.Call(ctx, prompt.FilterPrompt(question, model.TableNames()))
	if err != nil {
		return FilterResult{Model: model, Filtered: false, Err: fmt.Errorf("filter call failed: %w", err)}
	}

	selected, err := parseTableSelection(response)
	if err != nil {
		return FilterResult{Model: model, Filtered: false, Err: err}
	}

	known := make(map[string]bool, model.TableCount)
	for _, name := range model.TableNames() {
		known[strings.ToLower(name)] = true
	}

	keep := make(map[string]bool, len(selected))

	for _, name := range selected {
		lower := strings.ToLower(strings.TrimSpace(name))
		if known[lower] {
			keep[lower] = true
		} else {
			logging.GetLogger().
				WithField("table", name).
				Debug("filter selected unknown table, ignoring")
		}
	}

	if len(keep) == 0 {
		return FilterResult{
			Model:    model,
			Filtered: false,
			Err:      fmt.Errorf("filter selected no known tables"),
		}
	}

	model.Retain(keep)

	return FilterResult{Model: model, Filtered: true}
}

// parseTableSelection decodes the JSON array of table names from a
// model response, tolerating fenced code blocks and surrounding prose.
func parseTableSelection(response string) ([]string, error) {
	text := response

	if block, ok := fencedBlock(text, "```json"); ok {
		text = block
	} else if block, ok := fencedBlock(text, "```"); ok {
		text = block
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")

	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in filter response")
	}

	var names []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &names); err != nil {
		return nil, fmt.Errorf("failed to parse filter response: %w", err)
	}

	return names, nil
}
