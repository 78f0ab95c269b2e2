// Package engine wires schema resolution, relevance filtering, prompt
// assembly, model invocation, and security validation into the SQL
// generation pipeline.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/querypilot/nl2sql/internal/datasource"
	"github.com/querypilot/nl2sql/internal/errors"
	"github.com/querypilot/nl2sql/internal/llm"
	"github.com/querypilot/nl2sql/internal/logging"
	"github.com/querypilot/nl2sql/internal/metrics"
	"github.com/querypilot/nl2sql/internal/options"
	"github.com/querypilot/nl2sql/internal/prompt"
	"github.com/querypilot/nl2sql/internal/schema"
	"github.com/querypilot/nl2sql/internal/sqlcheck"
)

// SchemaBuilder resolves the schema model for a tenant
type SchemaBuilder interface {
	BuildSchema(ctx context.Context, systemID string) (*schema.Model, error)
}

// OptionMapper executes a validated statement and reduces the rows to
// option items.
type OptionMapper interface {
	Execute(ctx context.Context, systemID, sqlText, labelColumn, valueColumn string) ([]options.Item, error)
}

// GeneratedStatement is the outcome of a successful generation request
type GeneratedStatement struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect"`
}

// Execution intents embedded in the generation prompt.
const (
	intentReturn  = "The statement is returned to the caller and is not executed."
	intentExecute = "The statement is executed immediately and its rows are mapped to label/value options."
)

// Orchestrator drives the generation pipeline. Each request makes
// exactly one generation model call; the relevance filter may add one
// more for large schemas.
type Orchestrator struct {
	service        llm.Service
	schemas        SchemaBuilder
	datasources    datasource.Provider
	filter         *RelevanceFilter
	mapper         OptionMapper
	defaultDialect string
}

// NewOrchestrator creates an orchestrator over the given collaborators
func NewOrchestrator(
	service llm.Service,
	schemas SchemaBuilder,
	datasources datasource.Provider,
	filter *RelevanceFilter,
	mapper OptionMapper,
	defaultDialect string,
) *Orchestrator {
	if defaultDialect == "" {
		defaultDialect = "mysql"
	}

	return &Orchestrator{
		service:        service,
		schemas:        schemas,
		datasources:    datasources,
		filter:         filter,
		mapper:         mapper,
		defaultDialect: defaultDialect,
	}
}

// GenerateSQL turns a natural language question into a validated
// read-only SQL statement without executing it.
func (o *Orchestrator) GenerateSQL(
	ctx context.Context,
	systemID, question, evidence string,
) (*GeneratedStatement, error) {
	return o.generate(ctx, systemID, question, evidence, intentReturn)
}

// GenerateAndExecute generates a statement the same way GenerateSQL
// does, executes it, and maps the rows to option items using the given
// label and value columns.
func (o *Orchestrator) GenerateAndExecute(
	ctx context.Context,
	systemID, question, labelColumn, valueColumn string,
) ([]options.Item, error) {
	if strings.TrimSpace(labelColumn) == "" || strings.TrimSpace(valueColumn) == "" {
		return nil, fail(errors.New(errors.ErrTypeInvalidArgument,
			"label column and value column are required"))
	}

	evidence := fmt.Sprintf(
		"The result must contain a column named %s used as the display label and a column named %s used as the value.",
		labelColumn, valueColumn,
	)

	statement, err := o.generate(ctx, systemID, question, evidence, intentExecute)
	if err != nil {
		return nil, err
	}

	items, err := o.mapper.Execute(ctx, systemID, statement.SQL, labelColumn, valueColumn)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// generate runs the pipeline: validate input, resolve dialect and
// schema, filter, assemble the prompt, call the model once, extract the
// statement, and validate it as read-only.
func (o *Orchestrator) generate(
	ctx context.Context,
	systemID, question, evidence, intent string,
) (*GeneratedStatement, error) {
	start := time.Now()

	logger := logging.GetLogger().WithFields(map[string]interface{}{
		"request_id": uuid.NewString(),
		"system_id":  systemID,
	})

	if strings.TrimSpace(systemID) == "" {
		return nil, fail(errors.New(errors.ErrTypeInvalidArgument, "system identifier is required"))
	}

	if strings.TrimSpace(question) == "" {
		return nil, fail(errors.New(errors.ErrTypeInvalidArgument, "question is required"))
	}

	dialect := o.resolveDialect(ctx, systemID, logger)

	model, err := o.schemas.BuildSchema(ctx, systemID)
	if err != nil {
		return nil, fail(err)
	}

	result := o.filter.Filter(ctx, model, question)
	if result.Err != nil {
		logger.WithError(result.Err).Warn("schema filter failed, using full schema")
	}

	logger.WithFields(map[string]interface{}{
		"tables":   result.Model.TableCount,
		"filtered": result.Filtered,
		"dialect":  dialect,
	}).Debug("assembling generation prompt")

	generationPrompt := prompt.GenerationPrompt(
		dialect, question, prompt.SchemaInfo(result.Model), evidence, intent)

	metrics.IncrementModelCall(metrics.StageGeneration)

	response, err := o.service.Call(ctx, generationPrompt)
	if err != nil {
		return nil, fail(errors.Wrap(err, errors.ErrTypeGenerationFailure,
			"model call failed"))
	}

	sqlText := extractSQL(response)
	if sqlText == "" {
		return nil, fail(errors.New(errors.ErrTypeGenerationFailure,
			"model returned no SQL statement"))
	}

	if err := sqlcheck.ValidateReadOnly(sqlText); err != nil {
		return nil, fail(errors.Wrap(err, errors.ErrTypeSecurityViolation,
			"generated statement rejected"))
	}

	metrics.ObserveGeneration(time.Since(start))
	logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("generated SQL statement")

	return &GeneratedStatement{SQL: sqlText, Dialect: dialect}, nil
}

// resolveDialect looks up the tenant dialect; any failure falls back to
// the engine default and never fails the request.
func (o *Orchestrator) resolveDialect(
	ctx context.Context,
	systemID string,
	logger *logging.Logger,
) string {
	definition, err := o.datasources.GetBySystemID(ctx, systemID)
	if err != nil {
		logger.WithError(err).Debug("dialect lookup failed, using default")
		return o.defaultDialect
	}

	if definition.Dialect == "" {
		return o.defaultDialect
	}

	return definition.Dialect
}

// fail records the failure kind before handing the error back
func fail(err error) error {
	metrics.IncrementGenerationFailure(string(errors.GetType(err)))
	return err
}
