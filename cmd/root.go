// Package cmd implements the nl2sql command line interface.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/querypilot/nl2sql/internal/config"
	"github.com/querypilot/nl2sql/internal/datasource"
	"github.com/querypilot/nl2sql/internal/engine"
	"github.com/querypilot/nl2sql/internal/llm"
	"github.com/querypilot/nl2sql/internal/logging"
	"github.com/querypilot/nl2sql/internal/options"
	"github.com/querypilot/nl2sql/internal/schema"
)

var (
	flagLogLevel        string
	flagModel           string
	flagFilterThreshold int
	flagMaxRows         int
	flagSchemaFile      string

	// cfg is populated by the persistent pre-run before any command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nl2sql",
	Short: "Generate SQL from natural language questions",
	Long: `nl2sql turns natural language questions into validated read-only SQL
statements using a language model. It resolves the tenant schema, filters it
down to the relevant tables for large databases, assembles a generation
prompt, and rejects anything that is not a single SELECT statement.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Language model to use")
	rootCmd.PersistentFlags().IntVar(&flagFilterThreshold, "filter-threshold", 0, "Table count above which the schema filter runs")
	rootCmd.PersistentFlags().IntVar(&flagMaxRows, "max-rows", 0, "Maximum rows returned by option queries")
	rootCmd.PersistentFlags().StringVar(&flagSchemaFile, "schema-file", "schemas.json", "Path to the JSON schema metadata file")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads configuration with flag overrides and initializes logging
func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.LoadConfigWithOverrides(map[string]interface{}{
		"log-level":        flagLogLevel,
		"model":            flagModel,
		"filter-threshold": flagFilterThreshold,
		"max-rows":         flagMaxRows,
	})
	if err != nil {
		return err
	}

	cfg = loaded

	if err := logging.InitializeLogger(cfg.Logging); err != nil {
		logging.SetupFallbackLogger()
	}

	return nil
}

// buildOrchestrator wires the generation pipeline from the loaded
// configuration. The returned executor must be closed by the caller.
func buildOrchestrator() (*engine.Orchestrator, *datasource.SQLExecutor, error) {
	service := llm.NewClient(llm.Config{})
	if err := service.Configure(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}); err != nil {
		return nil, nil, err
	}

	datasources := datasource.NewStaticProvider(cfg.Datasources)
	executor := datasource.NewSQLExecutor(datasources)

	orchestrator := engine.NewOrchestrator(
		service,
		schema.NewSnapshotBuilder(schema.NewFileProvider(flagSchemaFile)),
		datasources,
		engine.NewRelevanceFilter(service, cfg.Engine.SchemaFilterThreshold),
		options.NewMapper(executor, cfg.Engine.ExecutionMaxRows),
		cfg.Engine.DefaultDialect,
	)

	return orchestrator, executor, nil
}
