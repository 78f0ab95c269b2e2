package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the active configuration",
	Long:  `Show the current active configuration merged from file, environment variables, and command-line flags.`,
	RunE:  runConfig,
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Println("Active Configuration:")

	fmt.Println("\nEngine:")
	fmt.Printf("  Enabled: %t\n", cfg.Engine.Enabled)
	fmt.Printf("  Schema Filter Threshold: %d\n", cfg.Engine.SchemaFilterThreshold)
	fmt.Printf("  Default Dialect: %s\n", cfg.Engine.DefaultDialect)
	fmt.Printf("  Execution Max Rows: %d\n", cfg.Engine.ExecutionMaxRows)

	fmt.Println("\nLLM:")
	fmt.Printf("  Provider: %s\n", cfg.LLM.Provider)
	fmt.Printf("  Model: %s\n", cfg.LLM.Model)
	fmt.Printf("  API Key Set: %t\n", cfg.LLM.APIKey != "")

	if cfg.LLM.BaseURL != "" {
		fmt.Printf("  Base URL: %s\n", cfg.LLM.BaseURL)
	}

	fmt.Printf("  Temperature: %.2f\n", cfg.LLM.Temperature)
	fmt.Printf("  Max Tokens: %d\n", cfg.LLM.MaxTokens)

	fmt.Println("\nCache:")
	fmt.Printf("  Enabled: %t\n", cfg.Cache.Enabled)
	fmt.Printf("  TTL: %d seconds\n", cfg.Cache.TTLSeconds)

	fmt.Println("\nLogging:")
	fmt.Printf("  Level: %s\n", cfg.Logging.Level)
	fmt.Printf("  Format: %s\n", cfg.Logging.Format)
	fmt.Printf("  Output: %s\n", cfg.Logging.Output)

	if len(cfg.Datasources) > 0 {
		fmt.Println("\nDatasources:")

		systems := make([]string, 0, len(cfg.Datasources))
		for systemID := range cfg.Datasources {
			systems = append(systems, systemID)
		}

		sort.Strings(systems)

		for _, systemID := range systems {
			ds := cfg.Datasources[systemID]
			fmt.Printf("  %s: driver=%s dialect=%s\n", systemID, ds.Driver, ds.Dialect)
		}
	}

	return nil
}
