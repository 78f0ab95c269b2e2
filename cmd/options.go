package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/querypilot/nl2sql/internal/config"
	"github.com/querypilot/nl2sql/internal/errors"
	"github.com/querypilot/nl2sql/internal/options"
)

var (
	optionsSystem  string
	optionsLabel   string
	optionsValue   string
	optionsSource  string
	optionsNoCache bool

	// optionCache memoizes option lists across invocations of long
	// running callers; for one-shot CLI runs it only dedupes repeats
	// within the process.
	optionCache *options.Cache
)

var optionsCmd = &cobra.Command{
	Use:   "options <question>",
	Short: "Generate, execute, and map a query into label/value options",
	Long: `Generate a SELECT statement for the question, execute it against the
system's datasource, and print each row as a label/value option pair. The
result columns named by --label and --value feed the two sides of each pair.

With --source the question is skipped entirely and the fixed option list
registered under that key in the static_options configuration section is
printed, without touching the database or the language model.

Examples:
  nl2sql options --system hr --label dept_name --value dept_id "list all departments"
  nl2sql options --system hr --source yes_no ""`,
	Args: cobra.ExactArgs(1),
	RunE: runOptions,
}

func init() {
	optionsCmd.Flags().StringVar(&optionsSystem, "system", "", "System identifier of the target database")
	optionsCmd.Flags().StringVar(&optionsLabel, "label", "", "Result column used as the option label")
	optionsCmd.Flags().StringVar(&optionsValue, "value", "", "Result column used as the option value")
	optionsCmd.Flags().StringVar(&optionsSource, "source", "", "Static option source key; bypasses SQL generation")
	optionsCmd.Flags().BoolVar(&optionsNoCache, "no-cache", false, "Bypass the option cache")

	_ = optionsCmd.MarkFlagRequired("system")
}

func runOptions(cmd *cobra.Command, args []string) error {
	question := args[0]

	if optionsSource != "" {
		return runStaticOptions()
	}

	if optionsLabel == "" || optionsValue == "" {
		return errors.New(errors.ErrTypeInvalidArgument,
			"--label and --value are required unless --source is given")
	}

	key := options.CacheKey{
		SourceType: "sql",
		SystemID:   optionsSystem,
		ConfigHash: options.ConfigHash(question, optionsLabel, optionsValue),
	}

	useCache := cfg.Cache.Enabled && !optionsNoCache

	if useCache {
		if optionCache == nil {
			optionCache = options.NewCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second)
		}

		if items, ok := optionCache.Get(key); ok {
			printItems(items)
			return nil
		}
	}

	orchestrator, executor, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer executor.Close()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Generating and executing SQL..."
	s.Start()

	items, err := orchestrator.GenerateAndExecute(
		cmd.Context(), optionsSystem, question, optionsLabel, optionsValue)

	s.Stop()

	if err != nil {
		return err
	}

	if useCache {
		optionCache.Put(key, items)
	}

	printItems(items)

	return nil
}

// runStaticOptions resolves a fixed option list from the registry built
// out of the static_options configuration section. No database or model
// call is involved.
func runStaticOptions() error {
	registry, err := staticRegistry(cfg.StaticOptions)
	if err != nil {
		return err
	}

	items, ok := registry.Lookup(optionsSource)
	if !ok {
		return errors.Newf(errors.ErrTypeInvalidArgument,
			"unknown static option source: %s", optionsSource).
			WithSuggestion("registered sources: " + strings.Join(registry.Keys(), ", "))
	}

	printItems(items)

	return nil
}

// staticRegistry builds the option registry from configuration
func staticRegistry(sources map[string][]config.StaticOption) (*options.Registry, error) {
	registry := options.NewRegistry()

	for key, entries := range sources {
		items := make([]options.Item, 0, len(entries))
		for _, entry := range entries {
			items = append(items, options.Item{Label: entry.Label, Value: entry.Value})
		}

		if err := registry.Register(key, items); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func printItems(items []options.Item) {
	if len(items) == 0 {
		fmt.Println("No options returned.")
		return
	}

	for _, item := range items {
		fmt.Printf("%s\t%s\n", item.Label, item.Value)
	}
}
