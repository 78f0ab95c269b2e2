package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	generateSystem   string
	generateEvidence string
)

var generateCmd = &cobra.Command{
	Use:   "generate <question>",
	Short: "Generate a read-only SQL statement for a question",
	Long: `Generate a single SELECT statement that answers a natural language
question against the schema of the given system. The statement is printed but
not executed.

Examples:
  nl2sql generate --system hr "how many employees joined this year?"
  nl2sql generate --system sales --evidence "fiscal year starts in April" "revenue per quarter"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateSystem, "system", "", "System identifier of the target database")
	generateCmd.Flags().StringVar(&generateEvidence, "evidence", "", "Extra domain knowledge passed to the model")

	_ = generateCmd.MarkFlagRequired("system")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	orchestrator, executor, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer executor.Close()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Generating SQL..."
	s.Start()

	statement, err := orchestrator.GenerateSQL(
		cmd.Context(), generateSystem, args[0], generateEvidence)

	s.Stop()

	if err != nil {
		return err
	}

	fmt.Printf("-- dialect: %s\n%s\n", statement.Dialect, statement.SQL)

	return nil
}
