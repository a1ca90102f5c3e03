package main

import (
	"fmt"
	"time"

	"strreg/internal/analyzer"

	"github.com/spf13/cobra"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <value>",
	Short: "Print the properties computed for a value",
	Long: `Compute the properties the server would store for a value, without
starting the server or storing anything.

Examples:
  strreg analyze Racecar
  strreg analyze "hello world" --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "Output format (json, yaml, human)")
	rootCmd.AddCommand(analyzeCmd)
}

// AnalyzeResponseCLI is the analyze command output
type AnalyzeResponseCLI struct {
	Value      string              `json:"value" yaml:"value"`
	Properties analyzer.Properties `json:"properties" yaml:"properties"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	resp := &AnalyzeResponseCLI{
		Value:      args[0],
		Properties: analyzer.Analyze(args[0], time.Now()),
	}

	out, err := FormatResponse(resp, OutputFormat(analyzeFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
