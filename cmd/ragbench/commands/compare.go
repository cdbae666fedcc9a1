package commands

import (
	"encoding/json"
	"os"
	"path/filepath"

	"ragbench/pkg/compare"
	"ragbench/pkg/report"
	"ragbench/pkg/resultlog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCompareCommand() *cobra.Command {
	var (
		ragPath      string
		agenticPath  string
		markdownPath string
		jsonPath     string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a RAG run against an agentic run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ragPath == "" || agenticPath == "" {
				dir := appConfig.ResultsDir
				if dir == "" {
					dir = "results"
				}
				if ragPath == "" {
					ragPath = filepath.Join(dir, "rag_results.json")
				}
				if agenticPath == "" {
					agenticPath = filepath.Join(dir, "agentic_results.json")
				}
			}

			baseline, err := resultlog.Read(ragPath)
			if err != nil {
				return err
			}
			candidate, err := resultlog.Read(agenticPath)
			if err != nil {
				return err
			}

			summary, err := compare.Compare(baseline, candidate)
			if err != nil {
				return err
			}

			report.ConsoleSummary(cmd.OutOrStdout(), summary)

			if markdownPath != "" {
				file, err := os.Create(markdownPath)
				if err != nil {
					return err
				}
				if err := report.ComparisonMarkdown(file, summary); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				logger.Info("wrote markdown report", zap.String("path", markdownPath))
			}

			if jsonPath != "" {
				file, err := os.Create(jsonPath)
				if err != nil {
					return err
				}
				encoder := json.NewEncoder(file)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(summary); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				logger.Info("wrote comparison summary", zap.String("path", jsonPath))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&ragPath, "rag", "", "RAG result file (defaults to results/rag_results.json)")
	cmd.Flags().StringVar(&agenticPath, "agentic", "", "agentic result file (defaults to results/agentic_results.json)")
	cmd.Flags().StringVar(&markdownPath, "markdown", "", "write the full markdown report to this path")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the comparison summary JSON to this path")

	return cmd
}
