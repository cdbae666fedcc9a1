package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	appConfig  Config
	logger     *zap.Logger
	configPath string
	envFile    string
	verbose    bool
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ragbench",
		Short: "Benchmark embedding RAG against agentic code search",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; API keys may come from the shell.
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return err
				}
			} else {
				_ = godotenv.Load()
			}

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			appConfig = cfg

			if verbose {
				logger, _ = zap.NewDevelopment()
			} else {
				logger, _ = zap.NewProduction()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file with API keys")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")

	root.AddCommand(newIndexCommand())
	root.AddCommand(newEvalCommand())
	root.AddCommand(newCompareCommand())
	root.AddCommand(newListCommand())

	return root
}
