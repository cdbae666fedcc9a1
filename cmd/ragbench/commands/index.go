package commands

import (
	"context"
	"errors"

	"ragbench/pkg/embed"
	"ragbench/pkg/index"
	"ragbench/pkg/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIndexCommand() *cobra.Command {
	var (
		codebase       string
		embeddingModel string
		postgresDSN    string
		batchSize      int
		rateLimitRPS   float64
		rateLimitBurst int
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed a codebase into the vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := resolveString(codebase, appConfig.Codebase)
			if root == "" {
				return errors.New("codebase path is required")
			}
			dsn := resolveString(postgresDSN, appConfig.Postgres.DSN)
			if dsn == "" {
				return errors.New("postgres DSN is required")
			}
			model := resolveString(embeddingModel, appConfig.OpenAI.Model)
			if model == "" {
				model = defaultEmbeddingModel
			}

			counter := buildCounter(logger)
			embedder, err := buildEmbedder(model, counter)
			if err != nil {
				return err
			}

			ctx := context.Background()
			st, err := store.New(ctx, store.Config{
				DSN:          dsn,
				Dimension:    appConfig.Postgres.Dimension,
				EnsureSchema: true,
			})
			if err != nil {
				return err
			}
			defer st.Close()

			var limiter embed.Limiter
			rps := rateLimitRPS
			if rps == 0 {
				rps = appConfig.OpenAI.RateLimitRPS
			}
			if rps > 0 {
				burst := rateLimitBurst
				if burst <= 0 {
					burst = appConfig.OpenAI.RateLimitBurst
				}
				l, stop, err := embed.NewLimiter(rps, burst)
				if err != nil {
					return err
				}
				limiter = l
				defer stop()
			}

			indexer := index.Indexer{
				Embedder:  embedder,
				Store:     st,
				Limiter:   limiter,
				BatchSize: batchSize,
				Logger:    logger,
			}
			indexed, err := indexer.Run(ctx, root)
			if err != nil {
				return err
			}
			logger.Info("indexing complete",
				zap.Int("files", indexed),
				zap.String("model", model),
				zap.String("codebase", root))
			return nil
		},
	}

	cmd.Flags().StringVar(&codebase, "codebase", "", "codebase directory to index")
	cmd.Flags().StringVar(&embeddingModel, "embedding-model", "", "OpenAI embedding model")
	cmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "PostgreSQL connection string for the vector store")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "files per upsert batch")
	cmd.Flags().Float64Var(&rateLimitRPS, "rate-limit-rps", 0, "max embedding requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 1, "rate limit burst size")

	return cmd
}
