package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"ragbench/pkg/core"
	"ragbench/pkg/corpus"
	"ragbench/pkg/embed"
	"ragbench/pkg/extract"
	"ragbench/pkg/report"
	"ragbench/pkg/resultlog"
	"ragbench/pkg/retriever"
	"ragbench/pkg/store"
	"ragbench/pkg/tokens"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultMaxFiles       = 10
	defaultTopK           = 10
)

func newEvalCommand() *cobra.Command {
	var (
		corpusPath      string
		method          string
		codebase        string
		toolCommand     string
		toolArgs        []string
		embeddingModel  string
		anthropicModel  string
		postgresDSN     string
		topK            int
		maxFiles        int
		outputPath      string
		format          string
		questionTimeout time.Duration
		noCache         bool
		mockResponse    string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one retrieval method against the question corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			corpusResolved := resolveString(corpusPath, appConfig.Corpus)
			if corpusResolved == "" {
				return errors.New("corpus path is required")
			}
			formatResolved := resolveString(format, appConfig.Format)
			if formatResolved == "" {
				formatResolved = report.FormatTable
			}
			maxFilesResolved := resolveInt(maxFiles, appConfig.MaxFiles, defaultMaxFiles)
			topKResolved := resolveInt(topK, appConfig.TopK, defaultTopK)

			questions, err := corpus.Load(corpusResolved)
			if err != nil {
				return err
			}

			counter := buildCounter(logger)

			evalMethod, annotate, cleanup, err := buildMethod(methodOptions{
				method:         method,
				codebase:       resolveString(codebase, appConfig.Codebase),
				toolCommand:    resolveString(toolCommand, appConfig.Tool.Command),
				toolArgs:       resolveStrings(toolArgs, appConfig.Tool.Args),
				embeddingModel: resolveString(embeddingModel, appConfig.OpenAI.Model),
				anthropicModel: resolveString(anthropicModel, appConfig.Anthropic.Model),
				postgresDSN:    resolveString(postgresDSN, appConfig.Postgres.DSN),
				topK:           topKResolved,
				maxFiles:       maxFilesResolved,
				mockResponse:   mockResponse,
				counter:        counter,
			})
			if err != nil {
				return err
			}
			defer cleanup()

			if !noCache && appConfig.Cache.Enabled {
				ttl := time.Duration(appConfig.Cache.TTLHours) * time.Hour
				cached, err := retriever.NewCached(evalMethod, appConfig.Cache.Dir, ttl)
				if err != nil {
					return err
				}
				evalMethod = cached
			}

			runner := core.Runner{
				Extractor: extract.New(),
				Counter:   counter,
				MaxFiles:  maxFilesResolved,
				Timeout:   questionTimeout,
				Logger:    logger,
			}

			out, err := runner.Run(context.Background(), questions, evalMethod)
			if err != nil {
				return err
			}
			annotate(&out)

			outputResolved := outputPath
			if outputResolved == "" {
				dir := appConfig.ResultsDir
				if dir == "" {
					dir = "results"
				}
				outputResolved = filepath.Join(dir, out.Approach+"_results.json")
			}
			if err := resultlog.Write(outputResolved, out); err != nil {
				return err
			}
			logger.Info("wrote results",
				zap.String("path", outputResolved),
				zap.String("approach", out.Approach),
				zap.Int("questions", len(out.Results)))

			rep, err := buildReporter(formatResolved, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return rep.Report(out)
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "path to the questions file")
	cmd.Flags().StringVar(&method, "method", "rag", "retrieval method (rag, agentic, anthropic, mock)")
	cmd.Flags().StringVar(&codebase, "codebase", "", "codebase directory the agentic tool runs in")
	cmd.Flags().StringVar(&toolCommand, "tool", "", "agentic query command (for example brv)")
	cmd.Flags().StringSliceVar(&toolArgs, "tool-arg", nil, "extra argument for the agentic command (repeatable)")
	cmd.Flags().StringVar(&embeddingModel, "embedding-model", "", "OpenAI embedding model")
	cmd.Flags().StringVar(&anthropicModel, "anthropic-model", "", "Anthropic model for API-backed agentic search")
	cmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "PostgreSQL connection string for the vector store")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of files retrieved per question")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "cap on extracted file paths per question")
	cmd.Flags().StringVar(&outputPath, "output", "", "result file path (defaults to results/<approach>_results.json)")
	cmd.Flags().StringVar(&format, "format", "", "console format (table, json, markdown, csv)")
	cmd.Flags().DurationVar(&questionTimeout, "question-timeout", 120*time.Second, "per-question retrieval timeout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the retrieval cache")
	cmd.Flags().StringVar(&mockResponse, "mock-response", "", "fixed response for the mock method")

	return cmd
}

type methodOptions struct {
	method         string
	codebase       string
	toolCommand    string
	toolArgs       []string
	embeddingModel string
	anthropicModel string
	postgresDSN    string
	topK           int
	maxFiles       int
	mockResponse   string
	counter        tokens.Counter
}

// buildMethod returns the method, an annotate hook that stamps the run
// output with the method's configuration, and a cleanup func.
func buildMethod(opts methodOptions) (core.Method, func(*core.RunOutput), func(), error) {
	noCleanup := func() {}
	switch opts.method {
	case "rag":
		model := opts.embeddingModel
		if model == "" {
			model = defaultEmbeddingModel
		}
		embedder, err := buildEmbedder(model, opts.counter)
		if err != nil {
			return nil, nil, nil, err
		}
		if opts.postgresDSN == "" {
			return nil, nil, nil, errors.New("rag method requires a postgres DSN")
		}
		st, err := store.New(context.Background(), store.Config{
			DSN:       opts.postgresDSN,
			Dimension: appConfig.Postgres.Dimension,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		vector := &retriever.Vector{Embedder: embedder, Store: st, TopK: opts.topK}
		return vector, func(out *core.RunOutput) {
			out.Model = model
			out.TopK = opts.topK
		}, func() { _ = st.Close() }, nil

	case "agentic":
		if opts.toolCommand == "" {
			return nil, nil, nil, errors.New("agentic method requires --tool")
		}
		tool := &retriever.Tool{
			Command:  opts.toolCommand,
			Args:     opts.toolArgs,
			Dir:      opts.codebase,
			MaxFiles: opts.maxFiles,
		}
		return tool, func(out *core.RunOutput) {
			out.Tool = opts.toolCommand
		}, noCleanup, nil

	case "anthropic":
		querier, err := retriever.NewAnthropicFromEnv(opts.anthropicModel, opts.maxFiles)
		if err != nil {
			return nil, nil, nil, err
		}
		cfg := appConfig.Anthropic
		if cfg.MaxTokens > 0 {
			querier.MaxTokens = cfg.MaxTokens
		}
		if cfg.TimeoutSeconds > 0 {
			querier.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.MaxRetries > 0 {
			querier.MaxRetries = cfg.MaxRetries
		}
		if cfg.BackoffMillis > 0 {
			querier.Backoff = time.Duration(cfg.BackoffMillis) * time.Millisecond
		}
		return querier, func(out *core.RunOutput) {
			out.Tool = querier.Model
		}, noCleanup, nil

	case "mock":
		mock := retriever.Mock{Response: core.Retrieval{Raw: opts.mockResponse}}
		return mock, func(out *core.RunOutput) {}, noCleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown method: %s", opts.method)
	}
}

func buildEmbedder(model string, counter tokens.Counter) (*embed.OpenAIEmbedder, error) {
	embedder, err := embed.NewOpenAIEmbedderFromEnv(model, counter)
	if err != nil {
		return nil, err
	}
	cfg := appConfig.OpenAI
	if cfg.TimeoutSeconds > 0 {
		embedder.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		embedder.MaxRetries = cfg.MaxRetries
	}
	if cfg.BackoffMillis > 0 {
		embedder.Backoff = time.Duration(cfg.BackoffMillis) * time.Millisecond
	}
	return embedder, nil
}

// buildCounter prefers the exact tokenizer and degrades to the length
// heuristic when the encoding cannot be loaded.
func buildCounter(logger *zap.Logger) tokens.Counter {
	counter, err := tokens.NewTiktoken()
	if err != nil {
		logger.Warn("tokenizer unavailable, falling back to length heuristic", zap.Error(err))
		return tokens.Heuristic{}
	}
	return counter
}

func buildReporter(format string, writer io.Writer) (report.Reporter, error) {
	switch format {
	case report.FormatJSON:
		return report.JSONReporter{Writer: writer, Pretty: true}, nil
	case report.FormatTable:
		return report.TableReporter{Writer: writer}, nil
	case report.FormatMarkdown:
		return report.MarkdownReporter{Writer: writer}, nil
	case report.FormatCSV:
		return report.CSVReporter{Writer: writer}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func resolveString(value string, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func resolveStrings(value []string, fallback []string) []string {
	if len(value) > 0 {
		return value
	}
	return fallback
}

func resolveInt(value int, fallback int, defaultValue int) int {
	if value > 0 {
		return value
	}
	if fallback > 0 {
		return fallback
	}
	return defaultValue
}
