// Command conceptgraph extracts a weighted concept graph from a lecture
// transcript and writes it as JSON and GraphML.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/transcriptlab/conceptgraph/internal/util"
	"github.com/transcriptlab/conceptgraph/pkg/ai"
	"github.com/transcriptlab/conceptgraph/pkg/ai/ollama"
	"github.com/transcriptlab/conceptgraph/pkg/ai/openai"
	"github.com/transcriptlab/conceptgraph/pkg/concept"
	"github.com/transcriptlab/conceptgraph/pkg/graph"
	"github.com/transcriptlab/conceptgraph/pkg/logger"
	"github.com/transcriptlab/conceptgraph/pkg/logger/console"
	"github.com/transcriptlab/conceptgraph/pkg/nlp"
	"github.com/transcriptlab/conceptgraph/pkg/relation"
	"github.com/transcriptlab/conceptgraph/pkg/transcript"

	"github.com/spf13/cobra"
)

type options struct {
	strategy       string
	model          string
	minFreq        int
	maxConcepts    int
	fuzzyThreshold int
	chunkChars     int
	maxEdges       int
	parallel       int
	outDir         string
}

func main() {
	util.LoadEnv()
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
	}))

	opts := options{}

	rootCmd := &cobra.Command{
		Use:   "conceptgraph <transcript_path>",
		Short: "Extract a concept graph from a bilingual lecture transcript",
		Long: "conceptgraph cleans a raw EN/ES transcript, extracts and merges concepts,\n" +
			"extracts typed relations between them (verb patterns or an LLM), and writes\n" +
			"the resulting weighted graph as JSON and GraphML.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts)
		},
	}

	rootCmd.Flags().StringVar(&opts.strategy, "strategy", "pattern", "relation extraction strategy: pattern or llm")
	rootCmd.Flags().StringVar(&opts.model, "model", "", "model name for the llm strategy (default from AI_CHAT_EXTRACT_MODEL)")
	rootCmd.Flags().IntVar(&opts.minFreq, "min-freq", concept.DefaultMinFreq, "minimum candidate frequency")
	rootCmd.Flags().IntVar(&opts.maxConcepts, "max-concepts", concept.DefaultMaxConcepts, "maximum canonical concepts")
	rootCmd.Flags().IntVar(&opts.fuzzyThreshold, "fuzzy-threshold", concept.DefaultFuzzyThreshold, "merge similarity threshold (0-100)")
	rootCmd.Flags().IntVar(&opts.chunkChars, "chunk-chars", transcript.DefaultMaxChunkChars, "maximum characters per chunk")
	rootCmd.Flags().IntVar(&opts.maxEdges, "max-edges", 0, "cap on final edges, 0 for unlimited")
	rootCmd.Flags().IntVar(&opts.parallel, "parallel", graph.DefaultParallelism, "concurrent per-chunk workers")
	rootCmd.Flags().StringVar(&opts.outDir, "out", ".", "output directory")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, graph.ErrNoConcepts) {
			logger.Error("run failed", "error", err, "hint", "relax --min-freq or --fuzzy-threshold")
		} else {
			logger.Error("run failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, transcriptPath string, opts options) error {
	raw, err := os.ReadFile(transcriptPath)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	pipelines := nlp.NewCache()
	strategy, client, err := buildStrategy(opts, pipelines)
	if err != nil {
		return err
	}

	cfg := graph.Config{
		MaxChunkChars: opts.chunkChars,
		Concept: concept.Config{
			MinFreq:        opts.minFreq,
			MaxConcepts:    opts.maxConcepts,
			FuzzyThreshold: opts.fuzzyThreshold,
		},
		MaxEdges:    opts.maxEdges,
		Parallelism: opts.parallel,
	}

	start := time.Now()
	result, err := graph.New(strategy, pipelines, cfg).Run(ctx, string(raw))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := graph.WriteJSON(result.Graph, opts.outDir); err != nil {
		return err
	}
	if err := graph.WriteGraphML(result.Graph, opts.outDir); err != nil {
		return err
	}
	if opts.strategy == "llm" {
		if err := graph.WriteRawEdges(result.RawEdges, opts.outDir); err != nil {
			return err
		}
	}

	logger.Info("concept graph written",
		"out", opts.outDir,
		"nodes", len(result.Graph.Nodes),
		"edges", len(result.Graph.Edges),
		"run_id", result.Graph.Meta.RunID,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	if client != nil {
		metrics := client.GetMetrics()
		logger.Info("model usage",
			"requests", metrics.Requests,
			"input_tokens", metrics.InputTokens,
			"output_tokens", metrics.OutputTokens,
			"duration_ms", metrics.DurationMs,
		)
	}

	return nil
}

// buildStrategy wires the requested relation strategy. For the llm strategy
// the chat adapter is selected by AI_ADAPTER and credentials are checked
// before any network call.
func buildStrategy(opts options, pipelines *nlp.Cache) (relation.Strategy, ai.GraphAIClient, error) {
	switch opts.strategy {
	case "pattern":
		return relation.NewPatternStrategy(pipelines), nil, nil
	case "llm":
		client, err := buildClient(opts.model)
		if err != nil {
			return nil, nil, err
		}
		timeout := time.Duration(util.GetEnvNumeric("AI_TIMEOUT_SECONDS", 60)) * time.Second
		return relation.NewLLMStrategy(client, opts.model, timeout), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown strategy %q (want pattern or llm)", opts.strategy)
	}
}

func buildClient(model string) (ai.GraphAIClient, error) {
	if model == "" {
		model = util.GetEnvString("AI_CHAT_EXTRACT_MODEL", "gpt-4o-mini")
	}

	switch adapter := util.GetEnvString("AI_ADAPTER", "openai"); adapter {
	case "openai":
		key := util.GetEnv("AI_CHAT_KEY")
		if key == "" {
			return nil, fmt.Errorf("the llm strategy needs AI_CHAT_KEY set")
		}
		return openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
			ExtractionModel: model,
			ChatURL:         util.GetEnv("AI_CHAT_URL"),
			ChatKey:         key,
		}), nil
	case "ollama":
		return ollama.NewGraphOllamaClient(ollama.NewGraphOllamaClientParams{
			ExtractionModel: model,
			BaseURL:         util.GetEnv("AI_CHAT_URL"),
			ApiKey:          util.GetEnv("AI_CHAT_KEY"),
		})
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q (want openai or ollama)", adapter)
	}
}
