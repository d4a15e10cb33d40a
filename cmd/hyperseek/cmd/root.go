// Package cmd provides the CLI commands for HyperSeek.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hyperseek/hyperseek/internal/config"
	"github.com/hyperseek/hyperseek/internal/crawl"
	"github.com/hyperseek/hyperseek/internal/embed"
	"github.com/hyperseek/hyperseek/internal/index"
	"github.com/hyperseek/hyperseek/internal/llm"
	"github.com/hyperseek/hyperseek/internal/logging"
	"github.com/hyperseek/hyperseek/internal/rag"
	"github.com/hyperseek/hyperseek/internal/search"
	"github.com/hyperseek/hyperseek/internal/store"
	"github.com/hyperseek/hyperseek/internal/textproc"
	"github.com/hyperseek/hyperseek/pkg/version"
)

var (
	configPath string
	debugMode  bool
)

// NewRootCmd creates the root command for the hyperseek CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hyperseek",
		Short: "Federated search with hybrid ranking and RAG answers",
		Long: `HyperSeek crawls encyclopedia, forum, tech-news, and custom web
sources into a local hybrid index (BM25 + semantic) and answers
questions over it with recursive retrieval-augmented generation.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("hyperseek version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newSearchCmd(),
		newCrawlCmd(),
		newJobsCmd(),
		newAskCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// app bundles the wired components one command invocation uses.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *store.SQLiteStore
	engine   *search.Engine
	crawler  *crawl.Orchestrator
	answerer *rag.Orchestrator

	cleanups []func()
}

func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// newApp loads configuration and wires the full stack. The in-memory
// indexes are rebuilt from the persistent store.
func newApp(ctx context.Context) (*app, error) {
	cfgPath := configPath
	if cfgPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfgPath = filepath.Join(home, ".hyperseek", "config.yaml")
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if debugMode {
		cfg.Log.Level = "debug"
	}

	a := &app{cfg: cfg}

	logCfg := logging.Config{
		Level:         cfg.Log.Level,
		FilePath:      cfg.LogPath(),
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxFiles:      cfg.Log.MaxFiles,
		WriteToStderr: debugMode,
	}
	logger, logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.cleanups = append(a.cleanups, logCleanup)
	slog.SetDefault(logger)

	db, err := store.OpenSQLite(cfg.DBPath())
	if err != nil {
		a.close()
		return nil, err
	}
	a.db = db
	a.cleanups = append(a.cleanups, func() { _ = db.Close() })

	embedder, err := embed.NewCachedEmbedder(embed.NewOllamaEmbedder(embed.OllamaConfig{
		Host:    cfg.Ollama.Host,
		Model:   cfg.Ollama.EmbeddingModel,
		Timeout: cfg.Ollama.Timeout,
	}), 4096)
	if err != nil {
		a.close()
		return nil, err
	}
	a.cleanups = append(a.cleanups, func() { _ = embedder.Close() })

	vectors := store.NewHNSWStore(embedder.Dimensions())
	idx := index.New(textproc.NewProcessor())
	params := index.BM25Params{K1: cfg.Index.K1, B: cfg.Index.B}
	a.engine = search.NewEngine(idx, vectors, db, embedder, params, logger)

	if err := a.engine.Rebuild(ctx); err != nil {
		a.close()
		return nil, err
	}

	adapters := []crawl.Adapter{
		crawl.NewEncyclopediaAdapter("https://en.wikipedia.org/w/api.php"),
		crawl.NewForumAdapter("https://www.reddit.com"),
		crawl.NewTechNewsAdapter("https://hn.algolia.com"),
		crawl.NewGenericAdapter(cfg.Crawl.UserAgent),
	}
	crawler, err := crawl.NewOrchestrator(db, a.engine, adapters, crawl.Options{
		MaxConcurrentJobs: cfg.Crawl.MaxConcurrentJobs,
		RequestDelay:      cfg.Crawl.RequestDelay,
		UserAgent:         cfg.Crawl.UserAgent,
	}, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.crawler = crawler
	a.cleanups = append(a.cleanups, crawler.Close)

	model := llm.NewOllamaClient(llm.OllamaConfig{
		Host:  cfg.Ollama.Host,
		Model: cfg.Ollama.LLMModel,
	})
	a.cleanups = append(a.cleanups, func() { _ = model.Close() })
	a.answerer = rag.New(a.engine, model, cfg.RAG.TopK, logger)

	return a, nil
}
