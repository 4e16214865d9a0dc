package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chris/tablemate/config"
	"github.com/chris/tablemate/internal/agent"
	"github.com/chris/tablemate/internal/db"
	"github.com/chris/tablemate/internal/llm"
	"github.com/chris/tablemate/internal/logging"
	"github.com/chris/tablemate/internal/splitter"
	"github.com/chris/tablemate/internal/toolkit"
	"github.com/chris/tablemate/internal/tools"
	"github.com/chris/tablemate/internal/tracer"
	"github.com/chris/tablemate/internal/vector"
)

var (
	sessionID  = flag.String("session", "", "Session ID to resume; a new session is created when empty")
	modelName  = flag.String("model", "", "Registered model to use (default: the configured active model)")
	stream     = flag.Bool("stream", false, "Stream replies as they arrive")
	noTools    = flag.Bool("no-tools", false, "Do not offer tools to the model")
	listModels = flag.Bool("models", false, "List registered models and exit")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	shutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	registry, err := buildRegistry(ctx, cfg, database, logger)
	if err != nil {
		return err
	}

	manager := agent.NewManager(registry,
		agent.WithClientWrapper(func(c llm.Client) llm.Client {
			return llm.NewBreakerClient(c, cfg.Breaker, logger)
		}),
		agent.WithAgentOptions(
			agent.WithSystemPrompt(llm.SystemPrompt),
			agent.WithLogger(logger),
			agent.WithMaxToolRounds(cfg.MaxToolRounds),
			agent.WithContextBudget(cfg.MaxContextTokens),
			agent.WithAttempts(cfg.Retry.Attempts),
			agent.WithBackoff(cfg.Retry.BaseDelay, cfg.Retry.MaxDelay),
			agent.WithRateLimit(cfg.Retry.RatePerSecond, 1),
		),
	)
	for _, m := range cfg.ModelConfigs() {
		if err := manager.Register(m.Name, m.ProviderConfig); err != nil {
			return err
		}
	}
	active := cfg.ActiveModel()
	if *modelName != "" {
		active = *modelName
	}
	if err := manager.SetActive(active); err != nil {
		return fmt.Errorf("%w (registered: %s)", err, strings.Join(manager.List(), ", "))
	}

	if *listModels {
		for _, name := range manager.List() {
			marker := " "
			if name == active {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	}

	ag, err := manager.Active()
	if err != nil {
		return err
	}
	id := *sessionID
	if id == "" {
		if id, err = database.CreateSession("", active); err != nil {
			return err
		}
	} else if err := ag.Conversation().Restore(database, id); err != nil {
		return fmt.Errorf("restoring session %s: %w", id, err)
	}
	logger.Info("session ready", "session", id, "model", active, "messages", ag.Conversation().Len())

	input, err := readInput()
	if err != nil {
		return err
	}
	if input == "" {
		return errors.New("no input: pass it as arguments or on stdin")
	}
	fmt.Fprintln(os.Stderr, "session:", id)

	streaming := cfg.Stream || *stream
	opts := []agent.RequestOption{
		agent.WithStream(streaming),
		agent.WithTools(!*noTools),
	}
	if streaming {
		opts = append(opts, agent.WithOnText(func(s string) { fmt.Print(s) }))
	}
	reply, err := manager.Run(ctx, input, opts...)
	if streaming {
		fmt.Println()
	} else if err == nil {
		fmt.Println(reply)
	}
	if perr := ag.Conversation().Persist(database, id); perr != nil {
		err = errors.Join(err, fmt.Errorf("saving session: %w", perr))
	}
	return err
}

// readInput joins the command-line arguments, or reads stdin when there are
// none.
func readInput() (string, error) {
	if flag.NArg() > 0 {
		return strings.TrimSpace(strings.Join(flag.Args(), " ")), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func buildRegistry(ctx context.Context, cfg *config.Config, database *db.DB, logger *slog.Logger) (*tools.Registry, error) {
	providers := []tools.Provider{
		toolkit.Weather{},
		toolkit.NewClock(),
		toolkit.NewNotes(database),
	}
	if cfg.DocumentsDir != "" {
		store := vector.NewStore(newEmbedder(cfg),
			vector.WithThreshold(float32(cfg.Search.Threshold)),
			vector.WithStoreLogger(logger),
		)
		split := splitter.Recursive{Size: cfg.Search.ChunkSize, Overlap: cfg.Search.ChunkOverlap}
		if _, err := toolkit.Ingest(ctx, cfg.DocumentsDir, store, split, logger); err != nil {
			return nil, fmt.Errorf("indexing documents: %w", err)
		}
		providers = append(providers, toolkit.NewDocuments(store, cfg.Search.TopK))
	}
	return tools.NewRegistry(providers, tools.WithLogger(logger))
}

func newEmbedder(cfg *config.Config) llm.Embedder {
	if cfg.LLMProvider == llm.ProviderOllama {
		return llm.NewOpenAIEmbedder("ollama", cfg.EmbeddingModel, cfg.OllamaBaseURL)
	}
	return llm.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.EmbeddingModel, "")
}
