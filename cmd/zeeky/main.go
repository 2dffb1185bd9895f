// Zeeky - multi-provider AI request router
// Task 1.1: Project Setup - Entry point

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zeekylabs/zeeky/internal/api"
	"github.com/zeekylabs/zeeky/internal/domain/assistant"
	"github.com/zeekylabs/zeeky/internal/domain/usage"
	"github.com/zeekylabs/zeeky/internal/infra/ai"
	"github.com/zeekylabs/zeeky/internal/infra/config"
	"github.com/zeekylabs/zeeky/internal/infra/eventbus"
	"github.com/zeekylabs/zeeky/internal/infra/ratelimit"
	"github.com/zeekylabs/zeeky/internal/infra/sqlite"
	"github.com/zeekylabs/zeeky/internal/server"
	"github.com/zeekylabs/zeeky/internal/version"
)

const configFile = "zeeky.yaml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("zeeky", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	if fs.NArg() > 0 && fs.Arg(0) == "serve" {
		if err := serve(); err != nil {
			fmt.Fprintf(out, "zeeky: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	}

	// Default: print version
	fmt.Fprintln(out, version.String()) //nolint:errcheck
	return 0
}

func serve() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	cfg, err := config.ApplyFile(cfg, configFile)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	db, err := sqlite.NewDB(cfg.UsageDBPath)
	if err != nil {
		return fmt.Errorf("open usage db: %w", err)
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close() //nolint:errcheck
		return fmt.Errorf("migrate usage db: %w", err)
	}

	providers := buildProviders(cfg, logger)
	router := ai.NewRouter(providers, logger)
	limiter := ratelimit.New(ratelimit.DefaultPolicies())

	bus := eventbus.New()
	store := usage.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go usage.NewRecorder(store, logger).Start(ctx, bus)

	personas := cfg.Personas
	if len(personas) == 0 {
		personas = assistant.DefaultPersonas()
	}
	service := assistant.NewService(router, limiter, bus, personas, cfg.Denylist, logger)

	mux := api.NewRouter(api.Deps{
		Assistant: service,
		Providers: providers,
		Usage:     store,
		Limiter:   limiter,
	})

	serverCfg := server.DefaultConfig()
	serverCfg.Host = cfg.Host
	serverCfg.Port = cfg.Port
	srv := server.NewServer(mux, db, serverCfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildProviders assembles the fallback chain in the configured priority
// order. Unconfigured providers are skipped without counting as failures.
func buildProviders(cfg config.Config, logger *slog.Logger) []ai.Provider {
	priority := cfg.ProviderPriority
	if len(priority) == 0 {
		priority = config.DefaultProviderPriority()
	}

	var providers []ai.Provider
	for _, name := range priority {
		switch name {
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				continue
			}
			providers = append(providers, ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel))
		case "anthropic":
			if cfg.AnthropicAPIKey == "" {
				continue
			}
			providers = append(providers, ai.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel))
		case "ollama":
			if cfg.OllamaBaseURL == "" {
				continue
			}
			providers = append(providers, ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel))
		case "lorem":
			if !cfg.DevProvider {
				continue
			}
			providers = append(providers, ai.NewLoremProvider())
		default:
			logger.Warn("unknown provider in priority list", slog.String("provider", name))
		}
	}

	for _, p := range providers {
		logger.Info("provider registered", slog.String("provider", p.Name()))
	}
	return providers
}

func printHelp(out io.Writer) {
	helpText := `Zeeky - multi-provider AI request router

Usage:
  zeeky [options] [command]

Options:
  --version    Show version information
  --help       Show this help message

Commands:
  serve        Start the API server

Environment:
  OPENAI_API_KEY      enable the OpenAI provider
  ANTHROPIC_API_KEY   enable the Anthropic provider
  OLLAMA_BASE_URL     enable the local Ollama provider
  ZEEKY_DEV_PROVIDER  enable the offline lorem provider
  ZEEKY_JWT_SECRET    shared secret for bearer tokens (required)

Examples:
  zeeky --version
  zeeky serve`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
