// Package cli holds the start-up plumbing shared by the command-line tools:
// flag parsing, configuration, logging and client construction.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JanSetu/JanSetu/pkg/config"
	"github.com/JanSetu/JanSetu/pkg/corrector"
	"github.com/JanSetu/JanSetu/pkg/db"
	"github.com/JanSetu/JanSetu/pkg/llm/openai"
	"github.com/JanSetu/JanSetu/pkg/logger"
	"github.com/JanSetu/JanSetu/pkg/observe"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitConfig = 1
)

const connectTimeout = 15 * time.Second

var commonBindings = map[string]string{
	config.KeyLogLevel:       "log-level",
	config.KeyLogDevelopment: "dev",
}

// Setup adds the common flags to fs, parses args, loads the configuration
// and builds the logger. bindings maps configuration keys to flags the
// caller has already defined on fs.
func Setup(fs *pflag.FlagSet, args []string, bindings map[string]string) (*config.Configuration, *zap.Logger, error) {
	configFile := fs.String("config", "", "path to a YAML/JSON/TOML config file")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Bool("dev", false, "human-readable development logging")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.BindFlags(fs, commonBindings); err != nil {
		return nil, nil, err
	}
	if err := cfg.BindFlags(fs, bindings); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.GetLogLevel(), cfg.GetLogDevelopment())
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// OpenMongo validates the document store settings and connects.
func OpenMongo(ctx context.Context, cfg *config.Configuration) (*db.Client, error) {
	if err := cfg.ValidateMongo(); err != nil {
		return nil, err
	}
	client := db.NewClient(cfg.GetMongoURI(), cfg.GetMongoDatabase(), cfg.GetRawCollection(), cfg.GetProcessedCollection())

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return client, nil
}

// NewCorrector validates the correction service settings and builds a
// corrector backed by an OpenAI-compatible endpoint.
func NewCorrector(cfg *config.Configuration, log *zap.Logger, metrics *observe.Metrics) (*corrector.Corrector, error) {
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	provider, err := openai.New(cfg.GetLLMAPIKey(), cfg.GetLLMModel(),
		openai.WithBaseURL(cfg.GetLLMBaseURL()),
		openai.WithTimeout(cfg.GetLLMChunkTimeout()),
	)
	if err != nil {
		return nil, err
	}
	return corrector.New(provider,
		corrector.WithTemperature(cfg.GetLLMTemperature()),
		corrector.WithChunkTimeout(cfg.GetLLMChunkTimeout()),
		corrector.WithLogger(log),
		corrector.WithMetrics(metrics),
	), nil
}

// PrintStats writes v to w as indented JSON under a heading.
func PrintStats(w io.Writer, heading string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n", heading, data)
	return err
}
