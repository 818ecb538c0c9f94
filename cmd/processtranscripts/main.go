// Command processtranscripts runs stored transcripts through the correction
// service and saves the time-aligned sentences.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JanSetu/JanSetu/pkg/chunker"
	"github.com/JanSetu/JanSetu/pkg/cli"
	"github.com/JanSetu/JanSetu/pkg/config"
	"github.com/JanSetu/JanSetu/pkg/db"
	"github.com/JanSetu/JanSetu/pkg/observe"
	"github.com/JanSetu/JanSetu/pkg/processor"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("processtranscripts", pflag.ContinueOnError)
	limit := fs.Int64("limit", 0, "maximum number of recordings to process (0 means all)")
	force := fs.Bool("force", false, "reprocess recordings that already have a corrected transcript")
	statsOnly := fs.Bool("stats", false, "print processing statistics and exit")
	fs.Int("max-chars", chunker.DefaultMaxChars, "chunk size budget in characters")

	cfg, log, err := cli.Setup(fs, args, map[string]string{
		config.KeyChunkMaxChars: "max-chars",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "processtranscripts: %v\n", err)
		return cli.ExitConfig
	}
	defer log.Sync()

	ctx, cancel := cli.SignalContext()
	defer cancel()

	client, err := cli.OpenMongo(ctx, cfg)
	if err != nil {
		log.Error("Configuration error", zap.Error(err))
		return cli.ExitConfig
	}
	defer client.Close(context.Background())

	if *statsOnly {
		printStats(ctx, client, log)
		return cli.ExitOK
	}

	metrics := observe.DefaultMetrics()
	c, err := cli.NewCorrector(cfg, log, metrics)
	if err != nil {
		log.Error("Configuration error", zap.Error(err))
		return cli.ExitConfig
	}

	p := processor.New(client, c, nil, log, metrics)
	stats, err := p.Run(ctx, processor.Options{
		Force:    *force,
		Limit:    *limit,
		MaxChars: cfg.GetChunkMaxChars(),
	})
	if err != nil {
		log.Error("Processing stopped", zap.Error(err))
	}

	_ = cli.PrintStats(os.Stdout, "Processing complete", stats)
	return cli.ExitOK
}

func printStats(ctx context.Context, client *db.Client, log *zap.Logger) {
	processing, err := client.ProcessingStats(ctx)
	if err != nil {
		log.Error("Failed to read processing statistics", zap.Error(err))
	} else {
		_ = cli.PrintStats(os.Stdout, "Processing statistics", processing)
	}

	collection, err := client.CollectionStats(ctx)
	if err != nil {
		log.Error("Failed to read collection statistics", zap.Error(err))
		return
	}
	_ = cli.PrintStats(os.Stdout, "Collection statistics", collection)
}
