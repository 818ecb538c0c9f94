// Command importfeed reads a channel or playlist feed and uploads its videos
// as raw recordings.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JanSetu/JanSetu/pkg/cli"
	"github.com/JanSetu/JanSetu/pkg/config"
	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/feed"
	"github.com/JanSetu/JanSetu/pkg/normalize"
	"github.com/JanSetu/JanSetu/pkg/uploader"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("importfeed", pflag.ContinueOnError)
	fs.Int("workers", uploader.DefaultWorkers, "concurrent upserts")
	dryRun := fs.Bool("dry-run", false, "print the records instead of uploading them")

	cfg, log, err := cli.Setup(fs, args, map[string]string{
		config.KeyUploadWorkers: "workers",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "importfeed: %v\n", err)
		return cli.ExitConfig
	}
	defer log.Sync()

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: importfeed <feed-url> [--dry-run]")
		return cli.ExitConfig
	}
	feedURL := fs.Arg(0)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	raws, err := feed.NewImporter().ParseURL(ctx, feedURL)
	if err != nil {
		log.Error("Failed to read feed", zap.String("url", feedURL), zap.Error(err))
		_ = cli.PrintStats(os.Stdout, "Import complete", domain.BatchStats{Attempted: 1, Errors: 1})
		return cli.ExitOK
	}
	log.Info("Read feed", zap.String("url", feedURL), zap.Int("items", len(raws)))

	if *dryRun {
		_ = cli.PrintStats(os.Stdout, "Feed records", raws)
		return cli.ExitOK
	}

	client, err := cli.OpenMongo(ctx, cfg)
	if err != nil {
		log.Error("Configuration error", zap.Error(err))
		return cli.ExitConfig
	}
	defer client.Close(context.Background())

	runID := uuid.NewString()
	n := normalize.New(normalize.WithDataSource(feed.DataSource), normalize.WithRunID(runID))
	up := uploader.New(client, n,
		uploader.WithWorkers(cfg.GetUploadWorkers()),
		uploader.WithLogger(log.With(zap.String("run_id", runID))),
	)

	stats := up.Upload(ctx, raws)
	_ = cli.PrintStats(os.Stdout, "Import complete", stats)
	return cli.ExitOK
}
