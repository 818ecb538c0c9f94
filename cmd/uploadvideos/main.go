// Command uploadvideos normalizes video records (or a bare transcript file)
// and merges them into the raw recordings collection.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JanSetu/JanSetu/pkg/cli"
	"github.com/JanSetu/JanSetu/pkg/config"
	"github.com/JanSetu/JanSetu/pkg/domain"
	"github.com/JanSetu/JanSetu/pkg/normalize"
	"github.com/JanSetu/JanSetu/pkg/observe"
	"github.com/JanSetu/JanSetu/pkg/segments"
	"github.com/JanSetu/JanSetu/pkg/uploader"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	modeVideo      = "video"
	modeTranscript = "transcript"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("uploadvideos", pflag.ContinueOnError)
	mode := fs.String("mode", modeVideo, "input kind: video (record files) or transcript (bare segment file)")
	fs.Int("workers", uploader.DefaultWorkers, "concurrent upserts")
	skipExisting := fs.Bool("skip-existing", false, "leave recordings already in the store untouched")
	ensureIndexes := fs.Bool("ensure-indexes", true, "create the collection indexes before uploading")

	cfg, log, err := cli.Setup(fs, args, map[string]string{
		config.KeyUploadWorkers: "workers",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "uploadvideos: %v\n", err)
		return cli.ExitConfig
	}
	defer log.Sync()

	if fs.NArg() != 1 || (*mode != modeVideo && *mode != modeTranscript) {
		fmt.Fprintln(os.Stderr, "usage: uploadvideos <file|dir> [--mode video|transcript]")
		return cli.ExitConfig
	}
	input := fs.Arg(0)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	client, err := cli.OpenMongo(ctx, cfg)
	if err != nil {
		log.Error("Configuration error", zap.Error(err))
		return cli.ExitConfig
	}
	defer client.Close(context.Background())

	if *ensureIndexes {
		if err := client.EnsureIndexes(ctx); err != nil {
			log.Warn("Failed to ensure indexes", zap.Error(err))
		}
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	up := uploader.New(client, normalize.New(normalize.WithRunID(runID)),
		uploader.WithWorkers(cfg.GetUploadWorkers()),
		uploader.WithSkipExisting(*skipExisting),
		uploader.WithLogger(log),
		uploader.WithMetrics(observe.DefaultMetrics()),
	)

	osFs := afero.NewOsFs()
	var stats domain.BatchStats

	switch {
	case *mode == modeTranscript:
		id := strings.TrimSuffix(filepath.Base(input), ".json")
		segs, err := segments.NewStore(osFs, filepath.Dir(input), log).LoadFile(input)
		if err != nil {
			log.Error("Failed to load transcript", zap.String("file", input), zap.Error(err))
			stats = domain.BatchStats{Attempted: 1, Errors: 1}
			break
		}
		stats = up.Upload(ctx, []domain.RawRecord{uploader.TranscriptRecord(id, segs)})

	case isDir(osFs, input):
		stats, err = up.UploadDir(ctx, osFs, input)
		if err != nil {
			log.Error("Upload stopped", zap.String("dir", input), zap.Error(err))
		}

	default:
		raws, err := uploader.LoadFile(osFs, input)
		if err != nil {
			log.Error("Failed to load file", zap.String("file", input), zap.Error(err))
			stats = domain.BatchStats{Attempted: 1, Errors: 1}
			break
		}
		stats = up.Upload(ctx, raws)
	}

	_ = cli.PrintStats(os.Stdout, "Upload complete", stats)
	return cli.ExitOK
}

func isDir(fs afero.Fs, path string) bool {
	ok, err := afero.IsDir(fs, path)
	return err == nil && ok
}
