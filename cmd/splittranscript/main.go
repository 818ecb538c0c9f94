// Command splittranscript splits a large segment file into <id>_partN.json
// files small enough to process one at a time.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JanSetu/JanSetu/pkg/cli"
	"github.com/JanSetu/JanSetu/pkg/config"
	"github.com/JanSetu/JanSetu/pkg/segments"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("splittranscript", pflag.ContinueOnError)
	fs.Int("max-segments", segments.DefaultMaxSegments, "maximum segments per part file")

	cfg, log, err := cli.Setup(fs, args, map[string]string{
		config.KeySplitMaxSegments: "max-segments",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "splittranscript: %v\n", err)
		return cli.ExitConfig
	}
	defer log.Sync()

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: splittranscript <transcript.json> [--max-segments 5000]")
		return cli.ExitConfig
	}
	path := fs.Arg(0)
	id := strings.TrimSuffix(filepath.Base(path), ".json")

	store := segments.NewStore(afero.NewOsFs(), filepath.Dir(path), log)
	written, err := store.Split(id, cfg.GetSplitMaxSegments())
	if err != nil {
		log.Error("Split failed", zap.String("file", path), zap.Error(err))
		return cli.ExitOK
	}

	if len(written) == 0 {
		fmt.Printf("%s is already within %d segments; nothing to split\n", path, cfg.GetSplitMaxSegments())
		return cli.ExitOK
	}
	_ = cli.PrintStats(os.Stdout, "Split complete", map[string]any{"parts": written})
	return cli.ExitOK
}
