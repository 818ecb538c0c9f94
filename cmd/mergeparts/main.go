// Command mergeparts combines split transcript and metadata files into one
// <id>_combined.json per recording.
package main

import (
	"fmt"
	"os"

	"github.com/JanSetu/JanSetu/pkg/cli"
	"github.com/JanSetu/JanSetu/pkg/parts"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("mergeparts", pflag.ContinueOnError)
	out := fs.String("out", "new_data", "directory for merged <id>_combined.json files")

	_, log, err := cli.Setup(fs, args, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mergeparts: %v\n", err)
		return cli.ExitConfig
	}
	defer log.Sync()

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mergeparts <input-dir> [--out new_data]")
		return cli.ExitConfig
	}
	input := fs.Arg(0)

	merger := parts.NewMerger(afero.NewOsFs(), input, log)
	summary, err := merger.MergeAll(*out)
	if err != nil {
		log.Error("Merge failed", zap.String("input", input), zap.Error(err))
	}

	_ = cli.PrintStats(os.Stdout, "Merge complete", summary)
	return cli.ExitOK
}
