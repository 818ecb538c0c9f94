// Command replicate mirrors normalized recordings from MongoDB into a
// relational `recording` table on Postgres or Supabase.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/JanSetu/JanSetu/pkg/cli"
	"github.com/JanSetu/JanSetu/pkg/config"
	"github.com/JanSetu/JanSetu/pkg/db"
	"github.com/JanSetu/JanSetu/pkg/replication"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("replicate", pflag.ContinueOnError)
	fs.String("postgres-dsn", "", "Postgres connection string (overrides DATABASE_URL)")
	batchSize := fs.Int("batch-size", 100, "rows per batch")
	workers := fs.Int("workers", 5, "concurrent batches")

	cfg, log, err := cli.Setup(fs, args, map[string]string{
		config.KeyPostgresDSN: "postgres-dsn",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "replicate: %v\n", err)
		return cli.ExitConfig
	}
	defer log.Sync()

	if err := cfg.ValidateMirror(); err != nil {
		log.Error("Configuration error", zap.Error(err))
		return cli.ExitConfig
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	mongo, err := cli.OpenMongo(ctx, cfg)
	if err != nil {
		log.Error("Configuration error", zap.Error(err))
		return cli.ExitConfig
	}
	defer mongo.Close(context.Background())

	sink, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		log.Error("Configuration error", zap.Error(err))
		return cli.ExitConfig
	}
	defer closeSink()

	r, err := replication.NewReplicator(replication.Config{
		Source:    mongo,
		Sink:      sink,
		Logger:    log,
		BatchSize: *batchSize,
		Workers:   *workers,
	})
	if err != nil {
		log.Error("Configuration error", zap.Error(err))
		return cli.ExitConfig
	}

	stats, err := r.Replicate(ctx)
	if err != nil {
		log.Error("Replication stopped", zap.Error(err))
	}
	_ = cli.PrintStats(os.Stdout, "Replication complete", stats)
	return cli.ExitOK
}

// openSink prefers a plain Postgres DSN; otherwise it connects to Supabase,
// falling back to the REST API when no database password is configured.
func openSink(ctx context.Context, cfg *config.Configuration) (replication.Sink, func(), error) {
	if dsn := cfg.GetPostgresDSN(); dsn != "" {
		pg := db.NewPostgresClient(db.PostgresConfig{DSN: dsn, MaxOpenConns: 10})
		if err := pg.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return replication.NewSQLSink(pg), func() { _ = pg.Close() }, nil
	}

	sb := db.NewSupabaseClient(db.SupabaseConfig{
		SupabaseURL:  cfg.GetSupabaseURL(),
		SupabaseKey:  cfg.GetSupabaseKey(),
		Password:     cfg.GetSupabasePassword(),
		MaxOpenConns: 10,
	})
	if err := sb.Connect(ctx); err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = sb.Close() }
	if sb.HasDirectDB() {
		return replication.NewSQLSink(sb), closeFn, nil
	}
	return replication.NewRESTSink(sb.SDK()), closeFn, nil
}
