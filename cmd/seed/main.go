// Package main provides a CLI tool for seeding the catalog from a CSV file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"matcat/internal/config"
	"matcat/internal/infrastructure/seed"
	"matcat/internal/infrastructure/storage/memory"
	"matcat/internal/infrastructure/storage/postgres"
	"matcat/internal/infrastructure/storage/postgres/catalog_repo"
	"matcat/pkg/logger"
)

type options struct {
	configFile string
	file       string
	dryRun     bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import categories and materials from CSV into an empty catalog",
		Long: `Reads the seed CSV (header row first) and stores every category and
material in one transaction. Nothing is imported when materials already exist.
With --dry-run the file is parsed into an in-memory catalog and only counts are reported.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CSV file to import (overrides seed.file)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and validate without touching the database")

	return cmd
}

func run(ctx context.Context, opts options, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.file != "" {
		cfg.Seed.File = opts.file
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	ctx = logger.WithLogger(ctx, log)

	seedCfg := seed.Config{
		File:             cfg.Seed.File,
		DefaultPrefix:    cfg.Seed.DefaultPrefix,
		CategoryPrefixes: cfg.Seed.CategoryPrefixes,
	}

	var res seed.Result
	if opts.dryRun {
		res, err = dryRun(ctx, seedCfg)
	} else {
		res, err = importFile(ctx, cfg, seedCfg)
	}
	if err != nil {
		return err
	}

	if res.Skipped {
		fmt.Fprintln(cmd.OutOrStdout(), "catalog already has materials, nothing imported")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "categories=%d materials=%d dry_run=%t\n",
		res.Categories, res.Materials, opts.dryRun)
	return nil
}

// dryRun imports into a throwaway in-memory catalog.
func dryRun(ctx context.Context, cfg seed.Config) (seed.Result, error) {
	store := memory.NewStore()
	return seed.New(store.Categories(), store.Materials(), nil, cfg, nil).Run(ctx)
}

func importFile(ctx context.Context, cfg *config.Config, seedCfg seed.Config) (seed.Result, error) {
	if err := cfg.Validate(); err != nil {
		return seed.Result{}, err
	}

	pool, err := postgres.NewPool(ctx, cfg.PoolConfig())
	if err != nil {
		return seed.Result{}, fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	seeder := seed.New(
		catalog_repo.NewCategoryRepo(txm),
		catalog_repo.NewMaterialRepo(txm),
		txm,
		seedCfg,
		nil,
	)
	return seeder.Run(ctx)
}
