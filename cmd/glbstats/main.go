package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"glbstats/internal/asset"
	"glbstats/internal/batch"
	"glbstats/internal/catalog"
	"glbstats/internal/config"
	"glbstats/internal/logger"
	"glbstats/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "glbstats",
		Usage:     "Compute bounding boxes, volumes and validity flags for GLB meshes",
		ArgsUsage: "<directory>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "JSON file to write (default: <directory>/glb_stats.json)"},
			&cli.StringFlag{Name: "asset-types", Aliases: []string{"a"}, Usage: "asset_types.json catalog with additional metadata"},
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.StringFlag{Name: "policy", Usage: "failure policy: abort or continue"},
			&cli.StringFlag{Name: "db", Usage: "also upsert records into this SQLite database"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs to this file as well"},
			&cli.StringFlag{Name: "write-config", Usage: "write the resolved configuration to this path"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one directory argument")
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return run(ctx, stdout, cfg, options{
				dir:        c.Args().First(),
				output:     c.String("output"),
				assetTypes: c.String("asset-types"),
			})
		},
	}
}

func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	err = cfg.Resolve(config.Flags{
		FailurePolicy: c.String("policy"),
		DBPath:        c.String("db"),
		Debug:         c.Bool("debug"),
		LogFile:       c.String("log-file"),
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	if path := c.String("write-config"); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

type options struct {
	dir        string
	output     string
	assetTypes string
}

func run(ctx context.Context, stdout io.Writer, cfg *config.Config, opts options) error {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = filepath.Join(dir, cfg.Stats.OutputName)
	}
	if outputPath, err = filepath.Abs(outputPath); err != nil {
		return err
	}

	var cat catalog.Map
	if opts.assetTypes != "" {
		path, err := filepath.Abs(opts.assetTypes)
		if err != nil {
			return err
		}
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			return fmt.Errorf("asset types file not found: %s", path)
		}
		if cat, err = catalog.Load(path); err != nil {
			return fmt.Errorf("failed to load asset types: %w", err)
		}
		fmt.Fprintf(stdout, "Loaded %d asset types from %s\n", len(cat), path)
	}

	res, err := batch.Run(ctx, batch.Config{
		Dir:       dir,
		Extension: cfg.Stats.Extension,
		Catalog:   cat,
		Policy:    cfg.Stats.FailurePolicy,
		Progress:  stdout,
	})
	if err != nil {
		var fe *batch.FileError
		switch {
		case errors.Is(err, batch.ErrNoInputs):
			return fmt.Errorf("no %s files found in: %s", cfg.Stats.Extension, dir)
		case errors.As(err, &fe):
			return fmt.Errorf("failed to process %s: %v", fe.Name, fe.Err)
		}
		return err
	}

	if err := asset.WriteFile(outputPath, res.Records); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote statistics for %d file(s) to %s\n", len(res.Records), outputPath)

	if cfg.Store.Path != "" {
		flagged, err := export(ctx, cfg.Store.Path, res.Records)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d record(s) to %s (%d flagged potentially invalid)\n",
			len(res.Records), cfg.Store.Path, len(flagged))
	}

	if res.Failed() {
		fmt.Fprintf(stdout, "\nFailed (%d):\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(stdout, "  %s: %v\n", f.Name, f.Err)
		}
		return fmt.Errorf("%d of %d file(s) failed", len(res.Failures), res.Total)
	}
	return nil
}

// export upserts records and returns the names the store holds as
// potentially invalid, earlier runs included.
func export(ctx context.Context, path string, records []asset.Record) ([]string, error) {
	repo, err := store.OpenRepository(ctx, path)
	if err != nil {
		return nil, err
	}
	defer repo.Close()
	if err := repo.UpsertRecords(ctx, records); err != nil {
		return nil, err
	}
	logger.Debug("exported records", zap.String("db", path), zap.Int("count", len(records)))
	return repo.ListPotentiallyInvalid(ctx)
}
