package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"glbstats/internal/asset"
	"glbstats/internal/config"
	"glbstats/internal/describe"
	"glbstats/internal/logger"
	"glbstats/internal/store"
	"glbstats/internal/thumbnail"
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
		Name:      "glbdescribe",
		Usage:     "Generate descriptions for GLB assets using a vision model",
		ArgsUsage: "<stats.json> <thumbnails_directory>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "JSON file to write (default: <stats>_with_descriptions.json)"},
			&cli.StringFlag{Name: "api-key", Aliases: []string{"k"}, Usage: "API key (default: $OPENROUTER_API_KEY)"},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "model name"},
			&cli.BoolFlag{Name: "skip-existing", Usage: "skip records that already have a description"},
			&cli.StringFlag{Name: "base-url", Usage: "OpenAI-compatible API base URL"},
			&cli.IntFlag{Name: "thumb-size", Usage: "downscale thumbnails so the longer edge fits (0 = send as is)"},
			&cli.StringFlag{Name: "thumb-format", Usage: "thumbnail encoding sent to the model: png or webp"},
			&cli.StringFlag{Name: "db", Usage: "also upsert described records into this SQLite database"},
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs to this file as well"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("expected <stats.json> and <thumbnails_directory> arguments")
			}
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			err = cfg.Resolve(config.Flags{
				Model:        c.String("model"),
				BaseURL:      c.String("base-url"),
				SkipExisting: c.Bool("skip-existing"),
				ThumbMaxEdge: int(c.Int("thumb-size")),
				ThumbFormat:  c.String("thumb-format"),
				DBPath:       c.String("db"),
				Debug:        c.Bool("debug"),
				LogFile:      c.String("log-file"),
			})
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return err
			}
			return run(ctx, stdout, cfg, options{
				statsPath: c.Args().Get(0),
				thumbDir:  c.Args().Get(1),
				output:    c.String("output"),
				apiKey:    c.String("api-key"),
			})
		},
	}
}

type options struct {
	statsPath string
	thumbDir  string
	output    string
	apiKey    string
}

func run(ctx context.Context, stdout io.Writer, cfg *config.Config, opts options) error {
	thumbDir, err := filepath.Abs(opts.thumbDir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(thumbDir); err != nil || !info.IsDir() {
		return fmt.Errorf("thumbnails directory not found: %s", thumbDir)
	}

	statsPath, err := filepath.Abs(opts.statsPath)
	if err != nil {
		return err
	}
	if info, err := os.Stat(statsPath); err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("stats JSON file not found: %s", statsPath)
	}

	outputPath := opts.output
	if outputPath == "" {
		stem := strings.TrimSuffix(filepath.Base(statsPath), filepath.Ext(statsPath))
		outputPath = filepath.Join(filepath.Dir(statsPath), stem+"_with_descriptions.json")
	}
	if outputPath, err = filepath.Abs(outputPath); err != nil {
		return err
	}

	apiKey := opts.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}
	client, err := describe.New(describe.Options{
		BaseURL:        cfg.Describe.BaseURL,
		Model:          cfg.Describe.Model,
		APIKey:         apiKey,
		TimeoutSeconds: cfg.Describe.TimeoutSeconds,
	})
	if err != nil {
		return fmt.Errorf("API key required: provide --api-key or set %s", cfg.Describe.APIKeyEnv)
	}

	exemplar, err := describe.LoadExemplar(describe.ExemplarPaths{
		Record:      cfg.Describe.ExemplarRecord,
		Image:       cfg.Describe.ExemplarImage,
		Description: cfg.Describe.ExemplarText,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Loading stats from %s\n", statsPath)
	records, err := asset.ReadFile(statsPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Loaded %d assets\n", len(records))
	fmt.Fprintf(stdout, "Using model: %s\n", client.Model())

	runner := &describe.Runner{
		Generator:    client,
		Exemplar:     exemplar,
		ThumbnailDir: thumbDir,
		ThumbnailExt: cfg.Describe.ThumbnailExtension,
		Thumbnail: thumbnail.Options{
			MaxEdge: cfg.Describe.ThumbnailMaxEdge,
			Format:  cfg.Describe.ThumbnailFormat,
		},
		SkipExisting: cfg.Describe.SkipExisting,
		Out:          stdout,
	}
	totals, err := runner.Run(ctx, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nWriting enhanced data to %s\n", outputPath)
	if err := asset.WriteFile(outputPath, records); err != nil {
		return err
	}
	totals.WriteSummary(stdout)

	if cfg.Store.Path != "" {
		repo, err := store.OpenRepository(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.UpsertRecords(ctx, records); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nExported %d record(s) to %s\n", len(records), cfg.Store.Path)
	}
	return nil
}
