package describe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"glbstats/internal/asset"
	"glbstats/internal/logger"
	"glbstats/internal/thumbnail"
)

// ErrThumbnailMissing is returned when an asset has no thumbnail file.
var ErrThumbnailMissing = errors.New("describe: thumbnail missing")

// Generator produces a description from a multi-part message.
type Generator interface {
	Generate(ctx context.Context, parts []ContentPart) (Reply, error)
}

// Runner describes records one at a time.
type Runner struct {
	Generator    Generator
	Exemplar     Exemplar
	ThumbnailDir string
	ThumbnailExt string // defaults to ".png"
	Thumbnail    thumbnail.Options
	SkipExisting bool
	Out          io.Writer // progress lines; nil discards
}

// Run fills in Description on each record in place. Per-asset failures are
// logged and counted; only context cancellation stops the run early.
func (r *Runner) Run(ctx context.Context, records []asset.Record) (Totals, error) {
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	totals := Totals{Total: len(records)}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return totals, err
		}
		rec := &records[i]
		name := rec.Name
		if name == "" {
			name = fmt.Sprintf("unknown_%d", i+1)
		}
		fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, len(records), name)

		if r.SkipExisting && rec.HasDescription() {
			fmt.Fprintln(out, "  Skipping (description already exists)")
			totals.Skipped++
			continue
		}

		reply, err := r.describe(ctx, name, *rec)
		if err != nil {
			if ctx.Err() != nil {
				return totals, ctx.Err()
			}
			logger.Warn("description failed", zap.String("asset", name), zap.Error(err))
			fmt.Fprintln(out, "  Failed to generate description")
			totals.Failed++
			continue
		}

		text := reply.Text
		rec.Description = &text
		totals.Add(reply.Usage)
		fmt.Fprintf(out, "  Generated: %s...\n", preview(text, 80))
		u := reply.Usage
		if u.Amount() > 0 || u.TotalTokens > 0 {
			fmt.Fprintf(out, "  Tokens: %d prompt + %d completion = %d total\n", u.PromptTokens, u.CompletionTokens, u.TotalTokens)
			if u.Amount() > 0 {
				fmt.Fprintf(out, "  Cost: $%.6f\n", u.Amount())
			}
		}
	}
	return totals, nil
}

func (r *Runner) describe(ctx context.Context, name string, rec asset.Record) (Reply, error) {
	ext := r.ThumbnailExt
	if ext == "" {
		ext = ".png"
	}
	path := filepath.Join(r.ThumbnailDir, name+ext)
	url, err := thumbnail.LoadDataURL(path, r.Thumbnail)
	if err != nil {
		if errors.Is(err, thumbnail.ErrNotFound) {
			return Reply{}, fmt.Errorf("%w: %s", ErrThumbnailMissing, path)
		}
		return Reply{}, err
	}
	parts, err := r.Exemplar.Parts(rec, url)
	if err != nil {
		return Reply{}, err
	}
	return r.Generator.Generate(ctx, parts)
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}
