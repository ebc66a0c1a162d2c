package describe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glbstats/internal/asset"
)

func TestDefaultExemplar(t *testing.T) {
	ex, err := DefaultExemplar()
	if err != nil {
		t.Fatalf("DefaultExemplar: %v", err)
	}
	if ex.Record.Name != "CommandPost_01_PropsC" || ex.Record.Catalog == nil || string(ex.Record.Catalog.PhysicsCost) != "46" {
		t.Errorf("record = %+v", ex.Record)
	}
	if !strings.HasPrefix(ex.ImageURL, "data:image/png;base64,iVBORw0KGgo") {
		t.Errorf("image url = %.40s", ex.ImageURL)
	}
	if !strings.HasPrefix(ex.Description, "Rectangular military field structure") {
		t.Errorf("description = %q", ex.Description)
	}
}

func TestExemplarOverride(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "desc.txt")
	os.WriteFile(text, []byte("  A small shed.\n"), 0644)

	ex, err := LoadExemplar(ExemplarPaths{Description: text})
	if err != nil {
		t.Fatalf("LoadExemplar: %v", err)
	}
	if ex.Description != "A small shed." || ex.Record.Name != "CommandPost_01_PropsC" {
		t.Errorf("exemplar = %q / %s", ex.Description, ex.Record.Name)
	}

	if _, err := LoadExemplar(ExemplarPaths{Record: filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("expected error for missing override")
	}
}

func TestBuildPromptExcludesDescription(t *testing.T) {
	desc := "old text"
	r := asset.Record{Name: "Crate_02", Description: &desc}
	prompt, err := BuildPrompt(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(prompt, "<asset_data>\n{\n  \"name\": \"Crate_02\",") {
		t.Errorf("prompt starts %.60q", prompt)
	}
	if strings.Contains(prompt, "old text") || strings.Contains(prompt, `"description"`) {
		t.Error("prompt leaks existing description")
	}
	if !strings.Contains(prompt, "</asset_data>\n\n<instructions>") || !strings.HasSuffix(prompt, "</instructions>\n") {
		t.Error("prompt layout changed")
	}
}

func TestPartsOrder(t *testing.T) {
	ex, _ := DefaultExemplar()
	parts, err := ex.Parts(asset.Record{Name: "Crate_02"}, "data:image/png;base64,QQ==")
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 5 {
		t.Fatalf("got %d parts", len(parts))
	}
	if !strings.HasPrefix(parts[0].Text, "<example>\n<example_asset_data>\n{") || !strings.Contains(parts[0].Text, "<example_output>\nRectangular") {
		t.Errorf("example text = %.80q", parts[0].Text)
	}
	if parts[1].ImageURL.URL != ex.ImageURL || parts[2].Text != "Now analyze this asset:" {
		t.Errorf("parts 1-2 = %+v %+v", parts[1], parts[2])
	}
	if !strings.Contains(parts[3].Text, `"name": "Crate_02"`) || parts[4].ImageURL.URL != "data:image/png;base64,QQ==" {
		t.Errorf("parts 3-4 = %+v %+v", parts[3], parts[4])
	}
}

type fakeGenerator struct {
	calls int
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, parts []ContentPart) (Reply, error) {
	f.calls++
	if f.err != nil {
		return Reply{}, f.err
	}
	return Reply{
		Text:  "Generated description " + strings.Repeat("x", 100),
		Usage: Usage{PromptTokens: 1000, CompletionTokens: 20, TotalTokens: 1020, TotalCost: 0.001},
	}, nil
}

func writeThumb(t *testing.T, dir, name string) {
	t.Helper()
	var buf bytes.Buffer
	png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if err := os.WriteFile(filepath.Join(dir, name+".png"), buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunnerRun(t *testing.T) {
	dir := t.TempDir()
	writeThumb(t, dir, "crate")
	writeThumb(t, dir, "barrel")
	os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0644)

	ex, _ := DefaultExemplar()
	existing := "Already described."
	records := []asset.Record{
		{Name: "crate"},
		{Name: "barrel", Description: &existing},
		{Name: "no_thumb"},
		{Name: "broken"},
	}

	gen := &fakeGenerator{}
	var out bytes.Buffer
	r := &Runner{Generator: gen, Exemplar: ex, ThumbnailDir: dir, SkipExisting: true, Out: &out}
	totals, err := r.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if totals.Processed != 1 || totals.Skipped != 1 || totals.Failed != 2 || totals.Total != 4 {
		t.Errorf("totals = %+v", totals)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times", gen.calls)
	}
	if !records[0].HasDescription() || *records[1].Description != existing || records[2].HasDescription() {
		t.Errorf("descriptions not applied as expected")
	}
	for _, want := range []string{"[1/4] Processing crate...", "Skipping (description already exists)", "Failed to generate description", "Cost: $0.001000"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunnerRedescribesWithoutSkip(t *testing.T) {
	dir := t.TempDir()
	writeThumb(t, dir, "crate")
	ex, _ := DefaultExemplar()
	old := "old"
	records := []asset.Record{{Name: "crate", Description: &old}}

	r := &Runner{Generator: &fakeGenerator{}, Exemplar: ex, ThumbnailDir: dir}
	totals, err := r.Run(context.Background(), records)
	if err != nil || totals.Processed != 1 {
		t.Fatalf("totals %+v err %v", totals, err)
	}
	if *records[0].Description == "old" {
		t.Error("description not replaced")
	}
}

func TestRunnerRemoteFailureContinues(t *testing.T) {
	dir := t.TempDir()
	writeThumb(t, dir, "a")
	writeThumb(t, dir, "b")
	ex, _ := DefaultExemplar()
	gen := &fakeGenerator{err: ErrRateLimited}
	r := &Runner{Generator: gen, Exemplar: ex, ThumbnailDir: dir}

	totals, err := r.Run(context.Background(), []asset.Record{{Name: "a"}, {Name: "b"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if totals.Failed != 2 || gen.calls != 2 {
		t.Errorf("totals %+v calls %d", totals, gen.calls)
	}
}

func TestRunnerSkipsNullDescription(t *testing.T) {
	dir := t.TempDir()
	writeThumb(t, dir, "crate")
	writeThumb(t, dir, "barrel")
	var records []asset.Record
	if err := json.Unmarshal([]byte(`[{"name": "crate", "description": null}, {"name": "barrel"}]`), &records); err != nil {
		t.Fatal(err)
	}

	ex, _ := DefaultExemplar()
	gen := &fakeGenerator{}
	r := &Runner{Generator: gen, Exemplar: ex, ThumbnailDir: dir, SkipExisting: true}
	totals, err := r.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if totals.Skipped != 1 || totals.Processed != 1 || gen.calls != 1 {
		t.Errorf("totals %+v calls %d", totals, gen.calls)
	}
	if records[0].Description != nil || records[1].Description == nil {
		t.Errorf("descriptions = %v %v", records[0].Description, records[1].Description)
	}
}

func TestRunnerSendsDecodedThumbnail(t *testing.T) {
	dir := t.TempDir()
	writeThumb(t, dir, "crate")
	ex, _ := DefaultExemplar()

	var sent []ContentPart
	gen := generatorFunc(func(ctx context.Context, parts []ContentPart) (Reply, error) {
		sent = parts
		return Reply{Text: "A crate."}, nil
	})
	r := &Runner{Generator: gen, Exemplar: ex, ThumbnailDir: dir}
	totals, err := r.Run(context.Background(), []asset.Record{{Name: "crate"}})
	if err != nil || totals.Processed != 1 {
		t.Fatalf("totals %+v err %v", totals, err)
	}
	last := sent[len(sent)-1]
	if last.ImageURL == nil || !strings.HasPrefix(last.ImageURL.URL, "data:image/png;base64,") {
		t.Errorf("thumbnail part = %+v", last)
	}
}

type generatorFunc func(ctx context.Context, parts []ContentPart) (Reply, error)

func (f generatorFunc) Generate(ctx context.Context, parts []ContentPart) (Reply, error) {
	return f(ctx, parts)
}

func TestRunnerMissingThumbnail(t *testing.T) {
	ex, _ := DefaultExemplar()
	r := &Runner{Generator: &fakeGenerator{}, Exemplar: ex, ThumbnailDir: t.TempDir()}
	_, err := r.describe(context.Background(), "ghost", asset.Record{Name: "ghost"})
	if !errors.Is(err, ErrThumbnailMissing) {
		t.Errorf("err = %v, want ErrThumbnailMissing", err)
	}
}

func TestTotalsSummary(t *testing.T) {
	var totals Totals
	totals.Add(Usage{PromptTokens: 1500, CompletionTokens: 40, TotalTokens: 1540, TotalCost: 0.002})
	totals.Add(Usage{PromptTokens: 1500, CompletionTokens: 60, TotalTokens: 1560, Cost: 0.004})
	totals.Total = 3
	totals.Failed = 1

	if totals.AvgTotalTokens() != 1550 || math.Abs(totals.AvgCost()-0.003) > 1e-12 {
		t.Errorf("averages = %v %v", totals.AvgTotalTokens(), totals.AvgCost())
	}

	var buf bytes.Buffer
	totals.WriteSummary(&buf)
	for _, want := range []string{
		"  Processed: 2\n",
		"  Failed: 1\n",
		"  Total prompt tokens: 3,000\n",
		"  Total tokens: 3,100\n",
		"  Average completion tokens per item: 50.0\n",
		"  Total cost: $0.006000\n",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, buf.String())
		}
	}

	var empty Totals
	if empty.AvgCost() != 0 || empty.AvgPromptTokens() != 0 {
		t.Error("averages of an empty run should be zero")
	}
}
