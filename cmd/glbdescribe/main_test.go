package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const statsJSON = `[
  {"name": "crate", "bounding_box": {"x": {"min": 0.0, "max": 1.0}, "y": {"min": 0.0, "max": 1.0}, "z": {"min": 0.0, "max": 1.0}},
   "bounding_box_volume": 1.0, "footprint": 1.0, "height": 1.0, "volume": 1.0, "volume_ratio": 1.0,
   "center_of_mass": {"x": 0.5, "y": 0.5, "z": 0.5}, "is_watertight": true, "triangle_count": 12, "is_potentially_invalid": false},
  {"name": "barrel", "bounding_box": {"x": {"min": 0.0, "max": 1.0}, "y": {"min": 0.0, "max": 2.0}, "z": {"min": 0.0, "max": 1.0}},
   "bounding_box_volume": 2.0, "footprint": 1.0, "height": 2.0, "volume": 1.5, "volume_ratio": 0.75,
   "center_of_mass": {"x": 0.5, "y": 1.0, "z": 0.5}, "is_watertight": true, "triangle_count": 64, "is_potentially_invalid": false,
   "description": "An existing barrel."}
]`

func setup(t *testing.T) (statsPath, thumbDir string) {
	t.Helper()
	dir := t.TempDir()
	statsPath = filepath.Join(dir, "glb_stats.json")
	if err := os.WriteFile(statsPath, []byte(statsJSON), 0644); err != nil {
		t.Fatal(err)
	}
	thumbDir = filepath.Join(dir, "thumbs")
	os.Mkdir(thumbDir, 0755)
	for _, name := range []string{"crate", "barrel"} {
		var buf bytes.Buffer
		png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8)))
		os.WriteFile(filepath.Join(thumbDir, name+".png"), buf.Bytes(), 0644)
	}
	return statsPath, thumbDir
}

func fakeAPI(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"choices":[{"message":{"content":"A sturdy prop."}}],"usage":{"prompt_tokens":900,"completion_tokens":10,"total_tokens":910,"total_cost":0.0001}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDescribeSkipExisting(t *testing.T) {
	statsPath, thumbDir := setup(t)
	var calls atomic.Int32
	srv := fakeAPI(t, &calls)

	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(), []string{
		"glbdescribe", "-k", "key", "--base-url", srv.URL, "--skip-existing", statsPath, thumbDir,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("api calls = %d, want 1", calls.Load())
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(statsPath), "glb_stats_with_descriptions.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatal(err)
	}
	if records[0]["description"] != "A sturdy prop." || records[1]["description"] != "An existing barrel." {
		t.Errorf("descriptions = %v / %v", records[0]["description"], records[1]["description"])
	}
	for _, want := range []string{"Loaded 2 assets", "Processed: 1", "Skipped: 1", "Total prompt tokens: 900"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestDescribeMissingKey(t *testing.T) {
	statsPath, thumbDir := setup(t)
	t.Setenv("OPENROUTER_API_KEY", "")
	err := newCommand(&bytes.Buffer{}).Run(context.Background(), []string{"glbdescribe", statsPath, thumbDir})
	if err == nil || !strings.Contains(err.Error(), "API key required") {
		t.Errorf("err = %v", err)
	}
}

func TestDescribeInputErrors(t *testing.T) {
	statsPath, thumbDir := setup(t)
	cmd := func(args ...string) error {
		return newCommand(&bytes.Buffer{}).Run(context.Background(), append([]string{"glbdescribe", "-k", "key"}, args...))
	}
	if err := cmd(statsPath, filepath.Join(thumbDir, "missing")); err == nil || !strings.Contains(err.Error(), "thumbnails directory not found") {
		t.Errorf("thumb dir err = %v", err)
	}
	if err := cmd(statsPath+".missing", thumbDir); err == nil || !strings.Contains(err.Error(), "stats JSON file not found") {
		t.Errorf("stats err = %v", err)
	}
	notList := filepath.Join(t.TempDir(), "object.json")
	os.WriteFile(notList, []byte(`{"name": "crate"}`), 0644)
	if err := cmd(notList, thumbDir); err == nil {
		t.Error("expected error for non-array stats file")
	}
}
