package describe

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"glbstats/internal/asset"
)

//go:embed exemplar
var exemplarFS embed.FS

// Exemplar is the one-shot example shown to the model before each asset.
// It is loaded once at startup and never modified.
type Exemplar struct {
	Record      asset.Record
	ImageURL    string
	Description string
}

// ExemplarPaths override parts of the built-in exemplar. Empty paths keep
// the built-in value.
type ExemplarPaths struct {
	Record      string
	Image       string
	Description string
}

// DefaultExemplar returns the built-in command post exemplar.
func DefaultExemplar() (Exemplar, error) {
	return LoadExemplar(ExemplarPaths{})
}

// LoadExemplar builds an exemplar from the built-in files, replacing each
// part whose override path is set.
func LoadExemplar(paths ExemplarPaths) (Exemplar, error) {
	recordData, err := readPart(paths.Record, "exemplar/command_post.json")
	if err != nil {
		return Exemplar{}, err
	}
	imageData, err := readPart(paths.Image, "exemplar/command_post.png")
	if err != nil {
		return Exemplar{}, err
	}
	text, err := readPart(paths.Description, "exemplar/command_post.txt")
	if err != nil {
		return Exemplar{}, err
	}

	var ex Exemplar
	if err := json.Unmarshal(recordData, &ex.Record); err != nil {
		return Exemplar{}, fmt.Errorf("describe: exemplar record: %w", err)
	}
	ex.ImageURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageData)
	ex.Description = strings.TrimSpace(string(text))
	if ex.Description == "" {
		return Exemplar{}, fmt.Errorf("describe: exemplar description is empty")
	}
	return ex, nil
}

func readPart(override, embedded string) ([]byte, error) {
	if override != "" {
		data, err := os.ReadFile(override)
		if err != nil {
			return nil, fmt.Errorf("describe: exemplar: %w", err)
		}
		return data, nil
	}
	return exemplarFS.ReadFile(embedded)
}
