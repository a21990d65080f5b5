package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
)

// Output writes telemetry.csv and the effective config.yaml into a directory.
// A nil *Output is valid and discards everything.
type Output struct {
	dir           string
	telemetryFile *os.File
	headerWritten bool
}

// NewOutput creates dir and opens telemetry.csv inside it.
// Returns nil if dir is empty (output disabled).
func NewOutput(dir string) (*Output, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	return &Output{dir: dir, telemetryFile: f}, nil
}

// WriteConfig saves the configuration the run was started with.
func (o *Output) WriteConfig(cfg *simulation.Config) error {
	if o == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(o.dir, "config.yaml"))
}

// WriteWindow appends one row to telemetry.csv. The header is written with the first row.
func (o *Output) WriteWindow(stats WindowStats) error {
	if o == nil {
		return nil
	}
	records := []WindowStats{stats}
	if !o.headerWritten {
		if err := gocsv.Marshal(records, o.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		o.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, o.telemetryFile); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (o *Output) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

func (o *Output) Close() error {
	if o == nil || o.telemetryFile == nil {
		return nil
	}
	err := o.telemetryFile.Close()
	o.telemetryFile = nil
	return err
}
