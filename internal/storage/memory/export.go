// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/industrialmelee/extension/internal/persist"
	"github.com/industrialmelee/extension/pkg/core"
)

// ExportVersion is bumped when the export layout changes.
const ExportVersion = 1

// ExportBaseName is the export file name without extension.
const ExportBaseName = "industrial_melee"

// Export is the root JSON structure
type Export struct {
	Version int                `json:"version"`
	Actors  []persist.Record   `json:"actors"`
	Effects []core.EffectEvent `json:"effects"`
}

func (b *Backend) exportPath() string {
	name := ExportBaseName + ".json"
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	return filepath.Join(b.cfg.OutputDir, name)
}

// writeExport writes next to path and renames over it.
func writeExport(path string, export Export, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(f)
		w = gz
	}

	encErr := json.NewEncoder(w).Encode(export)
	if gz != nil {
		if err := gz.Close(); err != nil && encErr == nil {
			encErr = err
		}
	}
	if err := f.Close(); err != nil && encErr == nil {
		encErr = err
	}
	if encErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write export: %w", encErr)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

func readExport(path string) (Export, error) {
	var export Export
	f, err := os.Open(path)
	if err != nil {
		return export, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return export, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return export, fmt.Errorf("failed to decode export: %w", err)
	}
	if export.Version != ExportVersion {
		return export, fmt.Errorf("unsupported export version %d", export.Version)
	}
	return export, nil
}
