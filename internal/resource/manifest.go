package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ruthgard/18TUI/internal/apperror"
)

const ManifestName = ".18tui-manifest.json"

// Metadata describes the snapshot set currently on disk.
type Metadata struct {
	Commit    string     `json:"commit,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ManifestPath is the default manifest location inside dir.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestName)
}

// LoadMetadata reads a manifest. ok is false when the file does not exist.
func LoadMetadata(path string) (metadata Metadata, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Metadata{}, false, nil
	}

	if err != nil {
		return Metadata{}, false, fmt.Errorf("failed to read manifest %s: %w: %w", path, apperror.ErrIOFailure, err)
	}

	if err = json.Unmarshal(data, &metadata); err != nil {
		return Metadata{}, false, fmt.Errorf("failed to parse manifest %s: %w: %w", path, apperror.ErrSerialization, err)
	}

	return metadata, true, nil
}

// Persist writes the manifest, creating parent directories.
func (that Metadata) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w: %w", apperror.ErrIOFailure, err)
	}

	data, err := json.MarshalIndent(that, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w: %w", apperror.ErrSerialization, err)
	}

	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w: %w", path, apperror.ErrIOFailure, err)
	}

	return nil
}
