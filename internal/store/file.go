package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes snapshots as a JSON project file
type FileSink struct {
	Path string
}

// NewFileSink creates a sink writing to path
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

// Write implements Sink. The file is replaced atomically.
func (f *FileSink) Write(snapshot Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	dir := filepath.Dir(f.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".manuscript-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	return os.Rename(tmp.Name(), f.Path)
}

// ReadSnapshot reads a project file written by FileSink
func ReadSnapshot(path string) (Snapshot, error) {
	var snapshot Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot, fmt.Errorf("failed to read project: %w", err)
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to decode project: %w", err)
	}
	return snapshot, nil
}
