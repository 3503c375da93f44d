package display

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// Snapshot grava cada frame num PNG, útil em servidores sem terminal nem painel.
type Snapshot struct {
	*Frame
	path string
}

func NewSnapshot(width, height int, path string) *Snapshot {
	if path == "" {
		path = "led-sales.png"
	}
	return &Snapshot{Frame: NewFrame(width, height), path: path}
}

func (s *Snapshot) Initialize() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	s.Clear()
	return nil
}

// Push writes to a temporary file and renames it so readers never see a partial image.
func (s *Snapshot) Push() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".led-sales-*.png")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, s.Image()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Snapshot) Cleanup() error {
	return nil
}

// Path returns where the snapshot is written.
func (s *Snapshot) Path() string { return s.path }
