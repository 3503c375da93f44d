package display

import (
	"runtime"
	"strings"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
)

const (
	BackendAuto = "auto"
	BackendReal = "real"
	BackendEmu  = "emu"
	BackendPNG  = "png"
)

// Options escolhe e configura o backend.
type Options struct {
	Backend      string
	PanelAddr    string
	SnapshotPath string
}

// New returns the display for opts.Backend. "auto" picks the LED panel on
// linux/arm boards and the terminal emulator elsewhere.
func New(opts Options) (repository.DisplayRepository, error) {
	backend := ResolveBackend(opts.Backend, runtime.GOOS, runtime.GOARCH)
	switch backend {
	case BackendReal:
		return NewPanel(entity.PanelWidth, entity.PanelHeight, opts.PanelAddr), nil
	case BackendEmu:
		return NewEmulator(entity.PanelWidth, entity.PanelHeight), nil
	case BackendPNG:
		return NewSnapshot(entity.PanelWidth, entity.PanelHeight, opts.SnapshotPath), nil
	default:
		return nil, types.ErrUnsupportedBackend
	}
}

// ResolveBackend maps "auto" (or empty) to a concrete backend name.
func ResolveBackend(backend, goos, goarch string) string {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != "" && backend != BackendAuto {
		return backend
	}
	if goos == "linux" && (goarch == "arm" || goarch == "arm64") {
		return BackendReal
	}
	return BackendEmu
}
