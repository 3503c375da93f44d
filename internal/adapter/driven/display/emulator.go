package display

import (
	"errors"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Emulator mostra o painel no terminal, dois pixels por caractere.
type Emulator struct {
	*Frame
	area   *pterm.AreaPrinter
	update func(string)
}

// NewEmulator returns an emulator that redraws a pterm area on each Push.
func NewEmulator(width, height int) *Emulator {
	return &Emulator{Frame: NewFrame(width, height)}
}

// newEmulatorWithSink is used by tests to capture rendered frames.
func newEmulatorWithSink(width, height int, sink func(string)) *Emulator {
	return &Emulator{Frame: NewFrame(width, height), update: sink}
}

func (e *Emulator) Initialize() error {
	e.Clear()
	if e.update != nil {
		return nil
	}
	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return err
	}
	e.area = area
	e.update = func(frame string) { area.Update(frame) }
	return nil
}

func (e *Emulator) Push() error {
	if e.update == nil {
		return errors.New("emulator not initialized")
	}
	e.update(e.render())
	return nil
}

func (e *Emulator) Cleanup() error {
	e.Clear()
	if e.area != nil {
		err := e.area.Stop()
		e.area = nil
		e.update = nil
		return err
	}
	return nil
}

// render usa o meio-bloco superior: cor de frente para a linha de cima, fundo para a de baixo.
func (e *Emulator) render() string {
	var sb strings.Builder
	for y := 0; y < e.Height(); y += 2 {
		for x := 0; x < e.Width(); x++ {
			top := e.Pixel(x, y)
			bottom := e.Pixel(x, y+1)
			c := color.RGB(int(top.R), int(top.G), int(top.B)).AddBgRGB(int(bottom.R), int(bottom.G), int(bottom.B))
			sb.WriteString(c.Sprint("▀"))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
