package repository

import "github.com/diillson/led-sales-tracker-go/internal/domain/entity"

// DisplayRepository is the pixel matrix the tracker draws on.
// Draw calls only become visible after Push.
type DisplayRepository interface {
	Initialize() error
	Cleanup() error

	Width() int
	Height() int

	Clear()
	SetPixel(x, y int, colour entity.Colour)
	DrawText(text string, x, y int, colour entity.Colour)
	MeasureText(text string) int
	DrawSeries(points []float64, originX, originY int, colour entity.Colour)
	Push() error
}
