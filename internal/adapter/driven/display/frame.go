package display

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
)

// fillDivisor escurece a área abaixo de cada ponto da série.
const fillDivisor = 4

// Frame é o buffer compartilhado por todos os backends.
type Frame struct {
	img *image.RGBA
}

// NewFrame allocates a black frame of the given size.
func NewFrame(width, height int) *Frame {
	return &Frame{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (f *Frame) Width() int  { return f.img.Bounds().Dx() }
func (f *Frame) Height() int { return f.img.Bounds().Dy() }

// Image exposes the underlying buffer; callers must not keep it across Clear.
func (f *Frame) Image() *image.RGBA { return f.img }

func (f *Frame) Clear() {
	draw.Draw(f.img, f.img.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)
}

// SetPixel ignores coordinates outside the panel.
func (f *Frame) SetPixel(x, y int, c entity.Colour) {
	if !(image.Point{X: x, Y: y}).In(f.img.Bounds()) {
		return
	}
	f.img.SetRGBA(x, y, toRGBA(c))
}

// Pixel returns the colour at (x, y), black when out of range.
func (f *Frame) Pixel(x, y int) entity.Colour {
	if !(image.Point{X: x, Y: y}).In(f.img.Bounds()) {
		return entity.ColourBlack
	}
	p := f.img.RGBAAt(x, y)
	return entity.Colour{R: p.R, G: p.G, B: p.B}
}

// DrawText writes text in upper case with its top-left corner at (x, y).
func (f *Frame) DrawText(text string, x, y int, c entity.Colour) {
	d := font.Drawer{
		Dst:  f.img,
		Src:  image.NewUniform(toRGBA(c)),
		Face: face5x7,
		Dot:  fixed.P(x, y+face5x7.Ascent),
	}
	d.DrawString(strings.ToUpper(text))
}

// MeasureText returns the advance of text in pixels, trailing gap included.
func (f *Frame) MeasureText(text string) int {
	return font.MeasureString(face5x7, strings.ToUpper(text)).Ceil()
}

// DrawSeries draws one column per point, growing upward from originY.
// The top pixel gets the full colour and the fill under it a dimmed one.
func (f *Frame) DrawSeries(points []float64, originX, originY int, c entity.Colour) {
	fill := c.Dim(fillDivisor)
	for i, p := range points {
		h := int(p)
		if h <= 0 {
			continue
		}
		x := originX + i
		top := originY - h + 1
		f.SetPixel(x, top, c)
		for y := top + 1; y <= originY; y++ {
			f.SetPixel(x, y, fill)
		}
	}
}

// rgbBytes devolve os pixels em RGB, linha a linha.
func (f *Frame) rgbBytes() []byte {
	b := f.img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := f.img.RGBAAt(x, y)
			out = append(out, p.R, p.G, p.B)
		}
	}
	return out
}

func toRGBA(c entity.Colour) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
