package entity

// Panel geometry of the LED matrix.
const (
	PanelWidth  = 64
	PanelHeight = 32
)

// Colour is an 8-bit RGB triple.
type Colour struct {
	R, G, B uint8
}

// Dim returns the colour scaled down by divisor.
func (c Colour) Dim(divisor uint8) Colour {
	if divisor <= 1 {
		return c
	}
	return Colour{R: c.R / divisor, G: c.G / divisor, B: c.B / divisor}
}

var (
	ColourBlack = Colour{}
	ColourWhite = Colour{R: 255, G: 255, B: 255}
	ColourGreen = Colour{G: 255}
	ColourRed   = Colour{R: 255}
	ColourBlue  = Colour{R: 40, G: 90, B: 255}
	ColourAmber = Colour{R: 255, G: 160}
)
