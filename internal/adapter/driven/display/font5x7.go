package display

import (
	"image"

	"golang.org/x/image/font/basicfont"
)

const (
	glyphWidth   = 5
	glyphHeight  = 7
	glyphAdvance = 6
	firstGlyph   = ' '
	lastGlyph    = 'Z'
)

// Linhas de 5 bits; o bit 4 é a coluna da esquerda.
var glyphs5x7 = map[rune][glyphHeight]uint8{
	' ': {},
	'!': {0x04, 0x04, 0x04, 0x04, 0x04, 0x00, 0x04},
	'%': {0x18, 0x19, 0x02, 0x04, 0x08, 0x13, 0x03},
	'+': {0x00, 0x04, 0x04, 0x1F, 0x04, 0x04, 0x00},
	'-': {0x00, 0x00, 0x00, 0x1F, 0x00, 0x00, 0x00},
	'.': {0x00, 0x00, 0x00, 0x00, 0x00, 0x0C, 0x0C},
	'/': {0x00, 0x01, 0x02, 0x04, 0x08, 0x10, 0x00},
	'0': {0x0E, 0x11, 0x13, 0x15, 0x19, 0x11, 0x0E},
	'1': {0x04, 0x0C, 0x04, 0x04, 0x04, 0x04, 0x0E},
	'2': {0x0E, 0x11, 0x01, 0x02, 0x04, 0x08, 0x1F},
	'3': {0x1F, 0x02, 0x04, 0x02, 0x01, 0x11, 0x0E},
	'4': {0x02, 0x06, 0x0A, 0x12, 0x1F, 0x02, 0x02},
	'5': {0x1F, 0x10, 0x1E, 0x01, 0x01, 0x11, 0x0E},
	'6': {0x06, 0x08, 0x10, 0x1E, 0x11, 0x11, 0x0E},
	'7': {0x1F, 0x01, 0x02, 0x04, 0x08, 0x08, 0x08},
	'8': {0x0E, 0x11, 0x11, 0x0E, 0x11, 0x11, 0x0E},
	'9': {0x0E, 0x11, 0x11, 0x0F, 0x01, 0x02, 0x0C},
	':': {0x00, 0x0C, 0x0C, 0x00, 0x0C, 0x0C, 0x00},
	'?': {0x0E, 0x11, 0x01, 0x02, 0x04, 0x00, 0x04},
	'A': {0x0E, 0x11, 0x11, 0x11, 0x1F, 0x11, 0x11},
	'B': {0x1E, 0x11, 0x11, 0x1E, 0x11, 0x11, 0x1E},
	'C': {0x0E, 0x11, 0x10, 0x10, 0x10, 0x11, 0x0E},
	'D': {0x1C, 0x12, 0x11, 0x11, 0x11, 0x12, 0x1C},
	'E': {0x1F, 0x10, 0x10, 0x1E, 0x10, 0x10, 0x1F},
	'F': {0x1F, 0x10, 0x10, 0x1E, 0x10, 0x10, 0x10},
	'G': {0x0E, 0x11, 0x10, 0x17, 0x11, 0x11, 0x0F},
	'H': {0x11, 0x11, 0x11, 0x1F, 0x11, 0x11, 0x11},
	'I': {0x0E, 0x04, 0x04, 0x04, 0x04, 0x04, 0x0E},
	'J': {0x07, 0x02, 0x02, 0x02, 0x02, 0x12, 0x0C},
	'K': {0x11, 0x12, 0x14, 0x18, 0x14, 0x12, 0x11},
	'L': {0x10, 0x10, 0x10, 0x10, 0x10, 0x10, 0x1F},
	'M': {0x11, 0x1B, 0x15, 0x15, 0x11, 0x11, 0x11},
	'N': {0x11, 0x11, 0x19, 0x15, 0x13, 0x11, 0x11},
	'O': {0x0E, 0x11, 0x11, 0x11, 0x11, 0x11, 0x0E},
	'P': {0x1E, 0x11, 0x11, 0x1E, 0x10, 0x10, 0x10},
	'Q': {0x0E, 0x11, 0x11, 0x11, 0x15, 0x12, 0x0D},
	'R': {0x1E, 0x11, 0x11, 0x1E, 0x14, 0x12, 0x11},
	'S': {0x0F, 0x10, 0x10, 0x0E, 0x01, 0x01, 0x1E},
	'T': {0x1F, 0x04, 0x04, 0x04, 0x04, 0x04, 0x04},
	'U': {0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x0E},
	'V': {0x11, 0x11, 0x11, 0x11, 0x11, 0x0A, 0x04},
	'W': {0x11, 0x11, 0x11, 0x15, 0x15, 0x15, 0x0A},
	'X': {0x11, 0x11, 0x0A, 0x04, 0x0A, 0x11, 0x11},
	'Y': {0x11, 0x11, 0x11, 0x0A, 0x04, 0x04, 0x04},
	'Z': {0x1F, 0x01, 0x02, 0x04, 0x08, 0x10, 0x1F},
}

// face5x7 é a fonte do painel: 5x7 com avanço de 6px, só maiúsculas.
// Caracteres sem glifo saem como '?'.
var face5x7 = newFace5x7()

func newFace5x7() *basicfont.Face {
	count := int(lastGlyph-firstGlyph) + 1
	// Um glifo extra no fim para U+FFFD, que basicfont usa como fallback.
	mask := image.NewAlpha(image.Rect(0, 0, glyphWidth, (count+1)*glyphHeight))

	for i := 0; i <= count; i++ {
		r := firstGlyph + rune(i)
		rows, ok := glyphs5x7[r]
		if !ok || i == count {
			rows = glyphs5x7['?']
		}
		for row, bits := range rows {
			for col := 0; col < glyphWidth; col++ {
				if bits&(1<<(glyphWidth-1-col)) != 0 {
					mask.Pix[(i*glyphHeight+row)*mask.Stride+col] = 0xff
				}
			}
		}
	}

	return &basicfont.Face{
		Advance: glyphAdvance,
		Width:   glyphWidth,
		Height:  glyphHeight + 1,
		Ascent:  glyphHeight,
		Descent: 0,
		Mask:    mask,
		Ranges: []basicfont.Range{
			{Low: firstGlyph, High: lastGlyph + 1, Offset: 0},
			{Low: '\ufffd', High: '\ufffd' + 1, Offset: count},
		},
	}
}
