package canvas

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize is used when a font file is given without a size.
const DefaultFontSize = 14

// LoadFont loads a TrueType or OpenType font from a file path.
func LoadFont(path string, size float64) (font.Face, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open font: %w", err)
	}
	defer f.Close()

	return LoadFontFromReader(f, size)
}

// LoadFontFromReader loads a TrueType or OpenType font from an io.Reader.
func LoadFontFromReader(r io.Reader, size float64) (font.Face, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}

	return LoadFontFromBytes(data, size)
}

// LoadFontFromBytes loads a TrueType or OpenType font from raw bytes.
func LoadFontFromBytes(data []byte, size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultFontSize
	}

	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// cellSize measures the monospace cell of face.
func cellSize(face font.Face) (w, h int) {
	adv, _ := face.GlyphAdvance('M')
	w = adv.Ceil()
	if w == 0 {
		w = 7 // basicfont fallback
	}
	h = face.Metrics().Height.Ceil()
	if h == 0 {
		h = 13
	}
	return w, h
}

func defaultFace() font.Face {
	return basicfont.Face7x13
}
