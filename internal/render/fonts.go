package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// Fonts holds the faces the renderer draws with. The typeface is assumed
// monospace: truncation estimates width from a single glyph advance.
type Fonts struct {
	Title     font.Face
	BigNumber font.Face
	MedNumber font.Face
	SmallNum  font.Face
	Body      font.Face
	BodyLight font.Face
	Tiny      font.Face
}

// LoadFonts parses the regular and light typeface files and derives every
// face the renderer needs. Missing or unparseable files are a boot-time
// failure; the process must not start without its fonts.
func LoadFonts(regularPath, lightPath string) (*Fonts, error) {
	regular, err := loadTruetype(regularPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load regular typeface: %w", err)
	}

	light, err := loadTruetype(lightPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load light typeface: %w", err)
	}

	face := func(f *truetype.Font, size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: size})
	}

	return &Fonts{
		Title:     face(regular, fontSizeTitle),
		BigNumber: face(regular, fontSizeBigNumber),
		MedNumber: face(regular, fontSizeMedNumber),
		SmallNum:  face(regular, fontSizeSmallNum),
		Body:      face(regular, fontSizeBody),
		BodyLight: face(light, fontSizeBodyLight),
		Tiny:      face(light, fontSizeTiny),
	}, nil
}

// levelFace picks the badge font by digit count so the label fits the
// circle: 1 digit largest, 2 digits medium, 3+ smallest.
func (f *Fonts) levelFace(digits int) font.Face {
	switch {
	case digits <= 1:
		return f.BigNumber
	case digits == 2:
		return f.MedNumber
	default:
		return f.SmallNum
	}
}

func loadTruetype(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}
