// Package render draws leaderboard pages and rank cards as PNG files.
// Everything is laid out on a fixed virtual canvas at 3x the target
// resolution and downsampled for anti-aliasing.
package render

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"discord-levels-bot/internal/model"
)

// Errors for theme handling.
var (
	// ErrInvalidColour is returned for a malformed hex colour string.
	ErrInvalidColour = errors.New("invalid hex colour")
)

// Palette is the 5-colour theme derived from one base colour.
type Palette struct {
	Main   model.RGB // background
	Dark   model.RGB // user unit fill
	Grey   model.RGB // soft blend toward light grey
	Text   model.RGB // readable on both bright and dark mains
	Circle model.RGB // near-black level badge, tinted by the base
}

// presets are the base colours rolled for guilds with no configured theme.
var presets = []model.RGB{
	{R: 220, G: 50, B: 70},   // red
	{R: 70, G: 110, B: 220},  // blue
	{R: 60, G: 180, B: 90},   // green
	{R: 255, G: 119, B: 158}, // pink
	{R: 255, G: 140, B: 40},  // orange
	{R: 40, G: 40, B: 40},    // black
}

// medals are the fixed label/arc colours for the top three absolute ranks.
var medals = [3]model.RGB{
	{R: 218, G: 177, B: 99},  // gold
	{R: 176, G: 167, B: 184}, // silver
	{R: 181, G: 103, B: 43},  // bronze
}

// MakePalette derives the display palette from a base colour.
func MakePalette(base model.RGB) Palette {
	dark := model.RGB{
		R: int(float64(base.R) * 0.7),
		G: int(float64(base.G) * 0.7),
		B: int(float64(base.B) * 0.7),
	}

	grey := model.RGB{
		R: int(float64(base.R)*0.3 + 220*0.7),
		G: int(float64(base.G)*0.3 + 220*0.7),
		B: int(float64(base.B)*0.3 + 220*0.7),
	}

	// Shift text toward grey on very bright backgrounds so it stays
	// readable; keep it close to white otherwise.
	brightness := 0.299*float64(base.R) + 0.587*float64(base.G) + 0.114*float64(base.B)
	var text model.RGB
	if brightness > 200 {
		text = model.RGB{R: 220, G: 220, B: 220}
	} else {
		text = model.RGB{R: 245, G: 245, B: 245}
	}

	circle := model.RGB{
		R: max(0, int(float64(base.R)*0.15)),
		G: max(0, int(float64(base.G)*0.15)),
		B: max(0, int(float64(base.B)*0.15)),
	}

	return Palette{Main: base, Dark: dark, Grey: grey, Text: text, Circle: circle}
}

// RandomPreset picks a uniformly random preset base colour. Guilds without
// a configured theme get a fresh roll on every render.
func RandomPreset() model.RGB {
	return presets[rand.Intn(len(presets))]
}

// MedalColour returns the fixed medal colour for an absolute leaderboard
// index, and whether the index is in the top three.
func MedalColour(index int) (model.RGB, bool) {
	if index >= 0 && index < len(medals) {
		return medals[index], true
	}
	return model.RGB{}, false
}

var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// ParseHex parses a "#rrggbb" colour; the leading "#" is optional.
func ParseHex(s string) (model.RGB, error) {
	m := hexPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return model.RGB{}, fmt.Errorf("%w: %q", ErrInvalidColour, s)
	}

	v, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return model.RGB{}, fmt.Errorf("%w: %q", ErrInvalidColour, s)
	}

	return model.RGB{
		R: int(v >> 16 & 0xff),
		G: int(v >> 8 & 0xff),
		B: int(v & 0xff),
	}, nil
}
