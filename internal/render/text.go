package render

import "golang.org/x/image/font"

// defaultEllipsis marks truncated strings.
const defaultEllipsis = "…"

// Truncate shortens text to at most maxChars characters, replacing the tail
// with the ellipsis. A budget smaller than the ellipsis itself yields a
// prefix of the ellipsis.
func Truncate(text string, maxChars int, ellipsis string) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	ell := []rune(ellipsis)
	if maxChars <= len(ell) {
		if maxChars < 0 {
			maxChars = 0
		}
		return string(ell[:maxChars])
	}

	return string(runes[:maxChars-len(ell)]) + ellipsis
}

// maxChars estimates how many characters of the face fit a pixel budget,
// using one representative glyph advance. Only valid for monospace faces.
func maxChars(face font.Face, width float64) int {
	adv := font.MeasureString(face, "X")
	if adv <= 0 {
		return 0
	}
	return int(width / (float64(adv) / 64))
}

// fitText truncates text to the face's character budget for a pixel width.
func fitText(face font.Face, text string, width float64) string {
	return Truncate(text, maxChars(face, width), defaultEllipsis)
}
