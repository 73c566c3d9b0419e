package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"discord-levels-bot/internal/levels"
	"discord-levels-bot/internal/model"
)

// Errors for render requests.
var (
	// ErrUserNotRanked is returned when a rank card is requested for a
	// user absent from the leaderboard. It is a not-found result, not a
	// render fault.
	ErrUserNotRanked = errors.New("user not on the leaderboard")
)

// Guild carries the guild facts a render needs. Icon holds the raw icon
// image bytes and may be nil.
type Guild struct {
	ID   string
	Name string
	Icon []byte
}

// Renderer rasterises leaderboard pages and rank cards into the scratch
// directory. Renders are CPU-bound and bounded by a semaphore so they never
// starve event handling. Files are named by subject id plus a
// second-resolution timestamp; the sweeper handles cleanup.
type Renderer struct {
	fonts      *Fonts
	scratchDir string
	version    string
	sem        chan struct{}

	now        func() time.Time
	pickPreset func() model.RGB
}

// NewRenderer creates a Renderer writing into scratchDir. The version tag
// is stamped into leaderboard title bars.
func NewRenderer(fonts *Fonts, scratchDir, version string, maxConcurrent int) *Renderer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Renderer{
		fonts:      fonts,
		scratchDir: scratchDir,
		version:    version,
		sem:        make(chan struct{}, maxConcurrent),
		now:        time.Now,
		pickPreset: RandomPreset,
	}
}

// acquire reserves a render slot, or gives up when the context ends first.
func (r *Renderer) acquire(ctx context.Context) (release func(), err error) {
	select {
	case r.sem <- struct{}{}:
		return func() { <-r.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolveTheme applies the theme resolution order: explicit colour if
// configured, otherwise a fresh random preset.
func (r *Renderer) resolveTheme(theme *model.RGB) Palette {
	if theme != nil {
		return MakePalette(*theme)
	}
	return MakePalette(r.pickPreset())
}

// Leaderboard renders one page of a guild leaderboard and returns the
// written file's path.
func (r *Renderer) Leaderboard(ctx context.Context, guild Guild, entries []model.LeaderboardEntry, maxRows, page int, theme *model.RGB) (string, error) {
	release, err := r.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	if maxRows < 1 {
		maxRows = 1
	}
	if maxRows > levels.MaxLeaderboardRows {
		maxRows = levels.MaxLeaderboardRows
	}
	if page < 1 {
		page = 1
	}

	pal := r.resolveTheme(theme)

	pageEntries, indices, totalPages := levels.Paginate(entries, maxRows, page)

	height := lbTitlebarHeight + (unitHeight+rowGap)*maxRows
	dc := gg.NewContext(lbWidth, height)
	setRGB(dc, pal.Main)
	dc.Clear()

	iconOffset := 0.0
	if guild.Icon != nil {
		if icon := decodeIcon(guild.Icon); icon != nil {
			dc.DrawImage(icon, lbTitlePadLeft/2, lbTitlePadTop/2)
			iconOffset = lbIconSize
		}
	}

	// Title and the right-aligned meta block: date, page count, version.
	title := fitText(r.fonts.Title, guild.Name, lbTitleTextWidth-iconOffset)
	dc.SetFontFace(r.fonts.Title)
	setRGB(dc, pal.Text)
	dc.DrawStringAnchored(title, lbTitlePadLeft+iconOffset, lbTitlePadTop, 0, 1)

	metaLines := []string{
		r.now().Format("02 01 06"),
		fmt.Sprintf("page %d / %d", page, totalPages),
		fmt.Sprintf("c-ldu %s", r.version),
	}
	dc.SetFontFace(r.fonts.Tiny)
	lineHeight := dc.FontHeight() + 5
	for i, line := range metaLines {
		line = fitText(r.fonts.Tiny, line, lbTitleMetaWidth)
		dc.DrawStringAnchored(line, lbWidth-lbTitlePadLeft, lbTitlePadTop+lineHeight*float64(i), 1, 1)
	}

	for i, entry := range pageEntries {
		y := lbTitlebarHeight + (unitHeight+rowGap)*(i%maxRows)
		x := xLeftColumn
		if i >= maxRows {
			x = xRightColumn
		}
		dc.DrawImage(r.userUnit(entry, indices[i], pal, false), x, y)
	}

	path := filepath.Join(r.scratchDir, fmt.Sprintf("%s_%s.png", guild.ID, r.now().Format("20060102150405")))
	if err := r.save(dc.Image(), lbDownsampleDiv, path); err != nil {
		return "", err
	}

	log.Debug().Str("guild_id", guild.ID).Int("page", page).Str("path", path).Msg("rendered leaderboard")
	return path, nil
}

// RankCard renders a single user's rank card. Returns ErrUserNotRanked when
// the user is absent from the supplied leaderboard.
func (r *Renderer) RankCard(ctx context.Context, guild Guild, entries []model.LeaderboardEntry, userID string, theme *model.RGB) (string, error) {
	entry, index := findEntry(entries, userID)
	if index < 0 {
		return "", ErrUserNotRanked
	}

	release, err := r.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	// The user's personal theme wins over the guild theme.
	if entry.Theme != nil {
		theme = entry.Theme
	}
	pal := r.resolveTheme(theme)

	dc := gg.NewContext(rankCardWidth, rankCardHeight)
	setRGB(dc, pal.Main)
	dc.Clear()

	title := fitText(r.fonts.Title, entry.UserName, rankCardTitleWidth)
	dc.SetFontFace(r.fonts.Title)
	setRGB(dc, pal.Text)
	dc.DrawStringAnchored(title, lbTitlePadLeft, lbTitlePadTop, 0, 1)

	dc.DrawImage(r.userUnit(entry, index, pal, true), rankCardLeftPad, lbTitlebarHeight)

	path := filepath.Join(r.scratchDir, fmt.Sprintf("%s_%s_%s.png", userID, guild.ID, r.now().Format("20060102150405")))
	if err := r.save(dc.Image(), rankDownsampleDiv, path); err != nil {
		return "", err
	}

	log.Debug().Str("guild_id", guild.ID).Str("user_id", userID).Str("path", path).Msg("rendered rank card")
	return path, nil
}

// userUnit draws one user's rounded-rectangle block: level badge, name (or
// total points in rank mode) and the points-to-next-level line.
func (r *Renderer) userUnit(entry model.LeaderboardEntry, absIndex int, pal Palette, rankMode bool) image.Image {
	width := unitWidth
	if rankMode {
		width += rankUnitExtend
	}

	dc := gg.NewContext(width, unitHeight)

	setRGB(dc, pal.Dark)
	dc.DrawRoundedRectangle(0, 0, float64(width), unitHeight, 32)
	dc.Fill()

	dc.DrawImage(r.levelBadge(entry, absIndex, pal), unitCirclePad, unitCirclePad)

	topText := entry.UserName
	if rankMode {
		topText = fmt.Sprintf("%d points", entry.TotalPoints)
	}
	dc.SetFontFace(r.fonts.Body)
	setRGB(dc, pal.Text)
	dc.DrawStringAnchored(fitText(r.fonts.Body, topText, unitTextWidth), xUnitText, unitHeight/2-unitNameVPad, 0, 0)

	bottomText := fmt.Sprintf("%d points to next level", entry.PointsToNext)
	dc.SetFontFace(r.fonts.BodyLight)
	dc.DrawStringAnchored(fitText(r.fonts.BodyLight, bottomText, unitTextWidth), xUnitText, unitHeight/2+unitBottomVPad, 0, 1)

	return dc.Image()
}

// levelBadge draws the circular level badge: coloured disc, annular
// progress arc from 12 o'clock, and the centred level number. The top three
// absolute ranks use the fixed medal colours for label and arc.
func (r *Renderer) levelBadge(entry model.LeaderboardEntry, absIndex int, pal Palette) image.Image {
	accent := pal.Text
	if medal, ok := MedalColour(absIndex); ok {
		accent = medal
	}

	dc := gg.NewContext(circleSurface, circleSurface)
	center := float64(circleSurface) / 2

	setRGB(dc, pal.Circle)
	dc.DrawCircle(center, center, circleSize/2)
	dc.Fill()

	if entry.Progress > 0 {
		radius := center - arcOffset - float64(arcThickness)/2
		dc.DrawArc(center, center, radius,
			gg.Radians(arcStartDeg),
			gg.Radians(arcStartDeg+arcSweepDeg*entry.Progress))
		setRGB(dc, accent)
		dc.SetLineWidth(arcThickness)
		dc.Stroke()
	}

	label := strconv.Itoa(entry.Level)
	dc.SetFontFace(r.fonts.levelFace(len(label)))
	setRGB(dc, accent)
	dc.DrawStringAnchored(label, center, center-levelTextVOffset, 0.5, 0.5)

	return dc.Image()
}

// save downsamples the canvas by div and writes it as PNG.
func (r *Renderer) save(img image.Image, div int, path string) error {
	if err := os.MkdirAll(r.scratchDir, 0o755); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()/div, b.Dy()/div))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)

	if err := gg.SavePNG(path, dst); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// decodeIcon decodes and scales the guild icon, rounding its corners.
// A bad icon degrades to no icon rather than failing the render.
func decodeIcon(data []byte) image.Image {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn().Err(err).Msg("failed to decode guild icon, rendering without it")
		return nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, lbIconSize, lbIconSize))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	dc := gg.NewContext(lbIconSize, lbIconSize)
	dc.DrawRoundedRectangle(0, 0, lbIconSize, lbIconSize, 20)
	dc.Clip()
	dc.DrawImage(scaled, 0, 0)
	return dc.Image()
}

// findEntry locates a user in the leaderboard by linear scan, returning the
// entry and its absolute index, or -1 when absent.
func findEntry(entries []model.LeaderboardEntry, userID string) (model.LeaderboardEntry, int) {
	for i, e := range entries {
		if e.UserID == userID {
			return e, i
		}
	}
	return model.LeaderboardEntry{}, -1
}

func setRGB(dc *gg.Context, c model.RGB) {
	dc.SetRGB255(c.R, c.G, c.B)
}
