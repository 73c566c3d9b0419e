package render

// Layout constants for the virtual canvas. Dimensions are in canvas pixels;
// the leaderboard canvas is 1800 wide and downsampled 2x on save, the rank
// card 3x, so the delivered images land at 900 and ~1/3 width respectively.

// Level circle.
const (
	circleSize   = 165
	circleOffset = 1 // padding around the circle to prevent clipping

	arcOffset    = 12 // gap between circle edge and arc
	arcThickness = 12
	arcStartDeg  = -90 // 12 o'clock
	arcSweepDeg  = 360

	levelTextVOffset = -8 // positive moves the level label up

	circleSurface = circleSize + 2*circleOffset
)

// Leaderboard layout.
const (
	lbWidth          = 1800 // height derives from the row count
	lbTitlebarHeight = 150
	lbTitlePadTop    = 30
	lbTitlePadLeft   = 30
	lbIconSize       = lbTitlebarHeight - lbTitlePadTop
	lbTitleMetaWidth = 345 // region reserved for date, page count, version
	lbTitleTextWidth = lbWidth - lbTitleMetaWidth

	columnWidth      = lbWidth / 2
	columnPadEdge    = 8
	columnPadMiddle  = 4
	unitHeight       = 180
	unitWidth        = columnWidth - (columnPadEdge + columnPadMiddle/2)
	xLeftColumn      = columnPadEdge
	xRightColumn     = columnWidth + columnPadMiddle
	unitCirclePad    = (unitHeight - circleSize) / 2
	unitNameVPad     = 0
	unitBottomVPad   = 30
	unitTextPad      = 15
	xUnitText        = unitCirclePad*2 + circleSize + unitTextPad
	unitTextWidth    = unitWidth - (unitCirclePad*3 + circleSize)
	rowGap           = columnPadEdge / 2
	lbDownsampleDiv  = 2
)

// Rank card layout: a single widened user unit under a title bar.
const (
	rankUnitExtend     = 250
	rankCardTitleWidth = lbTitleTextWidth
	rankCardHeight     = lbTitlebarHeight + unitHeight + unitBottomVPad
	rankCardLeftPad    = rankCardHeight - lbTitlebarHeight - unitHeight
	rankCardWidth      = unitWidth + 2*rankCardLeftPad + rankUnitExtend
	rankDownsampleDiv  = 3
)

// Font sizes, matched to the canvas scale.
const (
	fontSizeTitle     = 105
	fontSizeBigNumber = 100 // 1-digit levels
	fontSizeMedNumber = 86  // 2-digit levels
	fontSizeSmallNum  = 72  // 3+ digit levels
	fontSizeBody      = 72
	fontSizeBodyLight = 42
	fontSizeTiny      = 33
)
