// Package levels implements the XP/leveling core: the level curve, the
// concurrent points ledger, the message grant policy and the leaderboard
// projection.
package levels

import "math"

// DefaultCurveK is the curve steepness constant used when a guild has not
// configured its own.
const DefaultCurveK = 5.34

// normalizeK guards against unset or zero steepness, which would divide by
// zero in the curve.
func normalizeK(k float64) float64 {
	if k <= 0 {
		return DefaultCurveK
	}
	return k
}

// PointsToLevel converts a point total to a level and the points remaining
// until the next level. Levels are symmetric around zero: negative totals
// produce negative levels.
func PointsToLevel(points int64, k float64) (level int, remaining int64) {
	k = normalizeK(k)

	level = int(math.Sqrt(math.Abs(float64(points))) / k)
	if points < 0 {
		level = -level
	}

	// Total points required to reach the next level from zero.
	next := math.Pow(float64(level+1)*k, 2)

	return level, int64(next) - points
}

// LevelToPoints returns the total points required to reach a level.
func LevelToPoints(level int, k float64) int64 {
	k = normalizeK(k)
	return int64(math.Pow(float64(level)*k, 2))
}

// Progress returns the fraction of the way from the current level's
// threshold to the next, clamped to [0, 1]. A zero-width span reads as
// complete.
func Progress(level int, total, remaining int64, k float64) float64 {
	sinceLevel := total - LevelToPoints(level, k)

	span := sinceLevel + remaining
	if span == 0 {
		return 1
	}

	progress := float64(sinceLevel) / float64(span)
	return math.Min(math.Max(progress, 0), 1)
}
