package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPointsToLevel(t *testing.T) {
	tests := []struct {
		name      string
		points    int64
		k         float64
		wantLevel int
	}{
		{"zero points is level zero", 0, 0, 0},
		{"below first threshold", 28, 0, 0},
		{"just past first threshold", 29, 0, 1},
		{"second threshold", 115, 0, 2},
		{"negative mirrors positive", -29, 0, -1},
		{"custom k", 100, 2, 5},
		{"zero k falls back to default", 28, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, _ := PointsToLevel(tt.points, tt.k)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestLevelToPoints(t *testing.T) {
	tests := []struct {
		name  string
		level int
		k     float64
		want  int64
	}{
		{"level zero needs nothing", 0, 0, 0},
		{"level one default k", 1, 0, 28},
		{"level two default k", 2, 0, 114},
		{"level three custom k", 3, 2, 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelToPoints(tt.level, tt.k))
		})
	}
}

// TestCurveRoundTripProperty checks that a total always lands inside the
// bracket [LevelToPoints(level), LevelToPoints(level+1)) that PointsToLevel
// assigns it to, modulo float truncation at the exact boundary.
func TestCurveRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		points := rapid.Int64Range(0, 1_000_000_000).Draw(t, "points")
		k := rapid.OneOf(
			rapid.Just(0.0),
			rapid.Float64Range(1, 20),
		).Draw(t, "k")

		level, remaining := PointsToLevel(points, k)

		if level < 0 {
			t.Fatalf("non-negative points %d produced level %d", points, level)
		}
		if remaining < 0 {
			t.Fatalf("points %d produced negative remaining %d", points, remaining)
		}
		if floor := LevelToPoints(level, k); floor > points+1 {
			t.Fatalf("points %d assigned level %d whose threshold is %d", points, level, floor)
		}
	})
}

// TestCurveMonotonicProperty checks that one more point never lowers the
// level.
func TestCurveMonotonicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		points := rapid.Int64Range(0, 1_000_000_000).Draw(t, "points")
		k := rapid.Float64Range(1, 20).Draw(t, "k")

		level, _ := PointsToLevel(points, k)
		next, _ := PointsToLevel(points+1, k)
		if next < level {
			t.Fatalf("level dropped from %d to %d between %d and %d points", level, next, points, points+1)
		}
	})
}

func TestCurveNegativeSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		points := rapid.Int64Range(0, 1_000_000_000).Draw(t, "points")

		pos, _ := PointsToLevel(points, 0)
		neg, _ := PointsToLevel(-points, 0)
		if neg != -pos {
			t.Fatalf("level for %d is %d but for %d is %d", points, pos, -points, neg)
		}
	})
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		total     int64
		remaining int64
		want      float64
	}{
		{"fresh level is near zero", 1, 29, 85, float64(29-28) / float64(29-28+85)},
		{"zero-width span reads complete", 0, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Progress(tt.level, tt.total, tt.remaining, 0), 1e-9)
		})
	}
}

func TestProgressBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		points := rapid.Int64Range(0, 1_000_000_000).Draw(t, "points")
		k := rapid.Float64Range(1, 20).Draw(t, "k")

		level, remaining := PointsToLevel(points, k)
		p := Progress(level, points, remaining, k)
		if p < 0 || p > 1 {
			t.Fatalf("progress %f out of range for %d points", p, points)
		}
	})
}
