package exercise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/repcounter/internal/detector"
)

func TestComputeAngle(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c detector.Point2D
		want    float64
	}{
		{
			name: "right angle",
			a:    detector.Point2D{X: 0, Y: 1},
			b:    detector.Point2D{X: 0, Y: 0},
			c:    detector.Point2D{X: 1, Y: 0},
			want: 90,
		},
		{
			name: "straight line",
			a:    detector.Point2D{X: -1, Y: 0},
			b:    detector.Point2D{X: 0, Y: 0},
			c:    detector.Point2D{X: 1, Y: 0},
			want: 180,
		},
		{
			name: "folded onto itself",
			a:    detector.Point2D{X: 1, Y: 1},
			b:    detector.Point2D{X: 0, Y: 0},
			c:    detector.Point2D{X: 2, Y: 2},
			want: 0,
		},
		{
			name: "reflex side is folded back under 180",
			a:    detector.Point2D{X: 1, Y: 0},
			b:    detector.Point2D{X: 0, Y: 0},
			c:    detector.Point2D{X: 1, Y: -1},
			want: 45,
		},
		{
			name: "order of the outer points does not matter",
			a:    detector.Point2D{X: 1, Y: -1},
			b:    detector.Point2D{X: 0, Y: 0},
			c:    detector.Point2D{X: 1, Y: 0},
			want: 45,
		},
		{
			name: "normalized image coordinates",
			a:    detector.Point2D{X: 0.45, Y: 0.25},
			b:    detector.Point2D{X: 0.45, Y: 0.40},
			c:    detector.Point2D{X: 0.60, Y: 0.40},
			want: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeAngle(tt.a, tt.b, tt.c), 1e-9)
		})
	}
}

func TestComputeAngle_Degenerate(t *testing.T) {
	p := detector.Point2D{X: 0.3, Y: 0.3}

	t.Run("coincident points", func(t *testing.T) {
		got := ComputeAngle(p, p, p)
		assert.False(t, math.IsNaN(got))
		assert.Equal(t, 0.0, got)
	})

	t.Run("zero length arm", func(t *testing.T) {
		got := ComputeAngle(p, p, detector.Point2D{X: 0.3, Y: 0.5})
		assert.False(t, math.IsNaN(got))
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 180.0)
	})
}

func TestComputeAngle_Range(t *testing.T) {
	b := detector.Point2D{X: 0.5, Y: 0.5}
	for i := 0; i < 360; i += 7 {
		for j := 0; j < 360; j += 11 {
			ai := float64(i) * math.Pi / 180
			aj := float64(j) * math.Pi / 180
			a := detector.Point2D{X: b.X + math.Cos(ai), Y: b.Y + math.Sin(ai)}
			c := detector.Point2D{X: b.X + math.Cos(aj), Y: b.Y + math.Sin(aj)}

			got := ComputeAngle(a, b, c)
			if got < 0 || got > 180 {
				t.Fatalf("ComputeAngle at %d/%d = %f, outside [0,180]", i, j, got)
			}
		}
	}
}
