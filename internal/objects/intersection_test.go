package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) scenegraph.BoundingBox {
	return scenegraph.BoundingBox{
		Min: r3.Vec{X: minX, Y: minY, Z: minZ},
		Max: r3.Vec{X: maxX, Y: maxY, Z: maxZ},
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	unit := box(0, 0, 0, 1, 1, 1)
	tests := []struct {
		name      string
		other     scenegraph.BoundingBox
		tolerance float64
		want      bool
	}{
		{"contained", box(0.2, 0.2, 0.2, 0.8, 0.8, 0.8), 0, true},
		{"partial", box(0.5, 0.5, 0.5, 2, 2, 2), 0, true},
		{"touching face", box(1, 0, 0, 2, 1, 1), 0, true},
		{"gap", box(1.1, 0, 0, 2, 1, 1), 0, false},
		{"gap bridged by tolerance", box(1.1, 0, 0, 2, 1, 1), 0.2, true},
		{"separated on one axis only", box(0, 0, 3, 1, 1, 4), 0, false},
		{"shallow overlap under negative tolerance", box(0.95, 0, 0, 2, 1, 1), -0.1, false},
		{"deep overlap under negative tolerance", box(0.5, 0, 0, 2, 1, 1), -0.1, true},
		{"far negative coordinates", box(-5, -5, -5, -4, -4, -4), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(unit, tt.other, tt.tolerance))
			assert.Equal(t, tt.want, Overlaps(tt.other, unit, tt.tolerance), "must be symmetric")
		})
	}
}

func TestOverlapIntersection(t *testing.T) {
	t.Parallel()

	a := &scenegraph.SemanticAttributes{BoundingBox: box(0, 0, 0, 1, 1, 1)}
	b := &scenegraph.SemanticAttributes{BoundingBox: box(1.05, 0, 0, 2, 1, 1)}
	assert.False(t, OverlapIntersection{}.Intersects(a, b))
	assert.True(t, OverlapIntersection{Tolerance: 0.1}.Intersects(a, b))
}
