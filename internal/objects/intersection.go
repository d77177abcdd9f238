package objects

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// IntersectionPolicy decides whether two segments are spatially connected.
type IntersectionPolicy interface {
	Intersects(a, b *scenegraph.SemanticAttributes) bool
}

// OverlapIntersection connects segments whose bounding boxes overlap within
// Tolerance.
type OverlapIntersection struct {
	Tolerance float64
}

// Intersects implements IntersectionPolicy.
func (o OverlapIntersection) Intersects(a, b *scenegraph.SemanticAttributes) bool {
	return Overlaps(a.BoundingBox, b.BoundingBox, o.Tolerance)
}

// Overlaps reports whether two boxes intersect on every axis after both are
// shifted so their joint minimum corner sits at the origin. A positive
// tolerance bridges gaps up to that size; a negative one requires at least
// that much penetration.
func Overlaps(a, b scenegraph.BoundingBox, tolerance float64) bool {
	origin := r3.Vec{
		X: math.Min(a.Min.X, b.Min.X),
		Y: math.Min(a.Min.Y, b.Min.Y),
		Z: math.Min(a.Min.Z, b.Min.Z),
	}
	aMin, aMax := r3.Sub(a.Min, origin), r3.Sub(a.Max, origin)
	bMin, bMax := r3.Sub(b.Min, origin), r3.Sub(b.Max, origin)

	return aMin.X <= bMax.X+tolerance && aMax.X+tolerance >= bMin.X &&
		aMin.Y <= bMax.Y+tolerance && aMax.Y+tolerance >= bMin.Y &&
		aMin.Z <= bMax.Z+tolerance && aMax.Z+tolerance >= bMin.Z
}
