package scenegraph

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrMissingNode reports a node id the caller expected to exist.
	ErrMissingNode = errors.New("scenegraph: missing node")
	// ErrAttributeType reports a node whose attributes lack a required capability.
	ErrAttributeType = errors.New("scenegraph: unexpected attribute type")
)

// Attributes is the typed payload carried by every node. Concrete variants
// embed NodeAttributes and so satisfy the interface through Base.
type Attributes interface {
	Base() *NodeAttributes
}

// NodeAttributes holds the fields shared by all node variants.
type NodeAttributes struct {
	Position r3.Vec
	// IsActive marks a node that is still being revised. For places an
	// active node is a volatile anchor; an inactive one is stable.
	IsActive   bool
	LastUpdate time.Time
}

// Base implements Attributes.
func (a *NodeAttributes) Base() *NodeAttributes { return a }

// BoundingBox is an axis-aligned box in world coordinates.
type BoundingBox struct {
	Min r3.Vec
	Max r3.Vec
}

// NewBoundingBox returns the box spanning both corners regardless of order.
func NewBoundingBox(a, b r3.Vec) BoundingBox {
	return BoundingBox{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: r3.Vec{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y), Z: math.Min(b.Min.Z, o.Min.Z)},
		Max: r3.Vec{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y), Z: math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// SemanticAttributes is the "semantic object" variant used by segments and
// objects: a position, a bounding box and a semantic feature.
//
// Feature is a dim×samples matrix; each column is one embedding sample.
// Merged object attributes carry a single column.
type SemanticAttributes struct {
	NodeAttributes

	Name          string
	Feature       *mat.Dense
	BoundingBox   BoundingBox
	FirstObserved time.Time
	LastObserved  time.Time
}

// FeatureVector reduces the feature matrix to one vector by averaging over
// its samples. Returns nil when there is no feature.
func (a *SemanticAttributes) FeatureVector() []float64 {
	return RowMean(a.Feature)
}

// Clone returns a deep copy of the attributes.
func (a *SemanticAttributes) Clone() *SemanticAttributes {
	out := *a
	if a.Feature != nil {
		out.Feature = mat.DenseCopyOf(a.Feature)
	}
	return &out
}

// RowMean averages a dim×samples matrix over its columns.
func RowMean(m *mat.Dense) []float64 {
	if m == nil {
		return nil
	}
	rows, cols := m.Dims()
	out := make([]float64, rows)
	if cols == 0 {
		return out
	}
	for i := 0; i < rows; i++ {
		var sum float64
		for _, v := range m.RawRowView(i) {
			sum += v
		}
		out[i] = sum / float64(cols)
	}
	return out
}

// FeatureFromSamples builds a dim×len(samples) feature matrix from a list of
// equally sized embedding samples.
func FeatureFromSamples(samples ...[]float64) (*mat.Dense, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("feature needs at least one sample")
	}
	dim := len(samples[0])
	if dim == 0 {
		return nil, fmt.Errorf("feature samples must be non-empty")
	}
	m := mat.NewDense(dim, len(samples), nil)
	for j, s := range samples {
		if len(s) != dim {
			return nil, fmt.Errorf("feature sample %d has dimension %d, want %d", j, len(s), dim)
		}
		m.SetCol(j, s)
	}
	return m, nil
}

// SemanticOf returns the semantic capability of a node's attributes.
func SemanticOf(attrs Attributes) (*SemanticAttributes, bool) {
	s, ok := attrs.(*SemanticAttributes)
	return s, ok
}

// MustSemantic returns the node's semantic attributes or panics with
// ErrAttributeType. A node without them means the graph no longer matches
// what its producers promised.
func MustSemantic(n *Node) *SemanticAttributes {
	s, ok := SemanticOf(n.Attrs)
	if !ok {
		panic(fmt.Errorf("%w: node %s has %T", ErrAttributeType, n.ID, n.Attrs))
	}
	return s
}
