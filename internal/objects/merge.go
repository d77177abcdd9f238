package objects

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// AuxiliaryMerge folds the non-averaged fields of from into into.
type AuxiliaryMerge func(into, from *scenegraph.SemanticAttributes)

// DefaultAuxiliaryMerge unions bounding boxes, keeps the earliest first and
// latest last observation, and marks the result active if either side is.
func DefaultAuxiliaryMerge(into, from *scenegraph.SemanticAttributes) {
	into.BoundingBox = into.BoundingBox.Union(from.BoundingBox)
	into.FirstObserved = earliest(into.FirstObserved, from.FirstObserved)
	if from.LastObserved.After(into.LastObserved) {
		into.LastObserved = from.LastObserved
	}
	if from.LastUpdate.After(into.LastUpdate) {
		into.LastUpdate = from.LastUpdate
	}
	into.IsActive = into.IsActive || from.IsActive
}

func earliest(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero() || a.Before(b):
		return a
	default:
		return b
	}
}

type nodeLookup interface {
	Node(id scenegraph.NodeID) (*scenegraph.Node, bool)
}

func mustNode(g nodeLookup, id scenegraph.NodeID) *scenegraph.Node {
	n, ok := g.Node(id)
	if !ok {
		panic(fmt.Errorf("%w: %s", scenegraph.ErrMissingNode, id))
	}
	return n
}

// MergeAttributes combines the attributes of a cluster's segments. Position
// and the row-mean feature are averaged; every other field goes through aux.
// Returns false for an empty cluster.
func MergeAttributes(g nodeLookup, ids []scenegraph.NodeID, aux AuxiliaryMerge) (*scenegraph.SemanticAttributes, bool) {
	if len(ids) == 0 {
		return nil, false
	}
	if aux == nil {
		aux = DefaultAuxiliaryMerge
	}

	first := scenegraph.MustSemantic(mustNode(g, ids[0]))
	out := first.Clone()
	position := first.Position
	feature := first.FeatureVector()

	for _, id := range ids[1:] {
		other := scenegraph.MustSemantic(mustNode(g, id))
		position = r3.Add(position, other.Position)
		floats.Add(feature, other.FeatureVector())
		aux(out, other)
	}

	n := float64(len(ids))
	out.Position = r3.Scale(1/n, position)
	floats.Scale(1/n, feature)
	if len(feature) > 0 {
		out.Feature = mat.NewDense(len(feature), 1, feature)
	} else {
		out.Feature = nil
	}
	return out, true
}
