package scenegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func seg(i uint64) NodeID   { return NewNodeID('s', i) }
func obj(i uint64) NodeID   { return NewNodeID('O', i) }
func place(i uint64) NodeID { return NewNodeID('p', i) }

func TestNodeID(t *testing.T) {
	t.Parallel()

	id := NewNodeID('O', 12)
	assert.Equal(t, byte('O'), id.Category())
	assert.Equal(t, uint64(12), id.Index())
	assert.Equal(t, "O12", id.Label())
	assert.Equal(t, "O13", id.Next().Label())
	assert.Less(t, uint64(NewNodeID('O', 1)), uint64(NewNodeID('O', 2)))
}

func TestLayerIDString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "segments", SegmentsLayer.String())
	assert.Equal(t, "objects", ObjectsLayer.String())
	assert.Equal(t, "places", PlacesLayer.String())
	assert.Equal(t, "layer(9)", LayerID(9).String())
}

func TestEmplaceAndLookup(t *testing.T) {
	t.Parallel()

	g := New()
	require.True(t, g.EmplaceNode(SegmentsLayer, seg(2), nil))
	require.True(t, g.EmplaceNode(SegmentsLayer, seg(1), &NodeAttributes{IsActive: true}))
	assert.False(t, g.EmplaceNode(ObjectsLayer, seg(1), nil), "duplicate id must be rejected")

	n, ok := g.Node(seg(1))
	require.True(t, ok)
	assert.True(t, n.Attrs.Base().IsActive)

	layer := g.LayerNodes(SegmentsLayer)
	require.Len(t, layer, 2)
	assert.Equal(t, seg(1), layer[0].ID)
	assert.Equal(t, seg(2), layer[1].ID)
	assert.Equal(t, 0, g.NumNodes(PlacesLayer))
}

func TestMustNodePanicsOnMissing(t *testing.T) {
	t.Parallel()

	g := New()
	assert.PanicsWithError(t, "scenegraph: missing node: s4", func() { g.MustNode(seg(4)) })
}

func TestInsertEdge(t *testing.T) {
	t.Parallel()

	g := New()
	g.EmplaceNode(SegmentsLayer, seg(1), nil)
	g.EmplaceNode(SegmentsLayer, seg(2), nil)
	g.EmplaceNode(ObjectsLayer, obj(0), nil)
	g.EmplaceNode(PlacesLayer, place(0), nil)
	g.EmplaceNode(PlacesLayer, place(1), nil)

	t.Run("sibling", func(t *testing.T) {
		assert.True(t, g.InsertEdge(seg(1), seg(2)))
		assert.False(t, g.InsertEdge(seg(2), seg(1)), "edge already exists")
		assert.Equal(t, []NodeID{seg(2)}, g.Siblings(seg(1)))
		assert.Equal(t, []NodeID{seg(1)}, g.Siblings(seg(2)))
	})

	t.Run("parent from either direction", func(t *testing.T) {
		assert.True(t, g.InsertEdge(place(0), obj(0)))
		parent, ok := g.Parent(obj(0))
		require.True(t, ok)
		assert.Equal(t, place(0), parent)
		assert.False(t, g.InsertEdge(obj(0), place(1)), "single parent")
		pn, _ := g.Node(place(0))
		assert.Equal(t, []NodeID{obj(0)}, pn.Children())
	})

	t.Run("missing or self", func(t *testing.T) {
		assert.False(t, g.InsertEdge(seg(1), seg(1)))
		assert.False(t, g.InsertEdge(seg(1), seg(99)))
	})

	assert.Equal(t, 2, g.NumEdges())
	assert.True(t, g.HasEdge(obj(0), place(0)))
	assert.False(t, g.HasEdge(obj(0), place(1)))
}

func TestRemoveNodeDropsEdges(t *testing.T) {
	t.Parallel()

	g := New()
	g.EmplaceNode(SegmentsLayer, seg(1), nil)
	g.EmplaceNode(ObjectsLayer, obj(0), nil)
	g.EmplaceNode(ObjectsLayer, obj(1), nil)
	g.EmplaceNode(PlacesLayer, place(0), nil)
	require.True(t, g.InsertEdge(obj(0), seg(1)))
	require.True(t, g.InsertEdge(obj(0), obj(1)))
	require.True(t, g.InsertEdge(obj(0), place(0)))
	require.Equal(t, 3, g.NumEdges())

	require.True(t, g.RemoveNode(obj(0)))
	assert.False(t, g.HasNode(obj(0)))
	assert.False(t, g.RemoveNode(obj(0)))
	assert.Equal(t, 0, g.NumEdges())

	_, ok := g.Parent(seg(1))
	assert.False(t, ok, "children lose their parent")
	assert.Empty(t, g.Siblings(obj(1)))
	pn, _ := g.Node(place(0))
	assert.Empty(t, pn.Children())
}

func TestRemoveEdge(t *testing.T) {
	t.Parallel()

	g := New()
	g.EmplaceNode(ObjectsLayer, obj(0), nil)
	g.EmplaceNode(PlacesLayer, place(0), nil)
	g.EmplaceNode(PlacesLayer, place(1), nil)
	require.True(t, g.InsertEdge(obj(0), place(0)))
	require.True(t, g.RemoveEdge(place(0), obj(0)))
	assert.False(t, g.RemoveEdge(place(0), obj(0)))
	assert.True(t, g.InsertEdge(obj(0), place(1)), "re-parenting after removal")
}

func TestBoundingBox(t *testing.T) {
	t.Parallel()

	a := NewBoundingBox(r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 0, Y: 0, Z: 0})
	assert.Equal(t, r3.Vec{}, a.Min)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, a.Max)

	b := BoundingBox{Min: r3.Vec{X: 2, Y: -1, Z: 0}, Max: r3.Vec{X: 3, Y: 0.5, Z: 4}}
	u := a.Union(b)
	assert.Equal(t, r3.Vec{X: 0, Y: -1, Z: 0}, u.Min)
	assert.Equal(t, r3.Vec{X: 3, Y: 1, Z: 4}, u.Max)
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, a.Center())
}

func TestFeatureHelpers(t *testing.T) {
	t.Parallel()

	f, err := FeatureFromSamples([]float64{1, 0}, []float64{0, 1}, []float64{2, 2})
	require.NoError(t, err)
	rows, cols := f.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.InDeltaSlice(t, []float64{1, 1}, RowMean(f), 1e-12)

	_, err = FeatureFromSamples([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = FeatureFromSamples()
	assert.Error(t, err)
	assert.Nil(t, RowMean(nil))

	attrs := &SemanticAttributes{Feature: f}
	clone := attrs.Clone()
	clone.Feature.Set(0, 0, 42)
	assert.Equal(t, 1.0, attrs.Feature.At(0, 0), "clone must not share the feature matrix")
}

func TestMustSemantic(t *testing.T) {
	t.Parallel()

	g := New()
	g.EmplaceNode(SegmentsLayer, seg(1), &SemanticAttributes{Name: "chair"})
	g.EmplaceNode(PlacesLayer, place(0), &NodeAttributes{})

	assert.Equal(t, "chair", MustSemantic(g.MustNode(seg(1))).Name)
	assert.Panics(t, func() { MustSemantic(g.MustNode(place(0))) })
}
