package objects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
	"github.com/banshee-data/objectgraph/internal/semantics"
	"github.com/banshee-data/objectgraph/internal/timeutil"
)

var (
	chair = []float64{1, 0}
	table = []float64{0, 1}
	junk  = []float64{-1, -1}
)

func seg(i uint64) scenegraph.NodeID   { return scenegraph.NewNodeID('s', i) }
func place(i uint64) scenegraph.NodeID { return scenegraph.NewNodeID('p', i) }
func obj(i uint64) scenegraph.NodeID   { return scenegraph.NewNodeID('O', i) }

var epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func testTasks(t *testing.T) *semantics.TaskSet {
	t.Helper()
	ts, err := semantics.NewTaskSet([]string{"chair", "table"}, [][]float64{chair, table})
	require.NoError(t, err)
	return ts
}

func newTestUpdater(t *testing.T, mutate func(*Config)) *Updater {
	t.Helper()
	cfg := DefaultConfig(testTasks(t))
	cfg.Clock = timeutil.NewMockClock(epoch)
	if mutate != nil {
		mutate(&cfg)
	}
	u, err := NewUpdater(cfg)
	require.NoError(t, err)
	return u
}

// addSegment inserts a segment centred on pos with a cube of half-size 0.5.
func addSegment(t *testing.T, g *scenegraph.Graph, i uint64, pos r3.Vec, feature ...[]float64) {
	t.Helper()
	f, err := scenegraph.FeatureFromSamples(feature...)
	require.NoError(t, err)
	half := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	attrs := &scenegraph.SemanticAttributes{
		NodeAttributes: scenegraph.NodeAttributes{Position: pos, IsActive: true},
		Feature:        f,
		BoundingBox:    scenegraph.BoundingBox{Min: r3.Sub(pos, half), Max: r3.Add(pos, half)},
		FirstObserved:  epoch,
		LastObserved:   epoch,
	}
	require.True(t, g.EmplaceNode(scenegraph.SegmentsLayer, seg(i), attrs))
}

func addPlace(t *testing.T, g *scenegraph.Graph, i uint64, pos r3.Vec, volatile bool) {
	t.Helper()
	require.True(t, g.EmplaceNode(scenegraph.PlacesLayer, place(i), &scenegraph.NodeAttributes{Position: pos, IsActive: volatile}))
}

func setPlaceActive(t *testing.T, g *scenegraph.Graph, i uint64, active bool) {
	t.Helper()
	g.MustNode(place(i)).Attrs.Base().IsActive = active
}

// requireDisjoint checks that no segment belongs to two live components.
func requireDisjoint(t *testing.T, snap StateSnapshot) {
	t.Helper()
	owner := make(map[scenegraph.NodeID]int)
	for id, c := range snap.Components {
		for _, s := range c.Segments {
			prev, dup := owner[s]
			require.Falsef(t, dup, "segment %s in components %d and %d", s, prev, id)
			owner[s] = id
		}
	}
}
