package objects

import (
	"github.com/banshee-data/objectgraph/internal/clustering"
	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// retire clears every touched component: its segments become eligible
// again, its objects leave the graph and the active set, and its id is
// released.
func (u *Updater) retire(g Graph, touched []int, stats *CycleStats) {
	for _, id := range touched {
		c, ok := u.state.component(id)
		if !ok {
			continue
		}
		for _, seg := range c.Segments {
			delete(u.state.clustered, seg)
		}
		for _, obj := range c.Objects {
			g.RemoveNode(obj)
			delete(u.state.active, obj)
		}
		u.state.free(id)
		stats.RetiredComponents++
		Tracef("retired component %d (%d segments, %d objects)", id, len(c.Segments), len(c.Objects))
	}
}

// discover returns the connected groups of eligible segments.
func (u *Updater) discover(g Graph) [][]scenegraph.NodeID {
	eligible := func(n *scenegraph.Node) bool { return u.state.eligible(n.ID) }
	bothEligible := func(s, t scenegraph.NodeID) bool {
		return u.state.eligible(s) && u.state.eligible(t)
	}
	return scenegraph.ConnectedComponents(g.LayerNodes(scenegraph.SegmentsLayer), g, eligible, bothEligible)
}

// create registers a component for a connected group and partitions it.
func (u *Updater) create(g Graph, members []scenegraph.NodeID, population int, baseline float64) *Component {
	c := u.state.allocate(members)
	c.Workspace = u.cfg.Oracle.Partition(clustering.Request{
		Segments:   g,
		Population: population,
		Group:      members,
		Tasks:      u.cfg.Tasks,
		Metric:     u.cfg.Metric,
		Baseline:   baseline,
	})
	Tracef("component %d: %d segments, %d clusters", c.ID, len(members), len(c.Workspace.Clusters()))
	return c
}
