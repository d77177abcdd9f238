package objects

import (
	"fmt"
	"time"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// materialize turns each cluster of a new component into an object node,
// dropping clusters whose merged feature scores below MinObjectScore.
func (u *Updater) materialize(g Graph, c *Component, timestamp time.Time, stats *CycleStats) {
	for _, cluster := range c.Workspace.Clusters() {
		stats.Clusters++
		attrs, ok := MergeAttributes(g, cluster, u.cfg.AuxiliaryMerge)
		if !ok {
			stats.EmptyClusters++
			Opsf("component %d produced an empty cluster", c.ID)
			continue
		}

		score := u.cfg.Tasks.BestScore(u.cfg.Metric, attrs.FeatureVector())
		if score.Value < u.cfg.MinObjectScore {
			stats.RejectedObjects++
			Diagf("dropping cluster of %d segments from component %d: score %.3f below %.3f",
				len(cluster), c.ID, score.Value, u.cfg.MinObjectScore)
			continue
		}

		id := u.state.takeObjectID()
		attrs.Name = u.cfg.Tasks.Label(score.Index)
		attrs.LastUpdate = timestamp
		if !g.EmplaceNode(scenegraph.ObjectsLayer, id, attrs) {
			panic(fmt.Errorf("%w: %s", ErrObjectExists, id))
		}
		c.Objects = append(c.Objects, id)
		stats.ObjectsCreated++
		Tracef("object %s (%s, score %.3f) from %v", id.Label(), attrs.Name, score.Value, cluster)

		parent, volatile, found := SelectParent(g, cluster)
		if !found {
			stats.Orphaned++
			Opsf("object '%s' without parent!", id.Label())
			u.state.active[id] = struct{}{}
			continue
		}
		g.InsertEdge(parent, id)
		if volatile {
			u.state.active[id] = struct{}{}
		}
	}
}

// SelectParent picks the parent for a cluster's object from the parents of
// its members: the first stable parent in member order, else the first
// volatile one. volatile reports whether the chosen parent is still active.
func SelectParent(g nodeLookup, members []scenegraph.NodeID) (parent scenegraph.NodeID, volatile bool, found bool) {
	var firstVolatile scenegraph.NodeID
	haveVolatile := false
	for _, m := range members {
		p, ok := mustNode(g, m).Parent()
		if !ok {
			continue
		}
		if !mustNode(g, p).Attrs.Base().IsActive {
			return p, false, true
		}
		if !haveVolatile {
			firstVolatile, haveVolatile = p, true
		}
	}
	if haveVolatile {
		return firstVolatile, true, true
	}
	return 0, false, false
}
