package objects

import (
	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// updateActiveParents settles the active set. Every object node is
// re-examined: objects under a stable place leave the set, objects under a
// volatile place stay, and unparented objects are attached to the nearest
// place. The distance cap only warns.
func (u *Updater) updateActiveParents(g Graph, stats *CycleStats) {
	pending := make(map[scenegraph.NodeID]struct{}, len(u.state.active))
	for id := range u.state.active {
		pending[id] = struct{}{}
	}
	for _, n := range g.LayerNodes(scenegraph.ObjectsLayer) {
		u.state.active[n.ID] = struct{}{}
	}
	if len(u.state.active) == 0 {
		return
	}

	finder := u.cfg.NewFinder(g.LayerNodes(scenegraph.PlacesLayer))
	for _, id := range u.state.activeIDs() {
		node := mustNode(g, id)
		if parent, ok := node.Parent(); ok {
			if !mustNode(g, parent).Attrs.Base().IsActive {
				delete(u.state.active, id)
				if _, was := pending[id]; was {
					stats.Settled++
				}
			}
			continue
		}

		attached := false
		finder.Find(node.Attrs.Base().Position, func(place scenegraph.NodeID, distance float64) {
			if u.cfg.NeighborMaxDistance > 0 && distance >= u.cfg.NeighborMaxDistance {
				stats.DistanceExceeded++
				Opsf("nearest place %s to object %s is %.2f away (max %.2f), attaching anyway",
					place.Label(), id.Label(), distance, u.cfg.NeighborMaxDistance)
			}
			attached = g.InsertEdge(place, id)
		})
		if !attached {
			Diagf("no place found for object %s, retrying next cycle", id.Label())
			continue
		}
		delete(u.state.active, id)
		stats.Attached++
		Tracef("attached object %s", id.Label())
	}
}
