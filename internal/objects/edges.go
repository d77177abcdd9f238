package objects

import (
	"sort"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// addSegmentEdges scores the segments that are neither clustered nor
// ignored, ignores the irrelevant ones for good, and connects the rest to
// every overlapping non-ignored segment. It returns the sorted ids of live
// components that gained an edge.
//
// All pairs are compared; the segment layer is expected to stay small.
func (u *Updater) addSegmentEdges(g Graph, stats *CycleStats) []int {
	layer := g.LayerNodes(scenegraph.SegmentsLayer)

	var fresh []*scenegraph.Node
	for _, n := range layer {
		if !u.state.eligible(n.ID) {
			continue
		}
		attrs := scenegraph.MustSemantic(n)
		score := u.cfg.Tasks.BestScore(u.cfg.Metric, attrs.FeatureVector())
		if score.Value < u.cfg.MinSegmentScore {
			u.state.ignored[n.ID] = struct{}{}
			attrs.IsActive = false
			stats.IgnoredSegments++
			Diagf("ignoring segment %s: score %.3f below %.3f", n.ID.Label(), score.Value, u.cfg.MinSegmentScore)
			continue
		}
		fresh = append(fresh, n)
	}

	touched := make(map[int]struct{})
	for _, n := range fresh {
		attrs := scenegraph.MustSemantic(n)
		for _, other := range layer {
			if other.ID == n.ID || u.state.isIgnored(other.ID) {
				continue
			}
			if !u.cfg.Intersection.Intersects(attrs, scenegraph.MustSemantic(other)) {
				continue
			}
			if g.InsertEdge(n.ID, other.ID) {
				stats.NewEdges++
				if traceEnabled() {
					Tracef("edge %s-%s", n.ID.Label(), other.ID.Label())
				}
			}
			if cid, ok := u.state.clustered[other.ID]; ok {
				touched[cid] = struct{}{}
			}
		}
	}

	out := make([]int, 0, len(touched))
	for id := range touched {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
