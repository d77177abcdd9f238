package scenegraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Adjacency exposes the intra-layer neighbours of a node.
type Adjacency interface {
	Siblings(id NodeID) []NodeID
}

// ConnectedComponents partitions nodes into connected groups.
//
// Only nodes accepted by nodeValid take part, and an edge is followed only
// if edgeValid accepts it (nil accepts every edge between valid nodes).
// Members are returned in id order and groups are ordered by their first
// member, so the output does not depend on map iteration.
func ConnectedComponents(nodes []*Node, adj Adjacency, nodeValid func(*Node) bool, edgeValid func(source, target NodeID) bool) [][]NodeID {
	ids := make([]NodeID, 0, len(nodes))
	for _, n := range nodes {
		if nodeValid == nil || nodeValid(n) {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// gonum wants int64 ids; use dense indices rather than the symbols.
	index := make(map[NodeID]int64, len(ids))
	ug := simple.NewUndirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		ug.AddNode(simple.Node(i))
	}
	for _, id := range ids {
		from := index[id]
		for _, sib := range adj.Siblings(id) {
			to, ok := index[sib]
			if !ok || to <= from {
				continue
			}
			if edgeValid != nil && !edgeValid(id, sib) {
				continue
			}
			ug.SetEdge(ug.NewEdge(simple.Node(from), simple.Node(to)))
		}
	}

	raw := topo.ConnectedComponents(ug)
	groups := make([][]NodeID, 0, len(raw))
	for _, comp := range raw {
		group := make([]NodeID, 0, len(comp))
		for _, n := range comp {
			group = append(group, ids[n.ID()])
		}
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
