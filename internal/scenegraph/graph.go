package scenegraph

import (
	"fmt"
	"sort"
)

// Node is a single scene graph node. Edges are owned by the Graph; use the
// Graph methods to mutate them.
type Node struct {
	ID    NodeID
	Layer LayerID
	Attrs Attributes

	parent    NodeID
	hasParent bool
	children  map[NodeID]struct{}
	siblings  map[NodeID]struct{}
}

// Parent returns the node's parent, if any.
func (n *Node) Parent() (NodeID, bool) { return n.parent, n.hasParent }

// Children returns the node's children in id order.
func (n *Node) Children() []NodeID { return sortedIDs(n.children) }

// Siblings returns the node's intra-layer neighbours in id order.
func (n *Node) Siblings() []NodeID { return sortedIDs(n.siblings) }

// Graph is a layered scene graph. It is not safe for concurrent use; the
// owner serialises access.
type Graph struct {
	nodes  map[NodeID]*Node
	layers map[LayerID]map[NodeID]*Node
	edges  int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:  make(map[NodeID]*Node),
		layers: make(map[LayerID]map[NodeID]*Node),
	}
}

// EmplaceNode adds a node to a layer. Returns false if the id is taken.
func (g *Graph) EmplaceNode(layer LayerID, id NodeID, attrs Attributes) bool {
	if _, exists := g.nodes[id]; exists {
		return false
	}
	if attrs == nil {
		attrs = &NodeAttributes{}
	}
	n := &Node{
		ID:       id,
		Layer:    layer,
		Attrs:    attrs,
		children: make(map[NodeID]struct{}),
		siblings: make(map[NodeID]struct{}),
	}
	g.nodes[id] = n
	if g.layers[layer] == nil {
		g.layers[layer] = make(map[NodeID]*Node)
	}
	g.layers[layer][id] = n
	return true
}

// HasNode reports whether id exists.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// MustNode looks up a node by id and panics with ErrMissingNode if absent.
func (g *Graph) MustNode(id NodeID) *Node {
	n, ok := g.nodes[id]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrMissingNode, id))
	}
	return n
}

// LayerNodes returns the nodes of a layer in id order.
func (g *Graph) LayerNodes(layer LayerID) []*Node {
	nodes := g.layers[layer]
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NumNodes returns the number of nodes on a layer.
func (g *Graph) NumNodes(layer LayerID) int { return len(g.layers[layer]) }

// NumEdges returns the number of sibling and parent edges.
func (g *Graph) NumEdges() int { return g.edges }

// Parent returns the parent of id, if both exist.
func (g *Graph) Parent(id NodeID) (NodeID, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return 0, false
	}
	return n.Parent()
}

// Siblings returns the intra-layer neighbours of id in id order.
func (g *Graph) Siblings(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return n.Siblings()
}

// HasEdge reports whether a sibling or parent edge joins a and b.
func (g *Graph) HasEdge(a, b NodeID) bool {
	na, okA := g.nodes[a]
	nb, okB := g.nodes[b]
	if !okA || !okB {
		return false
	}
	if na.Layer == nb.Layer {
		_, ok := na.siblings[b]
		return ok
	}
	child, parent := na, nb
	if na.Layer > nb.Layer {
		child, parent = nb, na
	}
	return child.hasParent && child.parent == parent.ID
}

// InsertEdge joins two nodes. Nodes on the same layer become siblings;
// otherwise the node on the higher layer becomes the parent. Returns false
// if either node is missing, the edge exists, or the child already has a
// different parent.
func (g *Graph) InsertEdge(source, target NodeID) bool {
	if source == target {
		return false
	}
	a, okA := g.nodes[source]
	b, okB := g.nodes[target]
	if !okA || !okB {
		return false
	}

	if a.Layer == b.Layer {
		if _, exists := a.siblings[target]; exists {
			return false
		}
		a.siblings[target] = struct{}{}
		b.siblings[source] = struct{}{}
		g.edges++
		return true
	}

	child, parent := a, b
	if a.Layer > b.Layer {
		child, parent = b, a
	}
	if child.hasParent {
		return false
	}
	child.parent = parent.ID
	child.hasParent = true
	parent.children[child.ID] = struct{}{}
	g.edges++
	return true
}

// RemoveEdge removes the edge between a and b if it exists.
func (g *Graph) RemoveEdge(a, b NodeID) bool {
	if !g.HasEdge(a, b) {
		return false
	}
	na, nb := g.nodes[a], g.nodes[b]
	if na.Layer == nb.Layer {
		delete(na.siblings, b)
		delete(nb.siblings, a)
	} else {
		child, parent := na, nb
		if na.Layer > nb.Layer {
			child, parent = nb, na
		}
		child.hasParent = false
		child.parent = 0
		delete(parent.children, child.ID)
	}
	g.edges--
	return true
}

// RemoveNode deletes a node and every edge touching it. Children lose
// their parent.
func (g *Graph) RemoveNode(id NodeID) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for sib := range n.siblings {
		delete(g.nodes[sib].siblings, id)
		g.edges--
	}
	for child := range n.children {
		c := g.nodes[child]
		c.hasParent = false
		c.parent = 0
		g.edges--
	}
	if n.hasParent {
		delete(g.nodes[n.parent].children, id)
		g.edges--
	}
	delete(g.layers[n.Layer], id)
	delete(g.nodes, id)
	return true
}

func sortedIDs(set map[NodeID]struct{}) []NodeID {
	out := make([]NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
