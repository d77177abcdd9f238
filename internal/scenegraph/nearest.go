package scenegraph

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// NearestNodeFinder answers single-nearest queries over a fixed set of
// nodes, indexed by position in a k-d tree. Build a new finder when the
// node set changes.
type NearestNodeFinder struct {
	tree *kdtree.Tree
	size int
}

// NewNearestNodeFinder indexes the given nodes by their attribute position.
func NewNearestNodeFinder(nodes []*Node) *NearestNodeFinder {
	pts := make(locatedNodes, 0, len(nodes))
	for _, n := range nodes {
		p := n.Attrs.Base().Position
		pts = append(pts, locatedNode{id: n.ID, pos: [3]float64{p.X, p.Y, p.Z}})
	}
	f := &NearestNodeFinder{size: len(pts)}
	if len(pts) > 0 {
		f.tree = kdtree.New(pts, false)
	}
	return f
}

// Len returns the number of indexed nodes.
func (f *NearestNodeFinder) Len() int { return f.size }

// Find calls fn with the nearest node to pos and its Euclidean distance.
// fn is not called when the finder is empty. Returns whether a node was found.
func (f *NearestNodeFinder) Find(pos r3.Vec, fn func(id NodeID, distance float64)) bool {
	if f.tree == nil {
		return false
	}
	q := locatedNode{pos: [3]float64{pos.X, pos.Y, pos.Z}}
	c, d2 := f.tree.Nearest(q)
	if c == nil {
		return false
	}
	fn(c.(locatedNode).id, math.Sqrt(d2))
	return true
}

type locatedNode struct {
	id  NodeID
	pos [3]float64
}

func (p locatedNode) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(locatedNode)
	return p.pos[d] - q.pos[d]
}

func (p locatedNode) Dims() int { return 3 }

func (p locatedNode) Distance(c kdtree.Comparable) float64 {
	q := c.(locatedNode)
	var sum float64
	for k := range p.pos {
		d := p.pos[k] - q.pos[k]
		sum += d * d
	}
	return sum
}

type locatedNodes []locatedNode

func (p locatedNodes) Index(i int) kdtree.Comparable { return p[i] }
func (p locatedNodes) Len() int                      { return len(p) }
func (p locatedNodes) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p locatedNodes) Pivot(d kdtree.Dim) int {
	return locatedPlane{Dim: d, locatedNodes: p}.Pivot()
}

// locatedPlane sorts locatedNodes along one dimension for median pivoting.
type locatedPlane struct {
	kdtree.Dim
	locatedNodes
}

func (p locatedPlane) Less(i, j int) bool {
	return p.locatedNodes[i].pos[p.Dim] < p.locatedNodes[j].pos[p.Dim]
}
func (p locatedPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p locatedPlane) Slice(start, end int) kdtree.SortSlicer {
	p.locatedNodes = p.locatedNodes[start:end]
	return p
}
func (p locatedPlane) Swap(i, j int) {
	p.locatedNodes[i], p.locatedNodes[j] = p.locatedNodes[j], p.locatedNodes[i]
}
