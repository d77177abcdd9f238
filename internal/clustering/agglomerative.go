package clustering

import (
	"math"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
	"github.com/banshee-data/objectgraph/internal/semantics"
)

// costEpsilon absorbs rounding in merge costs of identical conditionals.
const costEpsilon = 1e-12

// Agglomerative is an agglomerative information-bottleneck oracle restricted
// to graph edges: only clusters joined by a sibling edge may merge.
//
// Every segment starts as its own cluster with weight 1/N and conditional
// p(y|x) given by a softmax over its task scores. The cheapest adjacent pair
// is merged while the information it loses stays within
// Tolerance * (|group|/N) * baseline.
type Agglomerative struct {
	Temperature float64
	Tolerance   float64
}

// Baseline implements Oracle: I(X;Y) over the whole segment population.
func (a *Agglomerative) Baseline(segments []*scenegraph.Node, tasks *semantics.TaskSet, metric semantics.Metric) float64 {
	if len(segments) == 0 || tasks.Len() == 0 {
		return 0
	}
	conditionals := make([][]float64, len(segments))
	for i, n := range segments {
		conditionals[i] = taskPosterior(n, tasks, metric, a.Temperature)
	}
	return mutualInformation(conditionals)
}

type ibCluster struct {
	members     []scenegraph.NodeID
	weight      float64
	conditional []float64
	neighbours  map[int]struct{}
	alive       bool
}

// Partition implements Oracle.
func (a *Agglomerative) Partition(req Request) Workspace {
	if len(req.Group) == 0 {
		return &Partition{}
	}
	population := req.Population
	if population < len(req.Group) {
		population = len(req.Group)
	}

	index := make(map[scenegraph.NodeID]int, len(req.Group))
	for i, id := range req.Group {
		index[id] = i
	}

	clusters := make([]*ibCluster, len(req.Group))
	for i, id := range req.Group {
		n, ok := req.Segments.Node(id)
		if !ok {
			panic(missingNode(id))
		}
		c := &ibCluster{
			members:    []scenegraph.NodeID{id},
			weight:     1 / float64(population),
			neighbours: make(map[int]struct{}),
			alive:      true,
		}
		if req.Tasks.Len() > 0 {
			c.conditional = taskPosterior(n, req.Tasks, req.Metric, a.Temperature)
		}
		clusters[i] = c
	}
	for i, id := range req.Group {
		for _, sib := range req.Segments.Siblings(id) {
			if j, ok := index[sib]; ok && j != i {
				clusters[i].neighbours[j] = struct{}{}
			}
		}
	}

	limit := a.Tolerance*(float64(len(req.Group))/float64(population))*req.Baseline + costEpsilon
	out := &Partition{}
	for {
		bi, bj := -1, -1
		best := math.Inf(1)
		for i, ci := range clusters {
			if !ci.alive {
				continue
			}
			for j := range ci.neighbours {
				if j <= i {
					continue
				}
				cost := a.cost(ci, clusters[j])
				if cost < best || (cost == best && (i < bi || (i == bi && j < bj))) {
					best, bi, bj = cost, i, j
				}
			}
		}
		if bi < 0 || best > limit {
			break
		}
		absorb(clusters, bi, bj)
		out.Merges++
	}

	for _, c := range clusters {
		if c.alive {
			out.clusters = append(out.clusters, c.members)
		}
	}
	return out
}

func (a *Agglomerative) cost(ci, cj *ibCluster) float64 {
	if ci.conditional == nil || cj.conditional == nil {
		return 0
	}
	return mergeCost(ci.weight, cj.weight, ci.conditional, cj.conditional)
}

// absorb merges cluster j into cluster i (i < j).
func absorb(clusters []*ibCluster, i, j int) {
	ci, cj := clusters[i], clusters[j]
	if ci.conditional != nil && cj.conditional != nil {
		ci.conditional = mergeConditionals(ci.weight, cj.weight, ci.conditional, cj.conditional)
	}
	ci.weight += cj.weight
	ci.members = append(ci.members, cj.members...)
	for k := range cj.neighbours {
		if k == i {
			continue
		}
		ci.neighbours[k] = struct{}{}
		delete(clusters[k].neighbours, j)
		clusters[k].neighbours[i] = struct{}{}
	}
	delete(ci.neighbours, j)
	cj.alive = false
	cj.neighbours = nil
	cj.members = nil
}
