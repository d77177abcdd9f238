// Package clustering partitions connected groups of segments into object
// candidates.
//
// An Oracle is consulted once per newly discovered component. It receives a
// mutual-information baseline computed once per cycle over the whole segment
// population and must return clusters that fully partition the group.
package clustering

import (
	"fmt"
	"strings"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
	"github.com/banshee-data/objectgraph/internal/semantics"
)

// SegmentSource is the read-only view of the segment layer an oracle needs.
type SegmentSource interface {
	Node(id scenegraph.NodeID) (*scenegraph.Node, bool)
	Siblings(id scenegraph.NodeID) []scenegraph.NodeID
}

// Request is one oracle invocation.
type Request struct {
	Segments   SegmentSource
	Population int // number of segments the baseline was computed over
	Group      []scenegraph.NodeID
	Tasks      *semantics.TaskSet
	Metric     semantics.Metric
	Baseline   float64
}

// Workspace is the clustering state kept with a component. The core only
// reads the resulting clusters.
type Workspace interface {
	Clusters() [][]scenegraph.NodeID
}

// Oracle partitions a connected group of segments.
type Oracle interface {
	Baseline(segments []*scenegraph.Node, tasks *semantics.TaskSet, metric semantics.Metric) float64
	Partition(req Request) Workspace
}

// Method names accepted by NewOracle.
const (
	MethodAgglomerative = "agglomerative"
	MethodSingle        = "single"
)

// SelectorConfig parameterises the oracle.
type SelectorConfig struct {
	Method      string
	Temperature float64 // softmax temperature for p(y|x); <= 0 selects the default
	Tolerance   float64 // fraction of the baseline a merge may lose
}

// DefaultSelectorConfig returns the production-default selector.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		Method:      MethodAgglomerative,
		Temperature: 0.1,
		Tolerance:   0.1,
	}
}

// NewOracle builds the oracle named by cfg.Method. An empty method selects
// the agglomerative oracle.
func NewOracle(cfg SelectorConfig) (Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Method)) {
	case "", MethodAgglomerative:
		if cfg.Tolerance < 0 {
			return nil, fmt.Errorf("selector tolerance must be non-negative, got %f", cfg.Tolerance)
		}
		if cfg.Temperature <= 0 {
			cfg.Temperature = DefaultSelectorConfig().Temperature
		}
		return &Agglomerative{Temperature: cfg.Temperature, Tolerance: cfg.Tolerance}, nil
	case MethodSingle:
		return SingleCluster{}, nil
	default:
		return nil, fmt.Errorf("unknown selector method %q (want %s or %s)", cfg.Method, MethodAgglomerative, MethodSingle)
	}
}

// Partition is the plain Workspace returned by the bundled oracles.
type Partition struct {
	clusters [][]scenegraph.NodeID
	Merges   int // number of merges performed
}

// Clusters implements Workspace.
func (p *Partition) Clusters() [][]scenegraph.NodeID { return p.clusters }

func missingNode(id scenegraph.NodeID) error {
	return fmt.Errorf("%w: %s", scenegraph.ErrMissingNode, id)
}

// SingleCluster places the whole group into one cluster.
type SingleCluster struct{}

// Baseline implements Oracle. It is always zero.
func (SingleCluster) Baseline([]*scenegraph.Node, *semantics.TaskSet, semantics.Metric) float64 {
	return 0
}

// Partition implements Oracle.
func (SingleCluster) Partition(req Request) Workspace {
	if len(req.Group) == 0 {
		return &Partition{}
	}
	members := append([]scenegraph.NodeID(nil), req.Group...)
	return &Partition{clusters: [][]scenegraph.NodeID{members}, Merges: len(members) - 1}
}
