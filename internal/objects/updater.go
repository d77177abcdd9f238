package objects

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
	"github.com/banshee-data/objectgraph/internal/timeutil"
)

// ErrObjectExists reports an object symbol already present in the graph.
var ErrObjectExists = errors.New("objects: object node already exists")

// Timer names recorded in CycleStats.Timings.
const (
	TimingCycle   = "objects/cycle"
	TimingEdges   = "objects/edges"
	TimingCluster = "objects/cluster"
	TimingAttach  = "objects/attach"
)

// Graph is the scene graph access the updater needs.
type Graph interface {
	Node(id scenegraph.NodeID) (*scenegraph.Node, bool)
	LayerNodes(layer scenegraph.LayerID) []*scenegraph.Node
	Siblings(id scenegraph.NodeID) []scenegraph.NodeID
	Parent(id scenegraph.NodeID) (scenegraph.NodeID, bool)
	InsertEdge(source, target scenegraph.NodeID) bool
	EmplaceNode(layer scenegraph.LayerID, id scenegraph.NodeID, attrs scenegraph.Attributes) bool
	RemoveNode(id scenegraph.NodeID) bool
}

// MergeMap lists explicit node merges (from -> into). The updater merges
// through clustering only, so it is always empty.
type MergeMap map[scenegraph.NodeID]scenegraph.NodeID

// CycleStats summarises one Update call.
type CycleStats struct {
	Cycle     int
	Timestamp time.Time

	NewEdges          int
	IgnoredSegments   int
	RetiredComponents int
	NewComponents     int
	Clusters          int
	EmptyClusters     int
	RejectedObjects   int
	ObjectsCreated    int
	Orphaned          int
	Attached          int
	Settled           int
	DistanceExceeded  int

	LiveComponents int
	ActiveObjects  int
	Baseline       float64

	Timings map[string]time.Duration
}

// Updater owns the cluster state and runs one cycle per Update call.
type Updater struct {
	mu     sync.Mutex
	cfg    Config
	state  *ClusterState
	cycles int
	last   CycleStats
}

// NewUpdater validates cfg and returns an updater with empty state.
func NewUpdater(cfg Config) (*Updater, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Updater{cfg: cfg, state: newClusterState(cfg.Prefix)}, nil
}

// Update runs one cycle against g. The returned map is always empty.
func (u *Updater) Update(g Graph, timestamp time.Time) MergeMap {
	u.mu.Lock()
	defer u.mu.Unlock()

	timings := timeutil.NewTimings(u.cfg.Clock)
	stopCycle := timings.Start(TimingCycle)
	stats := CycleStats{Cycle: u.cycles, Timestamp: timestamp}
	u.cycles++

	stop := timings.Start(TimingEdges)
	touched := u.addSegmentEdges(g, &stats)
	u.retire(g, touched, &stats)
	stop()

	stop = timings.Start(TimingCluster)
	groups := u.discover(g)
	if len(groups) > 0 {
		segments := g.LayerNodes(scenegraph.SegmentsLayer)
		stats.Baseline = u.cfg.Oracle.Baseline(segments, u.cfg.Tasks, u.cfg.Metric)
		created := make([]*Component, 0, len(groups))
		for _, members := range groups {
			created = append(created, u.create(g, members, len(segments), stats.Baseline))
		}
		stats.NewComponents = len(created)
		for _, c := range created {
			u.materialize(g, c, timestamp, &stats)
		}
	}
	stop()

	stop = timings.Start(TimingAttach)
	u.updateActiveParents(g, &stats)
	stop()

	stopCycle()
	stats.LiveComponents = u.state.live
	stats.ActiveObjects = len(u.state.active)
	stats.Timings = timings.Snapshot()
	u.last = stats

	Diagf("cycle %d: %d new edges, %d retired, %d new components, %d objects (%d rejected), %d active, took %v",
		stats.Cycle, stats.NewEdges, stats.RetiredComponents, stats.NewComponents,
		stats.ObjectsCreated, stats.RejectedObjects, stats.ActiveObjects, stats.Timings[TimingCycle])
	return MergeMap{}
}

// LastStats returns the statistics of the most recent cycle.
func (u *Updater) LastStats() CycleStats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last
}

// ActiveObjects returns the objects whose place attachment is unsettled,
// in id order.
func (u *Updater) ActiveObjects() []scenegraph.NodeID {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.activeIDs()
}

// Snapshot returns a copy of the cluster state.
func (u *Updater) Snapshot() StateSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.snapshot()
}

// Component returns a copy of the live component with the given id.
func (u *Updater) Component(id int) (ComponentSnapshot, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	c, ok := u.state.component(id)
	if !ok {
		return ComponentSnapshot{}, false
	}
	return ComponentSnapshot{
		Segments: append([]scenegraph.NodeID(nil), c.Segments...),
		Objects:  append([]scenegraph.NodeID(nil), c.Objects...),
	}, true
}

func (s CycleStats) String() string {
	return fmt.Sprintf("cycle=%d edges=%d retired=%d components=%d objects=%d rejected=%d orphaned=%d attached=%d active=%d",
		s.Cycle, s.NewEdges, s.RetiredComponents, s.NewComponents, s.ObjectsCreated,
		s.RejectedObjects, s.Orphaned, s.Attached, s.ActiveObjects)
}
