package objects

import (
	"sort"

	"github.com/banshee-data/objectgraph/internal/clustering"
	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// Component is a connected group of segments under clustering, together
// with the objects materialized from it.
type Component struct {
	ID        int
	Segments  []scenegraph.NodeID
	Objects   []scenegraph.NodeID
	Workspace clustering.Workspace
}

// ClusterState is everything the updater carries between cycles.
type ClusterState struct {
	ids        *IdentifierPool
	components []*Component // indexed by component id; nil when free
	live       int
	clustered  map[scenegraph.NodeID]int
	ignored    map[scenegraph.NodeID]struct{}
	active     map[scenegraph.NodeID]struct{}
	nextObject scenegraph.NodeID
}

func newClusterState(prefix byte) *ClusterState {
	return &ClusterState{
		ids:        NewIdentifierPool(),
		clustered:  make(map[scenegraph.NodeID]int),
		ignored:    make(map[scenegraph.NodeID]struct{}),
		active:     make(map[scenegraph.NodeID]struct{}),
		nextObject: scenegraph.NewNodeID(prefix, 0),
	}
}

// eligible reports whether a segment may join a new component.
func (s *ClusterState) eligible(id scenegraph.NodeID) bool {
	if _, ok := s.clustered[id]; ok {
		return false
	}
	_, ok := s.ignored[id]
	return !ok
}

func (s *ClusterState) isIgnored(id scenegraph.NodeID) bool {
	_, ok := s.ignored[id]
	return ok
}

func (s *ClusterState) component(id int) (*Component, bool) {
	if id < 0 || id >= len(s.components) || s.components[id] == nil {
		return nil, false
	}
	return s.components[id], true
}

// allocate reserves an id and an arena slot for a new component.
func (s *ClusterState) allocate(segments []scenegraph.NodeID) *Component {
	id := s.ids.Next()
	for len(s.components) <= id {
		s.components = append(s.components, nil)
	}
	c := &Component{ID: id, Segments: segments}
	s.components[id] = c
	s.live++
	for _, seg := range segments {
		s.clustered[seg] = id
	}
	return c
}

// free drops a component and releases its id.
func (s *ClusterState) free(id int) {
	s.components[id] = nil
	s.live--
	s.ids.Release(id)
}

func (s *ClusterState) takeObjectID() scenegraph.NodeID {
	id := s.nextObject
	s.nextObject = id.Next()
	return id
}

func (s *ClusterState) activeIDs() []scenegraph.NodeID {
	out := make([]scenegraph.NodeID, 0, len(s.active))
	for id := range s.active {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StateSnapshot is a copy of the cluster state for inspection.
type StateSnapshot struct {
	Components map[int]ComponentSnapshot
	FreeIDs    []int
	NextID     int
	Ignored    []scenegraph.NodeID
	Active     []scenegraph.NodeID
	NextObject scenegraph.NodeID
}

// ComponentSnapshot is a copy of one live component.
type ComponentSnapshot struct {
	Segments []scenegraph.NodeID
	Objects  []scenegraph.NodeID
}

func (s *ClusterState) snapshot() StateSnapshot {
	out := StateSnapshot{
		Components: make(map[int]ComponentSnapshot, s.live),
		FreeIDs:    s.ids.Free(),
		NextID:     s.ids.Counter(),
		Active:     s.activeIDs(),
		NextObject: s.nextObject,
	}
	for _, c := range s.components {
		if c == nil {
			continue
		}
		out.Components[c.ID] = ComponentSnapshot{
			Segments: append([]scenegraph.NodeID(nil), c.Segments...),
			Objects:  append([]scenegraph.NodeID(nil), c.Objects...),
		}
	}
	for id := range s.ignored {
		out.Ignored = append(out.Ignored, id)
	}
	sort.Slice(out.Ignored, func(i, j int) bool { return out.Ignored[i] < out.Ignored[j] })
	return out
}
