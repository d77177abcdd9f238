// Package scenario loads replay scenarios: per-cycle insertions of places
// and segments into a scene graph, plus place settling.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// Symbol categories used for scenario nodes.
const (
	SegmentCategory = 's'
	PlaceCategory   = 'p'
)

const defaultPeriod = 100 * time.Millisecond

// Scenario is a sequence of cycles replayed against one scene graph.
type Scenario struct {
	Name   string    `json:"name"`
	Start  time.Time `json:"start"`
	Period string    `json:"period,omitempty"` // duration string like "100ms"
	Cycles []Cycle   `json:"cycles"`

	period time.Duration
}

// Cycle lists what appears or changes before one update.
type Cycle struct {
	Places   []Place   `json:"places,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
	Settle   []uint64  `json:"settle,omitempty"` // places that become stable
}

// Place is an anchor node.
type Place struct {
	ID       uint64     `json:"id"`
	Position [3]float64 `json:"position"`
	Volatile bool       `json:"volatile,omitempty"`
}

// Segment is a segment observation. The bounding box defaults to a cube of
// HalfExtent around Position; with Min and Max set, Position defaults to the
// box center.
type Segment struct {
	ID         uint64      `json:"id"`
	Name       string      `json:"name,omitempty"`
	Position   *[3]float64 `json:"position,omitempty"`
	HalfExtent *[3]float64 `json:"half_extent,omitempty"`
	Min        *[3]float64 `json:"min,omitempty"`
	Max        *[3]float64 `json:"max,omitempty"`
	Features   [][]float64 `json:"features"` // one embedding sample per entry
	Place      *uint64     `json:"place,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Validate checks the scenario for malformed entries and duplicate ids.
func (s *Scenario) Validate() error {
	s.period = defaultPeriod
	if s.Period != "" {
		d, err := time.ParseDuration(s.Period)
		if err != nil {
			return fmt.Errorf("invalid period '%s': %w", s.Period, err)
		}
		if d <= 0 {
			return fmt.Errorf("period must be positive, got %s", s.Period)
		}
		s.period = d
	}

	places := make(map[uint64]bool)
	segments := make(map[uint64]bool)
	for i, c := range s.Cycles {
		for _, p := range c.Places {
			if places[p.ID] {
				return fmt.Errorf("cycle %d: duplicate place %d", i, p.ID)
			}
			places[p.ID] = true
		}
		for _, seg := range c.Segments {
			if segments[seg.ID] {
				return fmt.Errorf("cycle %d: duplicate segment %d", i, seg.ID)
			}
			segments[seg.ID] = true
			if len(seg.Features) == 0 {
				return fmt.Errorf("cycle %d: segment %d has no features", i, seg.ID)
			}
			if (seg.Min == nil) != (seg.Max == nil) {
				return fmt.Errorf("cycle %d: segment %d needs both min and max", i, seg.ID)
			}
			if seg.Position == nil && seg.Min == nil {
				return fmt.Errorf("cycle %d: segment %d needs a position or min and max", i, seg.ID)
			}
			if seg.Place != nil && !places[*seg.Place] {
				return fmt.Errorf("cycle %d: segment %d references unknown place %d", i, seg.ID, *seg.Place)
			}
		}
		for _, id := range c.Settle {
			if !places[id] {
				return fmt.Errorf("cycle %d: cannot settle unknown place %d", i, id)
			}
		}
	}
	return nil
}

// CheckFeatureDim reports the first segment sample whose length is not dim.
func (s *Scenario) CheckFeatureDim(dim int) error {
	for i, c := range s.Cycles {
		for _, seg := range c.Segments {
			for j, f := range seg.Features {
				if len(f) != dim {
					return fmt.Errorf("cycle %d: segment %d feature %d has dimension %d, want %d", i, seg.ID, j, len(f), dim)
				}
			}
		}
	}
	return nil
}

// CheckObjectPrefix rejects object symbol prefixes that collide with the
// scenario's own node categories.
func CheckObjectPrefix(prefix byte) error {
	switch prefix {
	case SegmentCategory:
		return fmt.Errorf("object prefix %q is reserved for scenario segments", prefix)
	case PlaceCategory:
		return fmt.Errorf("object prefix %q is reserved for scenario places", prefix)
	}
	return nil
}

// Timestamp returns the time of cycle i.
func (s *Scenario) Timestamp(i int) time.Time {
	period := s.period
	if period == 0 {
		period = defaultPeriod
	}
	return s.Start.Add(time.Duration(i) * period)
}

// SegmentID returns the graph symbol of a scenario segment.
func SegmentID(id uint64) scenegraph.NodeID { return scenegraph.NewNodeID(SegmentCategory, id) }

// PlaceID returns the graph symbol of a scenario place.
func PlaceID(id uint64) scenegraph.NodeID { return scenegraph.NewNodeID(PlaceCategory, id) }

// Apply inserts the cycle's places and segments into g and settles places.
// ts becomes the observation time of new segments.
func Apply(g *scenegraph.Graph, c Cycle, ts time.Time) error {
	for _, p := range c.Places {
		attrs := &scenegraph.NodeAttributes{Position: vec(p.Position), IsActive: p.Volatile, LastUpdate: ts}
		if !g.EmplaceNode(scenegraph.PlacesLayer, PlaceID(p.ID), attrs) {
			return fmt.Errorf("place %d already exists", p.ID)
		}
	}

	for _, seg := range c.Segments {
		feature, err := scenegraph.FeatureFromSamples(seg.Features...)
		if err != nil {
			return fmt.Errorf("segment %d: %w", seg.ID, err)
		}
		pos, box := seg.placement()
		attrs := &scenegraph.SemanticAttributes{
			NodeAttributes: scenegraph.NodeAttributes{Position: pos, IsActive: true, LastUpdate: ts},
			Name:           seg.Name,
			Feature:        feature,
			BoundingBox:    box,
			FirstObserved:  ts,
			LastObserved:   ts,
		}
		id := SegmentID(seg.ID)
		if !g.EmplaceNode(scenegraph.SegmentsLayer, id, attrs) {
			return fmt.Errorf("segment %d already exists", seg.ID)
		}
		if seg.Place != nil && !g.InsertEdge(PlaceID(*seg.Place), id) {
			return fmt.Errorf("segment %d: cannot attach to place %d", seg.ID, *seg.Place)
		}
	}

	for _, id := range c.Settle {
		n, ok := g.Node(PlaceID(id))
		if !ok {
			return fmt.Errorf("cannot settle missing place %d", id)
		}
		n.Attrs.Base().IsActive = false
	}
	return nil
}

func (s Segment) placement() (r3.Vec, scenegraph.BoundingBox) {
	if s.Min != nil && s.Max != nil {
		box := scenegraph.NewBoundingBox(vec(*s.Min), vec(*s.Max))
		if s.Position == nil {
			return box.Center(), box
		}
		return vec(*s.Position), box
	}
	var pos r3.Vec
	if s.Position != nil {
		pos = vec(*s.Position)
	}
	half := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	if s.HalfExtent != nil {
		half = vec(*s.HalfExtent)
	}
	return pos, scenegraph.NewBoundingBox(r3.Sub(pos, half), r3.Add(pos, half))
}

func vec(v [3]float64) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }
