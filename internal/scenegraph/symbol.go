package scenegraph

import "fmt"

// LayerID identifies a layer of the scene graph.
type LayerID int

const (
	SegmentsLayer LayerID = 1 // low-level spatial observations
	ObjectsLayer  LayerID = 2 // clustered semantic objects
	PlacesLayer   LayerID = 3 // spatial anchors objects attach to
)

// String returns a human-readable layer name.
func (l LayerID) String() string {
	switch l {
	case SegmentsLayer:
		return "segments"
	case ObjectsLayer:
		return "objects"
	case PlacesLayer:
		return "places"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

const (
	categoryShift = 56
	indexMask     = (uint64(1) << categoryShift) - 1
)

// NodeID is a node symbol: a one-byte category in the top byte and a
// 56-bit index below it. NodeID(0) is never produced by NewNodeID with a
// non-zero category, so it doubles as "no node".
type NodeID uint64

// NewNodeID builds a symbol such as 'O'(12). Index bits above 56 are dropped.
func NewNodeID(category byte, index uint64) NodeID {
	return NodeID(uint64(category)<<categoryShift | (index & indexMask))
}

// Category returns the symbol's one-character prefix.
func (id NodeID) Category() byte { return byte(uint64(id) >> categoryShift) }

// Index returns the symbol's index within its category.
func (id NodeID) Index() uint64 { return uint64(id) & indexMask }

// Next returns the symbol with the same category and the following index.
func (id NodeID) Next() NodeID { return NewNodeID(id.Category(), id.Index()+1) }

// Label renders the symbol as prefix plus index, e.g. "O12".
func (id NodeID) Label() string {
	c := id.Category()
	if c < 0x21 || c > 0x7e {
		return fmt.Sprintf("%d", uint64(id))
	}
	return fmt.Sprintf("%c%d", c, id.Index())
}

// String implements fmt.Stringer.
func (id NodeID) String() string { return id.Label() }
