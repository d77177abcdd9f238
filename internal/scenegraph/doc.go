// Package scenegraph is an in-memory layered scene graph.
//
// Responsibilities: node identity (NodeID symbols with a one-character
// category prefix), typed node attributes, intra-layer sibling edges,
// inter-layer parent/child edges, connected-component search over a layer,
// and nearest-node queries over a layer.
// Key types: Graph, Node, NodeID, SemanticAttributes.
//
// Layers are ordered: segments sit below objects, objects below places.
// An edge between nodes on different layers always makes the node on the
// higher layer the parent. A node has at most one parent.
package scenegraph
