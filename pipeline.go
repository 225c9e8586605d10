// Package pipeline holds the in-memory model of a visual pipeline: typed
// nodes, the ports derived from them, and the edges wiring those ports.
package pipeline

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNodeNotFound    = errors.New("pipeline: node not found")
	ErrEdgeNotFound    = errors.New("pipeline: edge not found")
	ErrInvalidEndpoint = errors.New("pipeline: invalid edge endpoint")
	ErrInvalidContent  = errors.New("pipeline: invalid node content")
	ErrUnknownNodeType = errors.New("pipeline: unknown node type")
	ErrInvalidPosition = errors.New("pipeline: position must be finite")
)

// NodeType is the kind of a node. The set is closed.
type NodeType string

const (
	TypeInput       NodeType = "input"
	TypeOutput      NodeType = "output"
	TypeText        NodeType = "text"
	TypeLLM         NodeType = "llm"
	TypeAPI         NodeType = "api"
	TypeTransform   NodeType = "transform"
	TypeConditional NodeType = "conditional"
	TypeFilter      NodeType = "filter"
	TypeDatabase    NodeType = "database"
)

// NodeTypes lists every node type in toolbar order.
var NodeTypes = []NodeType{
	TypeInput, TypeLLM, TypeOutput, TypeText, TypeAPI,
	TypeTransform, TypeConditional, TypeFilter, TypeDatabase,
}

// ParseNodeType maps a string to a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	for _, t := range NodeTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Position) valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Node is a placed pipeline node. Content always matches Type.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Content  Content  `json:"data"`
}

// Endpoint addresses one port on one node.
type Endpoint struct {
	NodeID string `json:"node_id"`
	PortID string `json:"port_id"`
}

// Edge connects an output port (Source) to an input port (Target).
type Edge struct {
	ID     string   `json:"id"`
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
}

// touches reports whether either endpoint of e sits on nodeID.
func (e Edge) touches(nodeID string) bool {
	return e.Source.NodeID == nodeID || e.Target.NodeID == nodeID
}

// Graph is a point-in-time copy of a Store. Nodes are in placement order,
// edges in creation order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
