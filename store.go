package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store is the single source of truth for one editing session's graph.
// Every mutation keeps the graph invariants: node ids are unique, every edge
// joins an existing output port to an existing input port, and no two edges
// share the same source and target.
type Store struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	counters map[NodeType]int
	log      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger mutations are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nodes:    make(map[string]*Node),
		counters: make(map[NodeType]int),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddNode places a node of type t at pos with its default content and
// returns the new node's id, of the form "<type>-<n>".
func (s *Store) AddNode(t NodeType, pos Position) (string, error) {
	if !pos.valid() {
		return "", ErrInvalidPosition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("%s-%d", t, s.counters[t]+1)
	content, err := DefaultContent(t, id)
	if err != nil {
		return "", err
	}
	s.counters[t]++

	s.nodes[id] = &Node{ID: id, Type: t, Position: pos, Content: content}
	s.order = append(s.order, id)
	s.log.Debug("node added", "node", id, "type", t)
	return id, nil
}

// RemoveNode deletes the node and every edge touching it.
// Removing an unknown id is a no-op.
func (s *Store) RemoveNode(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[nodeID]; !ok {
		return
	}
	delete(s.nodes, nodeID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == nodeID })

	before := len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool { return e.touches(nodeID) })
	s.log.Debug("node removed", "node", nodeID, "edges_removed", before-len(s.edges))
}

// MoveNode sets the node's position.
func (s *Store) MoveNode(nodeID string, pos Position) error {
	if !pos.valid() {
		return ErrInvalidPosition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	n.Position = pos
	return nil
}

// UpdateContent merges the JSON object patch into the node's content,
// re-derives its ports and removes every edge whose endpoint on this node
// no longer names a derived port. The removed edges are returned.
// If the patch is rejected the node and its edges are left untouched.
func (s *Store) UpdateContent(nodeID string, patch json.RawMessage) ([]Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	next, err := n.Content.merge(patch)
	if err != nil {
		return nil, fmt.Errorf("pipeline: update %s: %w", nodeID, err)
	}
	n.Content = next

	pruned := s.pruneDangling(*n)
	if len(pruned) > 0 {
		s.log.Info("pruned dangling edges", "node", nodeID, "count", len(pruned))
	}
	return pruned, nil
}

// pruneDangling drops edges whose endpoint on n references a port that
// DerivePorts(n) no longer yields. Endpoints on other nodes are not examined.
func (s *Store) pruneDangling(n Node) []Edge {
	ports := DerivePorts(n)
	var pruned []Edge
	kept := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if (e.Source.NodeID == n.ID && !hasPort(ports, e.Source.PortID, DirectionOutput)) ||
			(e.Target.NodeID == n.ID && !hasPort(ports, e.Target.PortID, DirectionInput)) {
			pruned = append(pruned, e)
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	return pruned
}

// Connect wires the output port srcPort of srcNode to the input port dstPort
// of dstNode and returns the edge id. Connecting an already connected pair
// returns the existing edge's id.
func (s *Store) Connect(srcNode, srcPort, dstNode, dstPort string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := Endpoint{NodeID: srcNode, PortID: srcPort}
	dst := Endpoint{NodeID: dstNode, PortID: dstPort}
	if err := s.checkEndpoint(src, DirectionOutput); err != nil {
		return "", err
	}
	if err := s.checkEndpoint(dst, DirectionInput); err != nil {
		return "", err
	}

	for _, e := range s.edges {
		if e.Source == src && e.Target == dst {
			return e.ID, nil
		}
	}

	e := Edge{ID: uuid.NewString(), Source: src, Target: dst}
	s.edges = append(s.edges, e)
	s.log.Debug("edge added", "edge", e.ID,
		"source", src.PortID, "target", dst.PortID)
	return e.ID, nil
}

func (s *Store) checkEndpoint(ep Endpoint, dir Direction) error {
	n, ok := s.nodes[ep.NodeID]
	if !ok {
		return fmt.Errorf("%w: node %s does not exist", ErrInvalidEndpoint, ep.NodeID)
	}
	if !hasPort(DerivePorts(*n), ep.PortID, dir) {
		return fmt.Errorf("%w: node %s has no %s port %s", ErrInvalidEndpoint, ep.NodeID, dir, ep.PortID)
	}
	return nil
}

// Disconnect removes the edge. Removing an unknown id is a no-op.
func (s *Store) Disconnect(edgeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool { return e.ID == edgeID })
}

// Node returns a copy of the node.
func (s *Store) Node(nodeID string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[nodeID]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return *n, nil
}

// Ports returns the node's currently derived ports.
func (s *Store) Ports(nodeID string) ([]Port, error) {
	n, err := s.Node(nodeID)
	if err != nil {
		return nil, err
	}
	return DerivePorts(n), nil
}

// Len returns the number of nodes and edges.
func (s *Store) Len() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.edges)
}

// Snapshot copies the current graph. Later mutations do not affect it.
func (s *Store) Snapshot() Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := Graph{
		Nodes: make([]Node, 0, len(s.order)),
		Edges: slices.Clone(s.edges),
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	for _, id := range s.order {
		g.Nodes = append(g.Nodes, *s.nodes[id])
	}
	return g
}
