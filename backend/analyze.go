// Package backend is a reference implementation of the validation service:
// it counts the nodes and edges of a submitted pipeline and reports whether
// the graph is acyclic.
package backend

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meikuraledutech/pipeline"
)

var (
	ErrUnknownNode   = errors.New("backend: edge references unknown node")
	ErrDuplicateNode = errors.New("backend: duplicate node id")
)

// ParseRequest mirrors pipeline.Payload but keeps node data opaque, so any
// node type the editor produces is accepted.
type ParseRequest struct {
	Nodes []RequestNode `json:"nodes" validate:"dive"`
	Edges []RequestEdge `json:"edges" validate:"dive"`
}

type RequestNode struct {
	ID       string             `json:"id" validate:"required"`
	Type     string             `json:"type" validate:"required"`
	Position map[string]float64 `json:"position"`
	Data     json.RawMessage    `json:"data"`
}

type RequestEdge struct {
	ID           string `json:"id" validate:"required"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// Analyze counts the request's nodes and edges and checks acyclicity.
// Edges naming a node the request does not contain are rejected rather than
// silently adding phantom vertices.
func Analyze(req ParseRequest) (pipeline.Outcome, error) {
	out := pipeline.Outcome{NodeCount: len(req.Nodes), EdgeCount: len(req.Edges)}

	known := make(map[string]bool, len(req.Nodes))
	for _, n := range req.Nodes {
		if known[n.ID] {
			return out, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		known[n.ID] = true
	}
	for _, e := range req.Edges {
		if !known[e.Source] {
			return out, fmt.Errorf("%w: %s (edge %s)", ErrUnknownNode, e.Source, e.ID)
		}
		if !known[e.Target] {
			return out, fmt.Errorf("%w: %s (edge %s)", ErrUnknownNode, e.Target, e.ID)
		}
	}

	out.IsDAG = acyclic(req.Nodes, req.Edges)
	return out, nil
}

// acyclic runs a three-colour DFS over the node-level graph. Several edges
// between the same pair of nodes (different ports) count as one.
func acyclic(nodes []RequestNode, edges []RequestEdge) bool {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(nodes))

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for _, n := range nodes {
		if state[n.ID] == unvisited && dfs(n.ID) {
			return false
		}
	}
	return true
}
