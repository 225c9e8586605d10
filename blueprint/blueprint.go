// Package blueprint builds pipeline graphs from YAML documents by replaying
// them as editor operations on a pipeline.Store.
//
// A blueprint names nodes by ref and wires them as "ref.port":
//
//	nodes:
//	  - ref: who
//	    type: input
//	    data: {inputName: name}
//	  - ref: greet
//	    type: text
//	    position: {x: 250, y: 0}
//	    data: {text: "Hello {{name}}"}
//	edges:
//	  - from: who.value
//	    to: greet.name
package blueprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/pipeline"
)

var ErrUnknownRef = errors.New("blueprint: unknown node ref")

type Blueprint struct {
	Nodes []NodeSpec `yaml:"nodes"`
	Edges []EdgeSpec `yaml:"edges"`
}

// NodeSpec places one node. Ref is a document-local key used only to wire
// edges; it is never part of the graph. An empty Ref defaults to the id the
// store assigns.
type NodeSpec struct {
	Ref      string            `yaml:"ref"`
	Type     string            `yaml:"type"`
	Position pipeline.Position `yaml:"position"`
	Data     map[string]string `yaml:"data"`
}

// EdgeSpec wires From ("ref.outputKey") to To ("ref.inputKey").
type EdgeSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Load decodes a blueprint. Unknown keys are rejected.
func Load(r io.Reader) (*Blueprint, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var bp Blueprint
	if err := dec.Decode(&bp); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("blueprint: decode: %w", err)
	}
	return &bp, nil
}

// Build places every node, applies its data and connects every edge, in
// document order. It returns the ref to node id mapping.
func (bp *Blueprint) Build(s *pipeline.Store) (map[string]string, error) {
	refs := make(map[string]string, len(bp.Nodes))

	for i, ns := range bp.Nodes {
		t, err := pipeline.ParseNodeType(ns.Type)
		if err != nil {
			return nil, fmt.Errorf("blueprint: node %d: %w", i, err)
		}
		id, err := s.AddNode(t, ns.Position)
		if err != nil {
			return nil, fmt.Errorf("blueprint: node %d: %w", i, err)
		}

		ref := ns.Ref
		if ref == "" {
			ref = id
		}
		if _, dup := refs[ref]; dup {
			return nil, fmt.Errorf("blueprint: duplicate ref %q", ref)
		}
		refs[ref] = id

		if len(ns.Data) == 0 {
			continue
		}
		patch, err := json.Marshal(ns.Data)
		if err != nil {
			return nil, fmt.Errorf("blueprint: node %q: %w", ref, err)
		}
		if _, err := s.UpdateContent(id, patch); err != nil {
			return nil, fmt.Errorf("blueprint: node %q: %w", ref, err)
		}
	}

	for _, es := range bp.Edges {
		srcID, srcKey, err := resolve(refs, es.From)
		if err != nil {
			return nil, err
		}
		dstID, dstKey, err := resolve(refs, es.To)
		if err != nil {
			return nil, err
		}
		if _, err := s.Connect(srcID, pipeline.PortID(srcID, srcKey), dstID, pipeline.PortID(dstID, dstKey)); err != nil {
			return nil, fmt.Errorf("blueprint: edge %s -> %s: %w", es.From, es.To, err)
		}
	}

	return refs, nil
}

// resolve splits "ref.key" at the last dot and maps ref to its node id.
func resolve(refs map[string]string, addr string) (id, key string, err error) {
	i := strings.LastIndex(addr, ".")
	if i <= 0 || i == len(addr)-1 {
		return "", "", fmt.Errorf("blueprint: port address %q is not ref.port", addr)
	}
	id, ok := refs[addr[:i]]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownRef, addr[:i])
	}
	return id, addr[i+1:], nil
}
