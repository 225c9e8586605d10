package pipeline

import "fmt"

// Payload is the body of a POST /pipelines/parse request.
type Payload struct {
	Nodes []PayloadNode `json:"nodes"`
	Edges []PayloadEdge `json:"edges"`
}

type PayloadNode struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     Content  `json:"data"`
}

// PayloadEdge names its endpoints the way the validation service expects:
// node ids in Source/Target, port ids in the handles.
type PayloadEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// Serialize projects g onto the wire format. It keeps order and performs no
// validation.
func Serialize(g Graph) Payload {
	p := Payload{
		Nodes: make([]PayloadNode, 0, len(g.Nodes)),
		Edges: make([]PayloadEdge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		p.Nodes = append(p.Nodes, PayloadNode{
			ID:       n.ID,
			Type:     n.Type,
			Position: n.Position,
			Data:     n.Content,
		})
	}
	for _, e := range g.Edges {
		p.Edges = append(p.Edges, PayloadEdge{
			ID:           e.ID,
			Source:       e.Source.NodeID,
			Target:       e.Target.NodeID,
			SourceHandle: e.Source.PortID,
			TargetHandle: e.Target.PortID,
		})
	}
	return p
}

// Outcome is the validation service's verdict on a submitted pipeline.
type Outcome struct {
	IsDAG     bool `json:"is_dag"`
	NodeCount int  `json:"num_nodes"`
	EdgeCount int  `json:"num_edges"`
}

// Verdict is the user-facing reading of an Outcome.
type Verdict string

const (
	VerdictValid  Verdict = "Pipeline is valid and ready to execute."
	VerdictCyclic Verdict = "Pipeline contains cycles and cannot be executed."
)

func (o Outcome) Verdict() Verdict {
	if o.IsDAG {
		return VerdictValid
	}
	return VerdictCyclic
}

// Summary renders the outcome as a short multi-line report.
func (o Outcome) Summary() string {
	status := "Valid DAG"
	if !o.IsDAG {
		status = "Not a DAG (contains cycles)"
	}
	return fmt.Sprintf("Number of Nodes: %d\nNumber of Edges: %d\nDAG Status: %s",
		o.NodeCount, o.EdgeCount, status)
}
