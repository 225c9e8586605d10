package pipeline

import "regexp"

// Direction says which side of a node a port sits on.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Port is a connection point derived from a node's type and content.
// Ports are never stored; see DerivePorts.
type Port struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
	Label     string    `json:"label"`
	// Offset is the fractional position along the node's edge, for layout only.
	Offset float64 `json:"offset"`
}

type portDef struct {
	key, label string
}

type portTable struct {
	inputs, outputs []portDef
}

var staticPorts = map[NodeType]portTable{
	TypeInput:  {outputs: []portDef{{"value", "Output"}}},
	TypeOutput: {inputs: []portDef{{"value", "Input"}}},
	TypeText:   {outputs: []portDef{{"output", "Output"}}},
	TypeLLM: {
		inputs:  []portDef{{"system", "System"}, {"prompt", "Prompt"}},
		outputs: []portDef{{"response", "Response"}},
	},
	TypeAPI: {
		inputs:  []portDef{{"url", "URL"}, {"body", "Body"}},
		outputs: []portDef{{"response", "Response"}, {"error", "Error"}},
	},
	TypeTransform: {
		inputs:  []portDef{{"input", "Input"}},
		outputs: []portDef{{"output", "Output"}},
	},
	TypeConditional: {
		inputs:  []portDef{{"input", "Input"}, {"compare", "Compare"}},
		outputs: []portDef{{"true", "True"}, {"false", "False"}},
	},
	TypeFilter: {
		inputs:  []portDef{{"input", "Input"}},
		outputs: []portDef{{"match", "Match"}, {"nomatch", "No Match"}},
	},
	TypeDatabase: {
		inputs:  []portDef{{"connection", "Connection"}, {"params", "Parameters"}},
		outputs: []portDef{{"result", "Result"}, {"error", "Error"}},
	},
}

var variablePattern = regexp.MustCompile(`\{\{([a-zA-Z_$][a-zA-Z0-9_$]*)\}\}`)

// TextVariables returns the distinct {{identifier}} names in text, in order
// of first appearance.
func TextVariables(text string) []string {
	var (
		vars []string
		seen = make(map[string]bool)
	)
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		if name := m[1]; !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	return vars
}

// PortID is the id of the port keyed key on node nodeID. It depends only on
// its inputs, so an edge stays valid for as long as the key is derived.
func PortID(nodeID, key string) string {
	return nodeID + "-" + key
}

// DerivePorts returns the ports of n, inputs first, each group in display
// order. It is pure: equal (type, content) pairs yield equal results.
func DerivePorts(n Node) []Port {
	table := staticPorts[n.Type]
	inputs := table.inputs
	if text, ok := n.Content.(TextContent); ok {
		inputs = nil
		for _, v := range TextVariables(text.Text) {
			inputs = append(inputs, portDef{key: v, label: v})
		}
	}

	ports := make([]Port, 0, len(inputs)+len(table.outputs))
	ports = appendPorts(ports, n.ID, DirectionInput, inputs)
	ports = appendPorts(ports, n.ID, DirectionOutput, table.outputs)
	return ports
}

func appendPorts(dst []Port, nodeID string, dir Direction, defs []portDef) []Port {
	for i, d := range defs {
		dst = append(dst, Port{
			ID:        PortID(nodeID, d.key),
			Key:       d.key,
			Direction: dir,
			Label:     d.label,
			Offset:    portOffset(i, len(defs)),
		})
	}
	return dst
}

// portOffset places the i-th (0-indexed) of n ports at (i+1)/(n+1). A lone
// port lands at the centre.
func portOffset(i, n int) float64 {
	return float64(i+1) / float64(n+1)
}

// hasPort reports whether ports holds id in direction dir.
func hasPort(ports []Port, id string, dir Direction) bool {
	for _, p := range ports {
		if p.ID == id && p.Direction == dir {
			return true
		}
	}
	return false
}
