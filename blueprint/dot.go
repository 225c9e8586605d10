package blueprint

import (
	"fmt"
	"strconv"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"

	"github.com/meikuraledutech/pipeline"
)

const graphName = "pipeline"

// DOT renders g as a Graphviz digraph. Nodes are labelled with their id and,
// for text nodes, their text; edges carry the port keys they join as tail
// and head labels.
func DOT(g pipeline.Graph) (string, error) {
	gv := gographviz.NewGraph()
	if err := gv.SetName(graphName); err != nil {
		return "", fmt.Errorf("blueprint: dot: %w", err)
	}
	if err := gv.SetDir(true); err != nil {
		return "", fmt.Errorf("blueprint: dot: %w", err)
	}
	if err := gv.AddAttr(graphName, "rankdir", "LR"); err != nil {
		return "", fmt.Errorf("blueprint: dot: %w", err)
	}

	for _, n := range g.Nodes {
		attrs := map[string]string{
			"label": strconv.Quote(nodeLabel(n)),
			"shape": "box",
		}
		if err := gv.AddNode(graphName, strconv.Quote(n.ID), attrs); err != nil {
			return "", fmt.Errorf("blueprint: dot node %s: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges {
		attrs := map[string]string{
			"taillabel": strconv.Quote(portKey(e.Source)),
			"headlabel": strconv.Quote(portKey(e.Target)),
		}
		if err := gv.AddEdge(strconv.Quote(e.Source.NodeID), strconv.Quote(e.Target.NodeID), true, attrs); err != nil {
			return "", fmt.Errorf("blueprint: dot edge %s: %w", e.ID, err)
		}
	}

	return gv.String(), nil
}

func nodeLabel(n pipeline.Node) string {
	switch c := n.Content.(type) {
	case pipeline.TextContent:
		return n.ID + "\n" + c.Text
	case pipeline.InputContent:
		return n.ID + "\n" + c.InputName
	case pipeline.OutputContent:
		return n.ID + "\n" + c.OutputName
	}
	return n.ID
}

func portKey(ep pipeline.Endpoint) string {
	return strings.TrimPrefix(ep.PortID, ep.NodeID+"-")
}
