package blueprint_test

import (
	"strings"
	"testing"

	gographviz "github.com/awalterschulze/gographviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/blueprint"
)

const greeting = `
nodes:
  - ref: who
    type: input
    data: {inputName: name}
  - ref: greet
    type: text
    position: {x: 250, y: 10}
    data: {text: "Hello {{name}}"}
  - ref: model
    type: llm
    position: {x: 500}
  - type: output
edges:
  - from: who.value
    to: greet.name
  - from: greet.output
    to: model.prompt
  - from: model.response
    to: output-1.value
`

func build(t *testing.T, src string) (*pipeline.Store, map[string]string) {
	t.Helper()
	bp, err := blueprint.Load(strings.NewReader(src))
	require.NoError(t, err)
	s := pipeline.NewStore()
	refs, err := bp.Build(s)
	require.NoError(t, err)
	return s, refs
}

func TestBuild(t *testing.T) {
	s, refs := build(t, greeting)

	assert.Equal(t, map[string]string{
		"who":      "input-1",
		"greet":    "text-1",
		"model":    "llm-1",
		"output-1": "output-1",
	}, refs)

	g := s.Snapshot()
	require.Len(t, g.Nodes, 4)
	require.Len(t, g.Edges, 3)
	assert.Equal(t, pipeline.TextContent{Text: "Hello {{name}}"}, g.Nodes[1].Content)
	assert.Equal(t, pipeline.Position{X: 250, Y: 10}, g.Nodes[1].Position)
	assert.Equal(t, pipeline.Endpoint{NodeID: "text-1", PortID: "text-1-name"}, g.Edges[0].Target)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown type", "nodes: [{type: widget}]", "unknown node type"},
		{"bad content", "nodes: [{type: api, data: {method: FETCH}}]", "invalid node content"},
		{"duplicate ref", "nodes: [{ref: a, type: llm}, {ref: a, type: llm}]", "duplicate ref"},
		{"unknown ref", "nodes: [{ref: a, type: input}]\nedges: [{from: a.value, to: b.input}]", "unknown node ref"},
		{"malformed address", "nodes: [{ref: a, type: input}]\nedges: [{from: a, to: a.value}]", "not ref.port"},
		{"missing port", "nodes: [{ref: a, type: input}, {ref: b, type: text}]\nedges: [{from: a.value, to: b.nope}]", "invalid edge endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp, err := blueprint.Load(strings.NewReader(tt.src))
			require.NoError(t, err)
			_, err = bp.Build(pipeline.NewStore())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := blueprint.Load(strings.NewReader("nodes: [{type: llm, colour: red}]"))
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	bp, err := blueprint.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, bp.Nodes)
}

func TestDOT(t *testing.T) {
	s, _ := build(t, greeting)

	out, err := blueprint.DOT(s.Snapshot())
	require.NoError(t, err)

	ast, err := gographviz.ParseString(out)
	require.NoError(t, err)
	g := gographviz.NewGraph()
	require.NoError(t, gographviz.Analyse(ast, g))

	assert.True(t, g.Directed)
	assert.Len(t, g.Nodes.Nodes, 4)
	require.Len(t, g.Edges.Edges, 3)
	first := g.Edges.Edges[0]
	assert.Equal(t, `"input-1"`, first.Src)
	assert.Equal(t, `"text-1"`, first.Dst)
	assert.Equal(t, `"name"`, first.Attrs["headlabel"])
}
