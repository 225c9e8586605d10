package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/client"
	"github.com/meikuraledutech/pipeline/session"
)

func main() {
	ctx := context.Background()

	sess := session.New(nil, client.NewSubmitter(client.New(os.Getenv("PIPELINE_ENDPOINT"))))
	store := sess.Store

	// ── Place nodes ───────────────────────────────────────────────────
	name := must(store.AddNode(pipeline.TypeInput, pipeline.Position{X: 0, Y: 0}))
	greet := must(store.AddNode(pipeline.TypeText, pipeline.Position{X: 250, Y: 0}))
	llm := must(store.AddNode(pipeline.TypeLLM, pipeline.Position{X: 500, Y: 0}))
	fmt.Printf("placed %s, %s, %s\n", name, greet, llm)

	// ── Edit content: the text node grows a "name" input ──────────────
	must(store.UpdateContent(name, json.RawMessage(`{"inputName": "name"}`)))
	must(store.UpdateContent(greet, json.RawMessage(`{"text": "Hello {{name}}"}`)))
	printPorts(store, greet)

	// ── Connect ports ─────────────────────────────────────────────────
	edge := must(store.Connect(name, pipeline.PortID(name, "value"), greet, pipeline.PortID(greet, "name")))
	must(store.Connect(greet, pipeline.PortID(greet, "output"), llm, pipeline.PortID(llm, "prompt")))
	fmt.Printf("connected %s\n", edge)

	// ── Rename the variable: the edge into {{name}} is pruned ─────────
	pruned := must(store.UpdateContent(greet, json.RawMessage(`{"text": "Hello {{other}}"}`)))
	fmt.Printf("pruned %d edge(s)\n", len(pruned))
	printPorts(store, greet)

	// ── Serialize ─────────────────────────────────────────────────────
	fmt.Println("\npayload:")
	printJSON(pipeline.Serialize(store.Snapshot()))

	// ── Submit ────────────────────────────────────────────────────────
	out, err := sess.Submit(ctx)
	if err != nil {
		log.Fatalf("submit: %v", err)
	}
	fmt.Printf("\n%s\n%s\n", out.Verdict(), out.Summary())
}

func printPorts(store *pipeline.Store, id string) {
	ports, err := store.Ports(id)
	if err != nil {
		log.Fatalf("ports: %v", err)
	}
	fmt.Printf("%s ports:\n", id)
	for _, p := range ports {
		fmt.Printf("  %-6s %s\n", p.Direction, p.ID)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
