/*
Package ussdflow is the core of a visual editor for USSD menu flows.

A flow is a hierarchical graph: screens (prompt), API calls (action),
branches (condition), inline scripts, funnels and nested groups, each scope
entered through a start node. The editor mutates the graph through a single
serialized store and publishes every version as an immutable snapshot,
together with the canonical, name-resolved flow document a USSD gateway
executes.

# Packages

  - pkg/graph: the Graph Store. Every mutation is validated against the graph
    invariants and either commits a new Snapshot or leaves the previous one
    in place.
  - pkg/flowdoc: the canonical serializer and subflow extraction.
  - pkg/resolve, pkg/scope: target resolution and scope visibility.
  - pkg/surgery, pkg/merge: pure graph operations used by the store.
  - pkg/workspace: hydration from a durable snapshot, catalog pull, publish
    and save.
  - pkg/adapters: memory, file, redis, loam and http implementations of the
    snapshot store and the flow catalog.

# Usage

	store := graph.New()
	store.Add(domain.NewNode("start", domain.StartData{FlowName: "main"}, "", domain.Position{}))
	store.Add(domain.NewNode("menu", domain.PromptData{Name: "Menu", Message: "1. Balance"}, "", domain.Position{Y: 100}))
	snap, err := store.Connect(domain.Edge{SourceNodeID: "start", TargetNodeID: "menu"})
	if err != nil {
		log.Fatal(err)
	}
	doc := snap.Document // canonical flow document, entry node "Menu"

The ussdflow command (cmd/ussdflow) wires the same pieces to configuration,
a catalog server and Prometheus metrics.
*/
package ussdflow
