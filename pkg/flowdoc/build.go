package flowdoc

import (
	"bytes"
	"encoding/json"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/resolve"
)

// Build converts nodes and edges into a FlowDocument.
func Build(nodes []domain.Node, edges []domain.Edge) domain.FlowDocument {
	p := newProjector(nodes)

	doc := domain.FlowDocument{
		Nodes: make([]domain.Record, 0, len(nodes)),
		VisualState: domain.VisualState{
			Nodes: domain.CloneNodes(nodes),
			Edges: append(make([]domain.Edge, 0, len(edges)), edges...),
		},
	}

	if start, ok := rootStart(nodes); ok {
		data := start.Data.(domain.StartData)
		doc.FlowName = data.FlowName
		entry := p.resolver.Resolve(data.EntryNode)
		doc.EntryNode = entry.Name
		doc.EntryNodeID = entry.ID
	}

	for _, n := range nodes {
		if n.Type.Structural() {
			continue
		}
		doc.Nodes = append(doc.Nodes, p.record(n))
	}
	return doc
}

// rootStart picks the start node at the top of the given node set: the
// first start whose parent is not itself part of the set.
func rootStart(nodes []domain.Node) (domain.Node, bool) {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	for _, n := range nodes {
		if n.IsStart() && !ids[n.ParentScopeID] {
			return n, true
		}
	}
	return domain.Node{}, false
}

type projector struct {
	resolver *resolve.Resolver
	nodes    []domain.Node
}

// newProjector indexes business nodes ahead of groups so that name lookups
// prefer steppable nodes; groups stay reachable for gotoFlow detection.
// Start nodes are not indexed: they have no record to jump to.
func newProjector(nodes []domain.Node) *projector {
	ordered := make([]domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.Type.Structural() {
			ordered = append(ordered, n)
		}
	}
	for _, n := range nodes {
		if n.IsGroup() {
			ordered = append(ordered, n)
		}
	}
	return &projector{resolver: resolve.New(ordered), nodes: nodes}
}

func (p *projector) record(n domain.Node) domain.Record {
	rec := domain.Record{ID: n.ID, Name: n.Name(), Type: n.Type}

	switch d := n.Data.(type) {
	case domain.PromptData:
		rec.Message = d.Message
		if d.TableMode() {
			for _, r := range d.Routes {
				route := p.destination(r.Goto)
				route.Key = r.Key
				route.Label = r.Label
				rec.Routes = append(rec.Routes, route)
			}
			rec.Default = p.optionalDestination(d.Default)
		} else {
			rec.NextNode = p.namedRef(d.NextNode)
		}

	case domain.ActionData:
		rec.Endpoint = d.Endpoint
		rec.Method = d.Method
		rec.Headers = d.Headers
		rec.Body = d.Body
		rec.Routes = p.conditionalRoutes(d.Routes)
		rec.Default = p.optionalDestination(d.Default)

	case domain.ConditionData:
		rec.Variable = d.Variable
		rec.Routes = p.conditionalRoutes(d.Routes)
		rec.Default = p.optionalDestination(d.Default)

	case domain.ScriptData:
		rec.Language = d.Language
		rec.Source = d.Source
		rec.NextNode = p.namedRef(d.NextNode)

	case domain.FunnelData:
		rec.NextNode = p.namedRef(d.NextNode)
	}
	return rec
}

func (p *projector) conditionalRoutes(routes []domain.ConditionalRoute) []domain.RouteRecord {
	var out []domain.RouteRecord
	for _, r := range routes {
		route := p.destination(r.Goto)
		route.Key = r.ID
		route.Condition, route.RawCondition = ParseCondition(r.Condition)
		out = append(out, route)
	}
	return out
}

func (p *projector) namedRef(raw any) *domain.NamedRef {
	ref := p.resolver.Resolve(raw)
	if ref.ID == "" && ref.Name == "" {
		return nil
	}
	return &ref
}

func (p *projector) optionalDestination(raw any) *domain.RouteRecord {
	if resolve.Scalar(raw) == "" {
		return nil
	}
	r := p.destination(raw)
	return &r
}

// destination resolves raw and tags it goto or gotoFlow.
func (p *projector) destination(raw any) domain.RouteRecord {
	node, ref, ok := p.resolver.ResolveNode(raw)
	if !ok {
		if group, ok := p.startGroup(ref.Name); ok {
			return domain.RouteRecord{GotoFlow: FlowName(p.nodes, group), GotoID: group.ID}
		}
		return domain.RouteRecord{Goto: ref.Name}
	}
	if node.IsGroup() {
		return domain.RouteRecord{GotoFlow: FlowName(p.nodes, node), GotoID: node.ID}
	}
	return domain.RouteRecord{Goto: node.Name(), GotoID: node.ID}
}

// startGroup finds the group holding the nested start node whose id or
// flowName is ref. A route to a subflow's start is a route to the subflow.
func (p *projector) startGroup(ref string) (domain.Node, bool) {
	if ref == "" {
		return domain.Node{}, false
	}
	for _, n := range p.nodes {
		if !n.IsStart() || n.ParentScopeID == "" || (n.ID != ref && n.Name() != ref) {
			continue
		}
		for _, g := range p.nodes {
			if g.ID == n.ParentScopeID && g.IsGroup() {
				return g, true
			}
		}
	}
	return domain.Node{}, false
}

// FlowName is the published name of a group's subflow: its start node's
// flowName, then the group's own flowName, then its display name.
func FlowName(nodes []domain.Node, group domain.Node) string {
	for _, n := range nodes {
		if n.ParentScopeID == group.ID && n.IsStart() && n.Name() != "" {
			return n.Name()
		}
	}
	if g, ok := group.Data.(domain.GroupData); ok && g.FlowName != "" {
		return g.FlowName
	}
	return group.Name()
}

// ParseCondition decodes a serialized boolean expression. Strings that are
// not valid JSON are returned verbatim as the raw fallback.
func ParseCondition(s string) (any, string) {
	if s == "" {
		return nil, ""
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var expr any
	if err := dec.Decode(&expr); err != nil || dec.More() {
		return nil, s
	}
	return expr, ""
}
