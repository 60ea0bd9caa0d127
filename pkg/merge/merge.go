// Package merge reconciles the local graph with flow documents fetched from
// the remote catalog.
//
// The merge is additive and local-wins: a remote node or edge whose id is
// already known locally is dropped without comparing fields, and no conflict
// is reported. Concurrent edits of the same id by two sessions are therefore
// invisible to each other.
package merge

import (
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/scope"
)

// flowGroupPrefix prefixes the id of a group created to hold a merged flow.
const flowGroupPrefix = "flow:"

// Report counts what a merge took and what it discarded.
type Report struct {
	AddedNodes   []string
	AddedEdges   []string
	SkippedNodes int
	SkippedEdges int
	PrunedEdges  int
	Repaired     []string
	// Groups lists the groups created to hold merged flows.
	Groups []string
}

// Changed reports whether the merge added anything.
func (r Report) Changed() bool {
	return len(r.AddedNodes) > 0 || len(r.AddedEdges) > 0 || len(r.Repaired) > 0 || len(r.Groups) > 0
}

// FlowGroupID is the id of the group Additive creates for flowName.
func FlowGroupID(flowName string) string {
	return flowGroupPrefix + flowName
}

// GroupForFlow returns the id of the group whose subflow is published as
// flowName: the parent of a start node with that flowName, else a group
// whose own flowName matches. It returns "" when no group owns the flow.
func GroupForFlow(nodes []domain.Node, flowName string) string {
	if flowName == "" {
		return ""
	}
	for _, n := range nodes {
		if n.IsStart() && n.ParentScopeID != scope.Root && n.Name() == flowName {
			return n.ParentScopeID
		}
	}
	for _, n := range nodes {
		if g, ok := n.Data.(domain.GroupData); ok && g.FlowName == flowName {
			return n.ID
		}
	}
	return ""
}

// Additive folds the visual state of docs into the local graph and repairs
// orphans afterwards. Documents are applied in order, so the first copy of
// an id wins among remote documents as well.
//
// A published flow is rooted at its own start node, so the top-level nodes
// of a named document never land in the root scope: they go to the group
// that owns the flow, or to a new group with FlowGroupID. Unnamed documents
// merge at the root.
func Additive(nodes []domain.Node, edges []domain.Edge, docs ...domain.FlowDocument) ([]domain.Node, []domain.Edge, Report) {
	outNodes, outEdges, rep := fold(nodes, edges, docs, flowHome)
	outNodes, rep.Repaired = RepairOrphans(outNodes)
	outEdges, rep.PrunedEdges = pruneEdges(outNodes, outEdges)
	return outNodes, outEdges, rep
}

// IntoGroup merges docs like Additive, except that nodes arriving at the top
// level of a document are placed under groupID instead of the root.
func IntoGroup(nodes []domain.Node, edges []domain.Edge, groupID string, docs ...domain.FlowDocument) ([]domain.Node, []domain.Edge, Report, error) {
	i, ok := domain.IndexNodes(nodes)[groupID]
	if !ok {
		return nil, nil, Report{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, groupID)
	}
	if !nodes[i].IsGroup() {
		return nil, nil, Report{}, fmt.Errorf("%w: %s", domain.ErrNotAGroup, groupID)
	}

	outNodes, outEdges, rep := fold(nodes, edges, docs, nil)
	present := domain.IndexNodes(outNodes)
	added := make(map[string]bool, len(rep.AddedNodes))
	for _, id := range rep.AddedNodes {
		added[id] = true
	}
	for j := range outNodes {
		n := &outNodes[j]
		if !added[n.ID] {
			continue
		}
		if _, ok := present[n.ParentScopeID]; n.ParentScopeID == scope.Root || !ok {
			n.ParentScopeID = groupID
		}
	}

	outNodes, rep.Repaired = RepairOrphans(outNodes)
	outEdges, rep.PrunedEdges = pruneEdges(outNodes, outEdges)
	return outNodes, outEdges, rep, nil
}

// placer picks the scope for the top-level nodes of doc, given the nodes
// merged so far including doc's own. A non-nil group must be created to
// hold them.
type placer func(nodes []domain.Node, doc domain.FlowDocument) (string, *domain.Node)

func flowHome(nodes []domain.Node, doc domain.FlowDocument) (string, *domain.Node) {
	if doc.FlowName == "" {
		return scope.Root, nil
	}
	if id := GroupForFlow(nodes, doc.FlowName); id != "" {
		return id, nil
	}
	id := FlowGroupID(doc.FlowName)
	if i, ok := domain.IndexNodes(nodes)[id]; ok {
		if nodes[i].IsGroup() {
			return id, nil
		}
		return scope.Root, nil
	}
	g := domain.NewNode(id, domain.GroupData{Name: doc.FlowName, FlowName: doc.FlowName}, scope.Root, domain.Position{})
	return id, &g
}

func fold(nodes []domain.Node, edges []domain.Edge, docs []domain.FlowDocument, place placer) ([]domain.Node, []domain.Edge, Report) {
	var rep Report
	outNodes := domain.CloneNodes(nodes)
	outEdges := append(make([]domain.Edge, 0, len(edges)), edges...)

	seenNodes := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		seenNodes[n.ID] = true
	}
	seenEdges := make(map[string]bool, len(edges))
	for _, e := range edges {
		seenEdges[e.ID] = true
	}

	for _, doc := range docs {
		var topLevel []int
		for _, n := range doc.VisualState.Nodes {
			if seenNodes[n.ID] {
				rep.SkippedNodes++
				continue
			}
			seenNodes[n.ID] = true
			n = n.Clone()
			n.Selected = false
			if n.ParentScopeID == scope.Root {
				topLevel = append(topLevel, len(outNodes))
			}
			outNodes = append(outNodes, n)
			rep.AddedNodes = append(rep.AddedNodes, n.ID)
		}
		if place != nil && len(topLevel) > 0 {
			home, group := place(outNodes, doc)
			for _, j := range topLevel {
				outNodes[j].ParentScopeID = home
			}
			if group != nil {
				seenNodes[group.ID] = true
				outNodes = append(outNodes, *group)
				rep.Groups = append(rep.Groups, group.ID)
			}
		}
		for _, e := range doc.VisualState.Edges {
			if seenEdges[e.ID] {
				rep.SkippedEdges++
				continue
			}
			seenEdges[e.ID] = true
			outEdges = append(outEdges, e)
			rep.AddedEdges = append(rep.AddedEdges, e.ID)
		}
	}
	return outNodes, outEdges, rep
}

// RepairOrphans promotes every node whose parent is missing from nodes to
// the root scope. A node with a last-known absolute position takes it as its
// new position so it does not jump on screen. nodes is modified in place;
// the ids of repaired nodes are returned.
func RepairOrphans(nodes []domain.Node) ([]domain.Node, []string) {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	var repaired []string
	for i := range nodes {
		n := &nodes[i]
		if n.ParentScopeID == scope.Root || present[n.ParentScopeID] {
			continue
		}
		n.ParentScopeID = scope.Root
		if n.PositionAbsolute != nil {
			n.Position = *n.PositionAbsolute
		}
		repaired = append(repaired, n.ID)
	}
	return nodes, repaired
}

// pruneEdges drops edges whose endpoints are not both present.
func pruneEdges(nodes []domain.Node, edges []domain.Edge) ([]domain.Edge, int) {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	out := edges[:0]
	pruned := 0
	for _, e := range edges {
		if present[e.SourceNodeID] && present[e.TargetNodeID] {
			out = append(out, e)
			continue
		}
		pruned++
	}
	return out, pruned
}
