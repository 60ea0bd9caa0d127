package surgery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/scope"
)

// Violation is one broken graph invariant.
type Violation struct {
	NodeID string
	Reason string
}

func (v Violation) String() string {
	if v.NodeID == "" {
		return v.Reason
	}
	return fmt.Sprintf("node %q: %s", v.NodeID, v.Reason)
}

// InvariantError aggregates every violation found in one check.
type InvariantError struct {
	Violations []Violation
}

func (e *InvariantError) Error() string {
	if len(e.Violations) == 1 {
		return "graph invariant violated: " + e.Violations[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d graph invariants violated:\n", len(e.Violations))
	for i, v := range e.Violations {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, v)
	}
	return b.String()
}

// Violations returns the violations carried by err, or nil.
func Violations(err error) []Violation {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie.Violations
	}
	return nil
}

// Check validates the whole graph: unique ids, parent links that form a tree
// of groups, edges between existing nodes, menu branches that are routed to
// only while they hold exactly one start, and per scope at most one start
// and no two non-group nodes sharing a name.
func Check(nodes []domain.Node, edges []domain.Edge) error {
	return check(nodes, edges, func(string) bool { return true })
}

// CheckScopes runs the structural checks of Check over the whole graph but
// limits the naming checks to the given scopes.
func CheckScopes(nodes []domain.Node, edges []domain.Edge, scopes ...string) error {
	want := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		want[s] = true
	}
	return check(nodes, edges, func(s string) bool { return want[s] })
}

func check(nodes []domain.Node, edges []domain.Edge, inScope func(string) bool) error {
	var vs []Violation
	add := func(id, format string, args ...any) {
		vs = append(vs, Violation{NodeID: id, Reason: fmt.Sprintf(format, args...)})
	}

	byID := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.ID]; dup {
			add(n.ID, "duplicate id")
			continue
		}
		byID[n.ID] = n
	}

	for _, n := range nodes {
		switch {
		case n.Data == nil:
			add(n.ID, "missing payload")
		case n.Data.Kind() != n.Type:
			add(n.ID, "payload kind %q does not match type %q", n.Data.Kind(), n.Type)
		}
		if n.ParentScopeID == scope.Root {
			continue
		}
		parent, ok := byID[n.ParentScopeID]
		switch {
		case !ok:
			add(n.ID, "parent %q does not exist", n.ParentScopeID)
		case !parent.IsGroup():
			add(n.ID, "parent %q is not a group", n.ParentScopeID)
		case inCycle(byID, n.ID):
			add(n.ID, "parent chain forms a cycle")
		}
	}

	startCount := make(map[string]int)
	for _, n := range nodes {
		if n.IsStart() {
			startCount[n.ParentScopeID]++
		}
	}
	for _, e := range edges {
		for _, end := range []string{e.SourceNodeID, e.TargetNodeID} {
			if _, ok := byID[end]; !ok {
				add("", "edge %q references missing node %q", e.ID, end)
			}
		}
		if dst, ok := byID[e.TargetNodeID]; ok && dst.IsMenuBranch() && startCount[dst.ID] != 1 {
			add(dst.ID, "routed by edge %q: %v", e.ID, domain.ErrBranchNotReady)
		}
	}

	names := make(map[string]map[string]string)
	starts := make(map[string]string)
	for _, n := range nodes {
		s := n.ParentScopeID
		if !inScope(s) {
			continue
		}
		if n.IsStart() {
			if other, ok := starts[s]; ok {
				add(n.ID, "scope %q already has start node %q", s, other)
			} else {
				starts[s] = n.ID
			}
		}
		if n.IsGroup() || n.Name() == "" {
			continue
		}
		if names[s] == nil {
			names[s] = make(map[string]string)
		}
		key := strings.ToLower(n.Name())
		if other, ok := names[s][key]; ok {
			add(n.ID, "name %q already used by %q in scope %q", n.Name(), other, s)
			continue
		}
		names[s][key] = n.ID
	}

	if len(vs) == 0 {
		return nil
	}
	return &InvariantError{Violations: vs}
}

func inCycle(byID map[string]domain.Node, id string) bool {
	seen := map[string]bool{id: true}
	for n, ok := byID[id]; ok && n.ParentScopeID != scope.Root; n, ok = byID[n.ParentScopeID] {
		if seen[n.ParentScopeID] {
			return n.ParentScopeID == id
		}
		seen[n.ParentScopeID] = true
	}
	return false
}

// RoutingReady reports whether n can be the target of a route. A menu-branch
// group qualifies only when it holds exactly one start node.
func RoutingReady(nodes []domain.Node, n domain.Node) bool {
	if !n.IsMenuBranch() {
		return true
	}
	starts := 0
	for _, c := range nodes {
		if c.ParentScopeID == n.ID && c.IsStart() {
			starts++
		}
	}
	return starts == 1
}
