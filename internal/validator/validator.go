// Package validator lints a flow graph beyond its structural invariants:
// routes that point nowhere and nodes no start can reach.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/resolve"
	"github.com/aretw0/ussdflow/pkg/surgery"
)

// ValidateGraph checks invariants, dangling routes and reachability from the
// root start node. Unconnected routes are allowed; routes whose destination
// does not resolve are not.
func ValidateGraph(nodes []domain.Node, edges []domain.Edge) error {
	var errors []string

	if err := surgery.Check(nodes, edges); err != nil {
		violations := surgery.Violations(err)
		if len(violations) == 0 {
			return err
		}
		for _, v := range violations {
			errors = append(errors, "Invariant: "+v.String())
		}
	}

	errors = append(errors, danglingRoutes(nodes)...)
	errors = append(errors, unreachable(nodes, edges)...)

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}

func danglingRoutes(nodes []domain.Node) []string {
	r := resolve.New(nodes)
	var errors []string
	for _, n := range nodes {
		router, ok := n.Data.(domain.Router)
		if !ok {
			continue
		}
		for _, h := range router.Handles() {
			raw, _ := router.Destination(h)
			target := resolve.Scalar(raw)
			if target == "" {
				continue
			}
			if _, _, ok := r.ResolveNode(raw); !ok {
				errors = append(errors, fmt.Sprintf("Dangling route: '%s' %s points at missing '%s'", n.ID, handleLabel(h), target))
			}
		}
	}
	return errors
}

func handleLabel(h string) string {
	if h == domain.HandleNext {
		return "next"
	}
	return "route '" + h + "'"
}

// unreachable crawls edges from the root start. Entering a group continues
// at the start node inside it.
func unreachable(nodes []domain.Node, edges []domain.Edge) []string {
	var queue []string
	startOf := make(map[string]string)
	for _, n := range nodes {
		if !n.IsStart() {
			continue
		}
		if n.ParentScopeID == "" {
			queue = append(queue, n.ID)
		} else {
			startOf[n.ParentScopeID] = n.ID
		}
	}
	if len(queue) == 0 {
		if len(nodes) == 0 {
			return nil
		}
		return []string{"Missing start node in root scope"}
	}

	next := make(map[string][]string)
	for _, e := range edges {
		next[e.SourceNodeID] = append(next[e.SourceNodeID], e.TargetNodeID)
	}

	visited := make(map[string]bool)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		queue = append(queue, next[id]...)
		if s, ok := startOf[id]; ok {
			queue = append(queue, s)
		}
	}

	var errors []string
	for _, n := range nodes {
		if n.Type.Structural() || visited[n.ID] {
			continue
		}
		errors = append(errors, fmt.Sprintf("Unreachable node: '%s' (%s)", n.ID, n.Name()))
	}
	return errors
}
