package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/scope"
)

// Overlay contains editor state to highlight on the diagram.
type Overlay struct {
	Selected []string
}

// GenerateMermaid produces a Mermaid flowchart of everything nested under
// scopeID (the root scope when empty). Groups become subgraphs. Shapes:
//   - start: ((circle))
//   - prompt: [/parallelogram/]
//   - action: [[subroutine]]
//   - condition: {rhombus}
//   - funnel: [\trapezoid/]
//   - script: [rectangle]
func GenerateMermaid(nodes []domain.Node, edges []domain.Edge, scopeID string, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	children := make(map[string][]domain.Node)
	for _, n := range nodes {
		children[n.ParentScopeID] = append(children[n.ParentScopeID], n)
	}
	writeScope(&sb, children, scopeID, 1)

	members := scope.Descendants(nodes, scopeID)
	for _, e := range edges {
		if !members[e.SourceNodeID] || !members[e.TargetNodeID] {
			continue
		}
		from, to := sanitizeMermaidID(e.SourceNodeID), sanitizeMermaidID(e.TargetNodeID)
		if e.SourceHandle == domain.HandleNext {
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
			continue
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(e.SourceHandle), to)
	}

	if overlay != nil && len(overlay.Selected) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range overlay.Selected {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] || !members[id] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s selected;\n", safeID)
		}
	}

	return sb.String()
}

func writeScope(sb *strings.Builder, children map[string][]domain.Node, parent string, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, n := range children[parent] {
		safeID := sanitizeMermaidID(n.ID)
		if n.IsGroup() {
			fmt.Fprintf(sb, "%ssubgraph %s[\"%s\"]\n", indent, safeID, label(n))
			writeScope(sb, children, n.ID, depth+1)
			fmt.Fprintf(sb, "%send\n", indent)
			continue
		}
		opener, closer := shape(n.Type)
		fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, safeID, opener, label(n), closer)
	}
}

func shape(t domain.NodeType) (string, string) {
	switch t {
	case domain.NodeTypeStart:
		return "((", "))"
	case domain.NodeTypePrompt:
		return "[/", "/]"
	case domain.NodeTypeAction:
		return "[[", "]]"
	case domain.NodeTypeCondition:
		return "{", "}"
	case domain.NodeTypeFunnel:
		return "[\\", "/]"
	}
	return "[", "]"
}

func label(n domain.Node) string {
	if name := n.Name(); name != "" {
		return escapeLabel(name)
	}
	return escapeLabel(n.ID)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
