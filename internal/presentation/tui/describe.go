package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/ussdflow/pkg/domain"
)

// Describe renders doc as a Markdown outline: one section per record with
// its routes and their resolved destinations.
func Describe(doc domain.FlowDocument) string {
	var sb strings.Builder

	name := doc.FlowName
	if name == "" {
		name = "(unnamed flow)"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if doc.EntryNodeID != "" {
		fmt.Fprintf(&sb, "Entry: **%s** (`%s`)\n\n", doc.EntryNode, doc.EntryNodeID)
	} else {
		sb.WriteString("Entry: _unconnected_\n\n")
	}

	for _, r := range doc.Nodes {
		fmt.Fprintf(&sb, "## %s\n\n", heading(r))
		fmt.Fprintf(&sb, "_%s_ `%s`\n\n", r.Type, r.ID)
		describeRecord(&sb, r)
	}
	return sb.String()
}

func heading(r domain.Record) string {
	if r.Name == "" {
		return r.ID
	}
	return r.Name
}

func describeRecord(sb *strings.Builder, r domain.Record) {
	if r.Message != "" {
		fmt.Fprintf(sb, "> %s\n\n", strings.ReplaceAll(r.Message, "\n", "\n> "))
	}
	if r.Endpoint != "" {
		fmt.Fprintf(sb, "`%s %s`\n\n", r.Method, r.Endpoint)
	}
	if r.Variable != "" {
		fmt.Fprintf(sb, "Variable: `%s`\n\n", r.Variable)
	}
	if r.Language != "" {
		fmt.Fprintf(sb, "```%s\n%s\n```\n\n", r.Language, r.Source)
	}

	var lines []string
	if r.NextNode != nil {
		lines = append(lines, "- next → "+target(r.NextNode.Name, r.NextNode.ID, false))
	}
	for _, rt := range r.Routes {
		lines = append(lines, "- "+routeLabel(rt)+" → "+routeTarget(rt))
	}
	if r.Default != nil {
		lines = append(lines, "- default → "+routeTarget(*r.Default))
	}
	if len(lines) > 0 {
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n\n")
	}
}

func routeLabel(rt domain.RouteRecord) string {
	switch {
	case rt.Key != "" && rt.Label != "":
		return fmt.Sprintf("`%s` %s", rt.Key, rt.Label)
	case rt.Key != "":
		return fmt.Sprintf("`%s`", rt.Key)
	case rt.RawCondition != "":
		return fmt.Sprintf("when `%s`", rt.RawCondition)
	case rt.Condition != nil:
		return fmt.Sprintf("when `%v`", rt.Condition)
	}
	return "route"
}

func routeTarget(rt domain.RouteRecord) string {
	if rt.GotoFlow != "" {
		return target(rt.GotoFlow, rt.GotoID, true)
	}
	return target(rt.Goto, rt.GotoID, false)
}

func target(name, id string, flow bool) string {
	switch {
	case id == "" && name == "":
		return "_unconnected_"
	case id == "":
		return fmt.Sprintf("%s _(unresolved)_", name)
	case flow:
		return fmt.Sprintf("flow **%s**", name)
	}
	return fmt.Sprintf("**%s**", name)
}
