package dsl

import "github.com/aretw0/ussdflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

func (n *NodeBuilder) set(d domain.NodeData) *NodeBuilder {
	n.node.Type = d.Kind()
	n.node.Data = d
	return n
}

// Start marks the node as the entry point of its scope.
func (n *NodeBuilder) Start(flowName string) *NodeBuilder {
	return n.set(domain.StartData{FlowName: flowName})
}

// Prompt makes the node a USSD screen. It starts in linear mode; adding an
// Option switches it to table mode.
func (n *NodeBuilder) Prompt(name, message string) *NodeBuilder {
	return n.set(domain.PromptData{Name: name, Message: message, RoutingMode: domain.RoutingLinear})
}

// Action makes the node an API call.
func (n *NodeBuilder) Action(name, method, endpoint string) *NodeBuilder {
	return n.set(domain.ActionData{Name: name, Method: method, Endpoint: endpoint})
}

// Body sets the embedded request payload of an action node.
func (n *NodeBuilder) Body(body string) *NodeBuilder {
	if d, ok := n.node.Data.(domain.ActionData); ok {
		d.Body = body
		n.node.Data = d
	}
	return n
}

// Condition makes the node a branch over a session variable.
func (n *NodeBuilder) Condition(name, variable string) *NodeBuilder {
	return n.set(domain.ConditionData{Name: name, Variable: variable})
}

// Script makes the node an inline script.
func (n *NodeBuilder) Script(name, language, source string) *NodeBuilder {
	return n.set(domain.ScriptData{Name: name, Language: language, Source: source})
}

// Funnel makes the node a join point.
func (n *NodeBuilder) Funnel(name string) *NodeBuilder {
	return n.set(domain.FunnelData{Name: name})
}

// Group makes the node a nested scope.
func (n *NodeBuilder) Group(name string) *NodeBuilder {
	return n.set(domain.GroupData{Name: name})
}

// MenuBranch flags a group as a menu-branch destination.
func (n *NodeBuilder) MenuBranch() *NodeBuilder {
	if d, ok := n.node.Data.(domain.GroupData); ok {
		d.MenuBranch = true
		n.node.Data = d
	}
	return n
}

// In places the node inside the given group.
func (n *NodeBuilder) In(parent string) *NodeBuilder {
	n.node.ParentScopeID = parent
	return n
}

// At sets the node position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Go wires the node's single output (entry node, next node) to target.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	return n.route(domain.HandleNext, target)
}

// Option adds a menu option to a prompt and wires it to target.
// An empty target leaves the option unconnected.
func (n *NodeBuilder) Option(key, label, target string) *NodeBuilder {
	d, ok := n.node.Data.(domain.PromptData)
	if !ok {
		return n
	}
	d.RoutingMode = domain.RoutingTable
	d.Routes = append(append([]domain.PromptRoute{}, d.Routes...), domain.PromptRoute{Key: key, Label: label})
	n.node.Data = d
	if target == "" {
		return n
	}
	return n.route(key, target)
}

// Branch adds a conditional route to an action or condition node.
func (n *NodeBuilder) Branch(id, condition, target string) *NodeBuilder {
	route := domain.ConditionalRoute{ID: id, Condition: condition}
	switch d := n.node.Data.(type) {
	case domain.ActionData:
		d.Routes = append(append([]domain.ConditionalRoute{}, d.Routes...), route)
		n.node.Data = d
	case domain.ConditionData:
		d.Routes = append(append([]domain.ConditionalRoute{}, d.Routes...), route)
		n.node.Data = d
	default:
		return n
	}
	if target == "" {
		return n
	}
	return n.route(id, target)
}

// Default wires the fallback route of a routing node.
func (n *NodeBuilder) Default(target string) *NodeBuilder {
	return n.route(domain.HandleDefault, target)
}

func (n *NodeBuilder) route(handle, target string) *NodeBuilder {
	r, ok := n.node.Data.(domain.Router)
	if !ok {
		return n
	}
	data, ok := r.WithDestination(handle, target)
	if !ok {
		return n
	}
	n.node.Data = data
	n.builder.connect(n.node.ID, handle, target)
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
