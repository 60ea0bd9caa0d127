package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// NodeData is the closed set of per-type payloads. The unexported method
// keeps the union sealed to this package.
type NodeData interface {
	Kind() NodeType
	DisplayName() string
	Renamed(name string) NodeData
	clone() NodeData
}

// Router is implemented by payloads that store routing destinations.
// A destination is kept as authored: a node id, a node name, or a
// structured route object (see package resolve).
type Router interface {
	// Destination returns the raw destination stored behind handle.
	Destination(handle string) (any, bool)
	// WithDestination returns a copy of the payload with handle's
	// destination replaced by ref.
	WithDestination(handle string, ref any) (NodeData, bool)
	// Handles lists the output ports of the payload in declaration order.
	Handles() []string
}

// Source handles shared by several node types.
const (
	// HandleNext is the single output of linear nodes.
	HandleNext = ""
	// HandleDefault is the fallback output of routing nodes.
	HandleDefault = "default"
)

// Prompt routing modes.
const (
	RoutingLinear = "linear"
	RoutingTable  = "table"
)

// StartData marks the entry of a scope and names the flow it begins.
type StartData struct {
	FlowName  string `json:"flowName"`
	EntryNode any    `json:"entryNode,omitempty"`
}

func (d StartData) Kind() NodeType               { return NodeTypeStart }
func (d StartData) DisplayName() string          { return d.FlowName }
func (d StartData) Renamed(name string) NodeData { d.FlowName = name; return d }
func (d StartData) clone() NodeData              { return d }
func (d StartData) Destination(h string) (any, bool) {
	if h != HandleNext {
		return nil, false
	}
	return d.EntryNode, true
}
func (d StartData) Handles() []string { return []string{HandleNext} }
func (d StartData) WithDestination(h string, ref any) (NodeData, bool) {
	if h != HandleNext {
		return d, false
	}
	d.EntryNode = ref
	return d, true
}

// PromptRoute is one menu option of a prompt in table mode. Key is the user
// reply that selects it and doubles as the edge source handle.
type PromptRoute struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Goto  any    `json:"goto,omitempty"`
}

// PromptData is a USSD screen.
type PromptData struct {
	Name        string        `json:"name"`
	Message     string        `json:"message,omitempty"`
	RoutingMode string        `json:"routingMode,omitempty"`
	NextNode    any           `json:"nextNode,omitempty"`
	Routes      []PromptRoute `json:"routes,omitempty"`
	Default     any           `json:"default,omitempty"`
}

// TableMode reports whether the prompt routes on a table of options.
func (d PromptData) TableMode() bool { return d.RoutingMode == RoutingTable }

func (d PromptData) Kind() NodeType               { return NodeTypePrompt }
func (d PromptData) DisplayName() string          { return d.Name }
func (d PromptData) Renamed(name string) NodeData { d.Name = name; return d }
func (d PromptData) clone() NodeData {
	d.Routes = slices.Clone(d.Routes)
	return d
}

func (d PromptData) Destination(h string) (any, bool) {
	if !d.TableMode() {
		if h != HandleNext {
			return nil, false
		}
		return d.NextNode, true
	}
	if h == HandleDefault {
		return d.Default, true
	}
	for _, r := range d.Routes {
		if r.Key == h {
			return r.Goto, true
		}
	}
	return nil, false
}

func (d PromptData) Handles() []string {
	if !d.TableMode() {
		return []string{HandleNext}
	}
	out := make([]string, 0, len(d.Routes)+1)
	for _, r := range d.Routes {
		out = append(out, r.Key)
	}
	return append(out, HandleDefault)
}

func (d PromptData) WithDestination(h string, ref any) (NodeData, bool) {
	if !d.TableMode() {
		if h != HandleNext {
			return d, false
		}
		d.NextNode = ref
		return d, true
	}
	if h == HandleDefault {
		d.Default = ref
		return d, true
	}
	routes := slices.Clone(d.Routes)
	for i := range routes {
		if routes[i].Key == h {
			routes[i].Goto = ref
			d.Routes = routes
			return d, true
		}
	}
	return d, false
}

// ConditionalRoute pairs a serialized boolean expression with a destination.
// ID doubles as the edge source handle.
type ConditionalRoute struct {
	ID        string `json:"id"`
	Condition string `json:"condition,omitempty"`
	Goto      any    `json:"goto,omitempty"`
}

// ActionData calls an external endpoint and routes on the outcome.
type ActionData struct {
	Name     string             `json:"name"`
	Endpoint string             `json:"endpoint,omitempty"`
	Method   string             `json:"method,omitempty"`
	Headers  map[string]string  `json:"headers,omitempty"`
	Body     string             `json:"body,omitempty"`
	Routes   []ConditionalRoute `json:"routes,omitempty"`
	Default  any                `json:"default,omitempty"`
}

// ValidateBody checks that the embedded payload is well-formed JSON.
func (d ActionData) ValidateBody() error {
	if d.Body == "" {
		return nil
	}
	if !json.Valid([]byte(d.Body)) {
		return fmt.Errorf("%w: action %q body is not valid JSON", ErrInvalidPayload, d.Name)
	}
	return nil
}

func (d ActionData) Kind() NodeType               { return NodeTypeAction }
func (d ActionData) DisplayName() string          { return d.Name }
func (d ActionData) Renamed(name string) NodeData { d.Name = name; return d }
func (d ActionData) clone() NodeData {
	d.Headers = maps.Clone(d.Headers)
	d.Routes = slices.Clone(d.Routes)
	return d
}
func (d ActionData) Destination(h string) (any, bool) {
	return conditionalDestination(d.Routes, d.Default, h)
}
func (d ActionData) Handles() []string { return conditionalHandles(d.Routes) }
func (d ActionData) WithDestination(h string, ref any) (NodeData, bool) {
	routes, def, ok := withConditionalDestination(d.Routes, d.Default, h, ref)
	d.Routes, d.Default = routes, def
	return d, ok
}

// ConditionData branches on expressions over session variables.
type ConditionData struct {
	Name     string             `json:"name"`
	Variable string             `json:"variable,omitempty"`
	Routes   []ConditionalRoute `json:"routes,omitempty"`
	Default  any                `json:"default,omitempty"`
}

func (d ConditionData) Kind() NodeType               { return NodeTypeCondition }
func (d ConditionData) DisplayName() string          { return d.Name }
func (d ConditionData) Renamed(name string) NodeData { d.Name = name; return d }
func (d ConditionData) clone() NodeData {
	d.Routes = slices.Clone(d.Routes)
	return d
}
func (d ConditionData) Destination(h string) (any, bool) {
	return conditionalDestination(d.Routes, d.Default, h)
}
func (d ConditionData) Handles() []string { return conditionalHandles(d.Routes) }
func (d ConditionData) WithDestination(h string, ref any) (NodeData, bool) {
	routes, def, ok := withConditionalDestination(d.Routes, d.Default, h, ref)
	d.Routes, d.Default = routes, def
	return d, ok
}

func conditionalDestination(routes []ConditionalRoute, def any, h string) (any, bool) {
	if h == HandleDefault || h == HandleNext {
		return def, true
	}
	for _, r := range routes {
		if r.ID == h {
			return r.Goto, true
		}
	}
	return nil, false
}

func conditionalHandles(routes []ConditionalRoute) []string {
	out := make([]string, 0, len(routes)+1)
	for _, r := range routes {
		out = append(out, r.ID)
	}
	return append(out, HandleDefault)
}

func withConditionalDestination(routes []ConditionalRoute, def any, h string, ref any) ([]ConditionalRoute, any, bool) {
	if h == HandleDefault || h == HandleNext {
		return routes, ref, true
	}
	out := slices.Clone(routes)
	for i := range out {
		if out[i].ID == h {
			out[i].Goto = ref
			return out, def, true
		}
	}
	return routes, def, false
}

// ScriptData runs inline code and continues to NextNode.
type ScriptData struct {
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	Source   string `json:"source,omitempty"`
	NextNode any    `json:"nextNode,omitempty"`
}

func (d ScriptData) Kind() NodeType               { return NodeTypeScript }
func (d ScriptData) DisplayName() string          { return d.Name }
func (d ScriptData) Renamed(name string) NodeData { d.Name = name; return d }
func (d ScriptData) clone() NodeData              { return d }
func (d ScriptData) Destination(h string) (any, bool) {
	if h != HandleNext {
		return nil, false
	}
	return d.NextNode, true
}
func (d ScriptData) Handles() []string { return []string{HandleNext} }
func (d ScriptData) WithDestination(h string, ref any) (NodeData, bool) {
	if h != HandleNext {
		return d, false
	}
	d.NextNode = ref
	return d, true
}

// FunnelData joins several inbound paths into one output.
type FunnelData struct {
	Name     string `json:"name"`
	NextNode any    `json:"nextNode,omitempty"`
}

func (d FunnelData) Kind() NodeType               { return NodeTypeFunnel }
func (d FunnelData) DisplayName() string          { return d.Name }
func (d FunnelData) Renamed(name string) NodeData { d.Name = name; return d }
func (d FunnelData) clone() NodeData              { return d }
func (d FunnelData) Destination(h string) (any, bool) {
	if h != HandleNext {
		return nil, false
	}
	return d.NextNode, true
}
func (d FunnelData) Handles() []string { return []string{HandleNext} }
func (d FunnelData) WithDestination(h string, ref any) (NodeData, bool) {
	if h != HandleNext {
		return d, false
	}
	d.NextNode = ref
	return d, true
}

// GroupData opens a nested scope. A menu-branch group is a routing target
// whose identity follows the label of the menu option pointing at it.
type GroupData struct {
	Name       string `json:"name"`
	MenuBranch bool   `json:"menuBranch,omitempty"`
	FlowName   string `json:"flowName,omitempty"`
}

func (d GroupData) Kind() NodeType               { return NodeTypeGroup }
func (d GroupData) DisplayName() string          { return d.Name }
func (d GroupData) Renamed(name string) NodeData { d.Name = name; return d }
func (d GroupData) clone() NodeData              { return d }

// NewData returns the zero payload for t.
func NewData(t NodeType) (NodeData, error) {
	switch t {
	case NodeTypeStart:
		return StartData{}, nil
	case NodeTypePrompt:
		return PromptData{}, nil
	case NodeTypeAction:
		return ActionData{}, nil
	case NodeTypeCondition:
		return ConditionData{}, nil
	case NodeTypeScript:
		return ScriptData{}, nil
	case NodeTypeFunnel:
		return FunnelData{}, nil
	case NodeTypeGroup:
		return GroupData{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
}

func unmarshalData(t NodeType, raw json.RawMessage) (NodeData, error) {
	switch t {
	case NodeTypeStart:
		return decodeJSON[StartData](raw)
	case NodeTypePrompt:
		return decodeJSON[PromptData](raw)
	case NodeTypeAction:
		return decodeJSON[ActionData](raw)
	case NodeTypeCondition:
		return decodeJSON[ConditionData](raw)
	case NodeTypeScript:
		return decodeJSON[ScriptData](raw)
	case NodeTypeFunnel:
		return decodeJSON[FunnelData](raw)
	case NodeTypeGroup:
		return decodeJSON[GroupData](raw)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
}

func decodeJSON[T NodeData](raw json.RawMessage) (NodeData, error) {
	var d T
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return d, nil
}
