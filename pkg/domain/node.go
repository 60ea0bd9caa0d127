package domain

import (
	"encoding/json"
	"fmt"
)

// NodeType tags the payload variant carried by a Node.
type NodeType string

const (
	// NodeTypeStart marks the entry point of a scope. At most one per scope.
	NodeTypeStart NodeType = "start"
	// NodeTypePrompt displays a USSD menu and routes on the user's reply.
	NodeTypePrompt NodeType = "prompt"
	// NodeTypeAction calls an external API and routes on the response.
	NodeTypeAction NodeType = "action"
	// NodeTypeCondition branches on boolean expressions over session variables.
	NodeTypeCondition NodeType = "condition"
	// NodeTypeScript runs an inline script and continues.
	NodeTypeScript NodeType = "script"
	// NodeTypeFunnel merges several inbound paths into a single output.
	NodeTypeFunnel NodeType = "funnel"
	// NodeTypeGroup establishes a nested scope (subflow).
	NodeTypeGroup NodeType = "group"
)

// Structural reports whether nodes of this type are layout/scoping devices
// rather than steppable business nodes.
func (t NodeType) Structural() bool {
	return t == NodeTypeStart || t == NodeTypeGroup
}

// RequiresNamedTarget reports whether outgoing routes of this type refer to
// their destination by name, so the destination must carry one.
func (t NodeType) RequiresNamedTarget() bool {
	switch t {
	case NodeTypeStart, NodeTypePrompt, NodeTypeAction, NodeTypeCondition:
		return true
	}
	return false
}

// Position is an opaque layout coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by o.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p translated by -o.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Node is one element of the hierarchical flow graph.
// IDs live in a single flat namespace regardless of nesting depth.
type Node struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
	Data NodeData `json:"data"`

	// ParentScopeID references the enclosing group. Empty means root scope.
	ParentScopeID string `json:"parentScopeId,omitempty"`

	Position Position `json:"position"`

	// PositionAbsolute is the last-known absolute position, used when a node
	// loses its parent and has to be promoted to the root scope.
	PositionAbsolute *Position `json:"positionAbsolute,omitempty"`

	Selected bool `json:"selected,omitempty"`
}

// NewNode builds a node whose Type matches its payload.
func NewNode(id string, data NodeData, parent string, pos Position) Node {
	return Node{
		ID:            id,
		Type:          data.Kind(),
		Data:          data,
		ParentScopeID: parent,
		Position:      pos,
	}
}

// Name returns the effective name of the node: flowName for start nodes,
// name for everything else.
func (n Node) Name() string {
	if n.Data == nil {
		return ""
	}
	return n.Data.DisplayName()
}

// WithName returns a copy of n carrying the given effective name.
func (n Node) WithName(name string) Node {
	if n.Data != nil {
		n.Data = n.Data.Renamed(name)
	}
	return n
}

// IsGroup reports whether n opens a nested scope.
func (n Node) IsGroup() bool { return n.Type == NodeTypeGroup }

// IsStart reports whether n is a scope entry point.
func (n Node) IsStart() bool { return n.Type == NodeTypeStart }

// IsMenuBranch reports whether n is a group flagged as a menu-branch destination.
func (n Node) IsMenuBranch() bool {
	g, ok := n.Data.(GroupData)
	return ok && g.MenuBranch
}

// Clone returns a copy of n that shares no mutable state with it.
func (n Node) Clone() Node {
	if n.PositionAbsolute != nil {
		p := *n.PositionAbsolute
		n.PositionAbsolute = &p
	}
	if n.Data != nil {
		n.Data = n.Data.clone()
	}
	return n
}

type nodeWire struct {
	ID               string          `json:"id"`
	Type             NodeType        `json:"type"`
	Data             json.RawMessage `json:"data"`
	ParentScopeID    string          `json:"parentScopeId,omitempty"`
	Position         Position        `json:"position"`
	PositionAbsolute *Position       `json:"positionAbsolute,omitempty"`
	Selected         bool            `json:"selected,omitempty"`
}

// UnmarshalJSON decodes the payload into the variant selected by "type".
func (n *Node) UnmarshalJSON(b []byte) error {
	var w nodeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data, err := NewData(w.Type)
	if err != nil {
		return fmt.Errorf("node %q: %w", w.ID, err)
	}
	if len(w.Data) > 0 && string(w.Data) != "null" {
		data, err = unmarshalData(w.Type, w.Data)
		if err != nil {
			return fmt.Errorf("node %q: %w", w.ID, err)
		}
	}
	*n = Node{
		ID:               w.ID,
		Type:             w.Type,
		Data:             data,
		ParentScopeID:    w.ParentScopeID,
		Position:         w.Position,
		PositionAbsolute: w.PositionAbsolute,
		Selected:         w.Selected,
	}
	return nil
}

// Edge connects two nodes. SourceHandle names the output port on a
// multi-route source; empty means the node's single/default output.
type Edge struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"source"`
	TargetNodeID string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Touches reports whether the edge has id as one of its endpoints.
func (e Edge) Touches(id string) bool {
	return e.SourceNodeID == id || e.TargetNodeID == id
}
