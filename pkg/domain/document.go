package domain

// NamedRef is a resolved destination: the human name plus the node id.
// An empty ID means the reference is unconnected.
type NamedRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// RouteRecord is a serialized route. Exactly one of Goto or GotoFlow is set
// for a connected route: GotoFlow references a separately published flow
// (a group destination), Goto is a jump inside the same document.
type RouteRecord struct {
	Key          string `json:"key,omitempty"`
	Label        string `json:"label,omitempty"`
	Condition    any    `json:"condition,omitempty"`
	RawCondition string `json:"rawCondition,omitempty"`
	Goto         string `json:"goto,omitempty"`
	GotoFlow     string `json:"gotoFlow,omitempty"`
	GotoID       string `json:"gotoId,omitempty"`
}

// Record is the business projection of one steppable node.
type Record struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type NodeType `json:"type"`

	// prompt
	Message  string        `json:"message,omitempty"`
	NextNode *NamedRef     `json:"nextNode,omitempty"`
	Routes   []RouteRecord `json:"routes,omitempty"`
	Default  *RouteRecord  `json:"default,omitempty"`

	// action
	Endpoint string            `json:"endpoint,omitempty"`
	Method   string            `json:"method,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     string            `json:"body,omitempty"`

	// condition
	Variable string `json:"variable,omitempty"`

	// script
	Language string `json:"language,omitempty"`
	Source   string `json:"source,omitempty"`
}

// VisualState is the verbatim graph embedded in a document for lossless reload.
type VisualState struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// FlowDocument is the canonical, name-resolved form of one flow.
type FlowDocument struct {
	FlowName    string      `json:"flowName"`
	EntryNode   string      `json:"entryNode"`
	EntryNodeID string      `json:"entryNodeId"`
	Nodes       []Record    `json:"nodes"`
	VisualState VisualState `json:"visualState"`
}

// Clipboard is a detached copy of a node selection and its internal edges.
type Clipboard struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty reports whether nothing has been copied.
func (c Clipboard) Empty() bool { return len(c.Nodes) == 0 }
