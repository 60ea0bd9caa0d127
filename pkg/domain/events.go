package domain

import (
	"time"
)

// Op names a Graph Store mutation.
type Op string

const (
	OpAdd        Op = "add"
	OpRemove     Op = "remove"
	OpUpdateData Op = "update_data"
	OpSetNodes   Op = "set_nodes"
	OpSetEdges   Op = "set_edges"
	OpConnect    Op = "connect"
	OpDisconnect Op = "disconnect"
	OpSelect     Op = "select"
	OpGroup      Op = "group"
	OpUngroup    Op = "ungroup"
	OpPaste      Op = "paste"
	OpMerge      Op = "merge"
	OpReplace    Op = "replace"
	OpNavigate   Op = "navigate"
)

// MutationEvent describes one committed or rejected Graph Store mutation.
type MutationEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Op        Op         `json:"op"`
	Scope     string     `json:"scope"`
	Diff      *GraphDiff `json:"diff,omitempty"`
	Err       error      `json:"-"`
}

// LifecycleHooks defines callbacks for store observability.
type LifecycleHooks struct {
	OnCommit func(*MutationEvent)
	OnReject func(*MutationEvent)
}
