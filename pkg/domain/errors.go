package domain

import "errors"

// ErrNodeNotFound is returned when an operation references an unknown node id.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateID is returned when a node or edge id is already taken.
var ErrDuplicateID = errors.New("duplicate id")

// ErrUnknownNodeType is returned when a node's type tag has no payload variant.
var ErrUnknownNodeType = errors.New("unknown node type")

// ErrInvalidPayload is returned when a node payload cannot be decoded or is malformed.
var ErrInvalidPayload = errors.New("invalid node payload")

// ErrNotAGroup is returned when a scope operation targets a node that is not a group.
var ErrNotAGroup = errors.New("node is not a group")

// ErrTargetUnnamed is returned when a named route would point at a node without a name.
var ErrTargetUnnamed = errors.New("target node has no name")

// ErrCrossScope is returned when an edge would connect nodes of different scopes.
var ErrCrossScope = errors.New("endpoints are in different scopes")

// ErrUnknownHandle is returned when a source handle does not match any output of the node.
var ErrUnknownHandle = errors.New("unknown source handle")

// ErrMissingStart is returned when publishing a group that has no start node.
var ErrMissingStart = errors.New("group has no start node")

// ErrEmptyClipboard is returned when pasting with nothing copied.
var ErrEmptyClipboard = errors.New("clipboard is empty")

// ErrMixedScopes is returned when grouping nodes that do not share a parent scope.
var ErrMixedScopes = errors.New("nodes belong to different scopes")

// ErrSnapshotNotFound is returned when no durable snapshot exists for a workspace.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrFlowNotFound is returned when the catalog has no flow with the requested name.
var ErrFlowNotFound = errors.New("flow not found")

// ErrCatalogUnavailable wraps transport failures talking to the remote catalog.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// ErrBranchNotReady is returned when routing to a menu-branch group that does
// not hold exactly one start node.
var ErrBranchNotReady = errors.New("menu branch needs exactly one start node")

// ErrHydrating is returned when an operation needs the local snapshot before
// it has been loaded.
var ErrHydrating = errors.New("workspace is not hydrated")

// ErrEdgeNotFound is returned when an operation references an unknown edge id.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrUnnamedFlow is returned when publishing a document without a flowName.
var ErrUnnamedFlow = errors.New("flow document has no flowName")
