/*
Package domain contains the core models of the USSD flow graph.

It defines the fundamental entities of a visually assembled call flow: typed
Nodes arranged in nested scopes, Edges between their output handles, and the
canonical FlowDocument a graph serializes to. This package is kept pure and
free of I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Node: an element of the graph (start, prompt, action, condition, script, funnel or group).
  - NodeData: the closed set of per-type payloads, selected by the node's type tag.
  - Edge: a connection from a source handle to a target node.
  - FlowDocument: the portable, name-resolved projection of a graph.
  - LocalSnapshot: the durable client-side copy of a workspace.
*/
package domain
