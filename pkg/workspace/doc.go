/*
Package workspace connects a Graph Store to its durable local snapshot and to
the remote flow catalog.

A Workspace rehydrates the graph from its SnapshotStore before anything else
happens; LoadAllFlows and RefreshFlow block until hydration completes, then
fetch from the Catalog and merge the result once against the graph as it is
when the fetch returns. Publish extracts a group's subflow and sends it to the
Catalog. The Manager serializes snapshot reads and writes per workspace id and
optionally takes a distributed lock for replicas sharing one backend.
*/
package workspace
