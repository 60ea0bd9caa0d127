/*
Package ports defines the driven ports (interfaces) of a flow workspace.

These interfaces decouple the graph core from external implementations, so the
same workspace runs against in-memory, file, Redis, Loam or HTTP backends.

# Key Interfaces

  - SnapshotStore: persists the durable local snapshot {nodes, edges, flow, publishedFlowNames}.
  - Catalog: the remote flow catalog (create-flow, fetch-all-flows, fetch-flow-by-name).
  - DistributedLocker: coordinates snapshot writes across replicas.

Every adapter is expected to pass the contract suites in this package
(RunSnapshotStoreContract, RunCatalogContract) and in package tests.
*/
package ports
