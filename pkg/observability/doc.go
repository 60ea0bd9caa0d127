/*
Package observability exposes Prometheus collectors for the flow editor.

Graph Store mutations are counted through lifecycle hooks, catalog traffic is
measured by wrapping any ports.Catalog, and HTTP requests are measured by a
chi-aware middleware. Collectors register on a caller-supplied registry so
tests and embedders can keep them isolated from the global one.
*/
package observability
