/*
Package flowdoc projects a working graph into its canonical FlowDocument.

Build is a pure function: identical nodes and edges always produce a
byte-identical document. Start and group nodes are structural and never
appear as records; the root start node supplies the document's flowName and
entry point instead.

Route destinations are resolved through package resolve. A destination that
resolves to a group is emitted as gotoFlow (a reference to a separately
published flow); one that resolves to a plain node is emitted as goto (a jump
inside the same document).
*/
package flowdoc
