package surgery

import (
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/resolve"
	"github.com/aretw0/ussdflow/pkg/scope"
	"github.com/google/uuid"
)

// Copy captures ids and everything nested under them into a detached
// clipboard, along with the edges internal to that set.
func Copy(nodes []domain.Node, edges []domain.Edge, ids []string) (domain.Clipboard, error) {
	idx := domain.IndexNodes(nodes)
	for _, id := range ids {
		if _, ok := idx[id]; !ok {
			return domain.Clipboard{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
		}
	}

	set := scope.Descendants(nodes, ids...)
	for _, id := range ids {
		set[id] = true
	}

	clip := domain.Clipboard{Nodes: []domain.Node{}, Edges: []domain.Edge{}}
	for _, n := range nodes {
		if set[n.ID] {
			n = n.Clone()
			n.Selected = false
			clip.Nodes = append(clip.Nodes, n)
		}
	}
	for _, e := range edges {
		if set[e.SourceNodeID] && set[e.TargetNodeID] {
			clip.Edges = append(clip.Edges, e)
		}
	}
	return clip, nil
}

// PasteSpec controls where Paste puts the clipboard.
type PasteSpec struct {
	// Scope receives the clipboard nodes whose parent was not copied.
	Scope string
	// Offset is added to the position of those re-rooted nodes.
	Offset domain.Position
	// NewID mints node and edge ids. Defaults to uuid.NewString.
	NewID func() string
}

// Paste inserts a fresh copy of clip. Every node gets a new id and a unique
// "<base> copy N" name within its target scope. Routes between pasted nodes
// are rewired to the new ids. Pasted nodes end up selected and every other
// node deselected. It returns the pasted ids in clipboard order.
func Paste(nodes []domain.Node, edges []domain.Edge, clip domain.Clipboard, spec PasteSpec) ([]domain.Node, []domain.Edge, []string, error) {
	if clip.Empty() {
		return nil, nil, nil, domain.ErrEmptyClipboard
	}
	newID := spec.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	existing := domain.IndexNodes(nodes)
	idMap := make(map[string]string, len(clip.Nodes))
	minted := make(map[string]bool, len(clip.Nodes))
	for _, n := range clip.Nodes {
		id := newID()
		if _, taken := existing[id]; taken || minted[id] {
			return nil, nil, nil, fmt.Errorf("%w: minted id %s", domain.ErrDuplicateID, id)
		}
		minted[id] = true
		idMap[n.ID] = id
	}

	names := newNamer(nodes)
	out := make([]domain.Node, 0, len(nodes)+len(clip.Nodes))
	for _, n := range nodes {
		n = n.Clone()
		n.Selected = false
		out = append(out, n)
	}

	pasted := make([]string, 0, len(clip.Nodes))
	for _, c := range clip.Nodes {
		n := c.Clone()
		n.ID = idMap[c.ID]
		if parent, ok := idMap[c.ParentScopeID]; ok {
			n.ParentScopeID = parent
		} else {
			n.ParentScopeID = spec.Scope
			n.Position = n.Position.Add(spec.Offset)
			n.PositionAbsolute = nil
		}
		if name := n.Name(); name != "" {
			n = n.WithName(names.claim(n.ParentScopeID, name))
		}
		n.Data = remapDestinations(n.Data, idMap)
		n.Selected = true
		out = append(out, n)
		pasted = append(pasted, n.ID)
	}

	outEdges := make([]domain.Edge, 0, len(edges)+len(clip.Edges))
	outEdges = append(outEdges, edges...)
	for _, e := range clip.Edges {
		src, okSrc := idMap[e.SourceNodeID]
		dst, okDst := idMap[e.TargetNodeID]
		if !okSrc || !okDst {
			continue
		}
		outEdges = append(outEdges, domain.Edge{
			ID:           newID(),
			SourceNodeID: src,
			TargetNodeID: dst,
			SourceHandle: e.SourceHandle,
		})
	}
	return out, outEdges, pasted, nil
}

// remapDestinations points every route that referenced a copied node at its
// fresh copy.
func remapDestinations(data domain.NodeData, idMap map[string]string) domain.NodeData {
	r, ok := data.(domain.Router)
	if !ok {
		return data
	}
	for _, h := range r.Handles() {
		dest, _ := r.Destination(h)
		fresh, ok := idMap[resolve.Scalar(dest)]
		if !ok {
			continue
		}
		if next, ok := r.WithDestination(h, fresh); ok {
			data = next
			r = next.(domain.Router)
		}
	}
	return data
}
