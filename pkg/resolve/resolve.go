// Package resolve turns the inconsistent ways a routing destination is
// authored (node id, human name, structured route payload) into a canonical
// id/name pair.
//
// The name index spans the whole graph rather than one scope, so two
// subflows using the same node name can resolve to the same node. Callers
// that need scoped lookups should build a Resolver over one scope's nodes.
package resolve

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// idKeys and nameKeys list the structured payload keys that may carry a
// destination, in priority order. Id-shaped keys always win.
var (
	idKeys   = []string{"defaultId", "gotoId", "id"}
	nameKeys = []string{"gotoFlow", "goto", "default", "name"}
)

// sentinels are garbage values produced by careless stringification upstream.
var sentinels = map[string]bool{
	"":                true,
	"undefined":       true,
	"null":            true,
	"[object Object]": true,
	"<nil>":           true,
}

// Resolver resolves raw destinations against a fixed set of nodes.
// It is immutable and safe for concurrent use.
type Resolver struct {
	byID   map[string]domain.Node
	exact  map[string]string
	folded map[string]string
}

// New indexes nodes. When several nodes share a name, the first one in
// nodes wins, for both the exact and the case-insensitive index.
func New(nodes []domain.Node) *Resolver {
	r := &Resolver{
		byID:   make(map[string]domain.Node, len(nodes)),
		exact:  make(map[string]string, len(nodes)),
		folded: make(map[string]string, len(nodes)),
	}
	for _, n := range nodes {
		if _, ok := r.byID[n.ID]; !ok {
			r.byID[n.ID] = n
		}
		name := n.Name()
		if name == "" {
			continue
		}
		if _, ok := r.exact[name]; !ok {
			r.exact[name] = n.ID
		}
		key := strings.ToLower(name)
		if _, ok := r.folded[key]; !ok {
			r.folded[key] = n.ID
		}
	}
	return r
}

// Node returns the indexed node with the given id.
func (r *Resolver) Node(id string) (domain.Node, bool) {
	n, ok := r.byID[id]
	return n, ok
}

// Resolve maps raw to {id, name}. It never fails: an unresolvable value
// comes back with an empty id and the raw text as name, and garbage comes
// back fully empty.
func (r *Resolver) Resolve(raw any) domain.NamedRef {
	scalar := Scalar(raw)
	if scalar == "" {
		return domain.NamedRef{}
	}
	if n, ok := r.byID[scalar]; ok {
		return domain.NamedRef{ID: n.ID, Name: n.Name()}
	}
	if id, ok := r.exact[scalar]; ok {
		return domain.NamedRef{ID: id, Name: scalar}
	}
	if id, ok := r.folded[strings.ToLower(scalar)]; ok {
		return domain.NamedRef{ID: id, Name: scalar}
	}
	return domain.NamedRef{Name: scalar}
}

// ResolveNode resolves raw and returns the matching node, if any.
func (r *Resolver) ResolveNode(raw any) (domain.Node, domain.NamedRef, bool) {
	ref := r.Resolve(raw)
	if ref.ID == "" {
		return domain.Node{}, ref, false
	}
	n, ok := r.byID[ref.ID]
	return n, ref, ok
}

// Scalar extracts the destination text from raw, returning "" for unset
// values and sentinels.
func Scalar(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return clean(v)
	case domain.NamedRef:
		return fromFields(map[string]any{"id": v.ID, "name": v.Name})
	case *domain.NamedRef:
		if v == nil {
			return ""
		}
		return Scalar(*v)
	case map[string]any:
		return fromFields(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return fromFields(m)
	case fmt.Stringer:
		return clean(v.String())
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool:
		return clean(fmt.Sprint(raw))
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return Scalar(rv.Elem().Interface())
	case reflect.Struct, reflect.Map:
		m, err := toFields(raw)
		if err != nil {
			return ""
		}
		return fromFields(m)
	}
	return ""
}

// toFields flattens a structured route value into its JSON-named fields.
func toFields(raw any) (map[string]any, error) {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return out, nil
}

func fromFields(m map[string]any) string {
	for _, k := range idKeys {
		if s := Scalar(m[k]); s != "" && !isStructured(m[k]) {
			return s
		}
	}
	for _, k := range nameKeys {
		if s := Scalar(m[k]); s != "" && !isStructured(m[k]) {
			return s
		}
	}
	return ""
}

// isStructured guards against a route object nested under a route key,
// which would otherwise recurse into an unrelated destination.
func isStructured(v any) bool {
	switch v.(type) {
	case map[string]any, map[string]string:
		return true
	}
	return false
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if sentinels[s] {
		return ""
	}
	return s
}
