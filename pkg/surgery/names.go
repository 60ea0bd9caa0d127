package surgery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/ussdflow/pkg/domain"
)

var copySuffix = regexp.MustCompile(`^(.+?) copy(?: \d+)?$`)

// BaseName strips a trailing " copy" or " copy N" from name.
func BaseName(name string) string {
	if m := copySuffix.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// namer hands out names that are unique per scope, compared
// case-insensitively. Claimed names are remembered so one paste batch
// never collides with itself.
type namer struct {
	taken map[string]map[string]bool
}

func newNamer(nodes []domain.Node) *namer {
	nm := &namer{taken: make(map[string]map[string]bool)}
	for _, n := range nodes {
		if name := n.Name(); name != "" {
			nm.scope(n.ParentScopeID)[strings.ToLower(name)] = true
		}
	}
	return nm
}

func (nm *namer) scope(id string) map[string]bool {
	s, ok := nm.taken[id]
	if !ok {
		s = make(map[string]bool)
		nm.taken[id] = s
	}
	return s
}

// claim returns the lowest free "<base> copy" / "<base> copy N" in scopeID.
func (nm *namer) claim(scopeID, name string) string {
	used := nm.scope(scopeID)
	base := BaseName(name)
	candidate := base + " copy"
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s copy %d", base, i)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
