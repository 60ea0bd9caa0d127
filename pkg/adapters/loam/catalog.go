// Package loam stores published flows as files in a Loam repository, one
// Markdown document per flow with its metadata in the frontmatter.
package loam

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
)

const docExt = ".md"

// Catalog implements ports.Catalog on top of a typed Loam repository.
type Catalog struct {
	Repo *loam.TypedRepository[FlowMetadata]
}

// New creates a catalog backed by repo.
func New(repo *loam.TypedRepository[FlowMetadata]) *Catalog {
	return &Catalog{Repo: repo}
}

// Open initializes a Loam repository at dir and wraps it in a Catalog.
func Open(dir string, opts ...loam.Option) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog path %s: %w", dir, err)
	}
	if len(opts) == 0 {
		opts = []loam.Option{loam.WithVersioning(false)}
	}
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repo: %w", err)
	}
	return New(loam.NewTypedRepository[FlowMetadata](repo)), nil
}

// docID maps a flow name to a file id. Escaping keeps distinct names in
// distinct files and stops dots from being read as an extension.
func docID(name string) string {
	return url.PathEscape(name) + docExt
}

// Publish writes doc to its file, replacing any previous version.
func (c *Catalog) Publish(ctx context.Context, doc domain.FlowDocument) error {
	if doc.FlowName == "" {
		return domain.ErrUnnamedFlow
	}
	body, err := flowdoc.Encode(doc)
	if err != nil {
		return err
	}

	err = c.Repo.Save(ctx, &loam.DocumentModel[FlowMetadata]{
		ID:      docID(doc.FlowName),
		Content: string(body),
		Data: FlowMetadata{
			FlowName:  doc.FlowName,
			EntryNode: doc.EntryNode,
			Records:   len(doc.Nodes),
		},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", doc.FlowName, err)
	}
	return nil
}

// FetchAll returns every flow in the repository ordered by flowName.
// Files without a flow_name header are not flows and are skipped.
func (c *Catalog) FetchAll(ctx context.Context) ([]domain.FlowDocument, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make([]domain.FlowDocument, 0, len(docs))
	seen := make(map[string]string)
	for _, d := range docs {
		name := d.Data.FlowName
		if name == "" {
			continue
		}
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: flow '%s' is defined in both '%s' and '%s'", name, existing, d.ID)
		}
		seen[name] = d.ID

		flow, err := flowdoc.Decode([]byte(strings.TrimSpace(d.Content)))
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", d.ID, err)
		}
		out = append(out, flow)
	}

	slices.SortFunc(out, func(a, b domain.FlowDocument) int {
		return strings.Compare(a.FlowName, b.FlowName)
	})
	return out, nil
}

// FetchByName returns the flow published under name.
func (c *Catalog) FetchByName(ctx context.Context, name string) ([]domain.FlowDocument, error) {
	all, err := c.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, doc := range all {
		if doc.FlowName == name {
			return []domain.FlowDocument{doc}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, name)
}

// Watch reports the flow files that change on disk until ctx is done.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	events, err := c.Repo.Watch(ctx, "**/*"+docExt)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- flowName(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// flowName recovers the flow name from a file id.
func flowName(id string) string {
	base := strings.TrimSuffix(filepath.ToSlash(id), docExt)
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if name, err := url.PathUnescape(base); err == nil {
		return name
	}
	return base
}
