package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
)

// Catalog implements ports.Catalog using an in-memory map of encoded
// documents. Documents are stored as JSON so readers never share state with
// the publisher.
type Catalog struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewCatalog creates a catalog seeded with docs.
func NewCatalog(docs ...domain.FlowDocument) (*Catalog, error) {
	c := &Catalog{docs: make(map[string][]byte)}
	for _, d := range docs {
		if err := c.Publish(context.Background(), d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Publish stores doc under its flowName, replacing any previous version.
func (c *Catalog) Publish(ctx context.Context, doc domain.FlowDocument) error {
	if doc.FlowName == "" {
		return domain.ErrUnnamedFlow
	}
	raw, err := flowdoc.Encode(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.FlowName] = raw
	return nil
}

// FetchAll returns every stored flow ordered by flowName.
func (c *Catalog) FetchAll(ctx context.Context) ([]domain.FlowDocument, error) {
	c.mu.RLock()
	names := make([]string, 0, len(c.docs))
	for name := range c.docs {
		names = append(names, name)
	}
	c.mu.RUnlock()
	slices.SortFunc(names, strings.Compare)

	out := make([]domain.FlowDocument, 0, len(names))
	for _, name := range names {
		docs, err := c.FetchByName(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, docs...)
	}
	return out, nil
}

// FetchByName returns the flow stored under name.
func (c *Catalog) FetchByName(ctx context.Context, name string) ([]domain.FlowDocument, error) {
	c.mu.RLock()
	raw, ok := c.docs[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, name)
	}
	doc, err := flowdoc.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", name, err)
	}
	return []domain.FlowDocument{doc}, nil
}
