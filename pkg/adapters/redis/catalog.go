package redis

import (
	"context"
	"fmt"

	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
	backend "github.com/redis/go-redis/v9"
)

// Catalog implements ports.Catalog using Redis. Each flow is one string key;
// a sorted set with equal scores keeps the names in lexical order.
type Catalog struct {
	client *backend.Client
	prefix string
}

// NewCatalog creates a catalog on an existing client.
func NewCatalog(client *backend.Client, opts ...Option) *Catalog {
	o := apply("ussdflow:flow:", opts)
	return &Catalog{client: client, prefix: o.prefix}
}

func (c *Catalog) key(name string) string {
	return c.prefix + name
}

func (c *Catalog) indexKey() string {
	return c.prefix + "index"
}

// Publish stores doc under its flowName, replacing any previous version.
func (c *Catalog) Publish(ctx context.Context, doc domain.FlowDocument) error {
	if doc.FlowName == "" {
		return domain.ErrUnnamedFlow
	}
	data, err := flowdoc.Encode(doc)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(doc.FlowName), data, 0)
	pipe.ZAdd(ctx, c.indexKey(), backend.Z{Score: 0, Member: doc.FlowName})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish flow %s: %w", doc.FlowName, err)
	}
	return nil
}

// FetchAll returns every published flow ordered by flowName.
func (c *Catalog) FetchAll(ctx context.Context) ([]domain.FlowDocument, error) {
	names, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	if len(names) == 0 {
		return []domain.FlowDocument{}, nil
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = c.key(n)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flows: %w", err)
	}

	docs := make([]domain.FlowDocument, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Indexed but deleted underneath us.
			continue
		}
		doc, err := flowdoc.Decode([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", names[i], err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FetchByName returns the flow published under name.
func (c *Catalog) FetchByName(ctx context.Context, name string) ([]domain.FlowDocument, error) {
	raw, err := c.client.Get(ctx, c.key(name)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, name)
		}
		return nil, fmt.Errorf("failed to fetch flow %s: %w", name, err)
	}
	doc, err := flowdoc.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", name, err)
	}
	return []domain.FlowDocument{doc}, nil
}
