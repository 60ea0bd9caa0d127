package ports

import (
	"context"

	"github.com/aretw0/ussdflow/pkg/domain"
)

// Catalog is the remote store of published flow documents, keyed by
// flowName. Implementations do not retry; transport failures are returned
// to the caller as they are.
type Catalog interface {
	// Publish creates or replaces the flow named doc.FlowName.
	// Returns domain.ErrUnnamedFlow when the name is empty.
	Publish(ctx context.Context, doc domain.FlowDocument) error

	// FetchAll returns every published flow ordered by flowName.
	FetchAll(ctx context.Context) ([]domain.FlowDocument, error)

	// FetchByName returns the documents published under name.
	// Returns domain.ErrFlowNotFound when there are none.
	FetchByName(ctx context.Context, name string) ([]domain.FlowDocument, error)
}
