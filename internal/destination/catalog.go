// Package destination holds the contract against the production catalog
// and its SQL Server implementation. The pipeline needs exactly one
// capability from the destination: create or update one catalog entry
// from a normalized payload and hand back its identifier.
package destination

import (
	"context"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
)

// Catalog is the destination write contract consumed by the migration
// workers.
type Catalog interface {
	UpsertEntry(ctx context.Context, p *catalog.Property) (string, error)
}
