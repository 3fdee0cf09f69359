package ports

import (
	"context"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

// BrandRepository is the read-side view of the relational brand catalog.
// Lookup is bulk-only so a cold cache costs one round trip, not one per id.
type BrandRepository interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Brand, error)
}
