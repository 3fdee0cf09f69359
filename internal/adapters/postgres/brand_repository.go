package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/ports"
)

// BrandRepository is the GORM-backed read side of the brand catalog.
type BrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

var _ ports.BrandRepository = (*BrandRepository)(nil)

// FindByIDs bulk-fetches brand rows. Ids without a row are simply absent
// from the result; the caller decides how to render them.
func (r *BrandRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Brand, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []brandModel
	if err := r.db.WithContext(ctx).Where("brand_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: find brands by ids: %v", domain.ErrUnavailable, err)
	}

	brands := make([]domain.Brand, 0, len(rows))
	for _, row := range rows {
		brands = append(brands, row.toDomain())
	}
	return brands, nil
}
