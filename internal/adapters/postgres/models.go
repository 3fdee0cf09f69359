package postgres

import (
	"time"

	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

type brandModel struct {
	BrandID     int64     `gorm:"column:brand_id;primaryKey"`
	DisplayName string    `gorm:"column:display_name"`
	PageID      string    `gorm:"column:page_id"`
	Category    string    `gorm:"column:category"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (brandModel) TableName() string { return "brands" }

func (m brandModel) toDomain() domain.Brand {
	return domain.Brand{
		ID:          m.BrandID,
		DisplayName: m.DisplayName,
		PageID:      m.PageID,
		Category:    m.Category,
	}
}
