package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, shop *Shop) error
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Shop, error)
	Update(ctx context.Context, db *gorm.DB, shop *Shop) error
}
