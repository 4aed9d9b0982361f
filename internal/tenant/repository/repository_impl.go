package repository

import (
	"context"
	"errors"

	"github.com/brewpass/brewpass/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, shop *domain.Shop) error {
	return db.WithContext(ctx).Create(shop).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Shop, error) {
	var shop domain.Shop
	err := db.WithContext(ctx).Where("code = ?", code).First(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shop, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, shop *domain.Shop) error {
	return db.WithContext(ctx).Save(shop).Error
}
