package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Preload("Items").
		Where("shop_code = ? AND id = ?", shopCode, id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Order, error) {
	var orders []*domain.Order
	stmt := db.WithContext(ctx).Model(&domain.Order{}).Preload("Items")
	if filter.ShopCode != "" {
		stmt = stmt.Where("shop_code = ?", filter.ShopCode)
	}
	if filter.MemberID != nil {
		stmt = stmt.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}
	err := stmt.Order("created_at desc, id desc").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) CountByMember(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("shop_code = ? AND member_id = ?", shopCode, memberID).
		Count(&count).Error
	return count, err
}
