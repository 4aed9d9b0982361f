package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/internal/activity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.LogEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.LogEntry, error) {
	var entries []*domain.LogEntry
	stmt := db.WithContext(ctx).
		Model(&domain.LogEntry{}).
		Where("shop_code = ?", filter.ShopCode)
	if filter.MemberID != 0 {
		stmt = stmt.Where("member_id = ?", filter.MemberID)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", *filter.EndAt)
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
	err := stmt.Order("created_at desc, id desc").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) LastOfType(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID, entryType domain.EntryType) (*domain.LogEntry, error) {
	var entry domain.LogEntry
	err := db.WithContext(ctx).
		Where("shop_code = ? AND member_id = ? AND type = ?", shopCode, memberID, entryType).
		Order("created_at desc, id desc").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
