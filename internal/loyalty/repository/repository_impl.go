package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/internal/loyalty/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) EnsureCounter(ctx context.Context, db *gorm.DB, counter *domain.StampCounter) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_code"}, {Name: "member_id"}},
			DoNothing: true,
		}).
		Create(counter).Error
}

func (r *repo) FindCounter(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID) (*domain.StampCounter, error) {
	var counter domain.StampCounter
	err := db.WithContext(ctx).
		Where("shop_code = ? AND member_id = ?", shopCode, memberID).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}

func (r *repo) IncrementStamp(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID, force bool, cutoff, now time.Time) (int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.StampCounter{}).
		Where("shop_code = ? AND member_id = ?", shopCode, memberID)
	if !force {
		stmt = stmt.Where("last_stamp_at IS NULL OR last_stamp_at <= ?", cutoff)
	}
	result := stmt.Updates(map[string]any{
		"count":         gorm.Expr("count + 1"),
		"last_stamp_at": now,
		"updated_at":    now,
	})
	return result.RowsAffected, result.Error
}

func (r *repo) ResetCounter(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID, threshold int, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.StampCounter{}).
		Where("shop_code = ? AND member_id = ? AND count >= ?", shopCode, memberID, threshold).
		Updates(map[string]any{
			"count":      0,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) AddPoints(ctx context.Context, db *gorm.DB, memberID snowflake.ID, amount int64, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Table("members").
		Where("id = ?", memberID).
		Updates(map[string]any{
			"points":     gorm.Expr("points + ?", amount),
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) SpendPoints(ctx context.Context, db *gorm.DB, memberID snowflake.ID, cost int64, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Table("members").
		Where("id = ? AND points >= ?", memberID, cost).
		Updates(map[string]any{
			"points":     gorm.Expr("points - ?", cost),
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) MemberBalance(ctx context.Context, db *gorm.DB, memberID snowflake.ID) (int64, bool, error) {
	var row struct {
		Points int64
	}
	result := db.WithContext(ctx).
		Table("members").
		Select("points").
		Where("id = ?", memberID).
		Scan(&row)
	if result.Error != nil {
		return 0, false, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}
	return row.Points, true, nil
}

func (r *repo) SetMemberLevel(ctx context.Context, db *gorm.DB, memberID snowflake.ID, level string) error {
	return db.WithContext(ctx).
		Table("members").
		Where("id = ?", memberID).
		Update("level", level).Error
}
