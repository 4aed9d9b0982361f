package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/internal/campaign/domain"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Create(campaign).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Save(campaign).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("shop_code = ? AND id = ?", shopCode, id).
		Delete(&domain.Campaign{})
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, shopCode string, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).
		Where("shop_code = ? AND id = ?", shopCode, id).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, shopCode string) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := db.WithContext(ctx).
		Where("shop_code = ?", shopCode).
		Order("created_at desc, id desc").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) ListRecipients(ctx context.Context, db *gorm.DB, filter domain.AudienceFilter) ([]domain.Recipient, error) {
	stmt := db.WithContext(ctx).
		Model(&memberdomain.Member{}).
		Select("id", "email").
		Where("shop_code = ? AND role = ?", filter.ShopCode, memberdomain.RoleCustomer)
	if filter.Level != "" {
		stmt = stmt.Where("level = ?", filter.Level)
	}
	if filter.MinPoints > 0 {
		stmt = stmt.Where("points >= ?", filter.MinPoints)
	}
	var recipients []domain.Recipient
	if err := stmt.Order("id asc").Find(&recipients).Error; err != nil {
		return nil, err
	}
	return recipients, nil
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sent, failed int, status string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sent_count":   sent,
			"failed_count": failed,
			"status":       status,
			"sent_at":      at,
			"updated_at":   at,
		}).Error
}

func (r *repo) InsertRedemption(ctx context.Context, db *gorm.DB, redemption *domain.PromoRedemption) error {
	return db.WithContext(ctx).Create(redemption).Error
}
