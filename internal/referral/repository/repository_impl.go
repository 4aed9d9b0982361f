package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/internal/referral/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindCodeByMember(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID) (*domain.ReferralCode, error) {
	var code domain.ReferralCode
	err := db.WithContext(ctx).
		Where("shop_code = ? AND member_id = ?", shopCode, memberID).
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (r *repo) FindCodeByValue(ctx context.Context, db *gorm.DB, shopCode, code string) (*domain.ReferralCode, error) {
	var found domain.ReferralCode
	err := db.WithContext(ctx).
		Where("shop_code = ? AND code = ?", shopCode, code).
		First(&found).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *repo) InsertCode(ctx context.Context, db *gorm.DB, code *domain.ReferralCode) error {
	return db.WithContext(ctx).Create(code).Error
}

func (r *repo) FindLinkByReferee(ctx context.Context, db *gorm.DB, shopCode string, refereeID snowflake.ID) (*domain.ReferralLink, error) {
	var link domain.ReferralLink
	err := db.WithContext(ctx).
		Where("shop_code = ? AND referee_id = ?", shopCode, refereeID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *repo) InsertLink(ctx context.Context, db *gorm.DB, link *domain.ReferralLink) error {
	return db.WithContext(ctx).Create(link).Error
}

func (r *repo) CompleteLink(ctx context.Context, db *gorm.DB, linkID snowflake.ID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.ReferralLink{}).
		Where("id = ? AND status = ?", linkID, domain.LinkStatusPending).
		Updates(map[string]any{
			"status":       domain.LinkStatusCompleted,
			"completed_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) SetReferredBy(ctx context.Context, db *gorm.DB, refereeID, referrerID snowflake.ID) error {
	return db.WithContext(ctx).
		Table("members").
		Where("id = ?", refereeID).
		Update("referred_by", referrerID).Error
}
