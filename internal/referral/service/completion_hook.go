package service

import (
	"context"

	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"go.uber.org/zap"
)

// BonusHook awards the referrer the shop's configured referral bonus
// when a link completes. Shops with a zero bonus skip the award.
type BonusHook struct {
	loyalty loyaltydomain.Service
	log     *zap.Logger
}

func NewBonusHook(loyalty loyaltydomain.Service, log *zap.Logger) referraldomain.CompletionHook {
	return &BonusHook{
		loyalty: loyalty,
		log:     log.Named("referral.bonus_hook"),
	}
}

func (h *BonusHook) OnReferralCompleted(ctx context.Context, shop tenantdomain.Shop, link referraldomain.ReferralLink) error {
	if shop.ReferralBonus <= 0 {
		return nil
	}

	resp, err := h.loyalty.AwardPoints(ctx, loyaltydomain.AwardPointsRequest{
		Shop:     shop,
		MemberID: link.ReferrerID,
		Amount:   shop.ReferralBonus,
		Source:   "referral_bonus",
	})
	if err != nil {
		return err
	}

	h.log.Info("referral bonus awarded",
		zap.String("shop", shop.Code),
		zap.String("referrer_id", link.ReferrerID.String()),
		zap.Int64("bonus", shop.ReferralBonus),
		zap.Int64("balance", resp.Balance))
	return nil
}
