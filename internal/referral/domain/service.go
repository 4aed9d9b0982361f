package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

type ApplyReferralRequest struct {
	Shop      tenantdomain.Shop
	RefereeID snowflake.ID
	Code      string
}

// CompletionHook fires when a pending link transitions to completed.
// The default hook awards the referrer the shop's referral bonus.
type CompletionHook interface {
	OnReferralCompleted(ctx context.Context, shop tenantdomain.Shop, link ReferralLink) error
}

type Service interface {
	// GetOrCreateCode is idempotent: repeated calls return the same code.
	GetOrCreateCode(ctx context.Context, shop tenantdomain.Shop, memberID snowflake.ID) (ReferralCode, error)

	// ValidateCode resolves a code to its owner without mutating state.
	ValidateCode(ctx context.Context, shop tenantdomain.Shop, code string) (snowflake.ID, error)

	ApplyReferral(ctx context.Context, req ApplyReferralRequest) (ReferralLink, error)

	// MarkCompleted transitions the referee's pending link to completed
	// and fires the completion hook. A no-op when no pending link exists.
	MarkCompleted(ctx context.Context, shop tenantdomain.Shop, refereeID snowflake.ID) error
}

var (
	ErrInvalidShop     = errors.New("invalid_shop")
	ErrInvalidMember   = errors.New("invalid_member")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrSelfReferral    = errors.New("self_referral")
	ErrAlreadyReferred = errors.New("already_referred")
	ErrCodeExhausted   = errors.New("code_generation_exhausted")
)
