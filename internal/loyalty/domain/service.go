package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

// StampCooldown is the window during which a second stamp for the same
// member is refused unless Force is set.
const StampCooldown = 24 * time.Hour

type GrantStampRequest struct {
	Shop     tenantdomain.Shop
	MemberID snowflake.ID
	ActorID  *snowflake.ID

	// Force bypasses the cooldown. Callers must have verified an admin
	// PIN first; this service trusts them.
	Force bool
}

type GrantStampResponse struct {
	Count       int  `json:"count"`
	RewardReady bool `json:"reward_ready"`
}

type RedeemRewardRequest struct {
	Shop     tenantdomain.Shop
	MemberID snowflake.ID
	ActorID  *snowflake.ID
}

type AwardPointsRequest struct {
	Shop     tenantdomain.Shop
	MemberID snowflake.ID
	ActorID  *snowflake.ID
	Amount   int64
	Source   string
}

type AwardPointsResponse struct {
	Balance int64  `json:"balance"`
	Level   string `json:"level"`
}

type RedeemPointsRequest struct {
	Shop        tenantdomain.Shop
	MemberID    snowflake.ID
	ActorID     *snowflake.ID
	Cost        int64
	Description string
}

type RedeemPointsResponse struct {
	Balance int64 `json:"balance"`
}

// Service is the loyalty ledger: the stamp state machine plus the points
// economy. The stamp-threshold reward and the points-shop reward are two
// deliberately separate paths.
type Service interface {
	GetCounter(ctx context.Context, shop tenantdomain.Shop, memberID snowflake.ID) (StampCounter, error)
	GrantStamp(ctx context.Context, req GrantStampRequest) (GrantStampResponse, error)
	RedeemReward(ctx context.Context, req RedeemRewardRequest) error
	AwardPoints(ctx context.Context, req AwardPointsRequest) (AwardPointsResponse, error)
	RedeemPointsReward(ctx context.Context, req RedeemPointsRequest) (RedeemPointsResponse, error)
}

var (
	ErrInvalidShop        = errors.New("invalid_shop")
	ErrInvalidMember      = errors.New("invalid_member")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrMemberNotFound     = errors.New("not_found")
	ErrCooldownActive     = errors.New("cooldown_active")
	ErrInsufficientStamps = errors.New("insufficient_stamps")
	ErrInsufficientPoints = errors.New("insufficient_points")
)
