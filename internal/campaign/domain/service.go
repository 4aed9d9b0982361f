package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
)

type CreateCampaignRequest struct {
	ShopCode          string
	Title             string
	Subject           string
	BodyHTML          string
	Audience          string
	AudienceLevel     string
	AudienceMinPoints int64
	PromoPoints       int64
	Metadata          map[string]any
}

type UpdateCampaignRequest struct {
	ShopCode          string
	ID                snowflake.ID
	Title             *string
	Subject           *string
	BodyHTML          *string
	Audience          *string
	AudienceLevel     *string
	AudienceMinPoints *int64
	PromoPoints       *int64
}

type SendResult struct {
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Status     string `json:"status"`
}

type RedeemPromoRequest struct {
	Shop       tenantdomain.Shop
	CampaignID snowflake.ID
	MemberID   snowflake.ID
	ActorID    *snowflake.ID
}

type RedeemPromoResponse struct {
	PointsAwarded int64 `json:"points_awarded"`
}

type Service interface {
	Create(ctx context.Context, req CreateCampaignRequest) (Campaign, error)
	Update(ctx context.Context, req UpdateCampaignRequest) (Campaign, error)
	Delete(ctx context.Context, shopCode string, id snowflake.ID) error
	GetByID(ctx context.Context, shopCode string, id snowflake.ID) (Campaign, error)
	List(ctx context.Context, shopCode string) ([]Campaign, error)

	// Send resolves the audience and delivers one email per recipient,
	// spaced by the configured delay. Counters and the final status are
	// persisted before returning.
	Send(ctx context.Context, shopCode string, id snowflake.ID) (SendResult, error)

	// Toggle flips a promo campaign between active and inactive.
	Toggle(ctx context.Context, shopCode string, id snowflake.ID) (Campaign, error)

	// RedeemPromo awards the campaign's promo points once per member.
	RedeemPromo(ctx context.Context, req RedeemPromoRequest) (RedeemPromoResponse, error)
}

var (
	ErrInvalidShop      = errors.New("invalid_shop")
	ErrInvalidTitle     = errors.New("invalid_title")
	ErrInvalidAudience  = errors.New("invalid_audience")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadySent      = errors.New("already_sent")
	ErrNoRecipients     = errors.New("no_recipients")
	ErrNotToggleable    = errors.New("not_toggleable")
	ErrCampaignInactive = errors.New("campaign_inactive")
	ErrAlreadyRedeemed  = errors.New("already_redeemed")
	ErrNoPromoPoints    = errors.New("no_promo_points")
)
