package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	campaigndomain "github.com/brewpass/brewpass/internal/campaign/domain"
	"github.com/brewpass/brewpass/internal/clock"
	"github.com/brewpass/brewpass/internal/config"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	obsmetrics "github.com/brewpass/brewpass/internal/observability/metrics"
	"github.com/brewpass/brewpass/internal/providers/email"
	"github.com/brewpass/brewpass/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        campaigndomain.Repository
	Email       email.Provider
	LoyaltySvc  loyaltydomain.Service
	ActivitySvc activitydomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        campaigndomain.Repository
	email       email.Provider
	loyaltySvc  loyaltydomain.Service
	activitySvc activitydomain.Service
	obsMetrics  *obsmetrics.Metrics
	sendDelay   time.Duration
}

func New(p Params) campaigndomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("campaign.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		email:       p.Email,
		loyaltySvc:  p.LoyaltySvc,
		activitySvc: p.ActivitySvc,
		obsMetrics:  p.ObsMetrics,
		sendDelay:   time.Duration(p.Config.CampaignSendDelayMs) * time.Millisecond,
	}
}

func (s *Service) Create(ctx context.Context, req campaigndomain.CreateCampaignRequest) (campaigndomain.Campaign, error) {
	if req.ShopCode == "" {
		return campaigndomain.Campaign{}, campaigndomain.ErrInvalidShop
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return campaigndomain.Campaign{}, campaigndomain.ErrInvalidTitle
	}

	audience := req.Audience
	if audience == "" {
		audience = campaigndomain.AudienceAll
	}
	switch audience {
	case campaigndomain.AudienceAll, campaigndomain.AudienceLevel, campaigndomain.AudienceMinPoints:
	default:
		return campaigndomain.Campaign{}, campaigndomain.ErrInvalidAudience
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := s.clock.Now()
	campaign := campaigndomain.Campaign{
		ID:                s.genID.Generate(),
		ShopCode:          req.ShopCode,
		Title:             title,
		Subject:           strings.TrimSpace(req.Subject),
		BodyHTML:          req.BodyHTML,
		Audience:          audience,
		AudienceLevel:     req.AudienceLevel,
		AudienceMinPoints: req.AudienceMinPoints,
		Status:            campaigndomain.StatusDraft,
		PromoPoints:       req.PromoPoints,
		Metadata:          metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Insert(ctx, s.db, &campaign); err != nil {
		return campaigndomain.Campaign{}, err
	}
	return campaign, nil
}

func (s *Service) Update(ctx context.Context, req campaigndomain.UpdateCampaignRequest) (campaigndomain.Campaign, error) {
	if req.ShopCode == "" {
		return campaigndomain.Campaign{}, campaigndomain.ErrInvalidShop
	}

	existing, err := s.repo.FindByID(ctx, s.db, req.ShopCode, req.ID)
	if err != nil {
		return campaigndomain.Campaign{}, err
	}
	if existing == nil {
		return campaigndomain.Campaign{}, campaigndomain.ErrNotFound
	}
	if existing.Status == campaigndomain.StatusSent {
		return campaigndomain.Campaign{}, campaigndomain.ErrAlreadySent
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return campaigndomain.Campaign{}, campaigndomain.ErrInvalidTitle
		}
		existing.Title = title
	}
	if req.Subject != nil {
		existing.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.BodyHTML != nil {
		existing.BodyHTML = *req.BodyHTML
	}
	if req.Audience != nil {
		switch *req.Audience {
		case campaigndomain.AudienceAll, campaigndomain.AudienceLevel, campaigndomain.AudienceMinPoints:
			existing.Audience = *req.Audience
		default:
			return campaigndomain.Campaign{}, campaigndomain.ErrInvalidAudience
		}
	}
	if req.AudienceLevel != nil {
		existing.AudienceLevel = *req.AudienceLevel
	}
	if req.AudienceMinPoints != nil {
		existing.AudienceMinPoints = *req.AudienceMinPoints
	}
	if req.PromoPoints != nil {
		existing.PromoPoints = *req.PromoPoints
	}
	existing.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return campaigndomain.Campaign{}, err
	}
	return *existing, nil
}

func (s *Service) Delete(ctx context.Context, shopCode string, id snowflake.ID) error {
	if shopCode == "" {
		return campaigndomain.ErrInvalidShop
	}
	rows, err := s.repo.Delete(ctx, s.db, shopCode, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return campaigndomain.ErrNotFound
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, shopCode string, id snowflake.ID) (campaigndomain.Campaign, error) {
	if shopCode == "" {
		return campaigndomain.Campaign{}, campaigndomain.ErrInvalidShop
	}
	campaign, err := s.repo.FindByID(ctx, s.db, shopCode, id)
	if err != nil {
		return campaigndomain.Campaign{}, err
	}
	if campaign == nil {
		return campaigndomain.Campaign{}, campaigndomain.ErrNotFound
	}
	return *campaign, nil
}

func (s *Service) List(ctx context.Context, shopCode string) ([]campaigndomain.Campaign, error) {
	if shopCode == "" {
		return nil, campaigndomain.ErrInvalidShop
	}
	return s.repo.List(ctx, s.db, shopCode)
}

func (s *Service) Send(ctx context.Context, shopCode string, id snowflake.ID) (campaigndomain.SendResult, error) {
	campaign, err := s.GetByID(ctx, shopCode, id)
	if err != nil {
		return campaigndomain.SendResult{}, err
	}
	if campaign.Status == campaigndomain.StatusSent {
		return campaigndomain.SendResult{}, campaigndomain.ErrAlreadySent
	}

	recipients, err := s.repo.ListRecipients(ctx, s.db, campaigndomain.AudienceFilter{
		ShopCode:  shopCode,
		Level:     audienceLevel(campaign),
		MinPoints: audienceMinPoints(campaign),
	})
	if err != nil {
		return campaigndomain.SendResult{}, err
	}
	if len(recipients) == 0 {
		return campaigndomain.SendResult{}, campaigndomain.ErrNoRecipients
	}

	var sent, failed int
	for i, recipient := range recipients {
		if i > 0 && s.sendDelay > 0 {
			select {
			case <-ctx.Done():
				return campaigndomain.SendResult{}, ctx.Err()
			case <-time.After(s.sendDelay):
			}
		}
		if err := s.email.Send(ctx, recipient.Email, campaign.Subject, campaign.BodyHTML); err != nil {
			failed++
			if s.obsMetrics != nil {
				s.obsMetrics.RecordCampaignEmail(shopCode, "failed")
			}
			s.log.Warn("campaign email failed",
				zap.String("campaign_id", campaign.ID.String()),
				zap.String("to", recipient.Email),
				zap.Error(err))
			continue
		}
		sent++
		if s.obsMetrics != nil {
			s.obsMetrics.RecordCampaignEmail(shopCode, "sent")
		}
	}

	status := campaigndomain.StatusSent
	if sent == 0 {
		status = campaigndomain.StatusFailed
	}
	now := s.clock.Now()
	if err := s.repo.MarkSent(ctx, s.db, campaign.ID, sent, failed, status, now); err != nil {
		return campaigndomain.SendResult{}, err
	}

	s.log.Info("campaign sent",
		zap.String("campaign_id", campaign.ID.String()),
		zap.Int("recipients", len(recipients)),
		zap.Int("sent", sent),
		zap.Int("failed", failed))

	return campaigndomain.SendResult{
		Recipients: len(recipients),
		Sent:       sent,
		Failed:     failed,
		Status:     status,
	}, nil
}

func (s *Service) Toggle(ctx context.Context, shopCode string, id snowflake.ID) (campaigndomain.Campaign, error) {
	campaign, err := s.GetByID(ctx, shopCode, id)
	if err != nil {
		return campaigndomain.Campaign{}, err
	}

	switch campaign.Status {
	case campaigndomain.StatusDraft, campaigndomain.StatusInactive:
		campaign.Status = campaigndomain.StatusActive
	case campaigndomain.StatusActive:
		campaign.Status = campaigndomain.StatusInactive
	default:
		return campaigndomain.Campaign{}, campaigndomain.ErrNotToggleable
	}
	campaign.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, &campaign); err != nil {
		return campaigndomain.Campaign{}, err
	}
	return campaign, nil
}

func (s *Service) RedeemPromo(ctx context.Context, req campaigndomain.RedeemPromoRequest) (campaigndomain.RedeemPromoResponse, error) {
	campaign, err := s.GetByID(ctx, req.Shop.Code, req.CampaignID)
	if err != nil {
		return campaigndomain.RedeemPromoResponse{}, err
	}
	if campaign.Status != campaigndomain.StatusActive {
		return campaigndomain.RedeemPromoResponse{}, campaigndomain.ErrCampaignInactive
	}
	if campaign.PromoPoints <= 0 {
		return campaigndomain.RedeemPromoResponse{}, campaigndomain.ErrNoPromoPoints
	}

	redemption := campaigndomain.PromoRedemption{
		ID:         s.genID.Generate(),
		ShopCode:   req.Shop.Code,
		CampaignID: campaign.ID,
		MemberID:   req.MemberID,
		CreatedAt:  s.clock.Now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertRedemption(ctx, tx, &redemption); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return campaigndomain.ErrAlreadyRedeemed
			}
			return err
		}
		return s.activitySvc.Append(ctx, tx, activitydomain.AppendRequest{
			ShopCode:    req.Shop.Code,
			MemberID:    req.MemberID,
			ActorID:     req.ActorID,
			Type:        activitydomain.TypePromoRedeem,
			Description: campaign.Title,
			Metadata: map[string]any{
				"campaign_id": campaign.ID.String(),
				"points":      campaign.PromoPoints,
			},
		})
	})
	if err != nil {
		return campaigndomain.RedeemPromoResponse{}, err
	}

	if _, err := s.loyaltySvc.AwardPoints(ctx, loyaltydomain.AwardPointsRequest{
		Shop:     req.Shop,
		MemberID: req.MemberID,
		ActorID:  req.ActorID,
		Amount:   campaign.PromoPoints,
		Source:   "promo",
	}); err != nil {
		return campaigndomain.RedeemPromoResponse{}, err
	}

	return campaigndomain.RedeemPromoResponse{PointsAwarded: campaign.PromoPoints}, nil
}

func audienceLevel(c campaigndomain.Campaign) string {
	if c.Audience == campaigndomain.AudienceLevel {
		return c.AudienceLevel
	}
	return ""
}

func audienceMinPoints(c campaigndomain.Campaign) int64 {
	if c.Audience == campaigndomain.AudienceMinPoints {
		return c.AudienceMinPoints
	}
	return 0
}
