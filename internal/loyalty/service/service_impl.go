package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	"github.com/brewpass/brewpass/internal/clock"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	obsmetrics "github.com/brewpass/brewpass/internal/observability/metrics"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        loyaltydomain.Repository
	ActivitySvc activitydomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        loyaltydomain.Repository
	activitySvc activitydomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) loyaltydomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("loyalty.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		activitySvc: p.ActivitySvc,
		obsMetrics:  p.ObsMetrics,
	}
}

// GetCounter returns the member's stamp counter, creating a zero counter
// on first read.
func (s *Service) GetCounter(ctx context.Context, shop tenantdomain.Shop, memberID snowflake.ID) (loyaltydomain.StampCounter, error) {
	if shop.Code == "" {
		return loyaltydomain.StampCounter{}, loyaltydomain.ErrInvalidShop
	}
	if memberID == 0 {
		return loyaltydomain.StampCounter{}, loyaltydomain.ErrInvalidMember
	}

	if err := s.ensureCounter(ctx, s.db, shop.Code, memberID); err != nil {
		return loyaltydomain.StampCounter{}, err
	}

	counter, err := s.repo.FindCounter(ctx, s.db, shop.Code, memberID)
	if err != nil {
		return loyaltydomain.StampCounter{}, err
	}
	if counter == nil {
		return loyaltydomain.StampCounter{}, loyaltydomain.ErrMemberNotFound
	}
	return *counter, nil
}

func (s *Service) GrantStamp(ctx context.Context, req loyaltydomain.GrantStampRequest) (loyaltydomain.GrantStampResponse, error) {
	if req.Shop.Code == "" {
		return loyaltydomain.GrantStampResponse{}, loyaltydomain.ErrInvalidShop
	}
	if req.MemberID == 0 {
		return loyaltydomain.GrantStampResponse{}, loyaltydomain.ErrInvalidMember
	}

	now := s.clock.Now()
	cutoff := now.Add(-loyaltydomain.StampCooldown)

	var newCount int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureCounter(ctx, tx, req.Shop.Code, req.MemberID); err != nil {
			return err
		}

		rows, err := s.repo.IncrementStamp(ctx, tx, req.Shop.Code, req.MemberID, req.Force, cutoff, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return loyaltydomain.ErrCooldownActive
		}

		counter, err := s.repo.FindCounter(ctx, tx, req.Shop.Code, req.MemberID)
		if err != nil {
			return err
		}
		if counter == nil {
			return loyaltydomain.ErrMemberNotFound
		}
		newCount = counter.Count

		return s.activitySvc.Append(ctx, tx, activitydomain.AppendRequest{
			ShopCode:    req.Shop.Code,
			MemberID:    req.MemberID,
			ActorID:     req.ActorID,
			Type:        activitydomain.TypeAddStamp,
			Description: fmt.Sprintf("Stamp %d of %d", newCount, req.Shop.RewardThreshold),
			Metadata: map[string]any{
				"count":  newCount,
				"forced": req.Force,
			},
		})
	})
	if err != nil {
		return loyaltydomain.GrantStampResponse{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordStampGranted(req.Shop.Code)
	}

	return loyaltydomain.GrantStampResponse{
		Count:       newCount,
		RewardReady: newCount >= req.Shop.RewardThreshold,
	}, nil
}

func (s *Service) RedeemReward(ctx context.Context, req loyaltydomain.RedeemRewardRequest) error {
	if req.Shop.Code == "" {
		return loyaltydomain.ErrInvalidShop
	}
	if req.MemberID == 0 {
		return loyaltydomain.ErrInvalidMember
	}

	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureCounter(ctx, tx, req.Shop.Code, req.MemberID); err != nil {
			return err
		}

		rows, err := s.repo.ResetCounter(ctx, tx, req.Shop.Code, req.MemberID, req.Shop.RewardThreshold, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return loyaltydomain.ErrInsufficientStamps
		}

		return s.activitySvc.Append(ctx, tx, activitydomain.AppendRequest{
			ShopCode:    req.Shop.Code,
			MemberID:    req.MemberID,
			ActorID:     req.ActorID,
			Type:        activitydomain.TypeRedeemReward,
			Description: "Free reward redeemed",
			Metadata: map[string]any{
				"threshold": req.Shop.RewardThreshold,
			},
		})
	})
	if err != nil {
		return err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordRewardRedeemed(req.Shop.Code)
	}
	return nil
}

func (s *Service) AwardPoints(ctx context.Context, req loyaltydomain.AwardPointsRequest) (loyaltydomain.AwardPointsResponse, error) {
	if req.Shop.Code == "" {
		return loyaltydomain.AwardPointsResponse{}, loyaltydomain.ErrInvalidShop
	}
	if req.MemberID == 0 {
		return loyaltydomain.AwardPointsResponse{}, loyaltydomain.ErrInvalidMember
	}
	if req.Amount <= 0 {
		return loyaltydomain.AwardPointsResponse{}, loyaltydomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	var resp loyaltydomain.AwardPointsResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.AddPoints(ctx, tx, req.MemberID, req.Amount, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return loyaltydomain.ErrMemberNotFound
		}

		balance, ok, err := s.repo.MemberBalance(ctx, tx, req.MemberID)
		if err != nil {
			return err
		}
		if !ok {
			return loyaltydomain.ErrMemberNotFound
		}

		level := req.Shop.Level(balance)
		if err := s.repo.SetMemberLevel(ctx, tx, req.MemberID, level); err != nil {
			return err
		}
		resp = loyaltydomain.AwardPointsResponse{Balance: balance, Level: level}

		return s.activitySvc.Append(ctx, tx, activitydomain.AppendRequest{
			ShopCode:    req.Shop.Code,
			MemberID:    req.MemberID,
			ActorID:     req.ActorID,
			Type:        activitydomain.TypeEarnPoints,
			Description: fmt.Sprintf("Earned %d points", req.Amount),
			Metadata: map[string]any{
				"amount":  req.Amount,
				"balance": balance,
				"source":  req.Source,
			},
		})
	})
	if err != nil {
		return loyaltydomain.AwardPointsResponse{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPointsAwarded(req.Shop.Code, req.Source, req.Amount)
	}
	return resp, nil
}

func (s *Service) RedeemPointsReward(ctx context.Context, req loyaltydomain.RedeemPointsRequest) (loyaltydomain.RedeemPointsResponse, error) {
	if req.Shop.Code == "" {
		return loyaltydomain.RedeemPointsResponse{}, loyaltydomain.ErrInvalidShop
	}
	if req.MemberID == 0 {
		return loyaltydomain.RedeemPointsResponse{}, loyaltydomain.ErrInvalidMember
	}
	if req.Cost <= 0 {
		return loyaltydomain.RedeemPointsResponse{}, loyaltydomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	var resp loyaltydomain.RedeemPointsResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.SpendPoints(ctx, tx, req.MemberID, req.Cost, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			_, ok, err := s.repo.MemberBalance(ctx, tx, req.MemberID)
			if err != nil {
				return err
			}
			if !ok {
				return loyaltydomain.ErrMemberNotFound
			}
			return loyaltydomain.ErrInsufficientPoints
		}

		balance, ok, err := s.repo.MemberBalance(ctx, tx, req.MemberID)
		if err != nil {
			return err
		}
		if !ok {
			return loyaltydomain.ErrMemberNotFound
		}

		if err := s.repo.SetMemberLevel(ctx, tx, req.MemberID, req.Shop.Level(balance)); err != nil {
			return err
		}
		resp = loyaltydomain.RedeemPointsResponse{Balance: balance}

		return s.activitySvc.Append(ctx, tx, activitydomain.AppendRequest{
			ShopCode:    req.Shop.Code,
			MemberID:    req.MemberID,
			ActorID:     req.ActorID,
			Type:        activitydomain.TypeRedemption,
			Description: req.Description,
			Metadata: map[string]any{
				"cost":    req.Cost,
				"balance": balance,
			},
		})
	})
	if err != nil {
		return loyaltydomain.RedeemPointsResponse{}, err
	}
	return resp, nil
}

func (s *Service) ensureCounter(ctx context.Context, db *gorm.DB, shopCode string, memberID snowflake.ID) error {
	now := s.clock.Now()
	return s.repo.EnsureCounter(ctx, db, &loyaltydomain.StampCounter{
		ID:        s.genID.Generate(),
		ShopCode:  shopCode,
		MemberID:  memberID,
		Count:     0,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
