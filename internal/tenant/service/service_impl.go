package service

import (
	"context"
	"strings"
	"time"

	"github.com/brewpass/brewpass/internal/pin"
	"github.com/brewpass/brewpass/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("tenant.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Shop, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Shop{}, domain.ErrInvalidCode
	}

	shop, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Shop{}, err
	}
	if shop == nil {
		return domain.Shop{}, domain.ErrNotFound
	}
	return *shop, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req domain.UpdateSettingsRequest) (domain.Shop, error) {
	shop, err := s.GetByCode(ctx, req.Code)
	if err != nil {
		return domain.Shop{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		shop.Name = name
	}
	if req.Theme != nil {
		shop.Theme = datatypes.JSONMap(req.Theme)
	}
	if req.Features != nil {
		shop.Features = datatypes.JSONMap(req.Features)
	}
	if req.RewardThreshold != nil {
		if *req.RewardThreshold < 1 {
			return domain.Shop{}, domain.ErrInvalidThreshold
		}
		shop.RewardThreshold = *req.RewardThreshold
	}
	if policy := strings.TrimSpace(req.IsolationPolicy); policy != "" {
		switch domain.IsolationPolicy(policy) {
		case domain.IsolationStrict, domain.IsolationLegacyNullable:
			shop.IsolationPolicy = domain.IsolationPolicy(policy)
		default:
			return domain.Shop{}, domain.ErrInvalidPolicy
		}
	}
	if req.SilverFloor != nil {
		shop.SilverFloor = *req.SilverFloor
	}
	if req.GoldFloor != nil {
		shop.GoldFloor = *req.GoldFloor
	}
	if req.ReferralBonus != nil {
		shop.ReferralBonus = *req.ReferralBonus
	}
	shop.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &shop); err != nil {
		return domain.Shop{}, err
	}
	return shop, nil
}

func (s *Service) VerifyPIN(ctx context.Context, req domain.VerifyPINRequest) (domain.VerifyPINResponse, error) {
	submitted := strings.TrimSpace(req.PIN)
	if submitted == "" {
		return domain.VerifyPINResponse{}, domain.ErrInvalidPIN
	}

	shop, err := s.GetByCode(ctx, req.Code)
	if err != nil {
		return domain.VerifyPINResponse{}, err
	}

	// Admin PIN wins when both are set to the same value.
	if shop.AdminPINHash != "" && pin.Verify(submitted, shop.AdminPINHash) {
		return domain.VerifyPINResponse{Valid: true, Role: domain.PINRoleAdmin}, nil
	}
	if shop.StaffPINHash != "" && pin.Verify(submitted, shop.StaffPINHash) {
		return domain.VerifyPINResponse{Valid: true, Role: domain.PINRoleStaff}, nil
	}

	return domain.VerifyPINResponse{Valid: false}, nil
}

func (s *Service) UpdatePIN(ctx context.Context, req domain.UpdatePINRequest) error {
	newPIN := strings.TrimSpace(req.NewPIN)
	if len(newPIN) < 4 {
		return domain.ErrInvalidPIN
	}

	shop, err := s.GetByCode(ctx, req.Code)
	if err != nil {
		return err
	}

	hash, err := pin.Hash(newPIN)
	if err != nil {
		return err
	}

	switch req.Role {
	case domain.PINRoleStaff:
		shop.StaffPINHash = hash
	case domain.PINRoleAdmin:
		shop.AdminPINHash = hash
	default:
		return domain.ErrInvalidRole
	}
	shop.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &shop); err != nil {
		return err
	}
	s.log.Info("shop pin updated", zap.String("shop", shop.Code), zap.String("role", req.Role))
	return nil
}
