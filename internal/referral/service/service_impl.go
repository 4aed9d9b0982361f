package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/internal/clock"
	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"github.com/brewpass/brewpass/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxCodeAttempts bounds the collision retry loop. With 36^8 codes per
// shop a retry is already vanishingly rare.
const maxCodeAttempts = 5

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  referraldomain.Repository
	Hook  referraldomain.CompletionHook `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  referraldomain.Repository
	hook  referraldomain.CompletionHook
}

func New(p Params) referraldomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("referral.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		hook:  p.Hook,
	}
}

func (s *Service) GetOrCreateCode(ctx context.Context, shop tenantdomain.Shop, memberID snowflake.ID) (referraldomain.ReferralCode, error) {
	if shop.Code == "" {
		return referraldomain.ReferralCode{}, referraldomain.ErrInvalidShop
	}
	if memberID == 0 {
		return referraldomain.ReferralCode{}, referraldomain.ErrInvalidMember
	}

	existing, err := s.repo.FindCodeByMember(ctx, s.db, shop.Code, memberID)
	if err != nil {
		return referraldomain.ReferralCode{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		value, err := randomCode(referraldomain.CodeLength)
		if err != nil {
			return referraldomain.ReferralCode{}, err
		}

		code := referraldomain.ReferralCode{
			ID:        s.genID.Generate(),
			ShopCode:  shop.Code,
			MemberID:  memberID,
			Code:      value,
			CreatedAt: s.clock.Now(),
		}
		err = s.repo.InsertCode(ctx, s.db, &code)
		if err == nil {
			return code, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return referraldomain.ReferralCode{}, err
		}

		// The member may have raced us to their own code.
		existing, findErr := s.repo.FindCodeByMember(ctx, s.db, shop.Code, memberID)
		if findErr != nil {
			return referraldomain.ReferralCode{}, findErr
		}
		if existing != nil {
			return *existing, nil
		}
	}

	return referraldomain.ReferralCode{}, referraldomain.ErrCodeExhausted
}

func (s *Service) ValidateCode(ctx context.Context, shop tenantdomain.Shop, code string) (snowflake.ID, error) {
	if shop.Code == "" {
		return 0, referraldomain.ErrInvalidShop
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != referraldomain.CodeLength {
		return 0, referraldomain.ErrInvalidCode
	}

	found, err := s.repo.FindCodeByValue(ctx, s.db, shop.Code, code)
	if err != nil {
		return 0, err
	}
	if found == nil {
		return 0, referraldomain.ErrInvalidCode
	}
	return found.MemberID, nil
}

func (s *Service) ApplyReferral(ctx context.Context, req referraldomain.ApplyReferralRequest) (referraldomain.ReferralLink, error) {
	if req.Shop.Code == "" {
		return referraldomain.ReferralLink{}, referraldomain.ErrInvalidShop
	}
	if req.RefereeID == 0 {
		return referraldomain.ReferralLink{}, referraldomain.ErrInvalidMember
	}

	referrerID, err := s.ValidateCode(ctx, req.Shop, req.Code)
	if err != nil {
		return referraldomain.ReferralLink{}, err
	}
	if referrerID == req.RefereeID {
		return referraldomain.ReferralLink{}, referraldomain.ErrSelfReferral
	}

	existing, err := s.repo.FindLinkByReferee(ctx, s.db, req.Shop.Code, req.RefereeID)
	if err != nil {
		return referraldomain.ReferralLink{}, err
	}
	if existing != nil {
		return referraldomain.ReferralLink{}, referraldomain.ErrAlreadyReferred
	}

	link := referraldomain.ReferralLink{
		ID:         s.genID.Generate(),
		ShopCode:   req.Shop.Code,
		ReferrerID: referrerID,
		RefereeID:  req.RefereeID,
		Status:     referraldomain.LinkStatusPending,
		CreatedAt:  s.clock.Now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertLink(ctx, tx, &link); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return referraldomain.ErrAlreadyReferred
			}
			return err
		}
		return s.repo.SetReferredBy(ctx, tx, req.RefereeID, referrerID)
	})
	if err != nil {
		return referraldomain.ReferralLink{}, err
	}
	return link, nil
}

func (s *Service) MarkCompleted(ctx context.Context, shop tenantdomain.Shop, refereeID snowflake.ID) error {
	if shop.Code == "" {
		return referraldomain.ErrInvalidShop
	}
	if refereeID == 0 {
		return referraldomain.ErrInvalidMember
	}

	link, err := s.repo.FindLinkByReferee(ctx, s.db, shop.Code, refereeID)
	if err != nil {
		return err
	}
	if link == nil || link.Status != referraldomain.LinkStatusPending {
		return nil
	}

	now := s.clock.Now()
	rows, err := s.repo.CompleteLink(ctx, s.db, link.ID, now)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Another caller completed it first.
		return nil
	}
	link.Status = referraldomain.LinkStatusCompleted
	link.CompletedAt = &now

	if s.hook != nil {
		if err := s.hook.OnReferralCompleted(ctx, shop, *link); err != nil {
			s.log.Warn("referral completion hook failed",
				zap.String("shop", shop.Code),
				zap.String("referrer_id", link.ReferrerID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func randomCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
