package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/brewpass/brewpass/internal/config"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	"github.com/brewpass/brewpass/internal/pin"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultShopName = "Main"

	// First-run admin password. Operators change it after first login.
	defaultAdminPassword = "admin"
)

// EnsureDefaultShop seeds the bootstrap tenant. The default shop runs
// the legacy_nullable isolation policy so pre-migration accounts with
// no shop affiliation keep working against it.
func EnsureDefaultShop(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureShopTx(ctx, tx, node, cfg); err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node, cfg)
	})
}

func ensureShopTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.Config) (*tenantdomain.Shop, error) {
	code := strings.TrimSpace(cfg.DefaultShopCode)
	if code == "" {
		code = "main"
	}

	var shop tenantdomain.Shop
	err := tx.WithContext(ctx).Where("code = ?", code).First(&shop).Error
	if err == nil {
		return &shop, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	adminHash, err := pin.Hash(cfg.DefaultAdminPIN)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shop = tenantdomain.Shop{
		ID:              node.Generate(),
		Code:            code,
		Name:            defaultShopName,
		Theme:           datatypes.JSONMap{},
		Features:        datatypes.JSONMap{},
		RewardThreshold: 7,
		IsolationPolicy: tenantdomain.IsolationLegacyNullable,
		SilverFloor:     500,
		GoldFloor:       1500,
		ReferralBonus:   100,
		AdminPINHash:    adminHash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.WithContext(ctx).Create(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.DefaultAdminEmail))
	if email == "" {
		return nil
	}

	var member memberdomain.Member
	err := tx.WithContext(ctx).Where("email = ?", email).First(&member).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	member = memberdomain.Member{
		ID:           node.Generate(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         memberdomain.RoleAdmin,
		DisplayName:  "Admin",
		Level:        "bronze",
		Preferences:  datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&member).Error
}
