package migration

import (
	activitydomain "github.com/brewpass/brewpass/internal/activity/domain"
	campaigndomain "github.com/brewpass/brewpass/internal/campaign/domain"
	catalogdomain "github.com/brewpass/brewpass/internal/catalog/domain"
	"github.com/brewpass/brewpass/internal/config"
	loyaltydomain "github.com/brewpass/brewpass/internal/loyalty/domain"
	memberdomain "github.com/brewpass/brewpass/internal/member/domain"
	orderdomain "github.com/brewpass/brewpass/internal/order/domain"
	referraldomain "github.com/brewpass/brewpass/internal/referral/domain"
	"github.com/brewpass/brewpass/internal/seed"
	tenantdomain "github.com/brewpass/brewpass/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Dev databases on sqlite or mysql skip the SQL migrations.
			if err := conn.AutoMigrate(
				&tenantdomain.Shop{},
				&memberdomain.Member{},
				&loyaltydomain.StampCounter{},
				&activitydomain.LogEntry{},
				&referraldomain.ReferralCode{},
				&referraldomain.ReferralLink{},
				&catalogdomain.Category{},
				&catalogdomain.Product{},
				&catalogdomain.Variant{},
				&catalogdomain.Addon{},
				&orderdomain.Order{},
				&orderdomain.OrderItem{},
				&campaigndomain.Campaign{},
				&campaigndomain.PromoRedemption{},
			); err != nil {
				return err
			}
		}

		if cfg.BootstrapDefaultShop {
			return seed.EnsureDefaultShop(conn, cfg)
		}
		return nil
	}),
)
