package migration

import (
	"github.com/smallbiznis/rosterly/internal/config"
	"github.com/smallbiznis/rosterly/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := RunDirect(conn); err != nil {
				return err
			}
		}

		if cfg.DefaultAffiliateID != 0 {
			return seed.EnsureDefaultAffiliateWithID(conn, cfg.DefaultAffiliateID)
		}
		return seed.EnsureDefaultAffiliate(conn)
	}),
)
