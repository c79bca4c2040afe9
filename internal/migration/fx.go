package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	auditdomain "github.com/rkimidis/acucare-pathways-sub001/internal/audit/domain"
	"github.com/rkimidis/acucare-pathways-sub001/internal/config"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}
		// sqlite and mysql deployments migrate from the model definitions
		return conn.AutoMigrate(&auditdomain.OperatorAction{})
	}),
)
