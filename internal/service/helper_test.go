package service

import (
	"testing"

	"github.com/dushixiang/tally/internal/config"
	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/pkg/nostd"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存库按连接隔离，连接池收敛到单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		models.MexcOrder{}, models.Position{}, models.RecPoint{},
		models.Run{}, models.RunEvent{}, models.Memory{}, models.RecSnapshot{},
	)
	require.NoError(t, err)
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Trading: config.TradingConf{
			TestOnly:  true,
			TpPercent: 0.02,
			SlPercent: 0,
			MakerBps:  8,
			TakerBps:  10,
		},
		Recs: config.RecsConf{
			Symbols:         []string{"BTCUSDT", "ETHUSDT"},
			Interval:        "60m",
			SnapshotEnabled: true,
			PeriodSeconds:   60,
		},
	}
}

func newTestValidator(t *testing.T) *nostd.CustomValidator {
	t.Helper()
	customValidator := &nostd.CustomValidator{Validator: validator.New()}
	require.NoError(t, customValidator.TransInit())
	return customValidator
}

func newTestLogger() *zap.Logger {
	return zap.NewNop()
}
