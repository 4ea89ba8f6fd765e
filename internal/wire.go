//go:build wireinject
// +build wireinject

package internal

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dushixiang/tally/internal/config"
	"github.com/dushixiang/tally/internal/service"
)

var storeSet = wire.NewSet(
	provideValidator,
	service.NewOrderService,
	service.NewPositionService,
	service.NewMarketService,
	service.NewAgentService,
	service.NewMemoryService,
	service.NewSnapshotLoop,
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		storeSet,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}
