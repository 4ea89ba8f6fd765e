package internal

import (
	"context"
	"fmt"

	"github.com/dushixiang/tally/internal/config"
	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/internal/service"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Run(configPath string) error {
	app := NewTallyApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewTallyApp() orz.Application {
	return &TallyApp{}
}

var _ orz.Application = (*TallyApp)(nil)

type AppComponents struct {
	// Trading state store
	OrderService    *service.OrderService
	PositionService *service.PositionService
	MarketService   *service.MarketService

	// Agent state store
	AgentService  *service.AgentService
	MemoryService *service.MemoryService

	SnapshotLoop *service.SnapshotLoop
}

type TallyApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *TallyApp) GetComponents() *AppComponents {
	return r.components
}

func (r *TallyApp) Configure(app *orz.App) error {
	logger := app.Logger()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		// Trading state models
		models.MexcOrder{}, models.Position{}, models.RecPoint{},
		// Agent state models
		models.Run{}, models.RunEvent{}, models.Memory{}, models.RecSnapshot{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := migrateJSONIndexes(db); err != nil {
		logger.Fatal("json index migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	return nil
}

// migrateJSONIndexes JSON结构索引无法通过标签声明，postgres 下补建 GIN 索引
func migrateJSONIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_run_events_content ON run_events USING GIN (content)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_tags ON memories USING GIN (tags)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *TallyApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Tally State Store Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	go func() {
		if err := components.SnapshotLoop.Start(context.Background()); err != nil {
			logger.Error("snapshot loop error", zap.Error(err))
		}
	}()
	return nil
}
