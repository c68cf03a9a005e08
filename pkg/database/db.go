package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crop-calendar/config"
	"crop-calendar/internal/model"
	"crop-calendar/pkg/logger"
)

// NewDB 按 store.driver 打开数据库连接。
// postgres 连接后执行嵌入式迁移；sqlite 使用 AutoMigrate 建表。
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(logger.GormLevel(cfg.Log.Level)),
	}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return openPostgres(&cfg.Database, gormCfg, log)
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLite.Path, gormCfg, log)
	default:
		return nil, fmt.Errorf("store.driver %q 不使用数据库", cfg.Store.Driver)
	}
}

func openPostgres(cfg *config.DatabaseConfig, gormCfg *gorm.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// 连接池配置（从配置文件读取，已有默认值 25/10）
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	if err := RunMigrations(sqlDB, log); err != nil {
		return nil, err
	}

	log.Info("数据库连接成功",
		zap.String("driver", config.DriverPostgres),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.Name),
	)

	return db, nil
}

// OpenSQLite 打开嵌入式 SQLite（纯 Go 驱动，无需 CGO）并同步表结构。
// path 为 ":memory:" 时仅保留单连接，否则每个连接各自一份内存库。
func OpenSQLite(path string, gormCfg *gorm.Config, log *zap.Logger) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}

	db, err := gorm.Open(sqlite.Open(path), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Field{}, &model.CropSchedule{}, &model.Equipment{}, &model.Inspection{}, &model.FieldActivity{}); err != nil {
		return nil, fmt.Errorf("同步表结构失败: %w", err)
	}

	log.Info("数据库连接成功",
		zap.String("driver", config.DriverSQLite),
		zap.String("path", path),
	)

	return db, nil
}
