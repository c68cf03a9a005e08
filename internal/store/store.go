// Package store 按 store.driver 装配计划存储端，供 HTTP 服务与命令行共用。
package store

import (
	"fmt"

	"go.uber.org/zap"

	"crop-calendar/config"
	"crop-calendar/internal/repository"
	"crop-calendar/internal/repository/remote"
	"crop-calendar/pkg/database"
)

// Store 装配好的仓储与对应的释放函数
type Store struct {
	Repo  *repository.Repository
	close func() error
}

// Open 打开配置指定的存储端。
// postgres / sqlite 走 gorm 仓储，remote 走记录服务客户端。
func Open(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.NewDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		logger.Info("数据库存储已就绪", zap.String("driver", cfg.Store.Driver))
		return &Store{Repo: repository.NewRepository(db), close: sqlDB.Close}, nil

	case config.DriverRemote:
		client := remote.NewClient(&cfg.Remote, logger)
		logger.Info("远端记录服务已就绪", zap.String("base_url", cfg.Remote.BaseURL))
		return &Store{Repo: remote.NewRepository(client), close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("未知的 store.driver %q", cfg.Store.Driver)
	}
}

// Close 释放底层连接
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}
