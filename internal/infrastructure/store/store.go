package store

import (
	"fmt"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// New 依設定建立資料來源，啟用 Redis 時包上一層快取
func New(cfg *config.Config) (recipe.Source, func() error, error) {
	var (
		src     recipe.Source
		closers []func() error
	)

	switch cfg.Store.Driver {
	case "csv":
		src = NewCSVSource(cfg.Store.CSVPath)
	case "sqlite", "postgres":
		sqlSrc, err := OpenSQL(cfg.Store.Driver, cfg.Store.DSN(), cfg.Store.Table)
		if err != nil {
			return nil, nil, err
		}
		src = sqlSrc
		closers = append(closers, sqlSrc.Close)
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		src = NewCachedSource(src, client, cfg.Redis.Prefix+":"+cfg.Store.Driver, cfg.Redis.TTL)
		closers = append(closers, client.Close)
	}

	common.LogInfo("資料來源已初始化",
		zap.String("driver", cfg.Store.Driver),
		zap.Bool("production", cfg.Store.Production),
		zap.Bool("redis_cache", cfg.Redis.Enabled),
	)

	closeAll := func() error {
		var firstErr error
		for _, c := range closers {
			if err := c(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return src, closeAll, nil
}
