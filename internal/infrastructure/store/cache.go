package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedSource 以 Redis 快取整個資料集，Redis 失敗時回退到原始來源
type CachedSource struct {
	inner  recipe.Source
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewCachedSource 創建帶快取的資料來源
func NewCachedSource(inner recipe.Source, client *redis.Client, key string, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner:  inner,
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Load 先查快取，未命中時讀取原始來源並寫回
func (s *CachedSource) Load(ctx context.Context) (recipe.Dataset, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	switch {
	case err == nil:
		ds, err := decodeDataset(data)
		if err == nil {
			common.LogCacheHit("dataset", s.key)
			return ds, nil
		}
		common.LogWarn("資料集快取內容無法解析", zap.String("key", s.key), zap.Error(err))
	case errors.Is(err, redis.Nil):
		common.LogCacheMiss("dataset", s.key)
	default:
		common.LogWarn("Redis 讀取失敗，改用原始來源", zap.Error(err))
	}

	ds, err := s.inner.Load(ctx)
	if err != nil {
		return recipe.Dataset{}, err
	}

	if err := s.store(ctx, ds); err != nil {
		common.LogWarn("資料集寫入快取失敗", zap.Error(err))
	}
	return ds, nil
}

// Ping 檢查原始來源；Redis 無法連線時仍可回退，只記錄警告
func (s *CachedSource) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		common.LogWarn("Redis 無法連線", zap.Error(err))
	}
	if p, ok := s.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Invalidate 清除快取
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *CachedSource) store(ctx context.Context, ds recipe.Dataset) error {
	data, err := json.Marshal(portable(ds))
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

// decodeDataset 數字保留為 json.Number，避免大整數 _id 失去精度
func decodeDataset(data []byte) (recipe.Dataset, error) {
	var ds recipe.Dataset
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&ds); err != nil {
		return recipe.Dataset{}, err
	}
	return ds, nil
}

// portable 將 []byte 欄位轉為字串，避免 JSON 編碼成 base64
func portable(ds recipe.Dataset) recipe.Dataset {
	out := recipe.Dataset{Columns: ds.Columns, Rows: make([]recipe.Row, len(ds.Rows))}
	for i, row := range ds.Rows {
		cp := make(recipe.Row, len(row))
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				cp[k] = string(b)
				continue
			}
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}
