package diet

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Classifier 單次執行的飲食分類器，擁有自己的快取，同一名稱最多查詢一次
type Classifier struct {
	kb      KnowledgeBase
	cache   *Cache
	pacer   *Pacer
	group   singleflight.Group
	workers int

	lookups  atomic.Int64
	calls    atomic.Int64
	failures atomic.Int64
}

// Stats 執行統計
type Stats struct {
	Lookups       int64      `json:"lookups"`
	ExternalCalls int64      `json:"external_calls"`
	Failures      int64      `json:"failures"`
	Cache         CacheStats `json:"cache"`
}

// NewClassifier 創建分類器，workers <= 1 時依序處理
func NewClassifier(kb KnowledgeBase, pacer *Pacer, workers int) *Classifier {
	if workers < 1 {
		workers = 1
	}
	if pacer == nil {
		pacer = NewPacer(0, 0, 0)
	}
	return &Classifier{
		kb:      kb,
		cache:   NewCache(),
		pacer:   pacer,
		workers: workers,
	}
}

// Classify 分類單一名稱；空白名稱直接回傳 unknown，不查詢也不寫入快取
func (c *Classifier) Classify(ctx context.Context, name string) Label {
	key := NormalizeKey(name)
	if key == "" {
		return LabelUnknown
	}

	if label, ok := c.cache.Get(key); ok {
		return label
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		// 等待期間可能已有其他呼叫完成
		if label, ok := c.cache.peek(key); ok {
			return label, nil
		}
		label := c.lookup(ctx, name)
		c.cache.Set(key, label)
		return label, nil
	})
	return v.(Label)
}

// ClassifyAll 依輸入順序回傳每個名稱的分類，只有在 ctx 取消時才回傳錯誤
func (c *Classifier) ClassifyAll(ctx context.Context, names []string) ([]Label, error) {
	labels := make([]Label, len(names))

	if c.workers == 1 {
		for i, name := range names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			labels[i] = c.Classify(ctx, name)
		}
		return labels, nil
	}

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, name := range names {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			labels[i] = c.Classify(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// ClassifyBatch 回傳名稱到分類的對應表
func (c *Classifier) ClassifyBatch(ctx context.Context, names []string) (map[string]Label, error) {
	labels, err := c.ClassifyAll(ctx, names)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Label, len(names))
	for i, name := range names {
		out[name] = labels[i]
	}
	return out, nil
}

// Stats 獲取執行統計
func (c *Classifier) Stats() Stats {
	return Stats{
		Lookups:       c.lookups.Load(),
		ExternalCalls: c.calls.Load(),
		Failures:      c.failures.Load(),
		Cache:         c.cache.Stats(),
	}
}

// lookup 先解析實體再詢問分類，任何查詢失敗都降級為 unknown
func (c *Classifier) lookup(ctx context.Context, name string) Label {
	c.lookups.Add(1)
	start := time.Now()
	name = strings.TrimSpace(name)

	var id string
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		id, err = c.kb.ResolveEntity(ctx, name)
		return err
	})
	if err != nil {
		return c.degrade(name, err)
	}
	if id == "" {
		common.LogDebug("查無對應實體", zap.String("name", name))
		return LabelUnknown
	}

	var nonVeg bool
	err = c.call(ctx, func(ctx context.Context) error {
		var err error
		nonVeg, err = c.kb.IsNonVegetarian(ctx, id)
		return err
	})
	if err != nil {
		return c.degrade(name, err)
	}

	label := LabelVegetarian
	if nonVeg {
		label = LabelNonVegetarian
	}
	common.LogDebug("分類完成",
		zap.String("name", name),
		zap.String("entity", id),
		zap.String("label", string(label)),
		zap.Duration("耗時", time.Since(start)),
	)
	return label
}

// call 執行一次外部呼叫，前後套用節奏控制
func (c *Classifier) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}
	c.calls.Add(1)
	defer c.pacer.Pause(ctx)
	return fn(ctx)
}

func (c *Classifier) degrade(name string, err error) Label {
	c.failures.Add(1)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		common.LogDebug("分類已取消", zap.String("name", name))
	} else {
		common.LogWarn("分類失敗，降級為 unknown", zap.String("name", name), zap.Error(err))
	}
	return LabelUnknown
}
