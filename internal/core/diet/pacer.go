package diet

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Pacer 控制外部呼叫節奏：呼叫前遵守最小間隔，呼叫後隨機停頓
type Pacer struct {
	min     time.Duration
	max     time.Duration
	limiter *rate.Limiter

	sleep  func(ctx context.Context, d time.Duration)
	jitter func(n int64) int64
}

// NewPacer 創建節奏控制器，spacing 為 0 時不限制呼叫間隔
func NewPacer(minDelay, maxDelay, spacing time.Duration) *Pacer {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	p := &Pacer{
		min:    minDelay,
		max:    maxDelay,
		sleep:  sleepContext,
		jitter: rand.Int64N,
	}
	if spacing > 0 {
		p.limiter = rate.NewLimiter(rate.Every(spacing), 1)
	}
	return p
}

// Wait 等待下一個可用的呼叫時段
func (p *Pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Pause 呼叫結束後的禮貌停頓，不論成功與否都會執行
func (p *Pacer) Pause(ctx context.Context) {
	if d := p.Delay(); d > 0 {
		p.sleep(ctx, d)
	}
}

// Delay 在 [min, max] 之間取一個隨機停頓時間
func (p *Pacer) Delay() time.Duration {
	span := int64(p.max - p.min)
	if span <= 0 {
		return p.min
	}
	return p.min + time.Duration(p.jitter(span+1))
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
