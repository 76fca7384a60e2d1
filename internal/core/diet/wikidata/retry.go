package wikidata

import (
	"net/http"
	"strconv"
	"time"

	"recipe-finder/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// retryPolicy 重試策略：次數、指數退避與可重試的狀態碼
type retryPolicy struct {
	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
	statuses    map[int]struct{}
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	p := retryPolicy{
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		maxBackoff:  cfg.MaxBackoff,
		statuses:    make(map[int]struct{}, len(cfg.StatusCodes)),
	}
	if p.maxAttempts < 1 {
		p.maxAttempts = 1
	}
	if p.maxBackoff < p.backoff {
		p.maxBackoff = p.backoff
	}
	for _, code := range cfg.StatusCodes {
		p.statuses[code] = struct{}{}
	}
	return p
}

// apply 將策略套用到 resty 客戶端
func (p retryPolicy) apply(c *resty.Client) {
	c.SetRetryCount(p.maxAttempts - 1).
		SetRetryWaitTime(p.backoff).
		SetRetryMaxWaitTime(p.maxBackoff).
		SetRetryAfter(p.retryAfter).
		AddRetryCondition(p.shouldRetry)
}

// shouldRetry 僅重試 GET；連線錯誤或狀態碼在名單內才重試
func (p retryPolicy) shouldRetry(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	return p.retryable(resp.StatusCode())
}

func (p retryPolicy) retryable(status int) bool {
	_, ok := p.statuses[status]
	return ok
}

// retryAfter 等待時間為 backoff * 2^(n-1)，伺服器提供 Retry-After 時以其為準
func (p retryPolicy) retryAfter(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	attempt := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempt = resp.Request.Attempt
	}

	if resp != nil && resp.RawResponse != nil {
		if d, ok := parseRetryAfter(resp.Header().Get("Retry-After")); ok {
			return p.clamp(d), nil
		}
	}
	return p.delay(attempt), nil
}

// delay 第 attempt 次失敗後的等待時間
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.backoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.maxBackoff {
			return p.maxBackoff
		}
	}
	return p.clamp(d)
}

func (p retryPolicy) clamp(d time.Duration) time.Duration {
	if d < p.backoff {
		return p.backoff
	}
	if d > p.maxBackoff {
		return p.maxBackoff
	}
	return d
}

// parseRetryAfter 支援秒數與 HTTP 日期兩種格式
func parseRetryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
