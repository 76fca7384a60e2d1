package wikidata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// NonVegetarianClasses 非素食分類：肉、魚、海鮮、貝類、蛋、禽肉、動物產品
var NonVegetarianClasses = []string{
	"Q10990",
	"Q600396",
	"Q192935",
	"Q6501235",
	"Q93189",
	"Q18087876",
	"Q629103",
}

const askTemplate = `ASK {
  wd:%s (wdt:P527|wdt:P186) ?ingredient .
  ?ingredient (wdt:P279*|wdt:P31/wdt:P279*) ?cls .
  VALUES ?cls { %s }
}`

var entityIDPattern = regexp.MustCompile(`^Q[0-9]+$`)

// Client Wikidata 查詢客戶端，實體搜尋與 SPARQL 查詢共用同一個連線池
type Client struct {
	apiURL    string
	sparqlURL string
	transport *http.Transport
	search    *resty.Client
	sparql    *resty.Client
	breaker   *gobreaker.CircuitBreaker[*resty.Response]
}

type searchResponse struct {
	Search []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	} `json:"search"`
}

type askResponse struct {
	Boolean *bool `json:"boolean"`
}

// NewClient 創建新的 Wikidata 客戶端
func NewClient(cfg config.WikidataConfig) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4

	policy := newRetryPolicy(cfg.Retry)

	newResty := func(timeout time.Duration, accept string) *resty.Client {
		c := resty.New().
			SetTransport(transport).
			SetTimeout(timeout).
			SetLogger(common.Logger.Sugar()).
			SetHeader("User-Agent", cfg.UserAgent).
			SetHeader("Accept", accept)
		policy.apply(c)
		return c
	}

	c := &Client{
		apiURL:    cfg.APIURL,
		sparqlURL: cfg.SPARQLURL,
		transport: transport,
		search:    newResty(cfg.SearchTimeout, "application/json"),
		sparql:    newResty(cfg.QueryTimeout, "application/sparql-results+json"),
	}

	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker)
	}

	common.LogInfo("Wikidata 客戶端已初始化",
		zap.String("api_url", cfg.APIURL),
		zap.String("sparql_url", cfg.SPARQLURL),
		zap.Int("max_attempts", policy.maxAttempts),
		zap.Bool("breaker", cfg.Breaker.Enabled),
	)

	return c
}

func newBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker[*resty.Response] {
	failures := cfg.Failures
	if failures == 0 {
		failures = 1
	}
	return gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "wikidata",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 4xx（429 除外）代表請求本身有問題，不計入斷路器
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var le *LookupError
			if errors.As(err, &le) && le.StatusCode >= 400 && le.StatusCode < 500 && le.StatusCode != http.StatusTooManyRequests {
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			common.LogWarn("斷路器狀態變更",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// ResolveEntity 以名稱搜尋實體，回傳第一筆結果的 ID，無結果時回傳空字串
func (c *Client) ResolveEntity(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	start := time.Now()
	req := c.search.R().SetQueryParams(map[string]string{
		"action":   "wbsearchentities",
		"search":   name,
		"language": "en",
		"format":   "json",
		"limit":    "1",
	})

	body, err := c.get(ctx, OpSearch, req, c.apiURL)
	if err != nil {
		common.LogLookup(OpSearch, name, time.Since(start), err)
		return "", err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		err = &LookupError{Op: OpSearch, Err: fmt.Errorf("failed to parse search response: %w", err)}
		common.LogLookup(OpSearch, name, time.Since(start), err)
		return "", err
	}

	common.LogLookup(OpSearch, name, time.Since(start), nil)
	if len(result.Search) == 0 {
		return "", nil
	}
	return result.Search[0].ID, nil
}

// IsNonVegetarian 詢問實體（或其成分）是否屬於任一非素食分類
func (c *Client) IsNonVegetarian(ctx context.Context, id string) (bool, error) {
	if !entityIDPattern.MatchString(id) {
		return false, &LookupError{Op: OpAsk, Err: fmt.Errorf("%w: %q", ErrInvalidEntityID, id)}
	}

	start := time.Now()
	req := c.sparql.R().SetQueryParam("query", AskQuery(id))

	body, err := c.get(ctx, OpAsk, req, c.sparqlURL)
	if err != nil {
		common.LogLookup(OpAsk, id, time.Since(start), err)
		return false, err
	}

	var result askResponse
	if err := json.Unmarshal(body, &result); err != nil {
		err = &LookupError{Op: OpAsk, Err: fmt.Errorf("failed to parse ask response: %w", err)}
		common.LogLookup(OpAsk, id, time.Since(start), err)
		return false, err
	}
	if result.Boolean == nil {
		err = &LookupError{Op: OpAsk, Err: errors.New("ask response has no boolean")}
		common.LogLookup(OpAsk, id, time.Since(start), err)
		return false, err
	}

	common.LogLookup(OpAsk, id, time.Since(start), nil)
	return *result.Boolean, nil
}

// AskQuery 產生 SPARQL ASK 查詢
func AskQuery(id string) string {
	values := make([]string, len(NonVegetarianClasses))
	for i, q := range NonVegetarianClasses {
		values[i] = "wd:" + q
	}
	return fmt.Sprintf(askTemplate, id, strings.Join(values, " "))
}

// get 發送 GET 請求，重試由 resty 處理，斷路器包在最外層
func (c *Client) get(ctx context.Context, op string, req *resty.Request, url string) ([]byte, error) {
	call := func() (*resty.Response, error) {
		resp, err := req.SetContext(ctx).Get(url)
		if err != nil {
			return resp, &LookupError{Op: op, Err: err}
		}
		if !resp.IsSuccess() {
			return resp, &LookupError{
				Op:         op,
				StatusCode: resp.StatusCode(),
				Err:        fmt.Errorf("unexpected status %s", resp.Status()),
			}
		}
		return resp, nil
	}

	var (
		resp *resty.Response
		err  error
	)
	if c.breaker != nil {
		resp, err = c.breaker.Execute(call)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &LookupError{Op: op, Err: err}
		}
	} else {
		resp, err = call()
	}
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// BreakerState 斷路器狀態，未啟用時回傳 disabled
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Close 關閉閒置連線
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
