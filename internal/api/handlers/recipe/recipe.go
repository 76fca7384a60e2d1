package recipe

import (
	"net/http"
	"time"

	"recipe-finder/internal/api/handlers"
	recipeService "recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchRequest 食譜搜尋請求；選填欄位可為字串或數字
type SearchRequest struct {
	Ingredients []string    `json:"ingredients"`
	Name        interface{} `json:"name,omitempty"`
	Diet        interface{} `json:"diet,omitempty"`
	PrepTimeMax interface{} `json:"prep_time_max,omitempty"`
	CookTimeMax interface{} `json:"cook_time_max,omitempty"`
	Course      interface{} `json:"course,omitempty"`
	State       interface{} `json:"state,omitempty"`
}

// SearchResponse 食譜搜尋結果
type SearchResponse struct {
	FilteredRecipes []recipeService.MatchResult `json:"filtered_recipes"`
	Count           int                         `json:"count"`
}

// SuggestionRequest 食材建議請求
type SuggestionRequest struct {
	Ingredients []string `json:"ingredients"`
	Limit       int      `json:"limit,omitempty"`
}

// SuggestionResponse 食材建議結果
type SuggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Handler 食譜處理程序
type Handler struct {
	source recipeService.Source
}

// NewHandler 創建新的食譜處理程序
func NewHandler(source recipeService.Source) *Handler {
	return &Handler{source: source}
}

// HandleSearch 依食材篩選並排序食譜
func (h *Handler) HandleSearch(c *gin.Context) {
	start := time.Now()

	var req SearchRequest
	if err := common.DecodeJSON(c.Request.Body, &req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.WithDetails(err, err.Error()))
		return
	}

	query, err := req.toQuery()
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	ds, err := h.source.Load(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, common.ErrSourceUnavailable.WithDetails(err, nil))
		return
	}

	results, err := recipeService.Evaluate(ds, query)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("食譜搜尋完成",
		zap.String("request_id", requestid.Get(c)),
		zap.Strings("ingredients", query.Ingredients),
		zap.Int("count", len(results)),
		zap.Duration("耗時", time.Since(start)),
	)

	c.JSON(http.StatusOK, SearchResponse{
		FilteredRecipes: results,
		Count:           len(results),
	})
}

// HandleSuggestions 列出尚未擁有的食材
func (h *Handler) HandleSuggestions(c *gin.Context) {
	var req SuggestionRequest
	if err := common.DecodeJSON(c.Request.Body, &req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.WithDetails(err, err.Error()))
		return
	}
	if req.Limit < 0 {
		handlers.RespondError(c, common.NewValidationError("limit must not be negative"))
		return
	}

	ds, err := h.source.Load(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, common.ErrSourceUnavailable.WithDetails(err, nil))
		return
	}

	suggestions, err := recipeService.Suggest(ds, req.Ingredients, req.Limit)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuggestionResponse{Suggestions: suggestions})
}

// toQuery 將 JSON 標量轉為查詢條件
func (r *SearchRequest) toQuery() (recipeService.Query, error) {
	q := recipeService.Query{Ingredients: r.Ingredients}

	fields := []struct {
		name string
		raw  interface{}
		dst  *string
	}{
		{"name", r.Name, &q.Name},
		{"diet", r.Diet, &q.Diet},
		{"prep_time_max", r.PrepTimeMax, &q.PrepTimeMax},
		{"cook_time_max", r.CookTimeMax, &q.CookTimeMax},
		{"course", r.Course, &q.Course},
		{"state", r.State, &q.State},
	}
	for _, f := range fields {
		v, err := common.ScalarToString(f.raw)
		if err != nil {
			return recipeService.Query{}, &recipeService.QueryError{Field: f.name, Reason: err.Error()}
		}
		*f.dst = v
	}
	return q, nil
}
