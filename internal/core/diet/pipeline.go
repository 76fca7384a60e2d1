package diet

import (
	"context"
	"fmt"
	"io"
	"time"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// RunReport 單次分類匯出的結果
type RunReport struct {
	Path     string        `json:"path"`
	Rows     int           `json:"rows"`
	Labels   map[Label]int `json:"labels"`
	Stats    Stats         `json:"stats"`
	Duration time.Duration `json:"duration"`
}

// Pipeline 載入資料、逐列分類並匯出；每次執行都使用新的知識庫客戶端與快取
type Pipeline struct {
	source recipe.Source
	newKB  func() KnowledgeBase
	cfg    config.ClassificationConfig
}

// NewPipeline 創建分類流程
func NewPipeline(source recipe.Source, newKB func() KnowledgeBase, cfg config.ClassificationConfig) *Pipeline {
	return &Pipeline{
		source: source,
		newKB:  newKB,
		cfg:    cfg,
	}
}

// Run 執行一次完整分類並寫出匯出檔
func (p *Pipeline) Run(ctx context.Context, path string) (*RunReport, error) {
	start := time.Now()

	ds, err := p.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	if missing := ds.MissingColumns(recipe.ColumnName, recipe.ColumnID); len(missing) > 0 {
		return nil, &recipe.SchemaError{Missing: missing}
	}

	names := make([]string, len(ds.Rows))
	for i, row := range ds.Rows {
		names[i] = recipe.Text(row[recipe.ColumnName])
	}

	classifier, closeKB := p.newClassifier()
	defer closeKB()

	common.LogInfo("開始飲食分類", zap.Int("rows", len(names)), zap.Int("workers", p.cfg.Workers))

	labels, err := classifier.ClassifyAll(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("classification aborted: %w", err)
	}

	rows := make([]SnapshotRow, len(ds.Rows))
	counts := make(map[Label]int)
	for i, row := range ds.Rows {
		rows[i] = SnapshotRow{
			Name:  names[i],
			ID:    recipe.Text(row[recipe.ColumnID]),
			Label: labels[i],
		}
		counts[labels[i]]++
	}

	if err := WriteSnapshot(path, rows); err != nil {
		common.LogError("匯出失敗", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	report := &RunReport{
		Path:     path,
		Rows:     len(rows),
		Labels:   counts,
		Stats:    classifier.Stats(),
		Duration: time.Since(start),
	}
	common.LogInfo(common.MsgClassificationDone,
		zap.String("path", path),
		zap.Int("rows", report.Rows),
		zap.Int64("external_calls", report.Stats.ExternalCalls),
		zap.Int64("failures", report.Stats.Failures),
		zap.Duration("耗時", report.Duration),
	)
	return report, nil
}

// ClassifyOne 以獨立的執行環境分類單一名稱
func (p *Pipeline) ClassifyOne(ctx context.Context, name string) Label {
	classifier, closeKB := p.newClassifier()
	defer closeKB()
	return classifier.Classify(ctx, name)
}

func (p *Pipeline) newClassifier() (*Classifier, func()) {
	kb := p.newKB()
	pacer := NewPacer(p.cfg.PolitenessMin, p.cfg.PolitenessMax, p.cfg.MinSpacing)
	closeKB := func() {
		if c, ok := kb.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return NewClassifier(kb, pacer, p.cfg.Workers), closeKB
}
