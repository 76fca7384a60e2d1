package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"recipe-finder/internal/core/recipe"
)

// CSVSource 從帶標題列的 CSV 檔讀取食譜
type CSVSource struct {
	path string
}

// NewCSVSource 創建 CSV 資料來源
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load 每次呼叫都重新讀取檔案
func (s *CSVSource) Load(ctx context.Context) (recipe.Dataset, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return recipe.Dataset{}, fmt.Errorf("failed to open recipe file: %w", err)
	}
	defer f.Close()

	return ReadCSV(ctx, f)
}

// Ping 確認檔案可讀取
func (s *CSVSource) Ping(ctx context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("recipe file unavailable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("recipe file %s is a directory", s.path)
	}
	return nil
}

// ReadCSV 解析 CSV，空白欄位視為缺值
func ReadCSV(ctx context.Context, r io.Reader) (recipe.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return recipe.Dataset{}, nil
		}
		return recipe.Dataset{}, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	ds := recipe.Dataset{Columns: columns}
	for {
		if err := ctx.Err(); err != nil {
			return recipe.Dataset{}, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return recipe.Dataset{}, fmt.Errorf("failed to read csv row %d: %w", len(ds.Rows)+2, err)
		}

		row := make(recipe.Row, len(columns))
		for i, col := range columns {
			if i >= len(record) || record[i] == "" {
				row[col] = nil
				continue
			}
			row[col] = record[i]
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
