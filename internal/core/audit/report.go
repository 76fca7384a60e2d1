package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"recipe-finder/internal/core/recipe"

	"github.com/xuri/excelize/v2"
)

// 報表檔名
const (
	DuplicatesFile   = "exact_duplicates.xlsx"
	CloseMatchesFile = "close_match_results.xlsx"
	ForeignFile      = "foreign_language_output.xlsx"
)

// WriteDuplicates 匯出重複列，保留資料集原本的欄位
func WriteDuplicates(path string, columns []string, dups []Duplicate) error {
	rows := make([][]interface{}, len(dups))
	for i, d := range dups {
		rows[i] = rowValues(columns, d.Row)
	}
	return writeSheet(path, "Duplicates", columns, rows)
}

// WriteCloseMatches 匯出近似名稱
func WriteCloseMatches(path string, matches []CloseMatch) error {
	rows := make([][]interface{}, len(matches))
	for i, m := range matches {
		rows[i] = []interface{}{m.Name, m.CloseMatch, m.Score}
	}
	return writeSheet(path, "Close Matches", []string{"Name", "Close Match", "Match Score"}, rows)
}

// WriteForeign 匯出含外文字元的列，附加兩個偵測欄位
func WriteForeign(path string, columns []string, flagged []ForeignRow) error {
	header := append(append([]string{}, columns...), "foreign_in_name", "foreign_in_ingredients")
	rows := make([][]interface{}, len(flagged))
	for i, f := range flagged {
		rows[i] = append(rowValues(columns, f.Row), f.InName, f.InIngredients)
	}
	return writeSheet(path, "Foreign", header, rows)
}

func rowValues(columns []string, row recipe.Row) []interface{} {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = recipe.Text(row[c])
	}
	return values
}

func writeSheet(path, sheet string, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}
