package diet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// 匯出檔欄位
const (
	VerifiedColumn  = "diet_web_verified"
	DefaultFilename = "food_diet_web_verified.csv"
)

// SnapshotRow 匯出檔的一列
type SnapshotRow struct {
	Name  string
	ID    string
	Label Label
}

// ExportError 匯出檔寫入失敗
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export snapshot %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// WriteSnapshot 寫入 name,_id,diet_web_verified 三欄 CSV；先寫暫存檔再改名，完成後確認檔案存在
func WriteSnapshot(path string, rows []SnapshotRow) error {
	fail := func(err error) error {
		return &ExportError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.csv")
	if err != nil {
		return fail(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := writeRows(tmp, rows); err != nil {
		tmp.Close()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fail(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(err)
	}
	if !info.Mode().IsRegular() {
		return fail(fmt.Errorf("%s is not a regular file", path))
	}
	return nil
}

func writeRows(out io.Writer, rows []SnapshotRow) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"name", "_id", VerifiedColumn}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Name, r.ID, string(r.Label)}); err != nil {
			return fmt.Errorf("failed to write row %q: %w", r.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}
