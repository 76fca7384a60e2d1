package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v, false)
}

// DecodeJSON 使用統一設定解析 JSON
func DecodeJSON(r io.Reader, v interface{}) error {
	return decodeJSON(r, v, false)
}

// DecodeJSONStrict 使用統一設定解析 JSON，禁止未知欄位
func DecodeJSONStrict(r io.Reader, v interface{}) error {
	return decodeJSON(r, v, true)
}

func decodeJSON(r io.Reader, v interface{}, disallowUnknown bool) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if disallowUnknown {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ScalarToString 將 JSON 標量（字串或數字）轉為字串，nil 轉為空字串
func ScalarToString(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		return "", fmt.Errorf("expected a number or string, got boolean")
	default:
		return "", fmt.Errorf("expected a number or string, got %T", v)
	}
}
