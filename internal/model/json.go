package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList represents a JSON array column
type StringList []string

// Value implements driver.Valuer interface
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return jsonValue(s)
}

// Scan implements sql.Scanner interface
func (s *StringList) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// WeightMap represents a JSON object column of category weights in [0,1]
type WeightMap map[string]float64

// Value implements driver.Valuer interface
func (w WeightMap) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	return jsonValue(w)
}

// Scan implements sql.Scanner interface
func (w *WeightMap) Scan(value interface{}) error {
	return scanJSON(value, w)
}

// jsonValue encodes v as a JSON string. Strings are used instead of []byte so
// lib/pq does not send the payload as bytea.
func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
