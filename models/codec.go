package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IntList is a typed number collection persisted as a JSON column. It keeps
// the encode/decode boundary at the persistence edge so business logic never
// touches raw JSON text.
//
// Wire format v1 is a bare array. Scan additionally accepts a versioned
// envelope {"v":N,"values":[...]} so the stored format can evolve without a
// table migration.
type IntList []int

type intListEnvelope struct {
	Version int   `json:"v"`
	Values  []int `json:"values"`
}

// Value implements driver.Valuer.
func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		l = IntList{}
	}
	b, err := json.Marshal([]int(l))
	if err != nil {
		return nil, fmt.Errorf("encode int list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IntList) Scan(src interface{}) error {
	if src == nil {
		*l = IntList{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported int list source %T", src)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var env intListEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("decode int list envelope: %w", err)
		}
		*l = IntList(env.Values)
		return nil
	}

	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode int list: %w", err)
	}
	*l = IntList(values)
	return nil
}

// GormDataType tells gorm which column type to create.
func (IntList) GormDataType() string {
	return "jsonb"
}

// Contains reports whether n is present in the list.
func (l IntList) Contains(n int) bool {
	for _, v := range l {
		if v == n {
			return true
		}
	}
	return false
}

// Copy returns an independent copy of the list.
func (l IntList) Copy() IntList {
	return append(IntList(nil), l...)
}
