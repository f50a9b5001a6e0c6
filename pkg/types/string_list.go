package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a string slice persisted as a JSON array column. Unlike a
// native array type it behaves the same on Postgres and SQLite, which keeps
// repository tests portable.
type StringList []string

// Value marshals the slice into JSON.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes a JSON array column into the slice.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("string list: unsupported scan type %T", value)
	}

	var decoded []string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*l = decoded
	return nil
}

// ContainsFold reports whether any element contains the needle,
// case-insensitively.
func (l StringList) ContainsFold(needle string) bool {
	needle = strings.ToLower(needle)
	for _, s := range l {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
