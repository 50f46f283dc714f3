package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TypeRate is a pace limit in bytes per second: "100MB/s", "1GB" or a plain
// number. 0 means unlimited.
type TypeRate struct {
	Value uint
}

func (t *TypeRate) Set(value string) error {
	normalized := strings.TrimSuffix(strings.TrimSpace(value), "/s")

	bytesValue := TypeBytes{}
	if err := bytesValue.Set(normalized); err != nil {
		return fmt.Errorf("incorrect rate (%s): %w", value, err)
	}

	t.Value = bytesValue.Get(0)

	return nil
}

func (t TypeRate) Get(defaultValue uint) uint {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeRate) UnmarshalJSON(data []byte) error {
	var value string

	if err := json.Unmarshal(data, &value); err != nil {
		return t.Set(string(data))
	}

	return t.Set(value)
}

func (t TypeRate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String()) //nolint: wrapcheck
}

func (t TypeRate) String() string {
	return fmt.Sprintf("%d/s", t.Value)
}
