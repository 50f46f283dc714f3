package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/units"
)

// TypeBytes is a size in bytes. It can be set either with an integer or
// with a string like "800KB" or "1MiB". Both KB and KiB mean 1024 bytes.
type TypeBytes struct {
	Value units.Base2Bytes
}

func (t *TypeBytes) Set(value string) error {
	value = strings.TrimSpace(value)

	if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
		return t.setValue(units.Base2Bytes(intValue), value)
	}

	normalized := strings.ReplaceAll(strings.ToUpper(value), "IB", "iB")

	bytesValue, err := units.ParseBase2Bytes(normalized)
	if err != nil {
		return fmt.Errorf("incorrect bytes value (%v): %w", value, err)
	}

	return t.setValue(bytesValue, value)
}

func (t *TypeBytes) setValue(value units.Base2Bytes, raw string) error {
	if value < 0 {
		return fmt.Errorf("%s should be a positive number", raw)
	}

	t.Value = value

	return nil
}

func (t TypeBytes) Get(defaultValue uint) uint {
	if t.Value == 0 {
		return defaultValue
	}

	return uint(t.Value)
}

func (t *TypeBytes) UnmarshalJSON(data []byte) error {
	var value string

	if err := json.Unmarshal(data, &value); err != nil {
		return t.Set(string(data))
	}

	return t.Set(value)
}

func (t TypeBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String()) //nolint: wrapcheck
}

func (t TypeBytes) String() string {
	return t.Value.String()
}
