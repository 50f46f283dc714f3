package config

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type TypeBool struct {
	Value bool
}

func (t *TypeBool) Set(value string) error {
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("incorrect bool value (%s): %w", value, err)
	}

	t.Value = boolValue

	return nil
}

func (t TypeBool) Get(defaultValue bool) bool {
	return t.Value || defaultValue
}

func (t *TypeBool) UnmarshalJSON(data []byte) error {
	var value bool

	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("value is not bool (%s): %w", string(data), err)
	}

	t.Value = value

	return nil
}

func (t TypeBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value) //nolint: wrapcheck
}

func (t TypeBool) String() string {
	return strconv.FormatBool(t.Value)
}
