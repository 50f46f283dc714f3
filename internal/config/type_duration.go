package config

import (
	"fmt"
	"strings"
	"time"
)

type TypeDuration struct {
	Value time.Duration
}

func (t *TypeDuration) Set(value string) error {
	durationValue, err := time.ParseDuration(strings.ToLower(value))
	if err != nil {
		return fmt.Errorf("incorrect duration (%s): %w", value, err)
	}

	if durationValue < 0 {
		return fmt.Errorf("duration has to be a positive: %s", value)
	}

	t.Value = durationValue

	return nil
}

func (t TypeDuration) Get(defaultValue time.Duration) time.Duration {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeDuration) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeDuration) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeDuration) String() string {
	return t.Value.String()
}
