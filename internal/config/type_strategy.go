package config

import (
	"fmt"

	"github.com/akab00m/zcbench/sendlib"
)

type TypeStrategy struct {
	Value sendlib.Strategy
	set   bool
}

func (t *TypeStrategy) Set(value string) error {
	strategy, err := sendlib.ParseStrategy(value)
	if err != nil {
		return fmt.Errorf("incorrect strategy: %w", err)
	}

	t.Value = strategy
	t.set = true

	return nil
}

func (t TypeStrategy) Get(defaultValue sendlib.Strategy) sendlib.Strategy {
	if !t.set {
		return defaultValue
	}

	return t.Value
}

func (t *TypeStrategy) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeStrategy) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeStrategy) String() string {
	if !t.set {
		return ""
	}

	return t.Value.String()
}
