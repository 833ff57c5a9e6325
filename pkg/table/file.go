package table

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads an execution table from a YAML file. Missing master fields
// keep their default values.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read execution table file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML execution table and applies the same range rules as a radio upload
func Parse(data []byte) (*Table, error) {
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse execution table: %w", err)
	}
	parsed, err := Decode(FromTable(t).Upload(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to validate execution table: %w", err)
	}
	return parsed, nil
}

// Marshal encodes the master fields and the sensor list of t as YAML
func Marshal(t *Table) ([]byte, error) {
	data, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode execution table: %w", err)
	}
	return data, nil
}
