package repository

import (
	"encoding/json"
	"fmt"
)

// marshalStrings encodes a string slice as the JSON text stored in list
// columns (options, correct_answers, tags). nil encodes as an empty list.
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list column: %w", err)
	}
	return string(data), nil
}

// unmarshalStrings decodes a JSON list column into a string slice.
// Empty and NULL columns decode as an empty slice.
func unmarshalStrings(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list column: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
