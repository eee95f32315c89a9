package event

import (
	"encoding/json"
	"fmt"
)

// DecodePayload returns an event payload as T. Payloads published in-process arrive as T
// or *T; anything else (a decoded JSON map, for example) is converted through JSON.
func DecodePayload[T any](input interface{}) (T, error) {
	var result T
	switch v := input.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return result, fmt.Errorf("failed to decode payload: nil %T", input)
		}
		return *v, nil
	case nil:
		return result, fmt.Errorf("failed to decode payload: empty payload")
	}

	data, err := json.Marshal(input)
	if err != nil {
		return result, fmt.Errorf("failed to encode payload %T: %w", input, err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to decode payload into %T: %w", result, err)
	}
	return result, nil
}
