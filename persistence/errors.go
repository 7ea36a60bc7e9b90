package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSync is returned when the remote store rejects or fails an operation.
var ErrSync = errors.New("remote sync failed")

// SyncError wraps a remote failure of op.
func SyncError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSync, op, err)
}

func unknownOp(op Op) error {
	return fmt.Errorf("unknown operation %q", op)
}

func decode[T any](key, raw string) ([]T, error) {
	var items []T
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return items, nil
}

func encode[T any](key string, items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	return string(data), nil
}
