package cache

import (
	"context"
	"encoding/json"
)

// List snapshots are stored as JSON arrays under a query key. A rewrite never
// mutates a slice read from the store: every update decodes a fresh slice,
// builds a new one and replaces the snapshot wholesale.

// ReadList returns the cached snapshot under key. The second return value is
// false on a cache miss.
func ReadList[T any](ctx context.Context, s Store, key string) ([]T, bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}
	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, false, err
	}
	return list, true, nil
}

// WriteList replaces the snapshot under key.
func WriteList[T any](ctx context.Context, s Store, key string, list []T) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, string(raw), 0)
}

// AppendToList rewrites the snapshot under key with item added at the end. A
// miss means there is nothing to update yet and the call is a no-op.
func AppendToList[T any](ctx context.Context, s Store, key string, item T) error {
	list, ok, err := ReadList[T](ctx, s, key)
	if err != nil || !ok {
		return err
	}
	next := make([]T, 0, len(list)+1)
	next = append(next, list...)
	next = append(next, item)
	return WriteList(ctx, s, key, next)
}

// RemoveFromList rewrites the snapshot under key with every entry whose id
// matches target filtered out. Miss is a no-op.
func RemoveFromList[T any](ctx context.Context, s Store, key string, id func(T) string, target string) error {
	list, ok, err := ReadList[T](ctx, s, key)
	if err != nil || !ok {
		return err
	}
	next := make([]T, 0, len(list))
	for _, item := range list {
		if id(item) == target {
			continue
		}
		next = append(next, item)
	}
	return WriteList(ctx, s, key, next)
}
