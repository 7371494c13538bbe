package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// LoadJSON decodes the value under key into v. A missing key leaves v untouched.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Save(ctx, key, raw)
}

// LoadStamp reads an RFC 3339 timestamp key. Missing or unreadable stamps are zero.
func LoadStamp(ctx context.Context, s Store, key string) (time.Time, error) {
	raw, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, nil
	}
	return t.UTC(), nil
}

func SaveStamp(ctx context.Context, s Store, key string, t time.Time) error {
	return s.Save(ctx, key, []byte(t.UTC().Format(time.RFC3339Nano)))
}
