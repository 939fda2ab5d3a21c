package cache

import (
	"context"
	"encoding/json"
)

// Through reads key through c: on a hit it decodes the cached blob, on a miss
// it calls fetch, stores the encoded result and returns it. A populate race
// between two requests is a benign overwrite of identical data.
func Through[T any](ctx context.Context, c Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var out T

	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if ok {
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		// Undecodable entry: fall through and repopulate.
	}

	out, err = fetch(ctx)
	if err != nil {
		return out, err
	}

	raw, err = json.Marshal(out)
	if err != nil {
		return out, err
	}
	if err := c.Set(ctx, key, raw); err != nil {
		return out, err
	}
	return out, nil
}
