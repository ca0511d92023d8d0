package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

type usernameSource interface {
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
}

// UsernameCache fronts username lookups with an LRU. Usernames never change
// once a user exists, so entries are never invalidated; misses are not cached.
type UsernameCache struct {
	src   usernameSource
	cache *lru.Cache[string, string]
}

func NewUsernameCache(src usernameSource, size int) (*UsernameCache, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &UsernameCache{src: src, cache: c}, nil
}

func (u *UsernameCache) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	var missing []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if name, ok := u.cache.Get(id); ok {
			out[id] = name
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := u.src.Usernames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range found {
		u.cache.Add(id, name)
		out[id] = name
	}
	return out, nil
}
