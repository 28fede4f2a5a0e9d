// Package redis implements a read-through Redis cache in front of the
// professors storage.
//
// Reads are served from Redis when the key is present, otherwise from the
// wrapped storage and written back with a TTL. Every write invalidates the
// whole professors namespace. Redis failures never fail a request: they are
// logged and the read falls through to the wrapped storage.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/university-api/internal/storage"
	"github.com/aanand-mishra/university-api/internal/types"
)

// Key prefixes for namespacing Redis keys.
const (
	// PrefixProfessors is shared by every key this package writes.
	PrefixProfessors = "professors:"

	keyAll        = PrefixProfessors + "all"
	keyID         = PrefixProfessors + "id:%d"
	keyDepartment = PrefixProfessors + "department:%s"
	keySpecialty  = PrefixProfessors + "specialty:%s"
)

// Professors decorates a storage.ProfessorStorage with a Redis cache.
type Professors struct {
	next   storage.ProfessorStorage
	client redis.UniversalClient
	ttl    time.Duration
	log    *slog.Logger
}

var (
	_ storage.ProfessorStorage = (*Professors)(nil)
	_ storage.Pinger           = (*Professors)(nil)
)

// NewProfessors wraps next with a cache kept in client for ttl.
func NewProfessors(next storage.ProfessorStorage, client redis.UniversalClient, ttl time.Duration, log *slog.Logger) *Professors {
	return &Professors{next: next, client: client, ttl: ttl, log: log}
}

// CreateProfessor writes through to storage, then drops every cached list so
// the new professor shows up on the next read.
func (p *Professors) CreateProfessor(ctx context.Context, req types.ProfessorRequest) (types.Professor, error) {
	prof, err := p.next.CreateProfessor(ctx, req)
	if err != nil {
		return types.Professor{}, err
	}

	if err := p.invalidate(ctx); err != nil {
		p.log.Warn("professors cache invalidation failed", slog.String("error", err.Error()))
	}
	return prof, nil
}

func (p *Professors) GetProfessors(ctx context.Context) ([]types.Professor, error) {
	return readThrough(ctx, p, keyAll, func() ([]types.Professor, error) {
		return p.next.GetProfessors(ctx)
	})
}

func (p *Professors) GetProfessorByID(ctx context.Context, id int) (types.Professor, error) {
	return readThrough(ctx, p, fmt.Sprintf(keyID, id), func() (types.Professor, error) {
		return p.next.GetProfessorByID(ctx, id)
	})
}

func (p *Professors) GetProfessorsByDepartment(ctx context.Context, department string) ([]types.Professor, error) {
	return readThrough(ctx, p, fmt.Sprintf(keyDepartment, department), func() ([]types.Professor, error) {
		return p.next.GetProfessorsByDepartment(ctx, department)
	})
}

func (p *Professors) GetProfessorsBySpecialty(ctx context.Context, specialty string) ([]types.Professor, error) {
	return readThrough(ctx, p, fmt.Sprintf(keySpecialty, specialty), func() ([]types.Professor, error) {
		return p.next.GetProfessorsBySpecialty(ctx, specialty)
	})
}

// Ping checks Redis, not the wrapped storage.
func (p *Professors) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// readThrough returns the cached value for key or loads, caches and returns
// it. Errors from load are returned unchanged and never cached.
func readThrough[T any](ctx context.Context, p *Professors, key string, load func() (T, error)) (T, error) {
	raw, err := p.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		p.log.Warn("professors cache entry unreadable", slog.String("key", key))
	case errors.Is(err, redis.Nil):
		// miss
	default:
		p.log.Warn("professors cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		p.log.Warn("professors cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return v, nil
	}
	if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
		p.log.Warn("professors cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return v, nil
}

// invalidate deletes every key under PrefixProfessors using SCAN so Redis is
// never blocked by KEYS on a large keyspace.
func (p *Professors) invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := p.client.Scan(ctx, cursor, PrefixProfessors+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if len(keys) > 0 {
			if err := p.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
