// Package redis stores run and grid analysis records in Redis.
//
// Each record is a JSON string under {prefix}:{kind}:{id}; a sorted set
// {prefix}:{kind}s indexes ids by creation time in unix milliseconds.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Psymen/fundsimulation-sub000/internal/observability"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// DefaultPrefix namespaces keys when none is configured.
const DefaultPrefix = "fundsim"

// NewClient connects to addr and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// recordStore holds the shared key layout for one record kind.
type recordStore[T any] struct {
	client *goredis.Client
	prefix string
	kind   string

	id        func(*T) string
	timestamp func(*T) time.Time
}

func (s *recordStore[T]) recordKey(id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, s.kind, id)
}

func (s *recordStore[T]) indexKey() string {
	return fmt.Sprintf("%s:%ss", s.prefix, s.kind)
}

// insertScript writes the index entry before the record so a failed ZADD
// leaves nothing behind. Returns 0 when the record already exists.
var insertScript = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("ZADD", KEYS[2], ARGV[2], ARGV[3])
redis.call("SET", KEYS[1], ARGV[1])
return 1
`)

func (s *recordStore[T]) insert(ctx context.Context, rec *T) error {
	if rec == nil || s.id(rec) == "" {
		return storage.ErrInvalidInput
	}
	id := s.id(rec)

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.kind, err)
	}

	keys := []string{s.recordKey(id), s.indexKey()}
	created, err := insertScript.Run(ctx, s.client, keys, payload, s.timestamp(rec).UnixMilli(), id).Int()
	if err != nil {
		return fmt.Errorf("insert %s: %w", s.kind, err)
	}
	if created == 0 {
		return storage.ErrDuplicateKey
	}
	return nil
}

func (s *recordStore[T]) get(ctx context.Context, id string) (*T, error) {
	payload, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", s.kind, err)
	}
	var rec T
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.kind, err)
	}
	return &rec, nil
}

func (s *recordStore[T]) list(ctx context.Context, limit int) ([]*T, error) {
	ids, err := s.listIDs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", s.kind, err)
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	payloads, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}

	result := make([]*T, 0, len(payloads))
	for _, p := range payloads {
		raw, ok := p.(string)
		if !ok {
			// index entry outlived its record
			continue
		}
		var rec T
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.kind, err)
		}
		result = append(result, &rec)
	}

	// Redis breaks score ties by member descending; callers expect id ascending.
	sort.SliceStable(result, func(i, j int) bool {
		ti, tj := s.timestamp(result[i]), s.timestamp(result[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return s.id(result[i]) < s.id(result[j])
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// listIDs returns the ids of the newest limit records, plus every other id
// sharing the lowest score in that window so ties can be ordered by id.
func (s *recordStore[T]) listIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	}

	page, err := s.client.ZRevRangeWithScores(ctx, s.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(page) < limit {
		return zMembers(page), nil
	}

	score := strconv.FormatFloat(page[len(page)-1].Score, 'f', -1, 64)
	tied, err := s.client.ZRangeByScore(ctx, s.indexKey(), &goredis.ZRangeBy{Min: score, Max: score}).Result()
	if err != nil {
		return nil, err
	}
	return withBoundaryTies(page, tied), nil
}

// withBoundaryTies keeps the members of page scored above its last entry and
// appends tied, the full set of members at that last score.
func withBoundaryTies(page []goredis.Z, tied []string) []string {
	if len(page) == 0 {
		return nil
	}
	boundary := page[len(page)-1].Score
	ids := make([]string, 0, len(page)+len(tied))
	for _, z := range page {
		if z.Score > boundary {
			ids = append(ids, fmt.Sprint(z.Member))
		}
	}
	return append(ids, tied...)
}

func zMembers(page []goredis.Z) []string {
	ids := make([]string, len(page))
	for i, z := range page {
		ids[i] = fmt.Sprint(z.Member)
	}
	return ids
}

func (s *recordStore[T]) delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.recordKey(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}
	if del.Val() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func observe(operation string, start time.Time, err error) {
	observability.RecordStoreOp("redis", operation, time.Since(start).Seconds(), err)
}
