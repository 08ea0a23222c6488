// Package relation is the read side of the friend graph. The graph itself is
// maintained elsewhere; this package only answers "are A and B connected".
package relation

import (
	"context"
	"fmt"
	"time"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Graph interface {
	AreConnected(ctx context.Context, userA, userB string) (bool, error)
	// BatchConnected answers for every id in others in one store round trip.
	BatchConnected(ctx context.Context, userA string, others []string) (map[string]bool, error)
}

type graph struct {
	db     *gorm.DB
	cache  *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewGraph reads friendships from db. cache may be nil, in which case every
// call goes to the store.
func NewGraph(db *gorm.DB, cache *redis.Client, ttl time.Duration, log *logger.Logger) Graph {
	return &graph{db: db, cache: cache, ttl: ttl, logger: log}
}

func (g *graph) AreConnected(ctx context.Context, userA, userB string) (bool, error) {
	res, err := g.BatchConnected(ctx, userA, []string{userB})
	if err != nil {
		return false, err
	}
	return res[userB], nil
}

func (g *graph) BatchConnected(ctx context.Context, userA string, others []string) (map[string]bool, error) {
	result := make(map[string]bool, len(others))
	if userA == "" || len(others) == 0 {
		return result, nil
	}

	misses := g.fromCache(ctx, userA, dedupe(others), result)
	if len(misses) == 0 {
		return result, nil
	}

	var friendIDs []string
	err := g.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id IN ?", userA, misses).
		Pluck("friend_id", &friendIDs).Error
	if err != nil {
		return nil, apperror.Storage("batch connected", err)
	}

	connected := make(map[string]bool, len(friendIDs))
	for _, id := range friendIDs {
		connected[id] = true
	}
	for _, id := range misses {
		result[id] = connected[id]
	}

	g.toCache(ctx, userA, misses, result)
	return result, nil
}

func (g *graph) fromCache(ctx context.Context, userA string, others []string, result map[string]bool) []string {
	if g.cache == nil {
		return others
	}

	keys := make([]string, len(others))
	for i, id := range others {
		keys[i] = cacheKey(userA, id)
	}

	vals, err := g.cache.MGet(ctx, keys...).Result()
	if err != nil {
		g.logger.Warn("[RELATION] cache read failed, falling back to store: %v", err)
		return others
	}

	var misses []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, others[i])
			continue
		}
		result[others[i]] = s == "1"
	}
	return misses
}

func (g *graph) toCache(ctx context.Context, userA string, ids []string, result map[string]bool) {
	if g.cache == nil {
		return
	}

	pipe := g.cache.Pipeline()
	for _, id := range ids {
		v := "0"
		if result[id] {
			v = "1"
		}
		pipe.Set(ctx, cacheKey(userA, id), v, g.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		g.logger.Warn("[RELATION] cache write failed: %v", err)
	}
}

func cacheKey(a, b string) string {
	return fmt.Sprintf("relation:%s:%s", a, b)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
