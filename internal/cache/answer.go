// Package cache memoises generated answers in Redis so repeated questions
// skip the model call.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/msami123/Web-chat-bot/internal/logger"
	"github.com/msami123/Web-chat-bot/internal/metrics"
)

// KeyPrefix namespaces every answer key.
const KeyPrefix = "webbot:answer:"

// ErrMiss is returned by a Store when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the key/value backend of the answer cache.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// AnswerCache caches model answers by language and normalised question.
// Backend failures are logged and treated as misses.
type AnswerCache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// New creates an answer cache over store. A non-positive ttl keeps
// entries until evicted.
func New(store Store, ttl time.Duration, l *zap.Logger) *AnswerCache {
	if ttl < 0 {
		ttl = 0
	}
	return &AnswerCache{
		store:  store,
		ttl:    ttl,
		logger: logger.OrNop(l).With(zap.String("component", "answer-cache")),
	}
}

// Get returns the cached answer for (lang, question).
func (c *AnswerCache) Get(ctx context.Context, lang, question string) (string, bool) {
	key := Key(lang, question)
	v, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		metrics.AnswerCacheTotal.WithLabelValues("miss").Inc()
		return "", false
	}
	metrics.AnswerCacheTotal.WithLabelValues("hit").Inc()
	c.logger.Debug("cache hit", zap.String("key", key))
	return v, true
}

// Set stores answer for (lang, question).
func (c *AnswerCache) Set(ctx context.Context, lang, question, answer string) {
	key := Key(lang, question)
	if err := c.store.Set(ctx, key, answer, c.ttl); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOrCompute returns the cached answer or runs compute once for all
// concurrent callers asking the same question. The boolean reports a hit.
// Failed computations are not cached.
func (c *AnswerCache) GetOrCompute(ctx context.Context, lang, question string, compute func() (string, error)) (string, bool, error) {
	if v, ok := c.Get(ctx, lang, question); ok {
		return v, true, nil
	}
	key := Key(lang, question)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.Get(ctx, lang, question); ok {
			return v, nil
		}
		answer, err := compute()
		if err != nil {
			return "", err
		}
		c.Set(ctx, lang, question, answer)
		return answer, nil
	})
	if err != nil {
		return "", false, err
	}
	return val.(string), false, nil
}

// Invalidate drops every cached answer. Called after the index is rebuilt.
func (c *AnswerCache) Invalidate(ctx context.Context) error {
	n, err := c.store.DeletePrefix(ctx, KeyPrefix)
	if err != nil {
		return fmt.Errorf("invalidate answers: %w", err)
	}
	c.logger.Info("cache invalidated", zap.Int64("keys_deleted", n))
	return nil
}

// Key derives the Redis key of (lang, question). Case and whitespace
// differences in the question map to the same key.
func Key(lang, question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(strings.ToLower(lang) + "|" + normalized))
	return fmt.Sprintf("%s%x", KeyPrefix, sum[:16])
}
