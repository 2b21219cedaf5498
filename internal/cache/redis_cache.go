// Package cache implements the per-step answer cache: the resumability
// fallback consulted only when the server holds no usable attempt. It
// is dependency-injected into the session layer so tests can substitute
// the in-memory implementation and assert writes and clears.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// DefaultTTL bounds how long abandoned local state survives.
const DefaultTTL = 30 * 24 * time.Hour

// AnswerCache holds two slots per step: the answer collection and the
// gap-answer sub-collection, both stored as opaque serialized blobs.
// Absent or corrupt slots read as nil; the cache is a hint, never an
// authority.
type AnswerCache interface {
	GetAnswers(ctx context.Context, stepID uint) (*models.AnswerSet, error)
	PutAnswers(ctx context.Context, stepID uint, answers *models.AnswerSet) error
	GetGapAnswers(ctx context.Context, stepID uint) (*models.GapAnswerSet, error)
	PutGapAnswers(ctx context.Context, stepID uint, answers *models.GapAnswerSet) error
	Clear(ctx context.Context, stepID uint) error
}

type redisAnswerCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func NewRedisAnswerCache(client *redis.Client, logger *slog.Logger) AnswerCache {
	return &redisAnswerCache{
		client: client,
		logger: logger,
		ttl:    DefaultTTL,
	}
}

func answersKey(stepID uint) string {
	return fmt.Sprintf("quiz:step:%d:answers", stepID)
}

func gapAnswersKey(stepID uint) string {
	return fmt.Sprintf("quiz:step:%d:gap-answers", stepID)
}

func (c *redisAnswerCache) GetAnswers(ctx context.Context, stepID uint) (*models.AnswerSet, error) {
	data, err := c.client.Get(ctx, answersKey(stepID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached answers: %w", err)
	}
	set := models.NewAnswerSet()
	if err := json.Unmarshal(data, set); err != nil {
		// Corrupt slot: resume with nothing rather than fail the load.
		c.logger.Warn("Discarding corrupt cached answers", "step_id", stepID, "error", err)
		return nil, nil
	}
	return set, nil
}

func (c *redisAnswerCache) PutAnswers(ctx context.Context, stepID uint, answers *models.AnswerSet) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	return c.client.Set(ctx, answersKey(stepID), data, c.ttl).Err()
}

func (c *redisAnswerCache) GetGapAnswers(ctx context.Context, stepID uint) (*models.GapAnswerSet, error) {
	data, err := c.client.Get(ctx, gapAnswersKey(stepID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached gap answers: %w", err)
	}
	set := models.NewGapAnswerSet()
	if err := json.Unmarshal(data, set); err != nil {
		c.logger.Warn("Discarding corrupt cached gap answers", "step_id", stepID, "error", err)
		return nil, nil
	}
	return set, nil
}

func (c *redisAnswerCache) PutGapAnswers(ctx context.Context, stepID uint, answers *models.GapAnswerSet) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode gap answers: %w", err)
	}
	return c.client.Set(ctx, gapAnswersKey(stepID), data, c.ttl).Err()
}

func (c *redisAnswerCache) Clear(ctx context.Context, stepID uint) error {
	return c.client.Del(ctx, answersKey(stepID), gapAnswersKey(stepID)).Err()
}
