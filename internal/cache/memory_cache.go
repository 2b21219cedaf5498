package cache

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// MemoryAnswerCache is an in-process AnswerCache for tests and local
// development. Values are cloned on both write and read so callers
// never share state with the cache.
type MemoryAnswerCache struct {
	mu         sync.Mutex
	answers    map[uint]*models.AnswerSet
	gapAnswers map[uint]*models.GapAnswerSet
	clears     int
}

func NewMemoryAnswerCache() *MemoryAnswerCache {
	return &MemoryAnswerCache{
		answers:    make(map[uint]*models.AnswerSet),
		gapAnswers: make(map[uint]*models.GapAnswerSet),
	}
}

func (c *MemoryAnswerCache) GetAnswers(ctx context.Context, stepID uint) (*models.AnswerSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.answers[stepID]
	if !ok {
		return nil, nil
	}
	return set.Clone(), nil
}

func (c *MemoryAnswerCache) PutAnswers(ctx context.Context, stepID uint, answers *models.AnswerSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[stepID] = answers.Clone()
	return nil
}

func (c *MemoryAnswerCache) GetGapAnswers(ctx context.Context, stepID uint) (*models.GapAnswerSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.gapAnswers[stepID]
	if !ok {
		return nil, nil
	}
	return set.Clone(), nil
}

func (c *MemoryAnswerCache) PutGapAnswers(ctx context.Context, stepID uint, answers *models.GapAnswerSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gapAnswers[stepID] = answers.Clone()
	return nil
}

func (c *MemoryAnswerCache) Clear(ctx context.Context, stepID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.answers, stepID)
	delete(c.gapAnswers, stepID)
	c.clears++
	return nil
}

// ClearCount reports how many times Clear was called, for test
// assertions.
func (c *MemoryAnswerCache) ClearCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clears
}
