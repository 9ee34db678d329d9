package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/usmanali13/university-timetable-management/internal/models"
)

// TimetableCache is a Redis read-through cache for timetable lookups keyed by
// (department, semester, shift).
type TimetableCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTimetableCache constructs a TimetableCache.
func NewTimetableCache(client *redis.Client, ttl time.Duration) *TimetableCache {
	return &TimetableCache{client: client, ttl: ttl}
}

func tripleKey(department, semester string, shift models.Shift) string {
	return fmt.Sprintf("timetable:%s:%s:%s", department, semester, shift)
}

// Get returns the cached timetable for the triple, or (nil, nil) on a miss.
func (c *TimetableCache) Get(ctx context.Context, department, semester string, shift models.Shift) (*models.Timetable, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, tripleKey(department, semester, shift)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get timetable: %w", err)
	}
	var timetable models.Timetable
	if err := json.Unmarshal(raw, &timetable); err != nil {
		return nil, fmt.Errorf("cache decode timetable: %w", err)
	}
	return &timetable, nil
}

// Set stores a timetable under its triple key.
func (c *TimetableCache) Set(ctx context.Context, timetable *models.Timetable) error {
	if c == nil || c.client == nil || timetable == nil {
		return nil
	}
	raw, err := json.Marshal(timetable)
	if err != nil {
		return fmt.Errorf("cache encode timetable: %w", err)
	}
	key := tripleKey(timetable.Department, timetable.Semester, timetable.Shift)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set timetable: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for the triple.
func (c *TimetableCache) Invalidate(ctx context.Context, department, semester string, shift models.Shift) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, tripleKey(department, semester, shift)).Err(); err != nil {
		return fmt.Errorf("cache invalidate timetable: %w", err)
	}
	return nil
}

// GenerationLock serializes timetable generation per triple using SETNX with
// a TTL so a crashed run cannot hold the triple forever.
type GenerationLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGenerationLock constructs a GenerationLock.
func NewGenerationLock(client *redis.Client, ttl time.Duration) *GenerationLock {
	return &GenerationLock{client: client, ttl: ttl}
}

func lockKey(department, semester string, shift models.Shift) string {
	return fmt.Sprintf("timetable:lock:%s:%s:%s", department, semester, shift)
}

// Acquire attempts to take the lock for the triple. Returns false when a
// concurrent generation run holds it.
func (l *GenerationLock) Acquire(ctx context.Context, department, semester string, shift models.Shift) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	ok, err := l.client.SetNX(ctx, lockKey(department, semester, shift), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire generation lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock for the triple.
func (l *GenerationLock) Release(ctx context.Context, department, semester string, shift models.Shift) error {
	if l == nil || l.client == nil {
		return nil
	}
	if err := l.client.Del(ctx, lockKey(department, semester, shift)).Err(); err != nil {
		return fmt.Errorf("release generation lock: %w", err)
	}
	return nil
}
