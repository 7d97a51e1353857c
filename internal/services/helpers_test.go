package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/EduQuest-2025/quizplayer-service/internal/cache"
	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/repositories"
)

// ===== TEST FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeActivityRepo is an in-memory ActivityRepository.
type fakeActivityRepo struct {
	mu         sync.Mutex
	nextID     uint
	activities map[uint]*models.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{nextID: 1, activities: make(map[uint]*models.Activity)}
}

func (r *fakeActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	activity.ID = r.nextID
	r.nextID++
	clone := *activity
	r.activities[activity.ID] = &clone
	return nil
}

func (r *fakeActivityRepo) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	activity, ok := r.activities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *activity
	return &clone, nil
}

func (r *fakeActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[activity.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *activity
	r.activities[activity.ID] = &clone
	return nil
}

func (r *fakeActivityRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.activities, id)
	return nil
}

func (r *fakeActivityRepo) List(ctx context.Context, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Activity
	for _, activity := range r.activities {
		if filters.Kind != nil && activity.Kind != *filters.Kind {
			continue
		}
		if filters.Status != nil && activity.Status != *filters.Status {
			continue
		}
		clone := *activity
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *fakeActivityRepo) ExistsByTitle(ctx context.Context, title string, creatorID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, activity := range r.activities {
		if activity.Title == title && activity.CreatedBy == creatorID {
			return true, nil
		}
	}
	return false, nil
}

type fakeRepo struct {
	activity *fakeActivityRepo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{activity: newFakeActivityRepo()}
}

func (r *fakeRepo) Activity() repositories.ActivityRepository { return r.activity }
func (r *fakeRepo) Ping(ctx context.Context) error            { return nil }
func (r *fakeRepo) Close() error                              { return nil }

// memCache is an in-memory CacheService without expiry.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	return nil
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	payload, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}

// ===== FIXTURE BUILDERS =====

func trueFalseActivity(repo *fakeRepo, count int) *models.Activity {
	units := make([]models.QuestionUnit, count)
	for i := range units {
		correct := i%2 == 0
		units[i] = models.QuestionUnit{
			ID:            string(rune('a' + i)),
			Variant:       models.VariantTrueFalse,
			Prompt:        "statement",
			CorrectAnswer: &correct,
		}
	}
	activity := &models.Activity{
		Title:     "True or false drill",
		Kind:      models.VariantTrueFalse,
		Status:    models.ActivityActive,
		CreatedBy: 1,
	}
	if err := activity.EncodeUnits(units); err != nil {
		panic(err)
	}
	if err := repo.activity.Create(context.Background(), activity); err != nil {
		panic(err)
	}
	return activity
}
