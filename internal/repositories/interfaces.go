package repositories

import (
	"context"
	"errors"

	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ActivityFilters struct {
	Kind      *models.UnitVariant    `json:"kind"`
	Status    *models.ActivityStatus `json:"status"`
	CreatedBy *uint                  `json:"created_by"`
	Search    string                 `json:"search"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
	SortBy    string                 `json:"sort_by"`    // "created_at", "title"
	SortOrder string                 `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters ActivityFilters) ([]*models.Activity, int64, error)
	ExistsByTitle(ctx context.Context, title string, creatorID uint) (bool, error)
}

type Repository interface {
	Activity() ActivityRepository
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
