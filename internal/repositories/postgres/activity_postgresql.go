package postgres

import (
	"context"
	"fmt"

	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/repositories"
	"gorm.io/gorm"
)

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

func (a ActivityPostgreSQL) Create(ctx context.Context, activity *models.Activity) error {
	return a.db.WithContext(ctx).Create(activity).Error
}

func (a ActivityPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := a.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (a ActivityPostgreSQL) Update(ctx context.Context, activity *models.Activity) error {
	return a.db.WithContext(ctx).Save(activity).Error
}

func (a ActivityPostgreSQL) Delete(ctx context.Context, id uint) error {
	return a.db.WithContext(ctx).Delete(&models.Activity{}, id).Error
}

func (a ActivityPostgreSQL) List(ctx context.Context, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	var activities []*models.Activity
	var total int64

	// apply filter first
	query := a.db.WithContext(ctx).Model(&models.Activity{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = a.applyPaginationAndSort(query, filters)

	if err := query.Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

func (a ActivityPostgreSQL) ExistsByTitle(ctx context.Context, title string, creatorID uint) (bool, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("title = ? AND created_by = ?", title, creatorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a ActivityPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ActivityFilters) *gorm.DB {
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}
	return query
}

func (a ActivityPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.ActivityFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "title", "created_at", "updated_at":
	default:
		sortBy = "created_at"
	}
	order := "desc"
	if filters.SortOrder == "asc" {
		order = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
