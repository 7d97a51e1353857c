package postgres

import (
	"context"

	"github.com/EduQuest-2025/quizplayer-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db       *gorm.DB
	activity repositories.ActivityRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		activity: NewActivityPostgreSQL(db),
	}
}

func (r *repository) Activity() repositories.ActivityRepository {
	return r.activity
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
