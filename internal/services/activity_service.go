package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EduQuest-2025/quizplayer-service/internal/cache"
	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/repositories"
	"github.com/EduQuest-2025/quizplayer-service/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateActivityRequest struct {
	Title       string                `json:"title" validate:"required,min=1,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	Kind        models.UnitVariant    `json:"kind" validate:"required,unit_variant"`
	Units       []models.QuestionUnit `json:"units" validate:"required,min=1,dive"`
}

type UpdateActivityRequest struct {
	Title       *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=1000"`
	Status      *models.ActivityStatus `json:"status" validate:"omitempty,activity_status"`
	Units       *[]models.QuestionUnit `json:"units" validate:"omitempty,min=1,dive"`
}

type ActivityListResponse struct {
	Activities []*models.Activity `json:"activities"`
	Total      int64              `json:"total"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// PlayableActivity is an activity whose unit document has already been
// decoded and content-checked. Only these enter a play session.
type PlayableActivity struct {
	Activity *models.Activity      `json:"activity"`
	Units    []models.QuestionUnit `json:"units"`
}

// ===== SERVICE INTERFACE =====

type ActivityService interface {
	Create(ctx context.Context, req *CreateActivityRequest, creatorID uint) (*models.Activity, error)
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	Update(ctx context.Context, id uint, req *UpdateActivityRequest, updaterID uint) (*models.Activity, error)
	Delete(ctx context.Context, id uint, deleterID uint) error
	List(ctx context.Context, filters repositories.ActivityFilters) (*ActivityListResponse, error)

	// GetForPlay loads, decodes and content-checks an activity for the
	// player. Missing, empty and malformed content each map to a distinct
	// sentinel; none of them is retryable.
	GetForPlay(ctx context.Context, id uint) (*PlayableActivity, error)
}

type activityService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	cacheTTL  time.Duration
	logger    *slog.Logger
	validator *validator.Validator
}

func NewActivityService(repo repositories.Repository, cacheService cache.CacheService, cacheTTL time.Duration, logger *slog.Logger, v *validator.Validator) ActivityService {
	return &activityService{
		repo:      repo,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
		logger:    logger,
		validator: v,
	}
}

func activityCacheKey(id uint) string {
	return fmt.Sprintf("activity:%d", id)
}

// ===== CRUD OPERATIONS =====

func (s *activityService) Create(ctx context.Context, req *CreateActivityRequest, creatorID uint) (*models.Activity, error) {
	s.logger.Info("Creating activity", "title", req.Title, "kind", req.Kind, "creator_id", creatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.validateUnitsForKind(req.Kind, req.Units); err != nil {
		return nil, err
	}

	exists, err := s.repo.Activity().ExistsByTitle(ctx, req.Title, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return nil, ErrActivityDuplicateTitle
	}

	activity := &models.Activity{
		Title:       req.Title,
		Description: req.Description,
		Kind:        req.Kind,
		Status:      models.ActivityDraft,
		CreatedBy:   creatorID,
	}
	if err := activity.EncodeUnits(req.Units); err != nil {
		return nil, fmt.Errorf("failed to encode units: %w", err)
	}

	if err := s.repo.Activity().Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.Info("Activity created", "activity_id", activity.ID, "units", len(req.Units))
	return activity, nil
}

func (s *activityService) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	activity, err := s.repo.Activity().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	if units, err := activity.DecodeUnits(); err == nil {
		activity.UnitsCount = len(units)
	}
	return activity, nil
}

func (s *activityService) Update(ctx context.Context, id uint, req *UpdateActivityRequest, updaterID uint) (*models.Activity, error) {
	s.logger.Info("Updating activity", "activity_id", id, "updater_id", updaterID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	activity, err := s.repo.Activity().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	if req.Title != nil && *req.Title != activity.Title {
		exists, err := s.repo.Activity().ExistsByTitle(ctx, *req.Title, activity.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			return nil, ErrActivityDuplicateTitle
		}
		activity.Title = *req.Title
	}
	if req.Description != nil {
		activity.Description = req.Description
	}
	if req.Status != nil {
		activity.Status = *req.Status
	}
	if req.Units != nil {
		if err := s.validateUnitsForKind(activity.Kind, *req.Units); err != nil {
			return nil, err
		}
		if err := activity.EncodeUnits(*req.Units); err != nil {
			return nil, fmt.Errorf("failed to encode units: %w", err)
		}
	}
	activity.Version++

	if err := s.repo.Activity().Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	// The cached play document is stale now.
	if err := s.cache.Delete(ctx, activityCacheKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate activity cache", "activity_id", id, "error", err)
	}

	s.logger.Info("Activity updated", "activity_id", id, "version", activity.Version)
	return activity, nil
}

func (s *activityService) Delete(ctx context.Context, id uint, deleterID uint) error {
	s.logger.Info("Deleting activity", "activity_id", id, "deleter_id", deleterID)

	_, err := s.repo.Activity().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("failed to get activity: %w", err)
	}

	if err := s.repo.Activity().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	if err := s.cache.Delete(ctx, activityCacheKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate activity cache", "activity_id", id, "error", err)
	}
	return nil
}

func (s *activityService) List(ctx context.Context, filters repositories.ActivityFilters) (*ActivityListResponse, error) {
	activities, total, err := s.repo.Activity().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return &ActivityListResponse{
		Activities: activities,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}, nil
}

// ===== PLAYER LOADING =====

func (s *activityService) GetForPlay(ctx context.Context, id uint) (*PlayableActivity, error) {
	key := activityCacheKey(id)

	var cached PlayableActivity
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.logger.Debug("Activity served from cache", "activity_id", id)
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Activity cache read failed", "activity_id", id, "error", err)
	}

	activity, err := s.repo.Activity().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}

	units, err := activity.DecodeUnits()
	if err != nil {
		s.logger.Error("Activity unit document is not decodable", "activity_id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrActivityMalformed, err)
	}
	if len(units) == 0 {
		return nil, ErrActivityEmpty
	}
	if err := s.validator.Unit().ValidateBatch(units); err != nil {
		s.logger.Error("Activity failed content validation", "activity_id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrActivityMalformed, err)
	}
	activity.UnitsCount = len(units)

	playable := &PlayableActivity{Activity: activity, Units: units}
	if err := s.cache.Set(ctx, key, playable, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache activity", "activity_id", id, "error", err)
	}
	return playable, nil
}

// validateUnitsForKind rejects mixed-variant activities before the content
// checks run. An activity carries units of exactly one variant.
func (s *activityService) validateUnitsForKind(kind models.UnitVariant, units []models.QuestionUnit) error {
	for i := range units {
		if units[i].Variant != kind {
			return NewValidationError(
				fmt.Sprintf("units[%d].variant", i),
				fmt.Sprintf("must match activity kind %s", kind),
				string(units[i].Variant),
			)
		}
	}
	if err := s.validator.Unit().ValidateBatch(units); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}
