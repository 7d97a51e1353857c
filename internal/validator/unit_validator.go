package validator

import (
	"fmt"
	"strings"

	"github.com/EduQuest-2025/quizplayer-service/internal/models"
)

// UnitValidator handles content-level validation of question units. A unit
// that fails these checks lacks a usable correctness designation and must
// keep the whole activity out of play.
type UnitValidator struct{}

// NewUnitValidator creates a new unit validator
func NewUnitValidator() *UnitValidator {
	return &UnitValidator{}
}

// ValidateUnit validates a single unit against its variant's rules.
func (v *UnitValidator) ValidateUnit(unit *models.QuestionUnit) error {
	if unit.ID == "" {
		return fmt.Errorf("unit id is required")
	}

	switch unit.Variant {
	case models.VariantMCQ:
		return v.validateMCQ(unit)
	case models.VariantTrueFalse:
		return v.validateTrueFalse(unit)
	case models.VariantFillBlank:
		return v.validateFillBlank(unit)
	case models.VariantImageMCQ:
		return v.validateImageMCQ(unit)
	case models.VariantMatchText, models.VariantMatchImage, models.VariantMatchTextImage:
		return v.validateMatch(unit)
	case models.VariantDragDrop:
		return v.validateDragDrop(unit)
	case models.VariantUnscramble:
		return v.validateUnscramble(unit)
	default:
		return fmt.Errorf("unsupported unit variant: %s", unit.Variant)
	}
}

// ValidateBatch validates every unit of an activity in order.
func (v *UnitValidator) ValidateBatch(units []models.QuestionUnit) error {
	for i := range units {
		if err := v.ValidateUnit(&units[i]); err != nil {
			return fmt.Errorf("unit %d (%s): %w", i+1, units[i].ID, err)
		}
	}
	return nil
}

// Private validation methods for each variant

func (v *UnitValidator) validateMCQ(unit *models.QuestionUnit) error {
	if len(unit.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(unit.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}
	if err := v.validateOptionIDs(unit.Options); err != nil {
		return err
	}
	if len(unit.CorrectOptionIDs()) == 0 {
		return fmt.Errorf("must have at least 1 correct-flagged option")
	}
	return nil
}

func (v *UnitValidator) validateTrueFalse(unit *models.QuestionUnit) error {
	if unit.CorrectAnswer == nil {
		return fmt.Errorf("correct answer is required")
	}
	return nil
}

func (v *UnitValidator) validateFillBlank(unit *models.QuestionUnit) error {
	// An empty canonical answer is tolerated: the progression controller
	// skips such units instead of evaluating them.
	if unit.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}

func (v *UnitValidator) validateImageMCQ(unit *models.QuestionUnit) error {
	if len(unit.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if unit.CorrectIndex == nil {
		return fmt.Errorf("correct option index is required")
	}
	if *unit.CorrectIndex < 0 || *unit.CorrectIndex >= len(unit.Options) {
		return fmt.Errorf("correct option index %d out of range", *unit.CorrectIndex)
	}
	return nil
}

func (v *UnitValidator) validateMatch(unit *models.QuestionUnit) error {
	if len(unit.Pairs) < 2 {
		return fmt.Errorf("must have at least 2 pairs")
	}
	seen := make(map[string]bool, len(unit.Pairs))
	for _, pair := range unit.Pairs {
		if pair.Left == "" || pair.Right == "" {
			return fmt.Errorf("pair sides cannot be empty")
		}
		if seen[pair.Left] {
			return fmt.Errorf("duplicate left element: %s", pair.Left)
		}
		seen[pair.Left] = true
	}
	return nil
}

func (v *UnitValidator) validateDragDrop(unit *models.QuestionUnit) error {
	if len(unit.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if err := v.validateOptionIDs(unit.Options); err != nil {
		return err
	}
	if len(unit.CorrectOrder) != len(unit.Options) {
		return fmt.Errorf("correct order must cover every option exactly once")
	}
	known := make(map[string]bool, len(unit.Options))
	for _, opt := range unit.Options {
		known[opt.ID] = true
	}
	used := make(map[string]bool, len(unit.CorrectOrder))
	for _, id := range unit.CorrectOrder {
		if !known[id] {
			return fmt.Errorf("correct order references unknown option: %s", id)
		}
		if used[id] {
			return fmt.Errorf("correct order repeats option: %s", id)
		}
		used[id] = true
	}
	return nil
}

func (v *UnitValidator) validateUnscramble(unit *models.QuestionUnit) error {
	// Words without a correct-flagged option are skipped in play, so only
	// structural problems are rejected here.
	for _, opt := range unit.Options {
		if opt.Correct && strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("canonical word cannot be blank")
		}
	}
	return nil
}

func (v *UnitValidator) validateOptionIDs(options []models.UnitOption) error {
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if opt.ID == "" {
			return fmt.Errorf("option id cannot be empty")
		}
		if seen[opt.ID] {
			return fmt.Errorf("duplicate option id: %s", opt.ID)
		}
		seen[opt.ID] = true
	}
	return nil
}
