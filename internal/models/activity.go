package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UnitVariant string

const (
	VariantMCQ            UnitVariant = "mcq"
	VariantTrueFalse      UnitVariant = "true_false"
	VariantFillBlank      UnitVariant = "fill_blank"
	VariantMatchText      UnitVariant = "match_text"
	VariantMatchImage     UnitVariant = "match_image"
	VariantMatchTextImage UnitVariant = "match_text_image"
	VariantImageMCQ       UnitVariant = "image_mcq"
	VariantDragDrop       UnitVariant = "drag_drop"
	VariantUnscramble     UnitVariant = "unscramble"
)

// IsMatch reports whether the variant is one of the three match-the-following
// presentations. They differ only in how the pairs are rendered.
func (v UnitVariant) IsMatch() bool {
	return v == VariantMatchText || v == VariantMatchImage || v == VariantMatchTextImage
}

// DefaultPageSize returns how many units a player page shows for the variant.
// MCQ, true/false and fill-blank flows page four questions at a time; every
// other flow presents a single unit per step.
func (v UnitVariant) DefaultPageSize() int {
	switch v {
	case VariantMCQ, VariantTrueFalse, VariantFillBlank:
		return 4
	default:
		return 1
	}
}

type ActivityStatus string

const (
	ActivityDraft    ActivityStatus = "Draft"
	ActivityActive   ActivityStatus = "Active"
	ActivityArchived ActivityStatus = "Archived"
)

// Activity is a single-variant learning activity: an ordered sequence of
// question units of one kind, loaded as a whole by the player.
type Activity struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string        `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Kind        UnitVariant    `json:"kind" gorm:"not null;index" validate:"required,unit_variant"`
	Status      ActivityStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Active Archived"`

	// The full unit sequence is stored as one document; the player always
	// consumes an activity whole, never unit-by-unit.
	Units datatypes.JSON `json:"units" gorm:"type:jsonb"` // []QuestionUnit

	// Metadata
	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Version control
	Version int `json:"version" gorm:"default:1"`

	// Computed fields (not stored)
	UnitsCount int `json:"units_count" gorm:"-"`
}

func (Activity) TableName() string {
	return "activities"
}

// DecodeUnits unmarshals the stored unit document.
func (a *Activity) DecodeUnits() ([]QuestionUnit, error) {
	if len(a.Units) == 0 {
		return nil, nil
	}
	var units []QuestionUnit
	if err := json.Unmarshal(a.Units, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// EncodeUnits stores the unit sequence back into the document column.
func (a *Activity) EncodeUnits(units []QuestionUnit) error {
	raw, err := json.Marshal(units)
	if err != nil {
		return err
	}
	a.Units = raw
	a.UnitsCount = len(units)
	return nil
}

// UnitOption is one candidate answer. Image URLs are opaque handles for the
// rendering layer; nothing here interprets them.
type UnitOption struct {
	ID       string `json:"id" validate:"required"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
	Correct  bool   `json:"correct"`
}

// MatchPair is one authored left-right pairing for match variants.
type MatchPair struct {
	Left          string `json:"left"`
	Right         string `json:"right"`
	LeftImageURL  string `json:"left_image_url,omitempty"`
	RightImageURL string `json:"right_image_url,omitempty"`
}

// QuestionUnit is one question, pair set or word within an activity. The
// variant tag selects which correctness fields apply:
//
//	mcq               options with per-option correct flags (set equality)
//	true_false        CorrectAnswer
//	fill_blank        CanonicalText (AcceptableAnswers is carried but unused)
//	image_mcq         CorrectIndex into Options
//	match_*           Pairs
//	drag_drop         CorrectOrder of option IDs
//	unscramble        the single correct-flagged option is the canonical word
type QuestionUnit struct {
	ID       string      `json:"id" validate:"required"`
	Variant  UnitVariant `json:"variant" validate:"required,unit_variant"`
	Prompt   string      `json:"prompt"`
	ImageURL string      `json:"image_url,omitempty"`

	Options []UnitOption `json:"options,omitempty"`

	CorrectAnswer     *bool       `json:"correct_answer,omitempty"`
	CorrectIndex      *int        `json:"correct_index,omitempty"`
	CanonicalText     string      `json:"canonical_text,omitempty"`
	AcceptableAnswers []string    `json:"acceptable_answers,omitempty"`
	Pairs             []MatchPair `json:"pairs,omitempty"`
	CorrectOrder      []string    `json:"correct_order,omitempty"`
}

// CorrectOptionIDs returns the IDs of all options flagged correct.
func (u *QuestionUnit) CorrectOptionIDs() []string {
	var ids []string
	for _, opt := range u.Options {
		if opt.Correct {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// CanonicalWord returns the single correct-flagged option's text for
// unscramble units, or "" when no option is flagged.
func (u *QuestionUnit) CanonicalWord() string {
	for _, opt := range u.Options {
		if opt.Correct {
			return opt.Text
		}
	}
	return ""
}
