package evaluation

import (
	"errors"
	"strings"

	"github.com/EduQuest-2025/quizplayer-service/internal/models"
)

var (
	ErrUnknownVariant  = errors.New("no evaluation strategy for unit variant")
	ErrInvalidResponse = errors.New("response type does not match unit variant")
)

// Verdict is the unit-granular outcome of evaluating a submitted answer.
// There is no partial credit: Points is either 0 or the variant's full value.
type Verdict struct {
	UnitID  string `json:"unit_id"`
	Correct bool   `json:"correct"`
	Points  int    `json:"points"`
}

// Strategy evaluates one unit variant.
type Strategy interface {
	Evaluate(unit models.QuestionUnit, response any) (Verdict, error)
}

// Evaluator routes a submission to the strategy for its unit's variant.
type Evaluator struct {
	strategies map[models.UnitVariant]Strategy
}

// New installs the built-in strategies for every playable variant.
func New() *Evaluator {
	match := matchStrategy{}
	return &Evaluator{
		strategies: map[models.UnitVariant]Strategy{
			models.VariantMCQ:            mcqStrategy{},
			models.VariantTrueFalse:      trueFalseStrategy{},
			models.VariantFillBlank:      fillBlankStrategy{},
			models.VariantImageMCQ:       singleChoiceStrategy{},
			models.VariantMatchText:      match,
			models.VariantMatchImage:     match,
			models.VariantMatchTextImage: match,
			models.VariantDragDrop:       orderingStrategy{},
			models.VariantUnscramble:     unscrambleStrategy{},
		},
	}
}

func (e *Evaluator) Evaluate(unit models.QuestionUnit, response any) (Verdict, error) {
	s, ok := e.strategies[unit.Variant]
	if !ok {
		return Verdict{UnitID: unit.ID}, ErrUnknownVariant
	}
	verdict, err := s.Evaluate(unit, response)
	verdict.UnitID = unit.ID
	if verdict.Correct {
		verdict.Points = PointsFor(unit.Variant)
	}
	return verdict, err
}

// PointsFor returns the per-unit score value for a variant. Every variant
// awards a single point per correct unit except unscramble, which awards ten
// per word.
func PointsFor(v models.UnitVariant) int {
	if v == models.VariantUnscramble {
		return 10
	}
	return 1
}

// Skippable reports whether the progression controller must auto-advance
// past the unit instead of evaluating it: a fill-blank with an empty
// canonical answer, or an unscramble word with no correct-flagged option.
func Skippable(unit models.QuestionUnit) bool {
	switch unit.Variant {
	case models.VariantFillBlank:
		return strings.TrimSpace(unit.CanonicalText) == ""
	case models.VariantUnscramble:
		return strings.TrimSpace(unit.CanonicalWord()) == ""
	default:
		return false
	}
}

// --- Strategies ---

type mcqStrategy struct{}

// Correct iff the selected option-ID set exactly equals the correct-flagged
// set: every flagged option selected and no unflagged option selected. A
// unit with no flagged option is unanswerable and always evaluates false.
func (mcqStrategy) Evaluate(unit models.QuestionUnit, response any) (Verdict, error) {
	ans, ok := response.(models.MultipleChoiceAnswer)
	if !ok {
		return Verdict{}, ErrInvalidResponse
	}
	correct := toSet(unit.CorrectOptionIDs())
	if len(correct) == 0 {
		return Verdict{}, nil
	}
	return Verdict{Correct: setEqual(correct, toSet(ans.SelectedOptions))}, nil
}

type trueFalseStrategy struct{}

func (trueFalseStrategy) Evaluate(unit models.QuestionUnit, response any) (Verdict, error) {
	ans, ok := response.(models.TrueFalseAnswer)
	if !ok {
		return Verdict{}, ErrInvalidResponse
	}
	if unit.CorrectAnswer == nil {
		return Verdict{}, nil
	}
	return Verdict{Correct: ans.Answer == *unit.CorrectAnswer}, nil
}

type fillBlankStrategy struct{}

// Trimmed, case-insensitive equality against the scalar canonical answer.
// AcceptableAnswers is intentionally not consulted.
func (fillBlankStrategy) Evaluate(unit models.QuestionUnit, response any) (Verdict, error) {
	ans, ok := response.(models.FillBlankAnswer)
	if !ok {
		return Verdict{}, ErrInvalidResponse
	}
	canonical := strings.TrimSpace(unit.CanonicalText)
	if canonical == "" {
		return Verdict{}, nil
	}
	return Verdict{Correct: strings.EqualFold(strings.TrimSpace(ans.Text), canonical)}, nil
}

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Evaluate(unit models.QuestionUnit, response any) (Verdict, error) {
	ans, ok := response.(models.SingleChoiceAnswer)
	if !ok {
		return Verdict{}, ErrInvalidResponse
	}
	if unit.CorrectIndex == nil {
		return Verdict{}, nil
	}
	return Verdict{Correct: ans.SelectedIndex == *unit.CorrectIndex}, nil
}

type matchStrategy struct{}

// Correct iff the proposed pairing reproduces the authored pair set exactly:
// same size, and every proposed left maps to its authored right.
func (matchStrategy) Evaluate(unit models.QuestionUnit, response any) (Verdict, error) {
	ans, ok := response.(models.MatchingAnswer)
	if !ok {
		return Verdict{}, ErrInvalidResponse
	}
	if len(unit.Pairs) == 0 {
		return Verdict{}, nil
	}
	if len(ans.Pairs) != len(unit.Pairs) {
		return Verdict{}, nil
	}
	authored := make(map[string]string, len(unit.Pairs))
	for _, p := range unit.Pairs {
		authored[p.Left] = p.Right
	}
	seen := make(map[string]bool, len(ans.Pairs))
	for _, p := range ans.Pairs {
		right, ok := authored[p.Left]
		if !ok || right != p.Right || seen[p.Left] {
			return Verdict{}, nil
		}
		seen[p.Left] = true
	}
	return Verdict{Correct: true}, nil
}

type orderingStrategy struct{}

func (orderingStrategy) Evaluate(unit models.QuestionUnit, response any) (Verdict, error) {
	ans, ok := response.(models.OrderingAnswer)
	if !ok {
		return Verdict{}, ErrInvalidResponse
	}
	if len(unit.CorrectOrder) == 0 || len(ans.Order) != len(unit.CorrectOrder) {
		return Verdict{}, nil
	}
	for i, id := range unit.CorrectOrder {
		if ans.Order[i] != id {
			return Verdict{}, nil
		}
	}
	return Verdict{Correct: true}, nil
}

type unscrambleStrategy struct{}

// The canonical word is the single correct-flagged option; comparison is
// trimmed and case-insensitive, matching how the reconstructed word is typed.
func (unscrambleStrategy) Evaluate(unit models.QuestionUnit, response any) (Verdict, error) {
	ans, ok := response.(models.UnscrambleAnswer)
	if !ok {
		return Verdict{}, ErrInvalidResponse
	}
	canonical := strings.TrimSpace(unit.CanonicalWord())
	if canonical == "" {
		return Verdict{}, nil
	}
	return Verdict{Correct: strings.EqualFold(strings.TrimSpace(ans.Word), canonical)}, nil
}

// helpers

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
