package evaluation

import (
	"testing"

	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func mcqUnit(id string, flags ...bool) models.QuestionUnit {
	unit := models.QuestionUnit{ID: id, Variant: models.VariantMCQ}
	for i, f := range flags {
		unit.Options = append(unit.Options, models.UnitOption{
			ID:      string(rune('a' + i)),
			Text:    "option",
			Correct: f,
		})
	}
	return unit
}

func TestEvaluator_MCQ(t *testing.T) {
	eval := New()

	tests := []struct {
		name     string
		unit     models.QuestionUnit
		selected []string
		correct  bool
	}{
		{
			name:     "single flagged option selected",
			unit:     mcqUnit("q1", true, false),
			selected: []string{"a"},
			correct:  true,
		},
		{
			name:     "flagged plus unflagged selected",
			unit:     mcqUnit("q1", true, false),
			selected: []string{"a", "b"},
			correct:  false,
		},
		{
			name:     "nothing selected",
			unit:     mcqUnit("q1", true, false),
			selected: nil,
			correct:  false,
		},
		{
			name:     "multiple flagged all selected",
			unit:     mcqUnit("q1", true, true, false),
			selected: []string{"b", "a"},
			correct:  true,
		},
		{
			name:     "multiple flagged only one selected",
			unit:     mcqUnit("q1", true, true, false),
			selected: []string{"a"},
			correct:  false,
		},
		{
			name:     "no option flagged is unanswerable",
			unit:     mcqUnit("q1", false, false),
			selected: nil,
			correct:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := eval.Evaluate(tt.unit, models.MultipleChoiceAnswer{SelectedOptions: tt.selected})
			require.NoError(t, err)
			assert.Equal(t, tt.correct, verdict.Correct)
			assert.Equal(t, tt.unit.ID, verdict.UnitID)
		})
	}
}

func TestEvaluator_TrueFalse(t *testing.T) {
	eval := New()
	unit := models.QuestionUnit{ID: "q1", Variant: models.VariantTrueFalse, CorrectAnswer: boolPtr(true)}

	verdict, err := eval.Evaluate(unit, models.TrueFalseAnswer{Answer: true})
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
	assert.Equal(t, 1, verdict.Points)

	verdict, err = eval.Evaluate(unit, models.TrueFalseAnswer{Answer: false})
	require.NoError(t, err)
	assert.False(t, verdict.Correct)
	assert.Equal(t, 0, verdict.Points)

	t.Run("missing canonical answer evaluates false", func(t *testing.T) {
		malformed := models.QuestionUnit{ID: "q2", Variant: models.VariantTrueFalse}
		verdict, err := eval.Evaluate(malformed, models.TrueFalseAnswer{Answer: true})
		require.NoError(t, err)
		assert.False(t, verdict.Correct)
	})
}

func TestEvaluator_FillBlank(t *testing.T) {
	eval := New()

	tests := []struct {
		name      string
		canonical string
		text      string
		correct   bool
	}{
		{"case and whitespace insensitive", "paris", " Paris ", true},
		{"exact match", "Berlin", "Berlin", true},
		{"wrong answer", "paris", "london", false},
		{"empty submission", "paris", "", false},
		{"empty canonical evaluates false", "", "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := models.QuestionUnit{
				ID:            "q1",
				Variant:       models.VariantFillBlank,
				CanonicalText: tt.canonical,
				// Present in content documents but never consulted.
				AcceptableAnswers: []string{"ignored"},
			}
			verdict, err := eval.Evaluate(unit, models.FillBlankAnswer{Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.correct, verdict.Correct)
		})
	}
}

func TestEvaluator_ImageMCQ(t *testing.T) {
	eval := New()
	unit := models.QuestionUnit{ID: "q1", Variant: models.VariantImageMCQ, CorrectIndex: intPtr(2)}

	verdict, err := eval.Evaluate(unit, models.SingleChoiceAnswer{SelectedIndex: 2})
	require.NoError(t, err)
	assert.True(t, verdict.Correct)

	verdict, err = eval.Evaluate(unit, models.SingleChoiceAnswer{SelectedIndex: 0})
	require.NoError(t, err)
	assert.False(t, verdict.Correct)

	t.Run("missing correct index evaluates false", func(t *testing.T) {
		malformed := models.QuestionUnit{ID: "q2", Variant: models.VariantImageMCQ}
		verdict, err := eval.Evaluate(malformed, models.SingleChoiceAnswer{SelectedIndex: 0})
		require.NoError(t, err)
		assert.False(t, verdict.Correct)
	})
}

func TestEvaluator_Match(t *testing.T) {
	eval := New()
	authored := []models.MatchPair{
		{Left: "dog", Right: "bark"},
		{Left: "cat", Right: "meow"},
	}

	tests := []struct {
		name    string
		variant models.UnitVariant
		pairs   []models.MatchPair
		correct bool
	}{
		{
			name:    "exact reproduction",
			variant: models.VariantMatchText,
			pairs:   []models.MatchPair{{Left: "cat", Right: "meow"}, {Left: "dog", Right: "bark"}},
			correct: true,
		},
		{
			name:    "one pair swapped",
			variant: models.VariantMatchImage,
			pairs:   []models.MatchPair{{Left: "dog", Right: "meow"}, {Left: "cat", Right: "bark"}},
			correct: false,
		},
		{
			name:    "missing pair",
			variant: models.VariantMatchTextImage,
			pairs:   []models.MatchPair{{Left: "dog", Right: "bark"}},
			correct: false,
		},
		{
			name:    "duplicate left side",
			variant: models.VariantMatchText,
			pairs:   []models.MatchPair{{Left: "dog", Right: "bark"}, {Left: "dog", Right: "bark"}},
			correct: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := models.QuestionUnit{ID: "q1", Variant: tt.variant, Pairs: authored}
			verdict, err := eval.Evaluate(unit, models.MatchingAnswer{Pairs: tt.pairs})
			require.NoError(t, err)
			assert.Equal(t, tt.correct, verdict.Correct)
		})
	}
}

func TestEvaluator_DragDrop(t *testing.T) {
	eval := New()
	unit := models.QuestionUnit{
		ID:           "q1",
		Variant:      models.VariantDragDrop,
		CorrectOrder: []string{"a", "b", "c"},
	}

	verdict, err := eval.Evaluate(unit, models.OrderingAnswer{Order: []string{"a", "b", "c"}})
	require.NoError(t, err)
	assert.True(t, verdict.Correct)

	verdict, err = eval.Evaluate(unit, models.OrderingAnswer{Order: []string{"a", "c", "b"}})
	require.NoError(t, err)
	assert.False(t, verdict.Correct)

	verdict, err = eval.Evaluate(unit, models.OrderingAnswer{Order: []string{"a", "b"}})
	require.NoError(t, err)
	assert.False(t, verdict.Correct)
}

func TestEvaluator_Unscramble(t *testing.T) {
	eval := New()
	unit := models.QuestionUnit{
		ID:      "q1",
		Variant: models.VariantUnscramble,
		Options: []models.UnitOption{
			{ID: "a", Text: "elephant", Correct: true},
			{ID: "b", Text: "tiger"},
		},
	}

	verdict, err := eval.Evaluate(unit, models.UnscrambleAnswer{Word: "Elephant"})
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
	assert.Equal(t, 10, verdict.Points, "unscramble awards ten per word")

	verdict, err = eval.Evaluate(unit, models.UnscrambleAnswer{Word: "tiger"})
	require.NoError(t, err)
	assert.False(t, verdict.Correct)
	assert.Equal(t, 0, verdict.Points)
}

func TestEvaluator_ResponseTypeMismatch(t *testing.T) {
	eval := New()
	unit := mcqUnit("q1", true)

	_, err := eval.Evaluate(unit, models.TrueFalseAnswer{Answer: true})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestEvaluator_UnknownVariant(t *testing.T) {
	eval := New()
	unit := models.QuestionUnit{ID: "q1", Variant: "crossword"}

	_, err := eval.Evaluate(unit, models.FillBlankAnswer{Text: "x"})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestSkippable(t *testing.T) {
	assert.True(t, Skippable(models.QuestionUnit{Variant: models.VariantFillBlank}))
	assert.True(t, Skippable(models.QuestionUnit{Variant: models.VariantFillBlank, CanonicalText: "  "}))
	assert.False(t, Skippable(models.QuestionUnit{Variant: models.VariantFillBlank, CanonicalText: "paris"}))

	assert.True(t, Skippable(models.QuestionUnit{
		Variant: models.VariantUnscramble,
		Options: []models.UnitOption{{ID: "a", Text: "tiger"}},
	}))
	assert.False(t, Skippable(models.QuestionUnit{
		Variant: models.VariantUnscramble,
		Options: []models.UnitOption{{ID: "a", Text: "tiger", Correct: true}},
	}))

	assert.False(t, Skippable(mcqUnit("q1", false)))
}

func TestPointsFor(t *testing.T) {
	assert.Equal(t, 10, PointsFor(models.VariantUnscramble))
	assert.Equal(t, 1, PointsFor(models.VariantMCQ))
	assert.Equal(t, 1, PointsFor(models.VariantTrueFalse))
	assert.Equal(t, 1, PointsFor(models.VariantDragDrop))
}
