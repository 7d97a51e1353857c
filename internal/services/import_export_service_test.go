package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/validator"
)

func newImportExportFixture() (ImportExportService, *fakeRepo) {
	repo := newFakeRepo()
	return NewImportExportService(repo, newMemCache(), testLogger(), validator.New()), repo
}

func TestImportExport_CSVRoundTrip(t *testing.T) {
	svc, repo := newImportExportFixture()
	ctx := context.Background()

	activity := &models.Activity{Title: "Drill", Kind: models.VariantTrueFalse, CreatedBy: 1}
	require.NoError(t, activity.EncodeUnits(nil))
	require.NoError(t, repo.activity.Create(ctx, activity))

	sheet := strings.Join([]string{
		"variant,prompt,image_url,option_a,option_b,option_c,option_d,correct_answer,pairs",
		"true_false,Water boils at 100C,,,,,,true,",
		"true_false,The moon is a planet,,,,,,false,",
	}, "\n")

	result, err := svc.ImportUnitsFromCSV(ctx, strings.NewReader(sheet), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.SuccessCount)
	assert.Equal(t, 0, result.Summary.ErrorCount)
	assert.Equal(t, 2, result.Summary.CreatedUnits)

	exported, err := svc.ExportUnitsToCSV(ctx, activity.ID)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(exported)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, sheetColumns, records[0])
	assert.Equal(t, "true_false", records[1][0])
	assert.Equal(t, "Water boils at 100C", records[1][1])
	assert.Equal(t, "true", records[1][7])
	assert.Equal(t, "false", records[2][7])
}

func TestImportUnits_CollectsRowErrors(t *testing.T) {
	svc, repo := newImportExportFixture()
	ctx := context.Background()

	activity := &models.Activity{Title: "Drill", Kind: models.VariantTrueFalse, CreatedBy: 1}
	require.NoError(t, activity.EncodeUnits(nil))
	require.NoError(t, repo.activity.Create(ctx, activity))

	sheet := strings.Join([]string{
		"variant,prompt,correct_answer",
		"true_false,Valid row,true",
		"true_false,Bad answer,maybe",
		"mcq,Wrong kind for this activity,A",
		",Missing variant,true",
	}, "\n")

	result, err := svc.ImportUnitsFromCSV(ctx, strings.NewReader(sheet), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Summary.TotalRows)
	assert.Equal(t, 1, result.Summary.SuccessCount)
	assert.Equal(t, 3, result.Summary.ErrorCount)
	require.Len(t, result.Summary.Errors, 3)
	assert.Equal(t, 3, result.Summary.Errors[0].Row)
	assert.Equal(t, "correct_answer", result.Summary.Errors[0].Field)

	stored, err := repo.activity.GetByID(ctx, activity.ID)
	require.NoError(t, err)
	units, err := stored.DecodeUnits()
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Valid row", units[0].Prompt)
}

func TestImportUnits_VariantRows(t *testing.T) {
	tests := []struct {
		name  string
		kind  models.UnitVariant
		row   string
		check func(t *testing.T, unit models.QuestionUnit)
	}{
		{
			name: "mcq multi-correct letters",
			kind: models.VariantMCQ,
			row:  `mcq,Pick the primes,,2,3,4,,"A,B",`,
			check: func(t *testing.T, unit models.QuestionUnit) {
				assert.Equal(t, []string{"a", "b"}, unit.CorrectOptionIDs())
			},
		},
		{
			name: "fill blank canonical text",
			kind: models.VariantFillBlank,
			row:  "fill_blank,Capital of France,,,,,,Paris,",
			check: func(t *testing.T, unit models.QuestionUnit) {
				assert.Equal(t, "Paris", unit.CanonicalText)
			},
		},
		{
			name: "image mcq correct index",
			kind: models.VariantImageMCQ,
			row:  "image_mcq,Find the cat,,cat.png,dog.png,,,B,",
			check: func(t *testing.T, unit models.QuestionUnit) {
				require.NotNil(t, unit.CorrectIndex)
				assert.Equal(t, 1, *unit.CorrectIndex)
				assert.Equal(t, "dog.png", unit.Options[1].ImageURL)
			},
		},
		{
			name: "match pair list",
			kind: models.VariantMatchText,
			row:  "match_text,Match sounds,,,,,,,dog=bark;cat=meow",
			check: func(t *testing.T, unit models.QuestionUnit) {
				require.Len(t, unit.Pairs, 2)
				assert.Equal(t, models.MatchPair{Left: "dog", Right: "bark"}, unit.Pairs[0])
			},
		},
		{
			name: "drag drop letter order",
			kind: models.VariantDragDrop,
			row:  `drag_drop,Order the steps,,boil,pour,stir,,"B,A,C",`,
			check: func(t *testing.T, unit models.QuestionUnit) {
				assert.Equal(t, []string{"b", "a", "c"}, unit.CorrectOrder)
			},
		},
		{
			name: "unscramble canonical word",
			kind: models.VariantUnscramble,
			row:  "unscramble,,,,,,,apple,",
			check: func(t *testing.T, unit models.QuestionUnit) {
				assert.Equal(t, "apple", unit.CanonicalWord())
			},
		},
	}

	header := strings.Join(sheetColumns, ",")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newImportExportFixture()
			ctx := context.Background()

			activity := &models.Activity{Title: "Sheet", Kind: tt.kind, CreatedBy: 1}
			require.NoError(t, activity.EncodeUnits(nil))
			require.NoError(t, repo.activity.Create(ctx, activity))

			result, err := svc.ImportUnitsFromCSV(ctx, strings.NewReader(header+"\n"+tt.row), activity.ID)
			require.NoError(t, err)
			require.Equal(t, 1, result.Summary.SuccessCount, "errors: %v", result.Summary.Errors)
			tt.check(t, result.Units[0])
		})
	}
}

func TestImportUnits_DragDropOrderMustNotRepeatLetters(t *testing.T) {
	svc, repo := newImportExportFixture()
	ctx := context.Background()

	activity := &models.Activity{Title: "Steps", Kind: models.VariantDragDrop, CreatedBy: 1}
	require.NoError(t, activity.EncodeUnits(nil))
	require.NoError(t, repo.activity.Create(ctx, activity))

	// "A,A" satisfies the length check but leaves one option unplaced; the
	// row must be rejected, not imported as an unmatchable order.
	header := strings.Join(sheetColumns, ",")
	row := `drag_drop,Order the steps,,boil,pour,,,"A,A",`

	result, err := svc.ImportUnitsFromCSV(ctx, strings.NewReader(header+"\n"+row), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.SuccessCount)
	require.Len(t, result.Summary.Errors, 1)
	assert.Equal(t, "correct_answer", result.Summary.Errors[0].Field)
}

func TestImportUnits_ActivityNotFound(t *testing.T) {
	svc, _ := newImportExportFixture()

	sheet := "variant,correct_answer\ntrue_false,true"
	_, err := svc.ImportUnitsFromCSV(context.Background(), strings.NewReader(sheet), 42)
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestExportUnits_EmptyActivity(t *testing.T) {
	svc, repo := newImportExportFixture()
	ctx := context.Background()

	activity := &models.Activity{Title: "Empty", Kind: models.VariantMCQ, CreatedBy: 1}
	require.NoError(t, activity.EncodeUnits(nil))
	require.NoError(t, repo.activity.Create(ctx, activity))

	_, err := svc.ExportUnitsToCSV(ctx, activity.ID)
	assert.ErrorIs(t, err, ErrActivityEmpty)
}
