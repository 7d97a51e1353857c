package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/EduQuest-2025/quizplayer-service/internal/cache"
	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/repositories"
	"github.com/EduQuest-2025/quizplayer-service/internal/validator"
)

// ImportExportService handles unit sheet import/export for activities.
// Sheets carry one unit per row; the column set is shared between CSV and
// Excel so a round trip through either format preserves the activity.
type ImportExportService interface {
	ImportUnitsFromFile(ctx context.Context, file multipart.File, filename string, activityID uint) (*ImportResult, error)
	ImportUnitsFromCSV(ctx context.Context, reader io.Reader, activityID uint) (*ImportResult, error)
	ImportUnitsFromExcel(ctx context.Context, reader io.Reader, activityID uint) (*ImportResult, error)

	ExportUnitsToCSV(ctx context.Context, activityID uint) ([]byte, error)
	ExportUnitsToExcel(ctx context.Context, activityID uint) ([]byte, error)
}

type ImportResult struct {
	ActivityID uint                  `json:"activity_id"`
	Summary    models.ImportSummary  `json:"summary"`
	Units      []models.QuestionUnit `json:"units,omitempty"`
}

type importExportService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, v *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: v,
	}
}

var sheetColumns = []string{
	"variant", "prompt", "image_url",
	"option_a", "option_b", "option_c", "option_d",
	"correct_answer", "pairs",
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportUnitsFromFile(ctx context.Context, file multipart.File, filename string, activityID uint) (*ImportResult, error) {
	s.logger.Info("Starting unit sheet import", "filename", filename, "activity_id", activityID)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportUnitsFromCSV(ctx, file, activityID)
	case ".xlsx", ".xls":
		return s.ImportUnitsFromExcel(ctx, file, activityID)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportUnitsFromCSV(ctx context.Context, reader io.Reader, activityID uint) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return s.importRows(ctx, records, activityID)
}

func (s *importExportService) ImportUnitsFromExcel(ctx context.Context, reader io.Reader, activityID uint) (*ImportResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return s.importRows(ctx, rows, activityID)
}

func (s *importExportService) importRows(ctx context.Context, rows [][]string, activityID uint) (*ImportResult, error) {
	started := time.Now()

	if len(rows) < 2 {
		return nil, NewValidationError("file", "sheet must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"variant", "correct_answer"} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	activity, err := s.repo.Activity().GetByID(ctx, activityID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	existing, err := activity.DecodeUnits()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityMalformed, err)
	}

	result := &ImportResult{
		ActivityID: activityID,
		Summary:    models.ImportSummary{TotalRows: len(rows) - 1},
	}

	var units []models.QuestionUnit
	for rowIndex, row := range rows[1:] {
		unit, rowErrors := s.parseUnitRow(row, headerMap, rowIndex+2, len(existing)+len(units)+1)
		if len(rowErrors) > 0 {
			result.Summary.Errors = append(result.Summary.Errors, rowErrors...)
			result.Summary.ErrorCount++
		} else if unit != nil {
			if unit.Variant != activity.Kind {
				result.Summary.Errors = append(result.Summary.Errors, models.ImportValidationError{
					Row: rowIndex + 2, Field: "variant",
					Message: fmt.Sprintf("must match activity kind %s", activity.Kind),
					Value:   string(unit.Variant),
				})
				result.Summary.ErrorCount++
			} else {
				units = append(units, *unit)
				result.Summary.SuccessCount++
			}
		}
		result.Summary.ProcessedRows++
	}

	if len(units) > 0 {
		merged := append(existing, units...)
		if err := s.validator.Unit().ValidateBatch(merged); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		if err := activity.EncodeUnits(merged); err != nil {
			return nil, fmt.Errorf("failed to encode units: %w", err)
		}
		activity.Version++
		if err := s.repo.Activity().Update(ctx, activity); err != nil {
			return nil, fmt.Errorf("failed to save imported units: %w", err)
		}
		if err := s.cache.Delete(ctx, activityCacheKey(activityID)); err != nil {
			s.logger.Warn("Failed to invalidate activity cache", "activity_id", activityID, "error", err)
		}
	}

	result.Units = units
	result.Summary.CreatedUnits = len(units)
	result.Summary.ProcessingTime = time.Since(started)

	s.logger.Info("Unit sheet import completed",
		"activity_id", activityID,
		"total_rows", result.Summary.TotalRows,
		"success_count", result.Summary.SuccessCount,
		"error_count", result.Summary.ErrorCount)

	return result, nil
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) ExportUnitsToCSV(ctx context.Context, activityID uint) ([]byte, error) {
	units, err := s.getUnitsForExport(ctx, activityID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(sheetColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range units {
		if err := writer.Write(unitToRow(&units[i])); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return []byte(buf.String()), nil
}

func (s *importExportService) ExportUnitsToExcel(ctx context.Context, activityID uint) ([]byte, error) {
	units, err := s.getUnitsForExport(ctx, activityID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Units"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range sheetColumns {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIndex := range units {
		row := unitToRow(&units[rowIndex])
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) getUnitsForExport(ctx context.Context, activityID uint) ([]models.QuestionUnit, error) {
	activity, err := s.repo.Activity().GetByID(ctx, activityID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	units, err := activity.DecodeUnits()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityMalformed, err)
	}
	if len(units) == 0 {
		return nil, ErrActivityEmpty
	}
	return units, nil
}

// ===== ROW CODEC =====

func (s *importExportService) parseUnitRow(record []string, headerMap map[string]int, rowNum, unitNum int) (*models.QuestionUnit, []models.ImportValidationError) {
	var rowErrors []models.ImportValidationError

	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}

	variantStr := getColumn("variant")
	if variantStr == "" {
		rowErrors = append(rowErrors, models.ImportValidationError{
			Row: rowNum, Field: "variant", Message: "required field",
		})
		return nil, rowErrors
	}
	variant := models.UnitVariant(strings.ToLower(variantStr))

	unit := &models.QuestionUnit{
		ID:       fmt.Sprintf("u%d", unitNum),
		Variant:  variant,
		Prompt:   getColumn("prompt"),
		ImageURL: getColumn("image_url"),
	}

	options := readOptions(getColumn, variant)
	correctAnswer := getColumn("correct_answer")

	switch variant {
	case models.VariantMCQ:
		if err := applyCorrectLetters(options, correctAnswer); err != nil {
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row: rowNum, Field: "correct_answer", Message: err.Error(), Value: correctAnswer,
			})
			return nil, rowErrors
		}
		unit.Options = options

	case models.VariantTrueFalse:
		switch strings.ToLower(correctAnswer) {
		case "true":
			unit.CorrectAnswer = boolRef(true)
		case "false":
			unit.CorrectAnswer = boolRef(false)
		default:
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row: rowNum, Field: "correct_answer", Message: "must be 'true' or 'false'", Value: correctAnswer,
			})
			return nil, rowErrors
		}

	case models.VariantFillBlank:
		unit.CanonicalText = correctAnswer

	case models.VariantImageMCQ:
		index, err := letterIndex(correctAnswer, len(options))
		if err != nil {
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row: rowNum, Field: "correct_answer", Message: err.Error(), Value: correctAnswer,
			})
			return nil, rowErrors
		}
		unit.Options = options
		unit.CorrectIndex = &index

	case models.VariantMatchText, models.VariantMatchImage, models.VariantMatchTextImage:
		pairs, err := parsePairs(getColumn("pairs"))
		if err != nil {
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row: rowNum, Field: "pairs", Message: err.Error(), Value: getColumn("pairs"),
			})
			return nil, rowErrors
		}
		unit.Pairs = pairs

	case models.VariantDragDrop:
		order, err := parseLetterOrder(correctAnswer, options)
		if err != nil {
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row: rowNum, Field: "correct_answer", Message: err.Error(), Value: correctAnswer,
			})
			return nil, rowErrors
		}
		unit.Options = options
		unit.CorrectOrder = order

	case models.VariantUnscramble:
		if correctAnswer == "" {
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row: rowNum, Field: "correct_answer", Message: "required field",
			})
			return nil, rowErrors
		}
		unit.Options = []models.UnitOption{{ID: "a", Text: correctAnswer, Correct: true}}

	default:
		rowErrors = append(rowErrors, models.ImportValidationError{
			Row: rowNum, Field: "variant", Message: "unsupported unit variant", Value: variantStr,
		})
		return nil, rowErrors
	}

	return unit, nil
}

func readOptions(getColumn func(string) string, variant models.UnitVariant) []models.UnitOption {
	var options []models.UnitOption
	for i, col := range []string{"option_a", "option_b", "option_c", "option_d"} {
		value := getColumn(col)
		if value == "" {
			continue
		}
		option := models.UnitOption{ID: string(rune('a' + i))}
		if variant == models.VariantImageMCQ {
			option.ImageURL = value
		} else {
			option.Text = value
		}
		options = append(options, option)
	}
	return options
}

func applyCorrectLetters(options []models.UnitOption, correctAnswer string) error {
	if len(options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	marked := 0
	for _, part := range strings.Split(strings.ToUpper(correctAnswer), ",") {
		part = strings.TrimSpace(part)
		index, err := letterIndex(part, len(options))
		if err != nil {
			return err
		}
		options[index].Correct = true
		marked++
	}
	if marked == 0 {
		return fmt.Errorf("must specify at least one correct answer letter")
	}
	return nil
}

func letterIndex(letter string, optionCount int) (int, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'D' {
		return 0, fmt.Errorf("must be an option letter (A-D)")
	}
	index := int(letter[0] - 'A')
	if index >= optionCount {
		return 0, fmt.Errorf("option letter %s has no matching option", letter)
	}
	return index, nil
}

// parsePairs reads "left=right;left=right" into authored pairs.
func parsePairs(raw string) ([]models.MatchPair, error) {
	if raw == "" {
		return nil, fmt.Errorf("required field")
	}
	var pairs []models.MatchPair
	for _, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		sides := strings.SplitN(chunk, "=", 2)
		if len(sides) != 2 || strings.TrimSpace(sides[0]) == "" || strings.TrimSpace(sides[1]) == "" {
			return nil, fmt.Errorf("pair %q must be left=right", chunk)
		}
		pairs = append(pairs, models.MatchPair{
			Left:  strings.TrimSpace(sides[0]),
			Right: strings.TrimSpace(sides[1]),
		})
	}
	if len(pairs) < 2 {
		return nil, fmt.Errorf("must have at least 2 pairs")
	}
	return pairs, nil
}

func parseLetterOrder(raw string, options []models.UnitOption) ([]string, error) {
	if len(options) < 2 {
		return nil, fmt.Errorf("must have at least 2 options")
	}
	var order []string
	used := make(map[int]bool)
	for _, part := range strings.Split(strings.ToUpper(raw), ",") {
		index, err := letterIndex(part, len(options))
		if err != nil {
			return nil, err
		}
		if used[index] {
			return nil, fmt.Errorf("order repeats option letter %s", part)
		}
		used[index] = true
		order = append(order, options[index].ID)
	}
	if len(order) != len(options) {
		return nil, fmt.Errorf("order must cover every option exactly once")
	}
	return order, nil
}

func unitToRow(unit *models.QuestionUnit) []string {
	row := make([]string, len(sheetColumns))
	row[0] = string(unit.Variant)
	row[1] = unit.Prompt
	row[2] = unit.ImageURL

	for i, opt := range unit.Options {
		if i >= 4 {
			break
		}
		if unit.Variant == models.VariantImageMCQ {
			row[3+i] = opt.ImageURL
		} else {
			row[3+i] = opt.Text
		}
	}

	switch unit.Variant {
	case models.VariantMCQ:
		var letters []string
		for i, opt := range unit.Options {
			if opt.Correct && i < 4 {
				letters = append(letters, string(rune('A'+i)))
			}
		}
		row[7] = strings.Join(letters, ",")
	case models.VariantTrueFalse:
		if unit.CorrectAnswer != nil {
			if *unit.CorrectAnswer {
				row[7] = "true"
			} else {
				row[7] = "false"
			}
		}
	case models.VariantFillBlank:
		row[7] = unit.CanonicalText
	case models.VariantImageMCQ:
		if unit.CorrectIndex != nil && *unit.CorrectIndex < 4 {
			row[7] = string(rune('A' + *unit.CorrectIndex))
		}
	case models.VariantMatchText, models.VariantMatchImage, models.VariantMatchTextImage:
		var chunks []string
		for _, p := range unit.Pairs {
			chunks = append(chunks, p.Left+"="+p.Right)
		}
		row[8] = strings.Join(chunks, ";")
	case models.VariantDragDrop:
		indexByID := make(map[string]int, len(unit.Options))
		for i, opt := range unit.Options {
			indexByID[opt.ID] = i
		}
		var letters []string
		for _, id := range unit.CorrectOrder {
			if i, ok := indexByID[id]; ok && i < 4 {
				letters = append(letters, string(rune('A'+i)))
			}
		}
		row[7] = strings.Join(letters, ",")
	case models.VariantUnscramble:
		row[7] = unit.CanonicalWord()
	}

	return row
}

func boolRef(b bool) *bool { return &b }
