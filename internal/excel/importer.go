// Package excel reads deck contents from .xlsx and .csv files.
package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/cardlearn/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	WordColumn        string // Column with the word
	TranslationColumn string // Column with the translation
	DescriptionColumn string // Column with the description, optional
	SheetName         string // Sheet to import; the first sheet when empty
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:          path,
		WordColumn:        "A",
		TranslationColumn: "B",
		DescriptionColumn: "C",
		StartRow:          2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// CardWriter stores a batch of cards atomically
type CardWriter interface {
	CreateMany(ctx context.Context, cards []models.Card) error
}

// ReadCards parses the file into cards for deckID. Rows that cannot become a card are
// reported in the result and skipped; a word repeated within the file keeps its first row.
func ReadCards(config ImportConfig, deckID int64) ([]models.Card, *ImportResult, error) {
	cols, err := resolveColumns(config)
	if err != nil {
		return nil, nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".csv":
		rows, err = readCSV(config.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(config.FilePath, config.SheetName)
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q", filepath.Ext(config.FilePath))
	}
	if err != nil {
		return nil, nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	seen := make(map[string]bool)
	cards := make([]models.Card, 0, len(rows))
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}
		result.TotalProcessed++

		card, err := processRow(row, cols)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		key := strings.ToLower(card.Word)
		if seen[key] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate word %q", rowNum, card.Word))
			continue
		}
		seen[key] = true
		card.DeckID = deckID
		cards = append(cards, card)
	}
	return cards, result, nil
}

// ImportCards reads the file and stores its cards in deckID in one batch.
func ImportCards(ctx context.Context, w CardWriter, deckID int64, config ImportConfig) (*ImportResult, error) {
	cards, result, err := ReadCards(config, deckID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return result, errors.New("no cards found in file")
	}
	if err := w.CreateMany(ctx, cards); err != nil {
		return nil, err
	}
	result.Created = len(cards)
	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type columns struct {
	word, translation, description int
}

func resolveColumns(config ImportConfig) (columns, error) {
	var cols columns
	var err error
	if cols.word, err = columnToIndex(config.WordColumn); err != nil {
		return cols, err
	}
	if cols.translation, err = columnToIndex(config.TranslationColumn); err != nil {
		return cols, err
	}
	cols.description = -1
	if config.DescriptionColumn != "" {
		if cols.description, err = columnToIndex(config.DescriptionColumn); err != nil {
			return cols, err
		}
	}
	return cols, nil
}

func processRow(row []string, cols columns) (models.Card, error) {
	card := models.Card{
		Word:        cleanWord(cell(row, cols.word)),
		Translation: strings.TrimSpace(cell(row, cols.translation)),
		Description: strings.TrimSpace(cell(row, cols.description)),
	}
	if card.Word == "" {
		return card, errors.New("word cannot be empty")
	}
	if card.Translation == "" {
		return card, errors.New("translation cannot be empty")
	}
	return card, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cleanWord drops trailing notes in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(column))
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", column, err)
	}
	return n - 1, nil
}
