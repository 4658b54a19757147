package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/example/vocabot/internal/practice"
	"github.com/example/vocabot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook
const (
	WordsSheet  = "Words"
	LevelsSheet = "Levels"
)

var wordHeader = []interface{}{
	"Word", "Translation", "Level", "Mastery", "Tier", "Correct", "Incorrect", "Last practiced", "Added",
}

var levelHeader = []interface{}{"Level", "Words", "Practiced", "Average mastery"}

// WordLister loads words; implemented by database.WordRepository
type WordLister interface {
	QueryWords(ctx context.Context, q models.WordQuery) ([]models.Word, error)
}

// CategoryGetter loads categories; implemented by database.CategoryRepository
type CategoryGetter interface {
	GetCategory(ctx context.Context, categoryID int64) (*models.Category, error)
}

// Exporter writes a category's progress as an xlsx workbook
type Exporter struct {
	words      WordLister
	categories CategoryGetter
}

// NewExporter creates a new exporter
func NewExporter(words WordLister, categories CategoryGetter) *Exporter {
	return &Exporter{words: words, categories: categories}
}

// Export writes the workbook of a user's category to w
func (e *Exporter) Export(ctx context.Context, userID, categoryID int64, w io.Writer) error {
	category, err := e.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil || category.UserID != userID {
		return fmt.Errorf("category %d not found", categoryID)
	}

	words, err := e.words.QueryWords(ctx, models.WordQuery{UserID: userID, CategoryID: categoryID})
	if err != nil {
		return fmt.Errorf("failed to get words: %w", err)
	}

	return WriteWorkbook(w, words)
}

// WriteWorkbook writes words to w: one row per word on the Words sheet and
// per-level totals on the Levels sheet
func WriteWorkbook(w io.Writer, words []models.Word) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), WordsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(LevelsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeRows(f, WordsSheet, wordHeader, wordRows(words), headerStyle); err != nil {
		return err
	}
	if err := writeRows(f, LevelsSheet, levelHeader, levelRows(words), headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(WordsSheet, "A", "B", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(WordsSheet, "H", "I", 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to get header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to get cell name: %w", err)
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

func wordRows(words []models.Word) [][]interface{} {
	rows := make([][]interface{}, 0, len(words))
	for _, w := range words {
		var level interface{} = ""
		if w.HasLevel() {
			level = w.LevelValue()
		}
		rows = append(rows, []interface{}{
			w.Word,
			w.Translation,
			level,
			w.MasteryLevel,
			practice.TierMarker(w.MasteryLevel),
			w.CorrectCount,
			w.IncorrectCount,
			formatTime(w.LastPracticedAt),
			w.CreatedAt.UTC().Format(time.DateOnly),
		})
	}
	return rows
}

type levelTotals struct {
	words     int
	practiced int
	mastery   int
}

// levelRows sums words per level; unleveled words are reported as level 0
func levelRows(words []models.Word) [][]interface{} {
	totals := make(map[int]*levelTotals)
	for _, w := range words {
		t, ok := totals[w.LevelValue()]
		if !ok {
			t = &levelTotals{}
			totals[w.LevelValue()] = t
		}
		t.words++
		t.mastery += w.MasteryLevel
		if w.MasteryLevel > 0 {
			t.practiced++
		}
	}

	levels := make([]int, 0, len(totals))
	for l := range totals {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	rows := make([][]interface{}, 0, len(levels))
	for _, l := range levels {
		t := totals[l]
		avg := float64(t.mastery) / float64(t.words)
		rows = append(rows, []interface{}{l, t.words, t.practiced, avg})
	}
	return rows
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
