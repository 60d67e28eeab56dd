package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/unibrain/backend/internal/models"
)

const (
	sheetName = "Extracted"
	// Excel rejects cells longer than this.
	maxCellChars = 32767
)

var workbookHeader = []interface{}{"Position", "File", "Format", "Characters", "Words", "Status", "Text"}

// Workbook returns a spreadsheet with one row per extracted file.
func Workbook(name string, docs []models.ExtractedDocument) (*models.ExportedDocument, error) {
	if name == "" {
		name = ExtractSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &workbookHeader); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(sheetName, "A1", "G1", bold)
	}
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "G", "G", 100)

	for i, d := range docs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		status := string(models.FileStatusExtracted)
		if d.Error != "" {
			status = d.Error
		}
		row := []interface{}{
			d.Position + 1,
			d.Name,
			string(d.Format),
			utf8.RuneCountInString(d.Text),
			countWords(d.Text),
			status,
			clip(d.Text, maxCellChars),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	return &models.ExportedDocument{
		FileName:    name,
		ContentType: ContentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
