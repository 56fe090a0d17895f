package export

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/parble/parble-go/parble"
)

// FieldsSheet is the sheet written by HeaderFieldsXLSX
const FieldsSheet = "Fields"

var fieldsHeaders = []string{"Document", "Type", "Field", "Text", "Value", "Confidence", "Page"}

// HeaderFieldsXLSX builds a workbook with one row per extracted header field.
// Documents keep the file order and fields are sorted by name.
func HeaderFieldsXLSX(file *parble.File) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", FieldsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range fieldsHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(FieldsSheet, cell, h)
	}

	row := 2
	for i, doc := range file.All() {
		names := make([]string, 0, len(doc.HeaderFields))
		for name := range doc.HeaderFields {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			field := doc.HeaderFields[name]
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(FieldsSheet, cell, v)
			}

			write(1, i+1)
			write(2, doc.Type())
			write(3, name)
			write(4, field.Text)
			write(5, cellValue(field.Value))
			write(6, field.Confidence)
			write(7, field.Page)
			row++
		}
	}

	_ = f.SetColWidth(FieldsSheet, "A", "A", 10)
	_ = f.SetColWidth(FieldsSheet, "B", "C", 22)
	_ = f.SetColWidth(FieldsSheet, "D", "E", 40)
	_ = f.SetColWidth(FieldsSheet, "F", "G", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue keeps scalars as they are and prints anything else
func cellValue(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, int:
		return v
	default:
		return fmt.Sprint(v)
	}
}
