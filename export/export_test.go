package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/parble/parble-go/parble"
)

func testFile() *parble.File {
	return &parble.File{
		ID:            "636baf52b9753d4ce1e210d0",
		Filename:      "invoice.pdf",
		Automated:     true,
		NumberOfPages: 2,
		Timings: &parble.Timings{
			Upload: parble.NewTimestamp(time.Date(2022, 11, 9, 13, 45, 12, 0, time.UTC)),
		},
		Documents: []parble.Document{
			{
				Automated: true,
				Classification: parble.Classification{
					Automated:    true,
					DocumentType: "Invoice",
					Confidence:   98.5,
					StartPage:    1,
					EndPage:      1,
				},
				HeaderFields: map[string]parble.Field{
					"vendor": {Page: 1, Text: "ACME <Corp>", Value: "ACME <Corp>", Confidence: 95, Automated: true},
					"total":  {Page: 1, Text: "1,234.50", Value: 1234.5, Confidence: 88, Automated: true},
				},
			},
			{
				Automated: false,
				Classification: parble.Classification{
					DocumentType: "Receipt",
					Confidence:   70,
					StartPage:    2,
					EndPage:      2,
				},
				HeaderFields: map[string]parble.Field{
					"date": {Page: 2, Text: "2022-11-01", Value: "2022-11-01", Confidence: 60},
				},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"pdf", FormatPDF, false},
		{"xlsx", FormatXLSX, false},
		{"csv", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "json, yaml, pdf, xlsx")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, FormatPDF.Binary())
	assert.True(t, FormatXLSX.Binary())
	assert.False(t, FormatJSON.Binary())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testFile()))

	out := buf.String()
	assert.Contains(t, out, `"upload": "2022-11-09 13:45:12"`)
	assert.Contains(t, out, "ACME <Corp>", "HTML is not escaped")
	assert.True(t, strings.HasSuffix(out, "}\n"))

	parsed, err := parble.ParseFile(buf.Bytes(), nil)
	require.NoError(t, err)
	assert.True(t, testFile().Equal(parsed))
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, testFile()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "636baf52b9753d4ce1e210d0", got["id"])
	assert.Equal(t, 2, got["number_of_pages"])

	timings, ok := got["timings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2022-11-09 13:45:12", timings["upload"])

	docs, ok := got["documents"].([]any)
	require.True(t, ok)
	assert.Len(t, docs, 2)

	// The YAML document carries the same data as the JSON one
	var fromJSON bytes.Buffer
	require.NoError(t, WriteJSON(&fromJSON, testFile()))
	var jsonMap map[string]any
	require.NoError(t, json.Unmarshal(fromJSON.Bytes(), &jsonMap))
	assert.Len(t, got, len(jsonMap))
}

func TestHeaderFieldsXLSX(t *testing.T) {
	data, err := HeaderFieldsXLSX(testFile())
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{FieldsSheet}, wb.GetSheetList())

	rows, err := wb.GetRows(FieldsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, fieldsHeaders, rows[0])
	assert.Equal(t, []string{"1", "Invoice", "total", "1,234.50", "1234.5", "88", "1"}, rows[1])
	assert.Equal(t, []string{"1", "Invoice", "vendor", "ACME <Corp>", "ACME <Corp>", "95", "1"}, rows[2])
	assert.Equal(t, []string{"2", "Receipt", "date", "2022-11-01", "2022-11-01", "60", "2"}, rows[3])
}

func TestHeaderFieldsXLSXEmpty(t *testing.T) {
	data, err := HeaderFieldsXLSX(&parble.File{ID: "636baf52b9753d4ce1e210d0"})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(FieldsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(nil))
	assert.Equal(t, 1.5, cellValue(1.5))
	assert.Equal(t, "x", cellValue("x"))
	assert.Equal(t, "map[a:1]", cellValue(map[string]any{"a": 1}))
	assert.Equal(t, "[1 2]", cellValue([]any{1, 2}))
}
