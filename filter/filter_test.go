package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parble/parble-go/parble"
)

func testDocument(docType string, confidence float64, fields map[string]string) parble.Document {
	doc := parble.Document{
		Automated: true,
		Classification: parble.Classification{
			Automated:    true,
			DocumentType: docType,
			Confidence:   confidence,
			StartPage:    1,
			EndPage:      2,
		},
		HeaderFields: make(map[string]parble.Field, len(fields)),
	}
	for name, text := range fields {
		doc.HeaderFields[name] = parble.Field{Text: text, Page: 1}
	}
	return doc
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `Type == "invoice"`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `field("unclosed`,
			wantErr:    true,
		},
		{
			name:       "type mismatch",
			expression: `Type + 1 > 0`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `Type == "invoice" and Confidence > 90 and hasField("total") and contains(field("vendor"), "acme")`,
		},
		{
			name:       "fields map access",
			expression: `Fields["total"] != "" and StartPage <= EndPage`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewCompiler().Compile(tt.expression)

			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.True(t, errors.As(err, &compErr))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}
}

func TestMatch(t *testing.T) {
	doc := testDocument("Invoice", 97.5, map[string]string{
		"total":  "1,234.50",
		"vendor": "ACME Corp",
	})

	tests := []struct {
		expression string
		want       bool
	}{
		{`Type == "Invoice"`, true},
		{`lower(Type) == "invoice"`, true},
		{`upper(Type) == "INVOICE"`, true},
		{`Confidence >= 97.5`, true},
		{`Confidence > 99`, false},
		{`Automated`, true},
		{`StartPage == 1 and EndPage == 2`, true},
		{`hasField("total")`, true},
		{`hasField("due_date")`, false},
		{`field("total") == "1,234.50"`, true},
		{`field("missing") == ""`, true},
		{`contains(field("vendor"), "acme")`, true},
		{`startsWith(Type, "inv") and endsWith(Type, "ICE")`, true},
		{`Fields["vendor"] == "ACME Corp"`, true},
		{`len(Fields) == 2`, true},
		{`UnknownVariable == nil`, true},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := Compile(tt.expression)
			require.NoError(t, err)

			got, err := f.Match(0, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchErrors(t *testing.T) {
	doc := testDocument("Receipt", 50, nil)

	t.Run("non boolean result", func(t *testing.T) {
		f, err := Compile(`Confidence`)
		require.NoError(t, err)

		_, err = f.Match(3, doc)
		var evalErr *EvaluationError
		require.True(t, errors.As(err, &evalErr))
		assert.Equal(t, 3, evalErr.Index)
		assert.Equal(t, "Receipt", evalErr.DocumentType)
		assert.Contains(t, err.Error(), "did not return a boolean")
	})

	t.Run("runtime failure", func(t *testing.T) {
		f, err := Compile(`StartPage % (EndPage - EndPage) == 0`)
		require.NoError(t, err)

		_, err = f.Match(0, doc)
		var evalErr *EvaluationError
		assert.True(t, errors.As(err, &evalErr))
	})
}

func TestApply(t *testing.T) {
	file := &parble.File{
		ID: "636baf52b9753d4ce1e210d0",
		Documents: []parble.Document{
			testDocument("Invoice", 99, map[string]string{"total": "10"}),
			testDocument("Receipt", 80, nil),
			testDocument("Invoice", 60, nil),
		},
	}

	f, err := Compile(`Type == "Invoice"`)
	require.NoError(t, err)

	got, err := f.Apply(file)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 99.0, got[0].Classification.Confidence)
	assert.Equal(t, 60.0, got[1].Classification.Confidence)

	f, err = Compile(`Type == "Contract"`)
	require.NoError(t, err)
	got, err = f.Apply(file)
	require.NoError(t, err)
	assert.Empty(t, got)

	f, err = Compile(`Type`)
	require.NoError(t, err)
	_, err = f.Apply(file)
	assert.Error(t, err)
}

func TestCompilerOptions(t *testing.T) {
	t.Run("cache returns the same filter", func(t *testing.T) {
		c := NewCompiler(WithCache(2))

		a, err := c.Compile(`Automated`)
		require.NoError(t, err)
		b, err := c.Compile(`  Automated  `)
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.Equal(t, "Automated", b.String())
	})

	t.Run("cache evicts least recently used", func(t *testing.T) {
		c := NewCompiler(WithCache(2))

		first, _ := c.Compile(`StartPage == 1`)
		_, _ = c.Compile(`StartPage == 2`)
		_, _ = c.Compile(`StartPage == 1`)
		_, _ = c.Compile(`StartPage == 3`)
		assert.Equal(t, 2, c.cache.len())

		again, err := c.Compile(`StartPage == 1`)
		require.NoError(t, err)
		assert.Same(t, first, again)

		_, ok := c.cache.get(`StartPage == 2`)
		assert.False(t, ok)
	})

	t.Run("no cache compiles each time", func(t *testing.T) {
		c := NewCompiler()

		a, _ := c.Compile(`Automated`)
		b, _ := c.Compile(`Automated`)
		assert.NotSame(t, a, b)
	})

	t.Run("custom functions", func(t *testing.T) {
		c := NewCompiler(WithFunctions(map[string]any{
			"isLarge": func(pages int) bool { return pages > 10 },
		}))

		f, err := c.Compile(`isLarge(EndPage - StartPage)`)
		require.NoError(t, err)

		got, err := f.Match(0, testDocument("Invoice", 90, nil))
		require.NoError(t, err)
		assert.False(t, got)
	})
}
