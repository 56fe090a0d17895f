package filter

import (
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/parble/parble-go/parble"
)

// Filter is a compiled document filter expression
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache keeps up to size compiled filters keyed by expression
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newProgramCache(size)
		}
	}
}

// WithFunctions adds custom helper functions available to expressions
func WithFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helpers, funcs)
	}
}

// Compiler compiles filter expressions
type Compiler struct {
	helpers map[string]any
	cache   *programCache
}

// NewCompiler creates a Compiler with the built-in helpers
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helpers: staticHelpers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = NewCompiler(WithCache(32))

// Compile compiles expression with the default compiler
func Compile(expression string) (*Filter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile type checks expression against the document environment
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if f, ok := c.cache.get(expression); ok {
			return f, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.env(parble.Document{})),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     err.Error(),
			Err:        err,
		}
	}

	f := &Filter{
		expression: expression,
		program:    program,
		helpers:    c.helpers,
	}
	if c.cache != nil {
		c.cache.put(f)
	}
	return f, nil
}

// env builds the evaluation environment of a single document
func (c *Compiler) env(doc parble.Document) map[string]any {
	return documentEnv(doc, c.helpers)
}

func documentEnv(doc parble.Document, helpers map[string]any) map[string]any {
	fields := make(map[string]string, len(doc.HeaderFields))
	for name, field := range doc.HeaderFields {
		fields[name] = field.Text
	}

	env := make(map[string]any, len(helpers)+8)
	maps.Copy(env, helpers)

	env["Type"] = doc.Type()
	env["Automated"] = doc.Automated
	env["Confidence"] = doc.Classification.Confidence
	env["StartPage"] = doc.Classification.StartPage
	env["EndPage"] = doc.Classification.EndPage
	env["Fields"] = fields

	env["hasField"] = func(name string) bool {
		_, ok := doc.HeaderFields[name]
		return ok
	}
	env["field"] = func(name string) string {
		return fields[name]
	}

	return env
}

func staticHelpers() map[string]any {
	return map[string]any{
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

// Match reports whether doc satisfies the filter. index is only used in errors.
func (f *Filter) Match(index int, doc parble.Document) (bool, error) {
	result, err := expr.Run(f.program, documentEnv(doc, f.helpers))
	if err != nil {
		return false, &EvaluationError{
			Expression:   f.expression,
			DocumentType: doc.Type(),
			Index:        index,
			Reason:       err.Error(),
			Err:          err,
		}
	}

	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression:   f.expression,
			DocumentType: doc.Type(),
			Index:        index,
			Reason:       "expression did not return a boolean",
		}
	}
	return matched, nil
}

// Apply returns the documents of file matching the filter, in file order
func (f *Filter) Apply(file *parble.File) ([]parble.Document, error) {
	var matched []parble.Document
	for i, doc := range file.All() {
		ok, err := f.Match(i, doc)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

// String returns the original expression
func (f *Filter) String() string {
	return f.expression
}
