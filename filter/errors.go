package filter

import (
	"fmt"
)

// Error types for filter operations
type (
	// CompilationError indicates a filter expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// EvaluationError indicates a filter could not be evaluated against a document
	EvaluationError struct {
		Expression   string
		DocumentType string
		Index        int
		Reason       string
		Err          error
	}
)

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for filter '%s' on document %d (%s): %s", e.Expression, e.Index, e.DocumentType, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
