package syntax

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/token"
)

// Violation is one located breach of a policy.
type Violation struct {
	Code     Code       // what was breached
	Message  string     // human readable detail
	Name     string     // offending identifier, keyword, property or callee, if any
	Span     token.Span // source range of the offending node
	Severity Severity   // always SeverityError
}

// NewViolation returns an error-severity violation located at node.
func NewViolation(code Code, node *ast.Node, format string, args ...any) Violation {
	return Violation{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     node.Span,
		Severity: SeverityError,
	}
}

// Error implements the error interface.
func (v Violation) Error() string {
	pos := v.Span.Start
	return fmt.Sprintf("%s: %s (%d:%d)", v.Code, v.Message, pos.LineNumber(), pos.ColumnNumber())
}

// Validator inspects a tree and returns violations. Validators must not
// modify the tree and must be safe for concurrent use.
type Validator interface {
	// Validate checks the tree rooted at program. Every breach is reported,
	// in source order.
	Validate(program *ast.Node) []Violation
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(*ast.Node) []Violation

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(program *ast.Node) []Violation {
	return f(program)
}

// Chain returns a Validator that runs each validator in turn and
// concatenates their results.
func Chain(validators ...Validator) Validator {
	return ValidatorFunc(func(program *ast.Node) []Violation {
		var all []Violation
		for _, v := range validators {
			if v == nil {
				continue
			}
			all = append(all, v.Validate(program)...)
		}
		return all
	})
}

// Join aggregates violations into a single error whose text has one line
// per violation. It returns nil when there are none.
func Join(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	var errs *multierror.Error
	for _, v := range violations {
		errs = multierror.Append(errs, v)
	}
	errs.ErrorFormat = formatViolations
	return errs
}

func formatViolations(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}
