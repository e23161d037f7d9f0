// internal/types/errors.go
package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for rule compilation.
var (
	// ErrEmptyRule indicates a rule text parsed to no operands.
	ErrEmptyRule = errors.New("rule expression is empty")

	// ErrNonPositiveCount indicates a count-item threshold of zero or less.
	ErrNonPositiveCount = errors.New("count threshold must be positive")

	// ErrMixedCountOps indicates a bracketed count set mixing & and |.
	ErrMixedCountOps = errors.New("count set mixes & and | operators")

	// ErrUnknownItem indicates a count-item member outside the item/event namespace.
	ErrUnknownItem = errors.New("identifier not in item namespace")

	// ErrUnknownOption indicates a condition naming an unknown option.
	ErrUnknownOption = errors.New("unknown option name")

	// ErrUnknownOptionValue indicates an unresolvable enumerated option value.
	ErrUnknownOptionValue = errors.New("unknown option value name")

	// ErrMixedComparison indicates a comparison that does not pair exactly
	// one option name with one literal.
	ErrMixedComparison = errors.New("comparison must pair one option name with one literal")

	// ErrLiteralCondition indicates a bare condition leaf that is a literal
	// rather than an option name.
	ErrLiteralCondition = errors.New("bare condition leaf must name an option")

	// ErrMixedMapping indicates a brace collection mixing set members with
	// key-value entries.
	ErrMixedMapping = errors.New("brace collection mixes set and mapping entries")
)

// SyntaxError reports a malformed rule string with the offending position.
// Syntax errors are fatal to loading the whole ruleset: rules are validated
// exhaustively at load time, never lazily.
type SyntaxError struct {
	Input  string
	Line   int
	Column int
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	remainder := e.Input
	if e.Offset > 0 && e.Offset < len(e.Input) {
		remainder = e.Input[e.Offset:]
	}
	return fmt.Sprintf("syntax error at %d:%d near %q: %s", e.Line, e.Column, remainder, e.Msg)
}

// SemanticError reports a rule that parsed but failed validation. Gate and
// Text locate the authoring mistake; loading the ruleset aborts on the
// first one.
type SemanticError struct {
	Gate string
	Text string
	Err  error
}

func (e *SemanticError) Error() string {
	if e.Gate != "" {
		return fmt.Sprintf("gate %q (%q): %v", e.Gate, e.Text, e.Err)
	}
	return fmt.Sprintf("rule %q: %v", e.Text, e.Err)
}

func (e *SemanticError) Unwrap() error {
	return e.Err
}
