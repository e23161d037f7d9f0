// internal/parser/errors.go
package parser

import (
	"errors"

	"github.com/alecthomas/participle/v2"
	"github.com/ferrule/gatekeep/internal/types"
)

// syntaxError converts a participle failure into a types.SyntaxError
// carrying the position and the unconsumed remainder of the input.
func syntaxError(input string, err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return &types.SyntaxError{
			Input:  input,
			Line:   pos.Line,
			Column: pos.Column,
			Offset: pos.Offset,
			Msg:    perr.Message(),
		}
	}
	return err
}
