// internal/parser/lexer.go
package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

/*
 * Shared token set and grammar construction.
 *
 * One lexer feeds all three grammars (rule expression, option condition,
 * conditional-branch chain). Grammar owns the compiled parsers; nothing in
 * this package keeps module-level mutable state, so a Grammar value can be
 * constructed once per engine and passed around explicitly.
 *
 * Token ordering matters: integer literals precede identifiers so 0x1F does
 * not split, and comparison operators precede punctuation so <= lexes as a
 * single token.
 */

// Grammar owns the three compiled parsers for the rule language.
type Grammar struct {
	rule   *participle.Parser[ruleExpr]
	cond   *participle.Parser[condExpr]
	branch *participle.Parser[branchExpr]
}

// New constructs the grammar. The result is immutable and safe to share.
func New() *Grammar {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Int", Pattern: `0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+|\d+`},
		{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
		{Name: "Cmp", Pattern: `==|!=|<=|>=|<|>`},
		{Name: "Punct", Pattern: `[()\[\]{}&|!*,:]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})
	opts := []participle.Option{
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	}
	return &Grammar{
		rule:   participle.MustBuild[ruleExpr](opts...),
		cond:   participle.MustBuild[condExpr](opts...),
		branch: participle.MustBuild[branchExpr](opts...),
	}
}
