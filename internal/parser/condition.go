// internal/parser/condition.go
package parser

import (
	"strings"

	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Option-condition grammar.
 *
 * ! binds tighter than & which binds tighter than |; parentheses override.
 * A leaf is a bare option name (truthy check, normalized to option != 0) or
 * a comparison pairing exactly one option name with one literal. Literals
 * are integers or enumerated option-value names carrying the reserved
 * prefix; everything else is an option name.
 *
 * Negation folds structurally: a negated leaf rewrites its operator through
 * the inversion table, a negated compound toggles its invert flag, and a
 * double negation cancels before any IR survives it.
 */

// OptionValuePrefix marks enumerated option-value names in rule text.
const OptionValuePrefix = "opt_"

type condExpr struct {
	First *condAnd   `parser:"@@"`
	Rest  []*condAnd `parser:"( '|' @@ )*"`
}

type condAnd struct {
	First *condUnary   `parser:"@@"`
	Rest  []*condUnary `parser:"( '&' @@ )*"`
}

type condUnary struct {
	Not   *condUnary `parser:"  '!' @@"`
	Group *condExpr  `parser:"| '(' @@ ')'"`
	Leaf  *condLeaf  `parser:"| @@"`
}

type condLeaf struct {
	Left  *condOperand `parser:"@@"`
	Op    *string      `parser:"( @Cmp"`
	Right *condOperand `parser:"@@ )?"`
}

type condOperand struct {
	Int  *string `parser:"  @Int"`
	Name *string `parser:"| @Ident"`
}

// ParseCondition parses an option condition into the IR. A single
// comparison folds to a bare ConditionNode rather than a one-child tree.
func (g *Grammar) ParseCondition(text string) (types.CondNode, error) {
	ast, err := g.cond.ParseString("", text)
	if err != nil {
		return nil, syntaxError(text, err)
	}
	node, err := foldCondExpr(ast)
	if err != nil {
		return nil, &types.SemanticError{Text: text, Err: err}
	}
	return node, nil
}

func foldCondExpr(e *condExpr) (types.CondNode, error) {
	first, err := foldCondAnd(e.First)
	if err != nil {
		return nil, err
	}
	if len(e.Rest) == 0 {
		return first, nil
	}
	children := []types.CondNode{first}
	for _, and := range e.Rest {
		node, err := foldCondAnd(and)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return types.NewCondition(types.OpOr, children...), nil
}

func foldCondAnd(a *condAnd) (types.CondNode, error) {
	first, err := foldCondUnary(a.First)
	if err != nil {
		return nil, err
	}
	if len(a.Rest) == 0 {
		return first, nil
	}
	children := []types.CondNode{first}
	for _, unary := range a.Rest {
		node, err := foldCondUnary(unary)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return types.NewCondition(types.OpAnd, children...), nil
}

func foldCondUnary(u *condUnary) (types.CondNode, error) {
	switch {
	case u.Not != nil:
		inner, err := foldCondUnary(u.Not)
		if err != nil {
			return nil, err
		}
		return inner.Negate(), nil
	case u.Group != nil:
		return foldCondExpr(u.Group)
	case u.Leaf != nil:
		return foldCondLeaf(u.Leaf)
	}
	return nil, types.ErrLiteralCondition
}

func foldCondLeaf(l *condLeaf) (types.CondNode, error) {
	if l.Op == nil {
		// Bare leaf: option is truthy.
		option, ok := operandOption(l.Left)
		if !ok {
			return nil, types.ErrLiteralCondition
		}
		return types.ConditionNode{Option: option, Op: types.CmpNe, Value: types.CondValue{Int: 0}}, nil
	}

	op, err := parseCmp(*l.Op)
	if err != nil {
		return nil, err
	}
	leftOption, leftIsOption := operandOption(l.Left)
	rightOption, rightIsOption := operandOption(l.Right)
	switch {
	case leftIsOption && rightIsOption, !leftIsOption && !rightIsOption:
		return nil, types.ErrMixedComparison
	case leftIsOption:
		value, err := operandValue(l.Right)
		if err != nil {
			return nil, err
		}
		return types.ConditionNode{Option: leftOption, Op: op, Value: value}, nil
	default:
		// Literal-first comparison: normalize to option-first.
		value, err := operandValue(l.Left)
		if err != nil {
			return nil, err
		}
		return types.ConditionNode{Option: rightOption, Op: op.Mirror(), Value: value}, nil
	}
}

// operandOption reports whether the operand names a configuration option.
// Integers and prefix-reserved value names are literals, not options.
func operandOption(o *condOperand) (string, bool) {
	if o.Name == nil || strings.HasPrefix(*o.Name, OptionValuePrefix) {
		return "", false
	}
	return *o.Name, true
}

func operandValue(o *condOperand) (types.CondValue, error) {
	if o.Name != nil {
		return types.CondValue{Name: *o.Name}, nil
	}
	n, err := parseInt(*o.Int)
	if err != nil {
		return types.CondValue{}, err
	}
	return types.CondValue{Int: n}, nil
}

func parseCmp(s string) (types.CmpOp, error) {
	switch s {
	case "==":
		return types.CmpEq, nil
	case "!=":
		return types.CmpNe, nil
	case "<":
		return types.CmpLt, nil
	case "<=":
		return types.CmpLe, nil
	case ">":
		return types.CmpGt, nil
	case ">=":
		return types.CmpGe, nil
	}
	return 0, types.ErrMixedComparison
}
