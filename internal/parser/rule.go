// internal/parser/rule.go
package parser

import (
	"strconv"

	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Rule expression grammar.
 *
 * & (AND) binds tighter than | (OR), both left-associative; parentheses
 * group. Operands are bare identifiers, function calls with structured
 * arguments, and counted-item forms ident*N / [a&b&c]*N / [a|b|c]*N.
 *
 * Associative chains flatten during the fold, not as a post-pass: folding a
 * same-operator chain feeds any child Rule with the same operator directly
 * into the new child list via types.NewRule.
 */

type ruleExpr struct {
	First *ruleAnd   `parser:"@@"`
	Rest  []*ruleAnd `parser:"( '|' @@ )*"`
}

type ruleAnd struct {
	First *ruleTerm   `parser:"@@"`
	Rest  []*ruleTerm `parser:"( '&' @@ )*"`
}

type ruleTerm struct {
	Count *countExpr `parser:"  @@"`
	Call  *callExpr  `parser:"| @@"`
	Name  *string    `parser:"| @Ident"`
	Group *ruleExpr  `parser:"| '(' @@ ')'"`
}

type countExpr struct {
	Name *string   `parser:"( @Ident"`
	Set  *countSet `parser:"| @@ )"`
	N    string    `parser:"'*' @Int"`
}

type countSet struct {
	First string          `parser:"'[' @Ident"`
	Rest  []*countSetTail `parser:"@@* ']'"`
}

type countSetTail struct {
	Op   string `parser:"@('&' | '|')"`
	Name string `parser:"@Ident"`
}

type callExpr struct {
	Name string     `parser:"@Ident '('"`
	Args []*argExpr `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type argExpr struct {
	Int  *string      `parser:"  @Int"`
	Name *string      `parser:"| @Ident"`
	List *argListExpr `parser:"| @@"`
	Coll *argCollExpr `parser:"| @@"`
}

type argListExpr struct {
	Items []*argExpr `parser:"'[' ( @@ ( ',' @@ )* )? ']'"`
}

type argCollExpr struct {
	Items []*argCollItem `parser:"'{' ( @@ ( ',' @@ )* )? '}'"`
}

type argCollItem struct {
	Key   *argExpr `parser:"@@"`
	Value *argExpr `parser:"( ':' @@ )?"`
}

// ParseRule parses a rule expression into the IR. Bare operands normalize
// into a single-child AND rule.
func (g *Grammar) ParseRule(text string) (types.Rule, error) {
	ast, err := g.rule.ParseString("", text)
	if err != nil {
		return types.Rule{}, syntaxError(text, err)
	}
	node, err := foldRuleExpr(ast)
	if err != nil {
		return types.Rule{}, err
	}
	if rule, ok := node.(types.Rule); ok {
		return rule, nil
	}
	return types.NewRule(types.OpAnd, node), nil
}

func foldRuleExpr(e *ruleExpr) (types.RuleNode, error) {
	first, err := foldRuleAnd(e.First)
	if err != nil {
		return nil, err
	}
	if len(e.Rest) == 0 {
		return first, nil
	}
	children := []types.RuleNode{first}
	for _, and := range e.Rest {
		node, err := foldRuleAnd(and)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return types.NewRule(types.OpOr, children...), nil
}

func foldRuleAnd(a *ruleAnd) (types.RuleNode, error) {
	first, err := foldRuleTerm(a.First)
	if err != nil {
		return nil, err
	}
	if len(a.Rest) == 0 {
		return first, nil
	}
	children := []types.RuleNode{first}
	for _, term := range a.Rest {
		node, err := foldRuleTerm(term)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return types.NewRule(types.OpAnd, children...), nil
}

func foldRuleTerm(t *ruleTerm) (types.RuleNode, error) {
	switch {
	case t.Count != nil:
		return foldCount(t.Count)
	case t.Call != nil:
		return foldCall(t.Call)
	case t.Name != nil:
		return types.Identifier(*t.Name), nil
	case t.Group != nil:
		return foldRuleExpr(t.Group)
	}
	return nil, types.ErrEmptyRule
}

func foldCount(c *countExpr) (types.RuleNode, error) {
	n, err := parseInt(c.N)
	if err != nil {
		return nil, err
	}
	// A bare identifier before *N is shorthand for a singleton AND set.
	if c.Name != nil {
		return types.CountItem{
			Items: []types.Identifier{types.Identifier(*c.Name)},
			Op:    types.OpAnd,
			Count: n,
		}, nil
	}
	items := []types.Identifier{types.Identifier(c.Set.First)}
	op := types.OpAnd
	for i, tail := range c.Set.Rest {
		tailOp := types.OpAnd
		if tail.Op == "|" {
			tailOp = types.OpOr
		}
		if i == 0 {
			op = tailOp
		} else if tailOp != op {
			return nil, types.ErrMixedCountOps
		}
		items = append(items, types.Identifier(tail.Name))
	}
	return types.CountItem{Items: items, Op: op, Count: n}, nil
}

func foldCall(c *callExpr) (types.RuleNode, error) {
	args := make([]types.Arg, 0, len(c.Args))
	for _, arg := range c.Args {
		folded, err := foldArg(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, folded)
	}
	return types.FuncCall{Name: c.Name, Args: args}, nil
}

func foldArg(a *argExpr) (types.Arg, error) {
	switch {
	case a.Int != nil:
		n, err := parseInt(*a.Int)
		if err != nil {
			return nil, err
		}
		return types.ArgInt(n), nil
	case a.Name != nil:
		return types.ArgName(*a.Name), nil
	case a.List != nil:
		items := make(types.ArgList, 0, len(a.List.Items))
		for _, item := range a.List.Items {
			folded, err := foldArg(item)
			if err != nil {
				return nil, err
			}
			items = append(items, folded)
		}
		return items, nil
	case a.Coll != nil:
		return foldColl(a.Coll)
	}
	return nil, types.ErrEmptyRule
}

// foldColl decides between a set and a mapping: a brace collection is a
// mapping when every entry carries a value, a set when none does.
func foldColl(c *argCollExpr) (types.Arg, error) {
	mapping := false
	for i, item := range c.Items {
		hasValue := item.Value != nil
		if i == 0 {
			mapping = hasValue
		} else if hasValue != mapping {
			return nil, types.ErrMixedMapping
		}
	}
	if mapping {
		pairs := make(types.ArgMap, 0, len(c.Items))
		for _, item := range c.Items {
			key, err := foldArg(item.Key)
			if err != nil {
				return nil, err
			}
			value, err := foldArg(item.Value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, types.ArgPair{Key: key, Value: value})
		}
		return pairs, nil
	}
	set := make(types.ArgSet, 0, len(c.Items))
	for _, item := range c.Items {
		member, err := foldArg(item.Key)
		if err != nil {
			return nil, err
		}
		set = append(set, member)
	}
	return set, nil
}

// parseInt accepts decimal plus 0x/0o/0b forms.
func parseInt(s string) (int, error) {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
