// internal/parser/branch.go
package parser

import (
	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Conditional-branch grammar: `<rule> [if <condition> [else <branch>]]`.
 *
 * The grammar is right-recursive on else, but branch priority is
 * left-to-right: the first `if` in the text is the first condition tested.
 * The fold therefore prepends each (condition, rule) pair to the list the
 * recursive else parse produced. Appending here would silently reverse
 * selection priority.
 */

type branchExpr struct {
	Rule *ruleExpr   `parser:"@@"`
	Cond *condExpr   `parser:"( 'if' @@"`
	Else *branchExpr `parser:"( 'else' @@ )? )?"`
}

// ParseBranches parses a full gate rule text into its branch chain,
// ordered outermost first.
func (g *Grammar) ParseBranches(text string) (types.RuleWithOpts, error) {
	ast, err := g.branch.ParseString("", text)
	if err != nil {
		return types.RuleWithOpts{}, syntaxError(text, err)
	}
	rw, err := foldBranch(ast)
	if err != nil {
		if _, ok := err.(*types.SemanticError); !ok {
			err = &types.SemanticError{Text: text, Err: err}
		}
		return types.RuleWithOpts{}, err
	}
	return rw, nil
}

func foldBranch(b *branchExpr) (types.RuleWithOpts, error) {
	node, err := foldRuleExpr(b.Rule)
	if err != nil {
		return types.RuleWithOpts{}, err
	}
	rule, ok := node.(types.Rule)
	if !ok {
		rule = types.NewRule(types.OpAnd, node)
	}
	if b.Cond == nil {
		return types.RuleWithOpts{Branches: []types.Branch{{Rule: rule}}}, nil
	}
	cond, err := foldCondExpr(b.Cond)
	if err != nil {
		return types.RuleWithOpts{}, err
	}
	head := types.Branch{Cond: cond, Rule: rule}
	if b.Else == nil {
		return types.RuleWithOpts{Branches: []types.Branch{head}}, nil
	}
	rest, err := foldBranch(b.Else)
	if err != nil {
		return types.RuleWithOpts{}, err
	}
	return types.RuleWithOpts{Branches: append([]types.Branch{head}, rest.Branches...)}, nil
}
