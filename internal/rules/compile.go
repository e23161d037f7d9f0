// internal/rules/compile.go
package rules

import (
	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Rule compilation.
 *
 * Compiles parsed IR into closure predicates over the collection-state
 * capability. No textual code is generated anywhere: grouping that the
 * original string emitter handled with parentheses is structural here, a
 * nested closure evaluates exactly once with standard precedence.
 *
 * Compilation workflow per gate:
 *   1. Parse the text into a branch chain
 *   2. Validate (thresholds, namespaces, option names)
 *   3. Select the first branch whose condition holds under the options
 *   4. Compile that branch's rule into a predicate
 *
 * Branch selection happens at compile time: configuration is fixed for the
 * whole generation run, so the losing branches never cost anything at
 * evaluation time. A chain with no matching branch and no unconditional
 * terminus compiles to the always-passable fallback, not an error.
 */

// Compile parses, validates, and compiles one gate's rule text.
func (e *Engine) Compile(text string) (Predicate, error) {
	rw, err := e.grammar.ParseBranches(text)
	if err != nil {
		return nil, err
	}
	if err := e.ValidateBranches(rw); err != nil {
		if _, ok := err.(*types.SemanticError); !ok {
			err = &types.SemanticError{Text: text, Err: err}
		}
		return nil, err
	}
	return e.CompileBranches(rw), nil
}

// CompileBranches selects the first branch whose condition holds and
// compiles its rule. Branches are tested outermost-first; conditions are
// decided against the configuration, never the collection state.
func (e *Engine) CompileBranches(rw types.RuleWithOpts) Predicate {
	for _, br := range rw.Branches {
		if br.Cond == nil || e.EvalCondition(br.Cond) {
			return e.compileRule(br.Rule, true)
		}
	}
	return AlwaysTrue
}

// compileRule lowers one rule node into a predicate.
//
// Children partition into direct items (identifiers resolvable in the
// item/event namespace) and compound children (nested rules, function
// calls, count checks, common-rule indirections). Direct items batch into a
// single has_all/has_any call when there is more than one; the batched form
// follows the node's own operator.
func (e *Engine) compileRule(r types.Rule, root bool) Predicate {
	// Top-level single-child special case: a lone identifier outside the
	// item namespace is a direct indirection into the common-rule table.
	if root && len(r.Children) == 1 {
		if id, ok := r.Children[0].(types.Identifier); ok && !e.isItem(id) {
			return e.commonRule(string(id))
		}
	}

	var direct []string
	var compound []Predicate
	for _, child := range r.Children {
		switch node := child.(type) {
		case types.Identifier:
			if e.isItem(node) {
				direct = append(direct, e.label(node))
			} else {
				compound = append(compound, e.commonRule(string(node)))
			}
		case types.Rule:
			compound = append(compound, e.compileRule(node, false))
		case types.FuncCall:
			compound = append(compound, e.funcCall(node))
		case types.CountItem:
			compound = append(compound, e.countCheck(node))
		}
	}

	checks := make([]Predicate, 0, len(compound)+1)
	switch len(direct) {
	case 0:
	case 1:
		item := direct[0]
		checks = append(checks, func(s CollectionState) bool { return s.Has(item) })
	default:
		items := direct
		if r.Op == types.OpAnd {
			checks = append(checks, func(s CollectionState) bool { return s.HasAll(items) })
		} else {
			checks = append(checks, func(s CollectionState) bool { return s.HasAny(items) })
		}
	}
	checks = append(checks, compound...)

	switch len(checks) {
	case 0:
		return AlwaysTrue
	case 1:
		return checks[0]
	}
	if r.Op == types.OpAnd {
		return allOf(checks)
	}
	return anyOf(checks)
}

// commonRule indirects into the caller-owned table. Lookup is deferred to
// evaluation time because callers populate the table after compilation.
func (e *Engine) commonRule(name string) Predicate {
	return func(s CollectionState) bool {
		if p, ok := e.env.Common[name]; ok {
			return p(s)
		}
		return false
	}
}

// funcCall invokes a registered function against its verbatim arguments.
// The built predicate is memoized on first use; the table is read-only by
// the time any evaluator runs.
func (e *Engine) funcCall(call types.FuncCall) Predicate {
	var built Predicate
	return func(s CollectionState) bool {
		if built == nil {
			fn, ok := e.env.Funcs[call.Name]
			if !ok {
				return false
			}
			built = fn(call.Args)
		}
		return built(s)
	}
}

// countCheck delegates to the host's counted-set capability.
func (e *Engine) countCheck(c types.CountItem) Predicate {
	items := make([]string, len(c.Items))
	for i, id := range c.Items {
		items[i] = e.label(id)
	}
	n, op := c.Count, c.Op
	return func(s CollectionState) bool { return s.HasCount(items, n, op) }
}

// allOf short-circuits left to right on the first false check.
func allOf(checks []Predicate) Predicate {
	return func(s CollectionState) bool {
		for _, check := range checks {
			if !check(s) {
				return false
			}
		}
		return true
	}
}

// anyOf short-circuits left to right on the first true check.
func anyOf(checks []Predicate) Predicate {
	return func(s CollectionState) bool {
		for _, check := range checks {
			if check(s) {
				return true
			}
		}
		return false
	}
}
