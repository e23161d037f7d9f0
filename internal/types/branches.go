// internal/types/branches.go
package types

/*
 * Conditional-branch chain IR.
 *
 * A gate's rule text `R0 if C0 else R1 if C1 else R2` parses into an
 * ordered list of (condition, rule) pairs, outermost first. Selection picks
 * the first pair whose condition holds under the configuration; the pair
 * order is therefore load-bearing and the branch parser prepends as it
 * unwinds its right recursion.
 */

// Branch pairs a rule with the condition under which it applies. A nil
// condition marks the unconditional terminus; only the last branch of a
// chain may carry one.
type Branch struct {
	Cond CondNode
	Rule Rule
}

// RuleWithOpts is the ordered branch chain for one gate, outermost first.
// A chain with no unconditional terminus falls back to always-passable
// when no condition matches.
type RuleWithOpts struct {
	Branches []Branch
}

// DependentItems records into acc every identifier any branch of the chain
// can require. Callers own acc and must pass a freshly constructed map.
func (rw RuleWithOpts) DependentItems(acc map[Identifier]struct{}) {
	for _, br := range rw.Branches {
		br.Rule.DependentItems(acc)
	}
}
