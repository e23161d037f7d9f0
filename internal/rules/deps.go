// internal/rules/deps.go
package rules

import (
	"sort"
	"strings"

	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Static dependency extraction.
 *
 * Walks the IR of every branch chain, without any collection state, to
 * answer: under which configurations is each item required to pass at least
 * one gate? World generation uses the answer before placement begins.
 *
 * Branch i of a chain is selected iff its own condition holds and no
 * earlier condition does, so the effective requirement condition for the
 * items inside branch i is AND(negate(C0..Ci-1), Ci), the trailing Ci
 * absent for the unconditional terminus. A forward walk accumulating the
 * earlier conditions carries that formula to any branch count; the
 * three-branch case is pinned by tests alongside a property comparing the
 * extractor against brute-force branch selection.
 *
 * One pass per chain suffices: conditions reference only configuration,
 * never items, so there is no fixpoint to iterate.
 */

// ItemConditions maps each item identifier to the conditions under which it
// is required. A key present with a nil slice means the item is required
// under every configuration; that entry dominates and absorbs any
// conditional requirements recorded for the same item.
type ItemConditions map[types.Identifier][]types.CondNode

// add records one requirement. A nil cond marks the item unconditionally
// required.
func (ic ItemConditions) add(item types.Identifier, cond types.CondNode) {
	if cond == nil {
		ic[item] = nil
		return
	}
	if existing, ok := ic[item]; ok && existing == nil {
		return
	}
	ic[item] = append(ic[item], cond)
}

// AddAll marks every given identifier unconditionally required, regardless
// of anything recorded from rule walks.
func (ic ItemConditions) AddAll(items []string) {
	for _, item := range items {
		ic[types.Identifier(item)] = nil
	}
}

// Restrict drops entries that are not concrete items, removing common-rule
// indirections swept up by the identifier walk.
func (ic ItemConditions) Restrict(isItem func(types.Identifier) bool) {
	for item := range ic {
		if !isItem(item) {
			delete(ic, item)
		}
	}
}

// Required reports the recorded requirement for an item: ok is false when
// the item is never required, always is true for a nil entry, and conds
// carries the OR-combined condition list otherwise.
func (ic ItemConditions) Required(item types.Identifier) (conds []types.CondNode, always, ok bool) {
	conds, ok = ic[item]
	if !ok {
		return nil, false, false
	}
	return conds, conds == nil, true
}

// RequiredUnder decides whether an item is required under one
// configuration, using the caller's condition evaluator.
func (ic ItemConditions) RequiredUnder(item types.Identifier, eval func(types.CondNode) bool) bool {
	conds, always, ok := ic.Required(item)
	if !ok {
		return false
	}
	if always {
		return true
	}
	for _, cond := range conds {
		if eval(cond) {
			return true
		}
	}
	return false
}

// Items returns the recorded identifiers in sorted order for deterministic
// reporting.
func (ic ItemConditions) Items() []types.Identifier {
	items := make([]types.Identifier, 0, len(ic))
	for item := range ic {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}

// CondString renders an item's requirement for reporting: "always" for a
// nil entry, the OR-joined condition list otherwise.
func (ic ItemConditions) CondString(item types.Identifier) string {
	conds, always, ok := ic.Required(item)
	if !ok {
		return "never"
	}
	if always {
		return "always"
	}
	parts := make([]string, len(conds))
	for i, cond := range conds {
		parts[i] = condString(cond)
	}
	return strings.Join(parts, " | ")
}

func condString(c types.CondNode) string {
	switch node := c.(type) {
	case types.ConditionNode:
		return node.String()
	case types.Condition:
		return node.String()
	}
	return "?"
}

// ExtractItemConditions builds the per-item requirement map for a set of
// branch chains and restricts it to the engine's item/event namespace.
func (e *Engine) ExtractItemConditions(chains []types.RuleWithOpts) ItemConditions {
	acc := make(ItemConditions)
	for _, rw := range chains {
		extractChain(rw, acc)
	}
	acc.Restrict(e.isItem)
	return acc
}

// extractChain registers every item of every branch under that branch's
// effective reachability condition.
func extractChain(rw types.RuleWithOpts, acc ItemConditions) {
	var earlier []types.CondNode
	for _, br := range rw.Branches {
		var parts []types.CondNode
		for _, cond := range earlier {
			parts = append(parts, cond.Negate())
		}
		if br.Cond != nil {
			parts = append(parts, br.Cond)
			earlier = append(earlier, br.Cond)
		}

		var effective types.CondNode
		switch len(parts) {
		case 0:
			// first and unconditional: required under every configuration
		case 1:
			effective = parts[0]
		default:
			effective = types.NewCondition(types.OpAnd, parts...)
		}

		items := make(map[types.Identifier]struct{})
		br.Rule.DependentItems(items)
		for item := range items {
			acc.add(item, effective)
		}
	}
}
