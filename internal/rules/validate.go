// internal/rules/validate.go
package rules

import (
	"fmt"

	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Load-time validation.
 *
 * Enforcing these checks at compilation moves authoring mistakes to ruleset
 * load time rather than evaluation time: a ruleset either loads entirely or
 * is rejected on the first failure.
 *
 * Checked here:
 *   - count thresholds are positive
 *   - count-item members exist in the item/event namespace (the counted-set
 *     capability needs concrete labels)
 *   - condition option names resolve against the configuration source
 *   - enumerated option-value names resolve
 *
 * Bare identifiers are deliberately not checked: one outside the item
 * namespace is a common-rule indirection, and the common-rule table may be
 * populated after compilation.
 */

// ValidateBranches checks every branch of a chain.
func (e *Engine) ValidateBranches(rw types.RuleWithOpts) error {
	for _, br := range rw.Branches {
		if br.Cond != nil {
			if err := e.validateCond(br.Cond); err != nil {
				return err
			}
		}
		if err := e.validateRule(br.Rule); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) validateRule(r types.Rule) error {
	if len(r.Children) == 0 {
		return types.ErrEmptyRule
	}
	for _, child := range r.Children {
		switch node := child.(type) {
		case types.Rule:
			if err := e.validateRule(node); err != nil {
				return err
			}
		case types.CountItem:
			if node.Count <= 0 {
				return fmt.Errorf("%w: got %d", types.ErrNonPositiveCount, node.Count)
			}
			for _, item := range node.Items {
				if !e.isItem(item) {
					return fmt.Errorf("%w: %q", types.ErrUnknownItem, item)
				}
			}
		case types.Identifier, types.FuncCall:
			// resolved lazily against the common-rule tables
		}
	}
	return nil
}

func (e *Engine) validateCond(c types.CondNode) error {
	switch node := c.(type) {
	case types.ConditionNode:
		if _, ok := e.env.Opts.Option(node.Option); !ok {
			return fmt.Errorf("%w: %q", types.ErrUnknownOption, node.Option)
		}
		if node.Value.Name != "" {
			if _, ok := e.env.Opts.NamedValue(node.Value.Name); !ok {
				return fmt.Errorf("%w: %q", types.ErrUnknownOptionValue, node.Value.Name)
			}
		}
	case types.Condition:
		for _, child := range node.Children {
			if err := e.validateCond(child); err != nil {
				return err
			}
		}
	}
	return nil
}
