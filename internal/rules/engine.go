// internal/rules/engine.go
package rules

import (
	"github.com/ferrule/gatekeep/internal/parser"
	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Rule engine: capabilities and environment.
 *
 * The engine owns the grammar and an environment binding identifiers to the
 * host world: item labels, event names, the caller-populated common-rule
 * and function tables, and the configuration source. One engine serves one
 * ruleset load; everything it closes over is read-only after construction
 * except the common-rule table, which callers populate before any compiled
 * predicate that indirects into it runs.
 */

// Predicate decides gate passability against the player's collection state.
type Predicate func(state CollectionState) bool

// RuleFunc builds a predicate from the structured arguments of a function
// call in rule text.
type RuleFunc func(args []types.Arg) Predicate

// CollectionState is the host capability representing what the player
// currently holds. Batched calls are distinct, cheaper host operations than
// repeated single checks.
type CollectionState interface {
	Has(item string) bool
	HasAll(items []string) bool
	HasAny(items []string) bool
	HasCount(items []string, n int, combine types.RuleOp) bool
}

// Options resolves configuration values for branch selection. Option
// returns the current value of a named option; NamedValue resolves an
// enumerated option-value constant from rule text.
type Options interface {
	Option(name string) (int, bool)
	NamedValue(name string) (int, bool)
}

// AlwaysTrue is the always-passable predicate, used as the documented
// fallback when no branch of a chain matches.
func AlwaysTrue(CollectionState) bool { return true }

// Env binds rule identifiers to the host world.
type Env struct {
	// Items maps item identifiers to their host-facing labels.
	Items map[string]string

	// Events holds event identifiers, resolved as their own label.
	Events map[string]struct{}

	// Common is the caller-owned common-rule table. Compiled predicates
	// look names up lazily, so callers may keep populating it after
	// compilation as long as every entry exists before evaluation.
	Common map[string]Predicate

	// Funcs holds the named external predicates reachable from rule text
	// function calls.
	Funcs map[string]RuleFunc

	// Opts is the configuration source consulted for branch selection.
	Opts Options
}

// Engine compiles rule text into predicates and dependency maps.
type Engine struct {
	grammar *parser.Grammar
	env     *Env
}

// NewEngine constructs an engine around an environment.
func NewEngine(env *Env) *Engine {
	return &Engine{grammar: parser.New(), env: env}
}

// Grammar exposes the engine's parsers for callers that need raw IR.
func (e *Engine) Grammar() *parser.Grammar {
	return e.grammar
}

// isItem reports whether the identifier denotes a concrete item or event
// rather than a common-rule indirection.
func (e *Engine) isItem(id types.Identifier) bool {
	if _, ok := e.env.Items[string(id)]; ok {
		return true
	}
	_, ok := e.env.Events[string(id)]
	return ok
}

// label resolves an identifier to its host-facing label. Events and
// anything outside the item table resolve to themselves.
func (e *Engine) label(id types.Identifier) string {
	if label, ok := e.env.Items[string(id)]; ok {
		return label
	}
	return string(id)
}
