// internal/core/loader/loader.go
package loader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ferrule/gatekeep/internal/core/config"
	"github.com/ferrule/gatekeep/internal/rules"
	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Ruleset loading orchestration.
 *
 * Load is the single entry point that turns a parsed data file into
 * compiled predicates plus the item dependency map. The whole pass is
 * all-or-nothing: the first syntax or semantic error aborts with gate
 * context, and nothing partial escapes.
 *
 * Ordering: the common table compiles first so that rule-text indirections
 * resolve; gates compile in sorted key order so the first reported error is
 * deterministic across runs.
 */

// CompiledSet is one fully compiled ruleset, cached for the remainder of a
// generation run.
type CompiledSet struct {
	ID uuid.UUID

	Engine *rules.Engine

	Exits          map[string]map[string]rules.Predicate
	Encounters     map[string]map[string]rules.Predicate
	Locations      map[string]rules.Predicate
	Events         map[string]rules.Predicate
	LocationTypes  map[string]rules.Predicate
	EncounterTypes map[string]rules.Predicate

	Deps rules.ItemConditions
}

// Load parses, validates, and compiles every gate of the ruleset.
// common and funcs are caller-owned; common gains the compiled entries of
// the ruleset's own common table and may be extended further before
// evaluation. Either may be nil.
func Load(file *config.RulesetFile, common map[string]rules.Predicate, funcs map[string]rules.RuleFunc) (*CompiledSet, error) {
	if common == nil {
		common = make(map[string]rules.Predicate)
	}
	if funcs == nil {
		funcs = make(map[string]rules.RuleFunc)
	}

	world := &file.World
	events := make(map[string]struct{}, len(world.Events))
	for _, event := range world.Events {
		events[event] = struct{}{}
	}
	for _, item := range world.RequiredItems {
		if _, ok := world.Items[item]; !ok {
			return nil, fmt.Errorf("required item %q is not in the item table", item)
		}
	}

	env := &rules.Env{
		Items:  world.Items,
		Events: events,
		Common: common,
		Funcs:  funcs,
		Opts: rules.StaticOptions{
			Values: world.Options,
			Names:  world.OptionValues,
		},
	}
	engine := rules.NewEngine(env)
	state := &loadState{engine: engine}

	// Common rules first: gate predicates may indirect into them.
	for _, name := range sortedKeys(file.Rules.Common) {
		predicate, err := state.compileGate(name, file.Rules.Common[name])
		if err != nil {
			return nil, err
		}
		common[name] = predicate
	}

	set := &CompiledSet{
		ID:             uuid.New(),
		Engine:         engine,
		Exits:          make(map[string]map[string]rules.Predicate),
		Encounters:     make(map[string]map[string]rules.Predicate),
		Locations:      make(map[string]rules.Predicate),
		Events:         make(map[string]rules.Predicate),
		LocationTypes:  make(map[string]rules.Predicate),
		EncounterTypes: make(map[string]rules.Predicate),
	}

	for _, src := range sortedKeys(file.Rules.Exits) {
		dests := file.Rules.Exits[src]
		compiled := make(map[string]rules.Predicate, len(dests))
		for _, dest := range sortedKeys(dests) {
			predicate, err := state.compileGate(src+" -> "+dest, dests[dest])
			if err != nil {
				return nil, err
			}
			compiled[dest] = predicate
		}
		set.Exits[src] = compiled
	}
	for _, region := range sortedKeys(file.Rules.Encounters) {
		kinds := file.Rules.Encounters[region]
		compiled := make(map[string]rules.Predicate, len(kinds))
		for _, kind := range sortedKeys(kinds) {
			predicate, err := state.compileGate(region+" "+kind, kinds[kind])
			if err != nil {
				return nil, err
			}
			compiled[kind] = predicate
		}
		set.Encounters[region] = compiled
	}
	flatTables := []struct {
		raw map[string]string
		out map[string]rules.Predicate
	}{
		{file.Rules.Locations, set.Locations},
		{file.Rules.Events, set.Events},
		{file.Rules.LocationTypes, set.LocationTypes},
		{file.Rules.EncounterTypes, set.EncounterTypes},
	}
	for _, table := range flatTables {
		for _, gate := range sortedKeys(table.raw) {
			predicate, err := state.compileGate(gate, table.raw[gate])
			if err != nil {
				return nil, err
			}
			table.out[gate] = predicate
		}
	}

	set.Deps = engine.ExtractItemConditions(state.chains)
	set.Deps.AddAll(world.RequiredItems)

	return set, nil
}

type loadState struct {
	engine *rules.Engine
	chains []types.RuleWithOpts
}

// compileGate parses, validates, and compiles one gate, keeping the parsed
// chain for dependency extraction.
func (l *loadState) compileGate(gate, text string) (rules.Predicate, error) {
	rw, err := l.engine.Grammar().ParseBranches(text)
	if err != nil {
		return nil, gateError(gate, text, err)
	}
	if err := l.engine.ValidateBranches(rw); err != nil {
		return nil, gateError(gate, text, err)
	}
	l.chains = append(l.chains, rw)
	return l.engine.CompileBranches(rw), nil
}

// gateError attaches gate context to parse and validation failures.
func gateError(gate, text string, err error) error {
	var serr *types.SemanticError
	if errors.As(err, &serr) {
		serr.Gate = gate
		serr.Text = text
		return serr
	}
	return fmt.Errorf("gate %q (%q): %w", gate, text, err)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
