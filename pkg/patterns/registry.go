// Package patterns provides a centralized, compile-once registry of the
// extraction rules used to mine intelligence from scam messages. Every rule
// is declarative: a named regex plus a category and an optional canonicalizer,
// so new identifier classes are additive data, not control-flow changes.
//
// Design principles:
// - COMPILE ONCE: All patterns compiled at package init, not per-message
// - TOTAL: Extraction never fails; no matches is a normal outcome
// - NORMALIZED: Every emitted value is lower-cased/canonicalized so that
//   re-seeing an identifier in a later turn dedups instead of duplicating
package patterns

import (
	"regexp"
	"strings"
	"sync"
)

// Category identifies one class of extractable intelligence.
type Category string

const (
	// Identifier classes
	CategoryPhoneNumber  Category = "phone_number"
	CategoryUPIID        Category = "upi_id"
	CategoryBankAccount  Category = "bank_account"
	CategoryPhishingLink Category = "phishing_link"

	// Signal classes
	CategorySuspiciousKeyword Category = "suspicious_keyword"
	CategoryTacticPattern     Category = "tactic_pattern"

	// Attribution classes
	CategoryImpersonationClaim Category = "impersonation_claim"
	CategoryOrganizationalClue Category = "organizational_clue"
)

// Rule holds a compiled regex with extraction metadata.
type Rule struct {
	Name        string         // Human-readable name for logging
	Regex       *regexp.Regexp // Compiled regex (never nil after init)
	Category    Category       // Intelligence category
	Severity    int            // Signal strength contribution (0-100)
	Description string         // What this rule extracts

	// Output, when non-empty, is the fixed value the rule emits on any match
	// (tactic and clue rules). When empty, the rule emits each matched
	// substring, passed through Canon.
	Output string

	// Canon normalizes a raw match before set insertion. Returning the empty
	// string rejects the match (e.g. an e-mail that is not a UPI handle).
	// Nil means lower-case only.
	Canon func(string) string
}

// Match is one extracted value together with the rule that produced it.
type Match struct {
	Rule  *Rule
	Value string // canonical form, never empty
}

// Registry holds all compiled rules, organized by category.
type Registry struct {
	mu         sync.RWMutex
	byCategory map[Category][]*Rule
	all        []*Rule
}

// global singleton - initialized once at package load
var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global rule registry (singleton).
// Thread-safe and guaranteed to be initialized.
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

// newRegistry creates and populates the rule registry.
func newRegistry() *Registry {
	r := &Registry{
		byCategory: make(map[Category][]*Rule),
		all:        make([]*Rule, 0, 64),
	}

	r.registerIdentifierRules()
	r.registerKeywordRules()
	r.registerTacticRules()
	r.registerImpersonationRules()
	r.registerOrganizationalRules()

	return r
}

// register adds a rule to the registry (internal use only).
func (r *Registry) register(rule Rule, pattern string) {
	rule.Regex = regexp.MustCompile(pattern)
	p := &rule
	r.byCategory[p.Category] = append(r.byCategory[p.Category], p)
	r.all = append(r.all, p)
}

// GetByCategory returns all rules for a specific category.
// Returns empty slice if category not found (never nil).
func (r *Registry) GetByCategory(cat Category) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rules, ok := r.byCategory[cat]; ok {
		return rules
	}
	return []*Rule{}
}

// Extract runs every rule in the given categories over text and returns the
// canonical values found, deduplicated within the call and emitted in rule
// order so that repeated extraction of the same text is byte-for-byte
// reproducible. Extraction is total: any string, including the empty string,
// yields a (possibly empty) result and never an error.
func (r *Registry) Extract(text string, cats ...Category) []Match {
	if text == "" {
		return nil
	}

	r.mu.RLock()
	var rules []*Rule
	for _, cat := range cats {
		rules = append(rules, r.byCategory[cat]...)
	}
	r.mu.RUnlock()

	var matches []Match
	seen := make(map[Category]map[string]struct{})

	emit := func(rule *Rule, value string) {
		if value == "" {
			return
		}
		set, ok := seen[rule.Category]
		if !ok {
			set = make(map[string]struct{})
			seen[rule.Category] = set
		}
		if _, dup := set[value]; dup {
			return
		}
		set[value] = struct{}{}
		matches = append(matches, Match{Rule: rule, Value: value})
	}

	for _, rule := range rules {
		if rule.Output != "" {
			if rule.Regex.MatchString(text) {
				emit(rule, rule.Output)
			}
			continue
		}
		for _, raw := range rule.Regex.FindAllString(text, -1) {
			value := strings.ToLower(raw)
			if rule.Canon != nil {
				value = rule.Canon(raw)
			}
			emit(rule, value)
		}
	}

	return matches
}

// MatchAny returns the first rule in the given categories that matches text,
// or nil. Optimized for early exit; use Extract when values are needed.
func (r *Registry) MatchAny(text string, cats ...Category) *Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cat := range cats {
		for _, rule := range r.byCategory[cat] {
			if rule.Regex.MatchString(text) {
				return rule
			}
		}
	}
	return nil
}

// TotalRules returns the total count of registered rules.
func (r *Registry) TotalRules() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

// CategoryCount returns the number of rules in a category.
func (r *Registry) CategoryCount(cat Category) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCategory[cat])
}
