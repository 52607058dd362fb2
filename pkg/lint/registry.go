package lint

import (
	"sort"
	"sync"

	"github.com/modm-io/modm-devices-go/pkg/device"
)

// Registry manages lint rules.
type Registry struct {
	mu        sync.RWMutex
	rules     map[string]Rule
	enabled   map[string]bool
	severity  map[string]Severity
	ruleOrder []string
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:    make(map[string]Rule),
		enabled:  make(map[string]bool),
		severity: make(map[string]Severity),
	}
}

// Register adds a rule to the registry.
// The rule is enabled by default with its default severity.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := rule.ID()
	if _, exists := r.rules[id]; !exists {
		r.ruleOrder = append(r.ruleOrder, id)
	}
	r.rules[id] = rule
	r.enabled[id] = true
	r.severity[id] = rule.DefaultSeverity()
}

// Enable enables a rule by ID.
func (r *Registry) Enable(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled[id] = true
}

// Disable disables a rule by ID.
func (r *Registry) Disable(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled[id] = false
}

// SetSeverity overrides the severity for a rule.
func (r *Registry) SetSeverity(id string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.severity[id] = severity
}

// IsEnabled returns true if the rule is enabled.
func (r *Registry) IsEnabled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[id]
}

// Severity returns the effective severity for a rule.
func (r *Registry) Severity(id string) Severity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sev, ok := r.severity[id]; ok {
		return sev
	}
	return SeverityError
}

// Rule returns a rule by ID, or nil if not found.
func (r *Registry) Rule(id string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[id]
}

// EnabledRules returns all enabled rules in registration order.
func (r *Registry) EnabledRules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rules []Rule
	for _, id := range r.ruleOrder {
		if r.enabled[id] {
			rules = append(rules, r.rules[id])
		}
	}
	return rules
}

// AllRules returns all registered rules in registration order.
func (r *Registry) AllRules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]Rule, len(r.ruleOrder))
	for i, id := range r.ruleOrder {
		rules[i] = r.rules[id]
	}
	return rules
}

// Categories returns all unique categories, sorted.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catSet := make(map[string]struct{})
	for _, rule := range r.rules {
		catSet[rule.Category()] = struct{}{}
	}

	categories := make([]string, 0, len(catSet))
	for cat := range catSet {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories
}

// Run executes all enabled rules against dev. The violations carry the
// registry's severity settings.
func (r *Registry) Run(dev *device.Device) []Violation {
	var violations []Violation
	for _, rule := range r.EnabledRules() {
		for _, v := range rule.Check(dev) {
			v.Severity = r.Severity(v.RuleID)
			violations = append(violations, v)
		}
	}
	return violations
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// DisableAll disables all registered rules.
func (r *Registry) DisableAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.rules {
		r.enabled[id] = false
	}
}

// EnableCategory enables all rules in a category.
func (r *Registry) EnableCategory(category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rule := range r.rules {
		if rule.Category() == category {
			r.enabled[id] = true
		}
	}
}

// DisableCategory disables all rules in a category.
func (r *Registry) DisableCategory(category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rule := range r.rules {
		if rule.Category() == category {
			r.enabled[id] = false
		}
	}
}
