package makefile

import "sort"

// Registry holds rules in registration order and runs them over a tokenised
// Makefile, producing violations sorted by (severity asc, line asc).
type Registry struct {
	rules []Rule
}

// NewRegistry returns a registry pre-populated with the built-in rules.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(recursiveMakeRule{})
	r.Register(phonyMissingRule{})
	r.Register(tabIndentRule{})
	r.Register(duplicateTargetRule{})
	r.Register(deleteOnErrorRule{})
	return r
}

// Register appends a rule, preserving registration order for tie-breaking
// within a severity/line bucket.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Lint runs every registered rule in registration order and returns the
// combined violations sorted by (Severity asc, Line asc).
func (r *Registry) Lint(nodes []Node) []Violation {
	var violations []Violation
	for _, rule := range r.rules {
		violations = append(violations, rule.Check(nodes)...)
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Severity != violations[j].Severity {
			return violations[i].Severity < violations[j].Severity
		}
		return violations[i].Line < violations[j].Line
	})

	return violations
}
