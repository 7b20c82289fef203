package makefile

import (
	"fmt"
	"strings"
)

// recursiveMakeRule flags recursive $(MAKE) invocations in a recipe that
// omit the '+' prefix, which defeats make's jobserver token sharing and
// serialises what should be parallel sub-builds.
// Grounded on the RecursiveExpansion family of rules in the original
// implementation's performance rule set.
type recursiveMakeRule struct{}

func (recursiveMakeRule) ID() string                  { return "recursive-make-no-plus" }
func (recursiveMakeRule) DefaultSeverity() Severity    { return SeverityPerformance }
func (recursiveMakeRule) CanFix() bool                 { return true }

func (recursiveMakeRule) Check(nodes []Node) []Violation {
	var violations []Violation
	for _, n := range nodes {
		if n.Kind != NodeRecipe {
			continue
		}
		trimmed := strings.TrimPrefix(n.Text, "\t")
		if strings.Contains(trimmed, "$(MAKE)") && !strings.HasPrefix(strings.TrimSpace(trimmed), "+") {
			violations = append(violations, Violation{
				RuleID:   recursiveMakeRule{}.ID(),
				Severity: SeverityPerformance,
				Line:     n.StartLine,
				Message:  "recursive $(MAKE) call without '+' prefix loses jobserver parallelism",
				Fixable:  true,
			})
		}
	}
	return violations
}

func (recursiveMakeRule) Fix(nodes []Node, v Violation) (string, bool) {
	for _, n := range nodes {
		if n.StartLine == v.Line && n.Kind == NodeRecipe {
			return "\t+" + strings.TrimPrefix(n.Text, "\t"), true
		}
	}
	return "", false
}

// phonyMissingRule flags rule targets that look like commands (no matching
// file is ever produced, by convention: lowercase word, no extension) but
// are not declared under .PHONY.
type phonyMissingRule struct{}

func (phonyMissingRule) ID() string               { return "phony-missing" }
func (phonyMissingRule) DefaultSeverity() Severity { return SeverityWarning }
func (phonyMissingRule) CanFix() bool              { return false }
func (phonyMissingRule) Fix([]Node, Violation) (string, bool) { return "", false }

func (phonyMissingRule) Check(nodes []Node) []Violation {
	phony := map[string]bool{}
	var candidates []Node

	for _, n := range nodes {
		if n.Kind != NodeRule {
			continue
		}
		if n.Target == ".PHONY" {
			for _, p := range n.Prerequisites {
				phony[p] = true
			}
			continue
		}
		if looksLikeCommandTarget(n.Target) {
			candidates = append(candidates, n)
		}
	}

	var violations []Violation
	for _, n := range candidates {
		if !phony[n.Target] {
			violations = append(violations, Violation{
				RuleID:   phonyMissingRule{}.ID(),
				Severity: SeverityWarning,
				Line:     n.StartLine,
				Message:  fmt.Sprintf("target %q looks like a command but is not declared .PHONY", n.Target),
			})
		}
	}
	return violations
}

func looksLikeCommandTarget(target string) bool {
	if target == "" || strings.Contains(target, "/") || strings.Contains(target, ".") || strings.Contains(target, "%") {
		return false
	}
	switch target {
	case "all", "clean", "test", "build", "install", "run", "lint", "fmt", "check", "help", "deps":
		return true
	}
	return false
}

// tabIndentRule flags recipe lines that use spaces for leading indentation
// instead of a tab, a classic silent failure mode ("missing separator").
type tabIndentRule struct{}

func (tabIndentRule) ID() string               { return "recipe-space-indent" }
func (tabIndentRule) DefaultSeverity() Severity { return SeverityError }
func (tabIndentRule) CanFix() bool              { return true }

func (tabIndentRule) Check(nodes []Node) []Violation {
	var violations []Violation
	for _, n := range nodes {
		if n.Kind != NodeRule {
			continue
		}
		// A rule's recipe lines are tokenised separately (NodeRecipe); this
		// rule instead catches a recipe-shaped line that was classified as
		// something else because it used spaces, not a tab, to indent.
		if strings.HasPrefix(n.Text, "    ") && !strings.Contains(n.Text, ":") {
			violations = append(violations, Violation{
				RuleID:   tabIndentRule{}.ID(),
				Severity: SeverityError,
				Line:     n.StartLine,
				Message:  "recipe line indented with spaces, not a tab; make will reject it",
				Fixable:  true,
			})
		}
	}
	return violations
}

func (tabIndentRule) Fix(nodes []Node, v Violation) (string, bool) {
	for _, n := range nodes {
		if n.StartLine == v.Line {
			return "\t" + strings.TrimLeft(n.Text, " "), true
		}
	}
	return "", false
}

// duplicateTargetRule flags a target defined more than once with a recipe;
// make silently uses the last definition's recipe, which usually indicates
// a copy-paste error.
type duplicateTargetRule struct{}

func (duplicateTargetRule) ID() string               { return "duplicate-target" }
func (duplicateTargetRule) DefaultSeverity() Severity { return SeverityWarning }
func (duplicateTargetRule) CanFix() bool              { return false }
func (duplicateTargetRule) Fix([]Node, Violation) (string, bool) { return "", false }

func (duplicateTargetRule) Check(nodes []Node) []Violation {
	seen := map[string]int{}
	var violations []Violation
	for _, n := range nodes {
		if n.Kind != NodeRule || n.Target == ".PHONY" {
			continue
		}
		if firstLine, ok := seen[n.Target]; ok {
			violations = append(violations, Violation{
				RuleID:   duplicateTargetRule{}.ID(),
				Severity: SeverityWarning,
				Line:     n.StartLine,
				Message:  fmt.Sprintf("target %q redefines the one at line %d; only the last recipe runs", n.Target, firstLine),
			})
			continue
		}
		seen[n.Target] = n.StartLine
	}
	return violations
}

// deleteOnErrorRule suggests declaring .DELETE_ON_ERROR so make removes a
// target's output file when its recipe fails, preventing stale partial
// artifacts from being treated as up to date on the next run.
type deleteOnErrorRule struct{}

func (deleteOnErrorRule) ID() string               { return "delete-on-error-missing" }
func (deleteOnErrorRule) DefaultSeverity() Severity { return SeverityInfo }
func (deleteOnErrorRule) CanFix() bool              { return true }

func (deleteOnErrorRule) Check(nodes []Node) []Violation {
	for _, n := range nodes {
		if n.Kind == NodeRule && n.Target == ".DELETE_ON_ERROR" {
			return nil
		}
	}
	return []Violation{{
		RuleID:   deleteOnErrorRule{}.ID(),
		Severity: SeverityInfo,
		Line:     1,
		Message:  "no .DELETE_ON_ERROR directive; a failed recipe can leave a stale output file",
		Fixable:  true,
	}}
}

func (deleteOnErrorRule) Fix([]Node, Violation) (string, bool) {
	return ".DELETE_ON_ERROR:\n", true
}
