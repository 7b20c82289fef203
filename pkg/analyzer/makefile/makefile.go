package makefile

import "os"

// Analyzer lints a Makefile's source against the built-in rule registry.
type Analyzer struct {
	registry *Registry
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRegistry overrides the default built-in rule registry, letting
// callers add project-specific rules without forking the package.
func WithRegistry(r *Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// New creates a Makefile analyzer with the default rule registry.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{registry: NewRegistry()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of linting one Makefile.
type Result struct {
	Path       string
	Nodes      []Node
	Violations []Violation
}

// AnalyzeFile tokenises and lints the Makefile at path.
func (a *Analyzer) AnalyzeFile(path string) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSource(path, source), nil
}

// AnalyzeSource tokenises and lints in-memory Makefile content.
func (a *Analyzer) AnalyzeSource(path string, source []byte) *Result {
	nodes := Tokenize(source)
	return &Result{
		Path:       path,
		Nodes:      nodes,
		Violations: a.registry.Lint(nodes),
	}
}
