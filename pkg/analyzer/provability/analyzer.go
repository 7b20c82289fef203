package provability

import (
	"sync"
	"time"

	"github.com/paiml/strata/pkg/ast"
)

// maxIterations bounds the fixed-point loop: two rounds to reach a stable
// value, a third to confirm it, matching the widen-after-round-two policy
// the analysis was ported from.
const maxIterations = 3

type cacheEntry struct {
	summary ProofSummary
	version uint64
}

// Analyzer runs the fixed-point abstract interpretation over function
// bodies and memoizes results per FunctionID, keyed to a version counter
// so a single BumpVersion call invalidates the whole cache cheaply instead
// of tracking per-function dirtiness.
type Analyzer struct {
	mu      sync.RWMutex
	cache   map[FunctionID]cacheEntry
	version uint64
}

// New creates a provability analyzer with an empty proof cache at version 1.
func New() *Analyzer {
	return &Analyzer{cache: make(map[FunctionID]cacheEntry), version: 1}
}

// BumpVersion invalidates every cached proof. Call this when the file set
// backing the cache changes (a new scan, an edited file).
func (a *Analyzer) BumpVersion() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.version++
}

// AnalyzeFunction proves properties of the function occupying [start,end)
// in arena, returning a cached ProofSummary if one exists at the current
// version.
func (a *Analyzer) AnalyzeFunction(id FunctionID, arena *ast.Arena, start, end uint32) ProofSummary {
	a.mu.RLock()
	if cached, ok := a.cache[id]; ok {
		version := a.version
		a.mu.RUnlock()
		if cached.version == version {
			return cached.summary
		}
	} else {
		a.mu.RUnlock()
	}

	begin := time.Now()
	summary := a.analyzeFixedPoint(id, arena, start, end)
	summary.AnalysisTimeMicros = time.Since(begin).Microseconds()

	a.mu.Lock()
	summary.Version = a.version
	a.cache[id] = cacheEntry{summary: summary, version: a.version}
	a.mu.Unlock()

	return summary
}

func (a *Analyzer) analyzeFixedPoint(id FunctionID, arena *ast.Arena, start, end uint32) ProofSummary {
	state := Top()

	for iteration := 0; iteration < maxIterations; iteration++ {
		next := observe(arena, start, end)

		if next.Equal(state) {
			break
		}

		if iteration > 1 {
			state = state.Widen(next)
		} else {
			state = next
		}
	}

	var verified []VerifiedProperty

	if state.Nullability == NullNotNull {
		verified = append(verified, VerifiedProperty{
			PropertyType: PropertyNullSafety,
			Confidence:   0.9,
			Evidence:     "abstract interpretation proves no nil-valued literal reaches this function's body",
		})
	}

	if state.Bounds.Lower != nil && state.Bounds.Upper != nil {
		verified = append(verified, VerifiedProperty{
			PropertyType: PropertyBoundsCheck,
			Confidence:   0.85,
			Evidence:     "all observed paths are guarded by a bounds-checking conditional",
		})
	}

	if state.Aliasing == AliasNone {
		verified = append(verified, VerifiedProperty{
			PropertyType: PropertyNoAliasing,
			Confidence:   0.8,
			Evidence:     "no call expressions capable of introducing aliased references",
		})
	}

	if state.Purity == PurityPure {
		verified = append(verified, VerifiedProperty{
			PropertyType: PropertyPureFunction,
			Confidence:   0.95,
			Evidence:     "function body contains no assignments or calls",
		})
	}

	return ProofSummary{
		FunctionID:         id,
		ProvabilityScore:   computeConfidence(state),
		VerifiedProperties: verified,
	}
}

// computeConfidence maps a domain state to a 0-1 provability score: each of
// the four tracked properties contributes up to one point, weighted by how
// conclusive the lattice value is.
func computeConfidence(state Domain) float64 {
	var score, maxScore float64

	maxScore++
	switch state.Nullability {
	case NullNotNull:
		score++
	case NullMaybeNull:
		score += 0.5
	}

	maxScore++
	switch {
	case state.Bounds.Lower != nil && state.Bounds.Upper != nil:
		score++
	case state.Bounds.Lower != nil || state.Bounds.Upper != nil:
		score += 0.5
	}

	maxScore++
	switch state.Aliasing {
	case AliasNone:
		score++
	case AliasMay:
		score += 0.3
	}

	maxScore++
	switch state.Purity {
	case PurityPure:
		score++
	case PurityReadOnly:
		score += 0.7
	case PurityWriteLocal:
		score += 0.3
	}

	if maxScore == 0 {
		return 0
	}
	return score / maxScore
}

// FunctionRequest names one function for AnalyzeIncrementally: the span of
// an already-built arena that holds its body.
type FunctionRequest struct {
	ID    FunctionID
	Arena *ast.Arena
	Start uint32
	End   uint32
}

// AnalyzeIncrementally analyzes a batch of changed functions, reusing any
// cached proof still valid at the current version.
func (a *Analyzer) AnalyzeIncrementally(reqs []FunctionRequest) []ProofSummary {
	out := make([]ProofSummary, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, a.AnalyzeFunction(r.ID, r.Arena, r.Start, r.End))
	}
	return out
}
