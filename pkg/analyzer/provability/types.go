// Package provability runs a lightweight abstract-interpretation pass over
// each function and produces a ProofSummary: a confidence score plus the
// concrete properties (null-safety, bounds, aliasing, purity) the pass was
// able to verify. It trades an SMT solver's soundness for a fixed-point
// dataflow analysis cheap enough to run on every file in a repository.
package provability

// FunctionID identifies the function a ProofSummary belongs to.
type FunctionID struct {
	FilePath     string
	FunctionName string
	LineNumber   int
}

// PropertyType enumerates the properties the analyzer can verify.
type PropertyType uint8

const (
	PropertyNullSafety PropertyType = iota
	PropertyBoundsCheck
	PropertyNoAliasing
	PropertyPureFunction
	PropertyMemorySafety
	PropertyThreadSafety
)

func (p PropertyType) String() string {
	switch p {
	case PropertyNullSafety:
		return "null_safety"
	case PropertyBoundsCheck:
		return "bounds_check"
	case PropertyNoAliasing:
		return "no_aliasing"
	case PropertyPureFunction:
		return "pure_function"
	case PropertyMemorySafety:
		return "memory_safety"
	case PropertyThreadSafety:
		return "thread_safety"
	default:
		return "unknown"
	}
}

// VerifiedProperty is one property the fixed-point analysis was able to
// establish, with a confidence in [0,1] and a short human-readable reason.
type VerifiedProperty struct {
	PropertyType PropertyType `json:"property_type"`
	Confidence   float64      `json:"confidence"`
	Evidence     string       `json:"evidence"`
}

// ProofSummary is the per-function output of the analyzer.
type ProofSummary struct {
	FunctionID         FunctionID         `json:"function_id"`
	ProvabilityScore   float64            `json:"provability_score"`
	VerifiedProperties []VerifiedProperty `json:"verified_properties"`
	AnalysisTimeMicros int64              `json:"analysis_time_us"`
	Version            uint64             `json:"version"`
}

// ProvabilityFactor converts the 0-1 provability score into a 0-5 technical
// debt factor for defect scoring: higher provability means lower debt, with
// an extra deduction when memory/thread safety was specifically verified.
func ProvabilityFactor(s ProofSummary) float64 {
	factor := 5.0 * (1.0 - s.ProvabilityScore)

	var critical int
	for _, p := range s.VerifiedProperties {
		if p.PropertyType == PropertyMemorySafety || p.PropertyType == PropertyThreadSafety {
			critical++
		}
	}
	factor -= float64(critical) * 0.5
	if factor < 0 {
		factor = 0
	}
	return factor
}
