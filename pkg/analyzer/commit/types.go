package commit

import (
	"github.com/paiml/strata/pkg/analyzer/complexity"
)

// CommitAnalysis holds analysis results for a specific commit.
type CommitAnalysis struct {
	CommitHash string
	Complexity *complexity.Analysis
}
