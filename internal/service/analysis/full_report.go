package analysis

import (
	"context"
	"time"

	"github.com/paiml/strata/pkg/analyzer/churn"
	"github.com/paiml/strata/pkg/analyzer/complexity"
	"github.com/paiml/strata/pkg/analyzer/defect"
	"github.com/paiml/strata/pkg/analyzer/graph"
)

// StageName identifies one analysis stage within a full report run.
type StageName string

const (
	StageComplexity StageName = "complexity"
	StageChurn      StageName = "churn"
	StageGraph      StageName = "graph"
	StageDefect     StageName = "defect"
)

// FullReportOptions bounds a RunFull call: an overall deadline plus a
// per-stage share of it, so one slow analyzer (a huge git history, a
// pathological file) can't silently consume the whole budget and starve
// the rest.
type FullReportOptions struct {
	StageTimeout time.Duration // 0 = no per-stage deadline
	RepoPath     string
	Files        []string
}

// FullReport aggregates whatever stages of RunFull completed before their
// deadline or the caller's context was canceled. A stage missing from
// CompletedStages ran but did not finish in time or errored; its field on
// the report is left at its zero value.
type FullReport struct {
	Complexity *complexity.Analysis
	Churn      *churn.Analysis
	Defect     *defect.Analysis
	Graph      *graph.DependencyGraph

	CompletedStages  []StageName
	DeadlineExceeded bool
	StageErrors      map[StageName]error
}

// RunFull runs the complexity, churn, graph, and defect stages in sequence
// (defect depends on complexity and churn having already run), each under
// its own deadline derived from opts.StageTimeout, and returns whatever
// completed. A stage that times out or errors is recorded in StageErrors
// and does not abort the remaining stages -- the orchestrator always
// returns its best partial report rather than failing the whole run for
// one slow analyzer.
func (s *Service) RunFull(ctx context.Context, opts FullReportOptions) (*FullReport, error) {
	report := &FullReport{StageErrors: make(map[StageName]error)}

	runStage := func(name StageName, fn func(context.Context) error) {
		if ctx.Err() != nil {
			report.DeadlineExceeded = report.DeadlineExceeded || ctx.Err() == context.DeadlineExceeded
			return
		}

		stageCtx := ctx
		var cancel context.CancelFunc
		if opts.StageTimeout > 0 {
			stageCtx, cancel = context.WithTimeout(ctx, opts.StageTimeout)
			defer cancel()
		}

		if err := fn(stageCtx); err != nil {
			report.StageErrors[name] = err
			if stageCtx.Err() == context.DeadlineExceeded {
				report.DeadlineExceeded = true
			}
			return
		}
		report.CompletedStages = append(report.CompletedStages, name)
	}

	runStage(StageComplexity, func(c context.Context) error {
		result, err := s.AnalyzeComplexity(c, opts.Files, ComplexityOptions{})
		if err != nil {
			return err
		}
		report.Complexity = result
		return nil
	})

	runStage(StageChurn, func(c context.Context) error {
		result, err := s.AnalyzeChurn(c, opts.RepoPath, ChurnOptions{Days: 30})
		if err != nil {
			return err
		}
		report.Churn = result
		return nil
	})

	runStage(StageGraph, func(c context.Context) error {
		result, _, err := s.AnalyzeGraph(c, opts.Files, GraphOptions{})
		if err != nil {
			return err
		}
		report.Graph = result
		return nil
	})

	runStage(StageDefect, func(c context.Context) error {
		result, err := s.AnalyzeDefects(c, opts.RepoPath, opts.Files, DefectOptions{})
		if err != nil {
			return err
		}
		report.Defect = result
		return nil
	})

	return report, nil
}
