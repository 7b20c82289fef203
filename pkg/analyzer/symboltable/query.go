package symboltable

import (
	"time"

	"github.com/paiml/strata/pkg/analyzer/graph"
)

// ArchitectureMetadata describes how an ArchitectureReport was produced.
type ArchitectureMetadata struct {
	Nodes         int       `json:"nodes"`
	Edges         int       `json:"edges"`
	MaxDepth      int       `json:"max_depth"`
	Timestamp     time.Time `json:"timestamp"`
	QueryVersion  string    `json:"query_version"`
	AnalysisTimeMS int64    `json:"analysis_time_ms"`
}

// ArchitectureReport is the output of the system-architecture-v1 canonical
// query: a component-level diagram of the codebase, one node per top-level
// module, aggregated from the full dependency graph.
type ArchitectureReport struct {
	Diagram  graph.ReducedGraph   `json:"diagram"`
	Metadata ArchitectureMetadata `json:"metadata"`
}

// QueryVersion is the stable name of SystemArchitecture's query contract.
// Callers should treat this as part of the API: a future incompatible
// change to the aggregation rules ships as "system-architecture-v2"
// alongside this one rather than changing v1's output shape.
const QueryVersion = "system-architecture-v1"

// SystemArchitecture runs the canonical system-architecture-v1 query: it
// groups dg's nodes into top-level modules (GroupModule, the same grouping
// ReduceGraph uses for any module-depth-<=2 projection), aggregates edge
// weights between modules, and returns a styled component diagram capped
// at maxNodes/maxEdges.
func SystemArchitecture(dg *graph.DependencyGraph, maxNodes, maxEdges int) ArchitectureReport {
	start := time.Now()

	diagram := graph.ReduceGraph(dg, graph.GroupModule, maxNodes, maxEdges, nil)

	return ArchitectureReport{
		Diagram: diagram,
		Metadata: ArchitectureMetadata{
			Nodes:          len(diagram.Nodes),
			Edges:          len(diagram.Edges),
			MaxDepth:       2,
			Timestamp:      start,
			QueryVersion:   QueryVersion,
			AnalysisTimeMS: time.Since(start).Milliseconds(),
		},
	}
}
