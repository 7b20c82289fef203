package graph

import (
	"path"
	"sort"
	"strings"
)

// GroupBy selects how ReduceGraph ranks nodes for selection before applying
// a node budget. Grouping never changes what a node IS in the output: the
// reduced graph always carries real underlying node IDs, never synthetic
// group IDs. Grouping only decides which real nodes make the cut and in
// what order whole groups are admitted.
type GroupBy int

const (
	GroupNone GroupBy = iota
	GroupModule
	GroupDirectory
)

// ReducedGraph is a fixed-size projection of a DependencyGraph: a budgeted
// subset of the original nodes and edges, styled for rendering,
// deterministic across runs on the same input.
type ReducedGraph struct {
	Nodes []StyledNode `json:"nodes"`
	Edges []StyledEdge `json:"edges"`
}

// StyledNode is a display-ready graph node.
type StyledNode struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Rank        float64 `json:"rank"`
	Complexity  float64 `json:"complexity"`
	Color       string  `json:"color"`
	Size        float64 `json:"size"`
}

// StyledEdge is a display-ready graph edge, carrying the underlying edge's
// own weight (e.g. a call count) rather than a re-aggregated one.
type StyledEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
	Style  string  `json:"style"`
}

// ReduceGraph selects at most maxNodes of g's real nodes and at most
// maxEdges of the edges between them, per spec: (1) PageRank runs over the
// full original node/edge set, including intra-group edges, before any
// grouping is applied; (2) nodes are grouped by module or directory prefix
// and each group's aggregate score is the sum of its members' individual
// ranks; (3) groups are admitted greedily by descending aggregate score,
// breaking ties by group name; the last group that only partially fits the
// budget contributes a deterministic prefix of its members (sorted by ID)
// rather than being dropped whole; (4) edges are kept when both endpoints
// were selected, in the source graph's own iteration order, up to
// maxEdges. complexity maps a node ID to its cyclomatic complexity for
// StyleNode; a nil map or a missing entry is treated as zero. Iteration
// over internal maps is always via a sorted key slice, so two runs over the
// same graph produce byte-identical output.
func ReduceGraph(g *DependencyGraph, groupBy GroupBy, maxNodes, maxEdges int, complexity map[string]float64) ReducedGraph {
	memberOf := assignGroups(g, groupBy)

	allNodeIDs := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		allNodeIDs = append(allNodeIDs, n.ID)
	}
	sort.Strings(allNodeIDs)

	nodeRanks := pageRankFull(allNodeIDs, g.Edges)

	groupMembers := make(map[string][]string, len(g.Nodes))
	for _, id := range allNodeIDs {
		gid := memberOf[id]
		groupMembers[gid] = append(groupMembers[gid], id)
	}

	groupIDs := make([]string, 0, len(groupMembers))
	groupScore := make(map[string]float64, len(groupMembers))
	for gid, members := range groupMembers {
		groupIDs = append(groupIDs, gid)
		var sum float64
		for _, m := range members {
			sum += nodeRanks[m]
		}
		groupScore[gid] = sum
	}
	sort.Strings(groupIDs)
	sort.SliceStable(groupIDs, func(i, j int) bool {
		if groupScore[groupIDs[i]] != groupScore[groupIDs[j]] {
			return groupScore[groupIDs[i]] > groupScore[groupIDs[j]]
		}
		return groupIDs[i] < groupIDs[j]
	})

	selected := selectTopNodes(groupIDs, groupMembers, maxNodes)

	kept := make(map[string]bool, len(selected))
	for _, id := range selected {
		kept[id] = true
	}
	sort.Strings(selected)

	out := ReducedGraph{}
	for _, id := range selected {
		out.Nodes = append(out.Nodes, StyleNode(id, humanizeName(id), nodeRanks[id], complexity[id]))
	}

	edgeCount := 0
	for _, e := range g.Edges {
		if maxEdges > 0 && edgeCount >= maxEdges {
			break
		}
		if !kept[e.From] || !kept[e.To] {
			continue
		}
		w := e.Weight
		if w == 0 {
			w = 1
		}
		out.Edges = append(out.Edges, StyleEdge(e.From, e.To, w))
		edgeCount++
	}

	return out
}

// selectTopNodes admits groupIDs (already sorted by descending aggregate
// score) in order, taking every member of a group that fits whole and a
// deterministic prefix of the first group that only partially fits.
func selectTopNodes(groupIDs []string, groupMembers map[string][]string, maxNodes int) []string {
	if maxNodes <= 0 {
		selected := make([]string, 0, len(groupMembers))
		for _, gid := range groupIDs {
			selected = append(selected, groupMembers[gid]...)
		}
		return selected
	}

	selected := make([]string, 0, maxNodes)
	for _, gid := range groupIDs {
		members := groupMembers[gid]
		if len(selected)+len(members) <= maxNodes {
			selected = append(selected, members...)
			continue
		}
		remaining := maxNodes - len(selected)
		if remaining > 0 {
			selected = append(selected, members[:remaining]...)
		}
		break
	}
	return selected
}

// assignGroups maps every node in g to its group ID under groupBy, without
// constructing any synthetic group node.
func assignGroups(g *DependencyGraph, groupBy GroupBy) map[string]string {
	memberOf := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		memberOf[n.ID] = groupID(n, groupBy)
	}
	return memberOf
}

func groupID(n Node, groupBy GroupBy) string {
	switch groupBy {
	case GroupModule:
		return normalizeNodeID(moduleOf(n.File))
	case GroupDirectory:
		return normalizeNodeID(path.Dir(n.File))
	default:
		return n.ID
	}
}

// normalizeNodeID applies the engine-wide node identity rule: forward
// slashes, no leading "./", no trailing slash, so the same logical module
// always maps to the same ID regardless of how its path was spelled by the
// caller.
func normalizeNodeID(id string) string {
	id = strings.ReplaceAll(id, "\\", "/")
	id = strings.TrimPrefix(id, "./")
	id = strings.TrimSuffix(id, "/")
	if id == "" {
		return "."
	}
	return id
}

func moduleOf(file string) string {
	dir := path.Dir(file)
	parts := strings.Split(dir, "/")
	if len(parts) == 0 {
		return dir
	}
	// Top two path segments are treated as the module boundary; deeper
	// nesting collapses into its parent module.
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "/")
}

// humanizeName turns a normalized node ID into a display-friendly label:
// strip common source roots, title-case the final segment.
func humanizeName(id string) string {
	id = strings.TrimPrefix(id, "internal/")
	id = strings.TrimPrefix(id, "pkg/")
	id = strings.TrimPrefix(id, "src/")
	parts := strings.Split(id, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return id
	}
	return strings.ToUpper(last[:1]) + last[1:]
}

// pageRankFull runs the engine's hand-rolled power-iteration PageRank over
// the full original node/edge set for exactly 10 rounds rather than until a
// tolerance is met: the reducer needs byte-identical output across
// repeated runs on the same graph, which a fixed iteration count
// guarantees and a tolerance-driven cutoff does not. Edge weights are
// ignored here; only out-degree (edge count) matters, matching the
// plain-count propagation rule score is split evenly across every
// outgoing edge.
func pageRankFull(ids []string, edges []Edge) map[string]float64 {
	n := len(ids)
	ranks := make(map[string]float64, n)
	if n == 0 {
		return ranks
	}

	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	outNeighbors := make([][]int, n)
	for _, e := range edges {
		i, iok := index[e.From]
		j, jok := index[e.To]
		if !iok || !jok {
			continue
		}
		outNeighbors[i] = append(outNeighbors[i], j)
	}
	for i := range outNeighbors {
		sort.Ints(outNeighbors[i])
	}

	const damping = 0.85
	rank := make([]float64, n)
	next := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}
	teleport := (1.0 - damping) / float64(n)

	for iter := 0; iter < 10; iter++ {
		for i := range next {
			next[i] = teleport
		}
		for i, neighbors := range outNeighbors {
			if len(neighbors) == 0 {
				continue
			}
			share := damping * rank[i] / float64(len(neighbors))
			for _, j := range neighbors {
				next[j] += share
			}
		}
		rank, next = next, rank
	}

	for i, id := range ids {
		ranks[id] = rank[i]
	}
	return ranks
}

// StyleNode renders a node with its display name, rank-driven size, and a
// complexity-driven color tier: average cyclomatic complexity above 15 is
// high (red), above 10 is medium (amber), otherwise low (neutral blue).
func StyleNode(id, displayName string, rank, avgCyclomatic float64) StyledNode {
	var color string
	switch {
	case avgCyclomatic > 15:
		color = "#d94a4a"
	case avgCyclomatic > 10:
		color = "#d9a84a"
	default:
		color = "#4a90d9"
	}
	return StyledNode{
		ID:          id,
		DisplayName: displayName,
		Rank:        rank,
		Complexity:  avgCyclomatic,
		Color:       color,
		Size:        8 + rank*64,
	}
}

// StyleEdge renders an edge; style is a three-tier classification of
// weight (e.g. call count): above 10 is strong, above 5 is medium,
// otherwise weak.
func StyleEdge(from, to string, weight float64) StyledEdge {
	var style string
	switch {
	case weight > 10:
		style = "strong"
	case weight > 5:
		style = "medium"
	default:
		style = "weak"
	}
	return StyledEdge{From: from, To: to, Weight: weight, Style: style}
}
