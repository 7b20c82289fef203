package cache

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Family names one of the five cache partitions the analysis engine reads
// and writes. Each family gets its own memory tier, TTL and single-flight
// group so a miss in one family never blocks another; only ast and dag
// additionally get a persistent tier.
type Family string

const (
	FamilyAST      Family = "ast"
	FamilyTemplate Family = "template"
	FamilyDAG      Family = "dag"
	FamilyChurn    Family = "churn"
	FamilyGitStats Family = "git-stats"
)

var allFamilies = []Family{FamilyAST, FamilyTemplate, FamilyDAG, FamilyChurn, FamilyGitStats}

// hasPersistentTier reports whether f gets a disk-backed persistent tier in
// addition to its memory tier. Only ast and dag do: template, churn and
// git-stats entries are cheap enough to recompute that persisting them
// across process restarts isn't worth the disk I/O.
func hasPersistentTier(f Family) bool {
	return f == FamilyAST || f == FamilyDAG
}

// FamilyConfig tunes one family's memory-tier limits, persistent-tier TTL,
// and assumed per-entry recompute cost (used only for the time-saved
// effectiveness diagnostic).
type FamilyConfig struct {
	TTL              time.Duration
	MaxEntries       int
	MaxBytes         int64
	AssumedComputeMS int64
}

// DefaultFamilyConfig returns reasonable limits for a family, scaled to how
// expensive that family's entries typically are to recompute: AST trees are
// the most expensive per byte, git stats the cheapest. TTLs match the
// engine-wide defaults: ast=300s, template=600s, dag=180s, churn=1800s,
// git_stats=900s.
func DefaultFamilyConfig(f Family) FamilyConfig {
	switch f {
	case FamilyAST:
		return FamilyConfig{TTL: 300 * time.Second, MaxEntries: 4096, MaxBytes: 256 << 20, AssumedComputeMS: 120}
	case FamilyTemplate:
		return FamilyConfig{TTL: 600 * time.Second, MaxEntries: 1024, MaxBytes: 32 << 20, AssumedComputeMS: 20}
	case FamilyDAG:
		return FamilyConfig{TTL: 180 * time.Second, MaxEntries: 256, MaxBytes: 64 << 20, AssumedComputeMS: 200}
	case FamilyChurn:
		return FamilyConfig{TTL: 1800 * time.Second, MaxEntries: 2048, MaxBytes: 32 << 20, AssumedComputeMS: 500}
	case FamilyGitStats:
		return FamilyConfig{TTL: 900 * time.Second, MaxEntries: 512, MaxBytes: 16 << 20, AssumedComputeMS: 50}
	default:
		return FamilyConfig{TTL: 300 * time.Second, MaxEntries: 512, MaxBytes: 16 << 20, AssumedComputeMS: 50}
	}
}

// partition is one family's full tier stack: a memory-resident LRU, an
// optional persistent on-disk Cache, and a single-flight group ensuring at
// most one concurrent computation runs per key regardless of how many
// callers miss at once.
type partition struct {
	mu         sync.Mutex
	memory     *lru[string, []byte]
	persistent *Cache // nil for families without hasPersistentTier
	flight     singleflight.Group
	cfg        FamilyConfig
	hits       int64
	misses     int64
	evictions  int64
}

// Hierarchy is the layered cache the analysis engine consumes: a memory
// tier, backed for ast/dag by a persistent tier, partitioned by Family,
// with pressure-driven eviction across all families when the process-wide
// memory budget is exceeded.
type Hierarchy struct {
	baseDir       string
	maxMemoryByte int64
	partitions    map[Family]*partition
}

// evictionBatchSize is how many entries reclaimIfUnderPressure removes from
// a partition per pass, per spec's pressure-relief batching rule.
const evictionBatchSize = 32

// NewHierarchy creates a layered cache rooted at baseDir, one subdirectory
// per persistent-tier family, with maxMemoryMB bounding the combined memory
// tier across all families (0 disables the pressure check).
func NewHierarchy(baseDir string, maxMemoryMB int) (*Hierarchy, error) {
	h := &Hierarchy{
		baseDir:       baseDir,
		maxMemoryByte: int64(maxMemoryMB) << 20,
		partitions:    make(map[Family]*partition),
	}

	for _, f := range allFamilies {
		cfg := DefaultFamilyConfig(f)

		var persistent *Cache
		if hasPersistentTier(f) {
			p, err := NewWithTTL(filepath.Join(baseDir, string(f)), cfg.TTL, true)
			if err != nil {
				return nil, err
			}
			persistent = p
		}

		h.partitions[f] = &partition{
			memory:     newLRU[string, []byte](cfg.MaxEntries, cfg.MaxBytes),
			persistent: persistent,
			cfg:        cfg,
		}
	}

	return h, nil
}

func (h *Hierarchy) partition(f Family) *partition {
	p, ok := h.partitions[f]
	if !ok {
		// Unknown families fall back to ad hoc defaults rather than panicking,
		// so a caller adding a new family can't crash an existing build.
		cfg := DefaultFamilyConfig(f)
		p = &partition{memory: newLRU[string, []byte](cfg.MaxEntries, cfg.MaxBytes), cfg: cfg}
		h.partitions[f] = p
	}
	return p
}

// GetOrCompute returns the cached value for (family, key) if present and
// unexpired, otherwise calls compute exactly once across all concurrent
// callers sharing that key -- single-flight semantics -- stores the result
// in every tier the family has, and returns it.
func (h *Hierarchy) GetOrCompute(family Family, key string, compute func() ([]byte, error)) ([]byte, error) {
	p := h.partition(family)

	if data, ok := p.memory.Get(key); ok {
		p.mu.Lock()
		p.hits++
		p.mu.Unlock()
		return data, nil
	}

	if p.persistent != nil {
		if data, ok := p.persistent.Get(key); ok {
			p.memory.Put(key, data, int64(len(data)))
			p.mu.Lock()
			p.hits++
			p.mu.Unlock()
			h.reclaimIfUnderPressure()
			return data, nil
		}
	}

	v, err, _ := p.flight.Do(key, func() (interface{}, error) {
		data, err := compute()
		if err != nil {
			return nil, err
		}
		p.memory.Put(key, data, int64(len(data)))
		if p.persistent != nil {
			_ = p.persistent.Set(key, data)
		}
		return data, nil
	})

	p.mu.Lock()
	p.misses++
	p.mu.Unlock()

	h.reclaimIfUnderPressure()

	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// pressure reports the fraction of the configured memory budget the
// combined memory tiers currently occupy. A Hierarchy with no budget set
// always reports zero pressure.
func (h *Hierarchy) pressure() float64 {
	if h.maxMemoryByte <= 0 {
		return 0
	}
	var total int64
	for _, p := range h.partitions {
		total += p.memory.Bytes()
	}
	return float64(total) / float64(h.maxMemoryByte)
}

// reclaimIfUnderPressure triggers a bounded eviction pass when pressure
// exceeds 0.8: it removes LRU entries in batches of evictionBatchSize from
// the largest memory-tier partition, biggest family first, until pressure
// drops below 0.7 or no partition has anything left to evict.
func (h *Hierarchy) reclaimIfUnderPressure() {
	if h.pressure() <= 0.8 {
		return
	}

	for h.pressure() >= 0.7 {
		var largest *partition
		var largestBytes int64
		for _, p := range h.partitions {
			if b := p.memory.Bytes(); b > largestBytes {
				largest = p
				largestBytes = b
			}
		}
		if largest == nil || largestBytes == 0 {
			return
		}
		if largest.evictBatch(evictionBatchSize) == 0 {
			return
		}
	}
}

// evictBatch removes up to n least-recently-used entries from p's memory
// tier and records the count against p's eviction counter.
func (p *partition) evictBatch(n int) int {
	evicted := p.memory.evictN(n)
	if evicted > 0 {
		p.mu.Lock()
		p.evictions += int64(evicted)
		p.mu.Unlock()
	}
	return evicted
}

// InvalidateFile drops every cached entry across all families whose key is
// derived from path, used when a single file changes on disk.
func (h *Hierarchy) InvalidateFile(path string) {
	for _, p := range h.partitions {
		p.memory.RemoveMatching(func(k string) bool { return strings.Contains(k, path) })
		if p.persistent != nil {
			_ = p.persistent.Invalidate(path)
		}
	}
}

// InvalidateDirectory drops every cached entry across all families whose
// key falls under dir.
func (h *Hierarchy) InvalidateDirectory(dir string) {
	dir = filepath.Clean(dir)
	for _, p := range h.partitions {
		p.memory.RemoveMatching(func(k string) bool { return strings.HasPrefix(k, dir) })
	}
}

// ClearAll empties every family's memory and persistent tiers.
func (h *Hierarchy) ClearAll() {
	for _, p := range h.partitions {
		p.memory.Clear()
		if p.persistent != nil {
			_ = p.persistent.Clear()
		}
	}
}

// FamilySnapshot reports a single family's tier occupancy, hit rate, and
// eviction history.
type FamilySnapshot struct {
	Family     Family  `json:"family"`
	Entries    int     `json:"entries"`
	TotalBytes int64   `json:"total_bytes"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	Evictions  int64   `json:"evictions"`
	HitRate    float64 `json:"hit_rate"`
}

// Snapshot returns a point-in-time diagnostics view of every family,
// sorted by family name for deterministic output.
func (h *Hierarchy) Snapshot() []FamilySnapshot {
	out := make([]FamilySnapshot, 0, len(allFamilies))
	for _, f := range allFamilies {
		p, ok := h.partitions[f]
		if !ok {
			continue
		}
		p.mu.Lock()
		hits, misses, evictions := p.hits, p.misses, p.evictions
		p.mu.Unlock()

		out = append(out, FamilySnapshot{
			Family:     f,
			Entries:    p.memory.Len(),
			TotalBytes: p.memory.Bytes(),
			Hits:       hits,
			Misses:     misses,
			Evictions:  evictions,
			HitRate:    hitRate(hits, misses),
		})
	}
	return out
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// HotPath is one entry in a family's top-K-by-hit-count list.
type HotPath struct {
	Family Family `json:"family"`
	Key    string `json:"key"`
	Hits   int64  `json:"hits"`
}

// hotPathsPerFamily is how many top keys HotPaths returns for each family.
const hotPathsPerFamily = 10

// HotPaths returns, for every family, its top keys by hit count
// (hotPathsPerFamily per family), families visited in name order for
// deterministic output.
func (h *Hierarchy) HotPaths() []HotPath {
	var out []HotPath
	for _, f := range allFamilies {
		p, ok := h.partitions[f]
		if !ok {
			continue
		}
		for _, hc := range p.memory.topHits(hotPathsPerFamily) {
			out = append(out, HotPath{Family: f, Key: hc.key, Hits: hc.hits})
		}
	}
	return out
}

// Effectiveness is a cache-hierarchy-wide diagnostic summary.
type Effectiveness struct {
	OverallHitRate     float64  `json:"overall_hit_rate"`
	MemoryEfficiency   float64  `json:"memory_efficiency"`
	TimeSavedMS        int64    `json:"time_saved_ms"`
	MostValuableCaches []Family `json:"most_valuable_caches"`
}

// Effectiveness composes the hierarchy-wide effectiveness diagnostic:
// overall hit rate across every family, memory efficiency (1 - pressure),
// assumed time saved by cache hits (hits * assumed per-family compute
// cost), and the top-3 families by hit count.
func (h *Hierarchy) Effectiveness() Effectiveness {
	snaps := h.Snapshot()

	var totalHits, totalMisses, timeSavedMS int64
	for _, s := range snaps {
		totalHits += s.Hits
		totalMisses += s.Misses
	}
	for _, f := range allFamilies {
		p, ok := h.partitions[f]
		if !ok {
			continue
		}
		p.mu.Lock()
		hits := p.hits
		p.mu.Unlock()
		timeSavedMS += hits * p.cfg.AssumedComputeMS
	}

	ranked := append([]FamilySnapshot(nil), snaps...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Hits != ranked[j].Hits {
			return ranked[i].Hits > ranked[j].Hits
		}
		return ranked[i].Family < ranked[j].Family
	})
	top := 3
	if top > len(ranked) {
		top = len(ranked)
	}
	mostValuable := make([]Family, 0, top)
	for _, s := range ranked[:top] {
		mostValuable = append(mostValuable, s.Family)
	}

	return Effectiveness{
		OverallHitRate:     hitRate(totalHits, totalMisses),
		MemoryEfficiency:   1 - h.pressure(),
		TimeSavedMS:        timeSavedMS,
		MostValuableCaches: mostValuable,
	}
}
