package symboltable

import (
	"sort"
	"sync"
)

// Table is the built, queryable symbol index. It is safe for concurrent
// read access; writes only happen through Builder before a Table is
// published to the rest of the engine, except for the rare incremental
// Update call, which takes a plain RWMutex rather than a lock-free
// structure since symbol-table mutations are orders of magnitude rarer
// than the complexity/DAG hot paths that justify sourcegraph/conc elsewhere.
type Table struct {
	mu       sync.RWMutex
	symbols  []Symbol
	byName   map[string]int // QualifiedName.String() -> index into symbols
	fileSpan map[string][]span
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		byName:   make(map[string]int),
		fileSpan: make(map[string][]span),
	}
}

// Add inserts or replaces a symbol, keeping the per-file span index sorted
// by start byte for SymbolAt's binary search.
func (t *Table) Add(sym Symbol) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := sym.Name.String()
	idx, exists := t.byName[key]
	if exists {
		old := t.symbols[idx]
		t.symbols[idx] = sym
		if old.Location.FilePath != sym.Location.FilePath || old.Location.StartByte != sym.Location.StartByte || old.Location.EndByte != sym.Location.EndByte {
			t.removeSpan(old.Location.FilePath, idx)
		} else {
			return // identical location already indexed; nothing left to update
		}
	} else {
		idx = len(t.symbols)
		t.symbols = append(t.symbols, sym)
		t.byName[key] = idx
	}

	spans := t.fileSpan[sym.Location.FilePath]
	spans = append(spans, span{start: sym.Location.StartByte, end: sym.Location.EndByte, symbolIdx: idx})
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	t.fileSpan[sym.Location.FilePath] = spans
}

// removeSpan drops the span entry pointing at symbolIdx in file, called
// before re-adding a moved symbol so a location update doesn't leave a
// stale span behind.
func (t *Table) removeSpan(file string, symbolIdx int) {
	spans := t.fileSpan[file]
	for i, s := range spans {
		if s.symbolIdx == symbolIdx {
			t.fileSpan[file] = append(spans[:i], spans[i+1:]...)
			return
		}
	}
}

// Lookup returns the symbol with the given qualified name.
func (t *Table) Lookup(name QualifiedName) (Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, ok := t.byName[name.String()]
	if !ok {
		return Symbol{}, false
	}
	return t.symbols[idx], true
}

// SymbolAt returns the innermost symbol whose span contains byteOffset in
// file, via binary search over that file's sorted span index. Innermost
// means the narrowest enclosing span, since a method's span nests inside
// its containing type's span.
func (t *Table) SymbolAt(file string, byteOffset uint32) (Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	spans := t.fileSpan[file]
	if len(spans) == 0 {
		return Symbol{}, false
	}

	// Find the last span starting at or before byteOffset, then walk
	// backward for the narrowest span that still contains it: sorted by
	// start only, so a later, narrower nested span can appear after a
	// wider enclosing one with an earlier start.
	i := sort.Search(len(spans), func(i int) bool { return spans[i].start > byteOffset })

	var best *span
	for j := i - 1; j >= 0; j-- {
		s := spans[j]
		if byteOffset < s.start || byteOffset >= s.end {
			continue
		}
		if best == nil || (s.end-s.start) < (best.end-best.start) {
			best = &spans[j]
		}
	}
	if best == nil {
		return Symbol{}, false
	}
	return t.symbols[best.symbolIdx], true
}

// SymbolsInSpan returns every symbol in file whose span overlaps
// [start,end), in file order.
func (t *Table) SymbolsInSpan(file string, start, end uint32) []Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Symbol
	for _, s := range t.fileSpan[file] {
		if s.start < end && s.end > start {
			out = append(out, t.symbols[s.symbolIdx])
		}
	}
	return out
}

// All returns every symbol in the table, in insertion order.
func (t *Table) All() []Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Symbol, len(t.symbols))
	copy(out, t.symbols)
	return out
}

// Len reports the number of distinct symbols in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.symbols)
}
