package symboltable

import "testing"

func TestTableAddAndLookup(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Symbol{
		Name:     QualifiedName{FilePath: "a.go", Path: "Foo"},
		Kind:     SymbolFunction,
		Location: Location{FilePath: "a.go", StartByte: 10, EndByte: 50},
	})

	sym, ok := tbl.Lookup(QualifiedName{FilePath: "a.go", Path: "Foo"})
	if !ok {
		t.Fatal("expected Foo to be found")
	}
	if sym.Kind != SymbolFunction {
		t.Errorf("Kind = %v, want SymbolFunction", sym.Kind)
	}
}

func TestSymbolAtFindsNarrowestEnclosingSpan(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Symbol{
		Name:     QualifiedName{FilePath: "a.go", Path: "Outer"},
		Kind:     SymbolType,
		Location: Location{FilePath: "a.go", StartByte: 0, EndByte: 100},
	})
	tbl.Add(Symbol{
		Name:     QualifiedName{FilePath: "a.go", Path: "Outer.Method"},
		Kind:     SymbolMethod,
		Location: Location{FilePath: "a.go", StartByte: 20, EndByte: 40},
	})

	sym, ok := tbl.SymbolAt("a.go", 30)
	if !ok {
		t.Fatal("expected a symbol at byte 30")
	}
	if sym.Name.Path != "Outer.Method" {
		t.Errorf("SymbolAt = %q, want the narrower enclosing method", sym.Name.Path)
	}

	sym, ok = tbl.SymbolAt("a.go", 70)
	if !ok || sym.Name.Path != "Outer" {
		t.Errorf("SymbolAt(70) = %+v, want Outer", sym)
	}
}

func TestSymbolAtMissReturnsFalse(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.SymbolAt("missing.go", 5); ok {
		t.Error("expected no symbol for an unindexed file")
	}
}

func TestSymbolsInSpanReturnsOverlapping(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Symbol{Name: QualifiedName{FilePath: "a.go", Path: "A"}, Location: Location{FilePath: "a.go", StartByte: 0, EndByte: 10}})
	tbl.Add(Symbol{Name: QualifiedName{FilePath: "a.go", Path: "B"}, Location: Location{FilePath: "a.go", StartByte: 20, EndByte: 30}})

	got := tbl.SymbolsInSpan("a.go", 5, 25)
	if len(got) != 2 {
		t.Fatalf("expected both A and B to overlap [5,25), got %d", len(got))
	}
}

func TestTableLenCountsDistinctSymbols(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Symbol{Name: QualifiedName{FilePath: "a.go", Path: "A"}})
	tbl.Add(Symbol{Name: QualifiedName{FilePath: "a.go", Path: "A"}}) // overwrite, not append
	tbl.Add(Symbol{Name: QualifiedName{FilePath: "a.go", Path: "B"}})

	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}
