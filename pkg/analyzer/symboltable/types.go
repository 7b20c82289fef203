// Package symboltable builds a queryable index of every named symbol
// (function, type, variable) an analysis run discovers, keyed by a
// qualified name and by byte span within its file, so other components
// (the DAG builder, the provability analyzer, report generation) can go
// from a location in source to the symbol that owns it and back.
package symboltable

// QualifiedName identifies a symbol uniquely across a whole analysis run:
// the file it lives in plus a dotted path of enclosing scopes.
type QualifiedName struct {
	FilePath string
	Path     string // e.g. "Server.handleRequest" or "parseConfig"
}

// String renders the qualified name as "file:path".
func (q QualifiedName) String() string {
	return q.FilePath + ":" + q.Path
}

// Location is a symbol's source position.
type Location struct {
	FilePath  string
	StartLine int
	EndLine   int
	StartByte uint32
	EndByte   uint32
}

// SymbolKind classifies what a symbol names.
type SymbolKind uint8

const (
	SymbolFunction SymbolKind = iota
	SymbolMethod
	SymbolType
	SymbolVariable
	SymbolConstant
	SymbolModule
)

// Symbol is one entry in the table: a qualified name, its kind, location,
// and the qualified name of its enclosing scope (empty for top-level
// symbols).
type Symbol struct {
	Name     QualifiedName
	Kind     SymbolKind
	Location Location
	Parent   string // QualifiedName.Path of the enclosing scope, or ""
}

// span is the internal sorted-index entry backing SymbolAt's binary search:
// one per-file, byte-ordered record pointing back at a Symbol by index.
type span struct {
	start, end uint32
	symbolIdx  int
}
