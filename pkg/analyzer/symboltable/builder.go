package symboltable

import (
	"github.com/paiml/strata/pkg/ast"
)

// Builder accumulates symbols extracted from one or more FileContexts into
// a single Table. It is not safe for concurrent use; callers running
// per-file extraction in parallel (e.g. via sourcegraph/conc) should give
// each worker its own Builder and merge into a shared Table afterward via
// Build, or serialize calls to AddFile.
type Builder struct {
	table *Table
}

// NewBuilder returns a Builder writing into a fresh Table.
func NewBuilder() *Builder {
	return &Builder{table: NewTable()}
}

// AddFile extracts every top-level item in fc into the table, qualifying
// each name by its file path.
func (b *Builder) AddFile(fc *ast.FileContext) {
	for _, item := range fc.Items {
		kind, ok := symbolKind(item.Kind)
		if !ok {
			continue
		}

		b.table.Add(Symbol{
			Name: QualifiedName{FilePath: fc.Path, Path: item.Name},
			Kind: kind,
			Location: Location{
				FilePath:  fc.Path,
				StartLine: item.Line,
			},
		})
	}
}

func symbolKind(k ast.ItemKind) (SymbolKind, bool) {
	switch k {
	case ast.ItemFunction:
		return SymbolFunction, true
	case ast.ItemStruct, ast.ItemEnum, ast.ItemTrait:
		return SymbolType, true
	case ast.ItemModule:
		return SymbolModule, true
	default:
		return 0, false
	}
}

// Build returns the populated table.
func (b *Builder) Build() *Table {
	return b.table
}
