package ast

import "github.com/paiml/strata/pkg/analyzer/complexity"

// ItemKind tags the summarised top-level items extracted from a file's
// shallow scan pass.
type ItemKind uint8

const (
	ItemFunction ItemKind = iota
	ItemStruct
	ItemEnum
	ItemTrait
	ItemImpl
	ItemUse
	ItemModule
)

// AstItem is a summarised variant of a top-level declaration: name,
// visibility, line, and kind-specific fields. Invariant: Line >= 1.
type AstItem struct {
	Kind         ItemKind
	Name         string
	Visibility   string
	Line         int
	FieldCount   int
	VariantCount int
	Derives      []string
}

// FileContext is the per-file extraction result: the item summary plus,
// when complexity analysis was requested, the per-function metrics.
type FileContext struct {
	Path       string
	Language   string
	Items      []AstItem
	Complexity *complexity.FileResult
	Arena      *Arena
}
