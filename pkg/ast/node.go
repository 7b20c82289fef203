// Package ast builds a flat, arena-owned Unified AST projection on top of
// pkg/parser's tree-sitter trees. It is the structured representation the
// rest of the engine (complexity, DAG, provability) consumes instead of
// walking raw tree-sitter nodes directly.
package ast

import "github.com/paiml/strata/pkg/parser"

// NodeKind tags the variant a Node represents.
type NodeKind uint8

const (
	KindFunction NodeKind = iota
	KindClass             // Struct/Enum/Trait/Class
	KindVariable
	KindImport
	KindExprLiteral
	KindExprIdentifier
	KindExprBinary
	KindExprUnary
	KindExprCall
	KindStmtIf
	KindStmtWhile
	KindStmtFor
	KindStmtSwitch
	KindStmtTry
	KindStmtReturn
	KindStmtBlock
	KindStmtAssignment
	KindType
	KindModule
)

// Node is a single entry in an Arena. Parent/FirstChild/NextSibling are
// indices into the owning Arena's Nodes slice, never pointers: a Node never
// owns a back-reference to its owner, only an index into it. -1 marks the
// absence of a relation.
type Node struct {
	Kind           NodeKind
	Language       parser.Language
	Parent         int32
	FirstChild     int32
	NextSibling    int32
	StartByte      uint32 // half-open range [StartByte, EndByte)
	EndByte        uint32
	SemanticHash   uint64
	StructuralHash uint64
	NameHash       uint64
	Meta           uint32 // per-kind payload, e.g. cyclomatic count for KindFunction
}

const noIndex int32 = -1

// Arena owns every Node parsed from one file. It is dropped wholesale
// (set to nil) when the owning FileContext is released; children never
// outlive it since they only hold indices into Nodes.
type Arena struct {
	Path  string
	Nodes []Node
}

// NewArena creates an empty arena for path, pre-sized to reduce reallocation
// during extraction.
func NewArena(path string, sizeHint int) *Arena {
	return &Arena{
		Path:  path,
		Nodes: make([]Node, 0, sizeHint),
	}
}

// NewNode constructs a Node with no relations set (Parent/FirstChild/
// NextSibling all noIndex); callers wire relations via SetParent/AddChild.
func NewNode(kind NodeKind, lang parser.Language, start, end uint32) Node {
	return Node{
		Kind:        kind,
		Language:    lang,
		Parent:      noIndex,
		FirstChild:  noIndex,
		NextSibling: noIndex,
		StartByte:   start,
		EndByte:     end,
	}
}

// Add appends a node and returns its index within the arena.
func (a *Arena) Add(n Node) int32 {
	idx := int32(len(a.Nodes))
	a.Nodes = append(a.Nodes, n)
	return idx
}

// AddChild appends a node as the last child of parent, linking the
// sibling chain and setting the child's Parent index.
func (a *Arena) AddChild(parent int32, n Node) int32 {
	n.Parent = parent
	idx := a.Add(n)
	if parent < 0 || int(parent) >= len(a.Nodes) {
		return idx
	}
	if a.Nodes[parent].FirstChild == noIndex {
		a.Nodes[parent].FirstChild = idx
		return idx
	}
	sib := a.Nodes[parent].FirstChild
	for a.Nodes[sib].NextSibling != noIndex {
		sib = a.Nodes[sib].NextSibling
	}
	a.Nodes[sib].NextSibling = idx
	return idx
}

// Children returns the indices of n's children in sibling order.
func (a *Arena) Children(n int32) []int32 {
	var out []int32
	if n < 0 || int(n) >= len(a.Nodes) {
		return out
	}
	child := a.Nodes[n].FirstChild
	for child != noIndex {
		out = append(out, child)
		child = a.Nodes[child].NextSibling
	}
	return out
}
