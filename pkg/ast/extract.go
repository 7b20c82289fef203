package ast

import (
	"github.com/cespare/xxhash/v2"
	"github.com/paiml/strata/pkg/analyzer/complexity"
	"github.com/paiml/strata/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// Extract performs the two-pass contract over a parsed file: a shallow item
// scan (functions, classes, imports) followed by a typed-node walk that
// populates an Arena whose nodes carry structural/name hashes for reuse by
// downstream analyses (provability, symbol table). Complexity metrics, when
// available on result, are attached to the returned FileContext verbatim;
// Extract never recomputes them.
func Extract(result *parser.ParseResult, fileComplexity *complexity.FileResult) *FileContext {
	fc := &FileContext{
		Path:     result.Path,
		Language: string(result.Language),
	}

	for _, fn := range parser.GetFunctions(result) {
		fc.Items = append(fc.Items, AstItem{
			Kind: ItemFunction,
			Name: fn.Name,
			Line: int(fn.StartLine),
		})
	}
	for _, cls := range parser.GetClasses(result) {
		fc.Items = append(fc.Items, AstItem{
			Kind:       ItemStruct,
			Name:       cls.Name,
			Line:       int(cls.StartLine),
			FieldCount: len(cls.Methods),
		})
	}

	fc.Complexity = fileComplexity
	fc.Arena = buildArena(result)
	return fc
}

// buildArena walks the full tree-sitter tree and projects it into a flat
// Unified AST arena: one Node per tree-sitter node that maps to a known
// NodeKind, linked by parent/first-child/next-sibling indices rather than
// pointers so the arena can be dropped as a single unit.
func buildArena(result *parser.ParseResult) *Arena {
	root := result.Tree.RootNode()
	arena := NewArena(result.Path, int(root.ChildCount())*4)

	var walk func(n *sitter.Node, parentIdx int32)
	walk = func(n *sitter.Node, parentIdx int32) {
		kind, ok := classifyNode(n.Type())
		idx := parentIdx
		if ok {
			node := NewNode(kind, result.Language, n.StartByte(), n.EndByte())
			node.StructuralHash = xxhash.Sum64String(n.Type())
			text := parser.GetNodeText(n, result.Source)
			node.NameHash = xxhash.Sum64String(text[:min(len(text), 64)])
			if parentIdx == noIndex {
				idx = arena.Add(node)
			} else {
				idx = arena.AddChild(parentIdx, node)
			}
		}
		for i := range int(n.ChildCount()) {
			walk(n.Child(i), idx)
		}
	}
	walk(root, noIndex)

	return arena
}

// classifyNode maps a tree-sitter node type to a Unified AST NodeKind.
// Node types this project has no opinion about (punctuation, whitespace,
// language-specific sugar) are not represented in the arena at all; their
// children are reparented to the nearest classified ancestor.
func classifyNode(nodeType string) (NodeKind, bool) {
	switch nodeType {
	case "function_declaration", "function_definition", "function_item",
		"method_declaration", "method_definition", "method", "arrow_function":
		return KindFunction, true
	case "class_declaration", "class_definition", "struct_item", "enum_item",
		"trait_item", "interface_declaration":
		return KindClass, true
	case "variable_declaration", "let_declaration", "const_declaration",
		"short_var_declaration", "var_declaration":
		return KindVariable, true
	case "import_declaration", "import_statement", "use_declaration":
		return KindImport, true
	case "binary_expression", "binary_operator":
		return KindExprBinary, true
	case "unary_expression", "unary_operator":
		return KindExprUnary, true
	case "call_expression", "call", "method_call":
		return KindExprCall, true
	case "identifier", "type_identifier", "field_identifier":
		return KindExprIdentifier, true
	case "number", "string", "string_literal", "integer", "float", "boolean", "true", "false", "nil", "null":
		return KindExprLiteral, true
	case "if_statement", "if_expression", "if":
		return KindStmtIf, true
	case "while_statement", "while_expression", "while":
		return KindStmtWhile, true
	case "for_statement", "for_expression", "for":
		return KindStmtFor, true
	case "switch_statement", "match_expression", "case_statement":
		return KindStmtSwitch, true
	case "try_statement", "catch_clause":
		return KindStmtTry, true
	case "return_statement", "return":
		return KindStmtReturn, true
	case "block", "statement_block", "body_statement":
		return KindStmtBlock, true
	case "assignment_expression", "assignment", "augmented_assignment":
		return KindStmtAssignment, true
	case "type_annotation", "type_declaration":
		return KindType, true
	case "source_file", "program", "module":
		return KindModule, true
	default:
		return 0, false
	}
}
