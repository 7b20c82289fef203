package provability

import (
	"github.com/cespare/xxhash/v2"
	"github.com/paiml/strata/pkg/ast"
)

var (
	nilHash  = xxhash.Sum64String("nil")
	nullHash = xxhash.Sum64String("null")
	noneHash = xxhash.Sum64String("None")
)

func isNilLiteralHash(h uint64) bool {
	return h == nilHash || h == nullHash || h == noneHash
}

// observe walks the arena nodes wholly contained in [start,end) -- one
// function's subtree -- and derives a single abstract-interpretation fact
// from the node-kind shape of the body. It is the analyzer's transfer
// function: the thing applied at every iteration of the fixed-point loop.
func observe(arena *ast.Arena, start, end uint32) Domain {
	d := Domain{Nullability: NullNotNull, Aliasing: AliasNone, Purity: PurityPure}

	var sawNilLiteral, sawCall, sawAssignment, sawIf, sawNestedIf int

	for i := range arena.Nodes {
		n := &arena.Nodes[i]
		if n.StartByte < start || n.EndByte > end {
			continue
		}
		switch n.Kind {
		case ast.KindExprLiteral:
			if isNilLiteralHash(n.NameHash) {
				sawNilLiteral++
			}
		case ast.KindExprCall:
			sawCall++
		case ast.KindStmtAssignment:
			sawAssignment++
		case ast.KindStmtIf:
			sawIf++
			if n.Parent >= 0 && int(n.Parent) < len(arena.Nodes) && arena.Nodes[n.Parent].Kind == ast.KindStmtIf {
				sawNestedIf++
			}
		}
	}

	if sawNilLiteral > 0 {
		d.Nullability = NullMaybeNull
	}

	switch {
	case sawAssignment == 0 && sawCall == 0:
		d.Purity = PurityPure
	case sawAssignment > 0 && sawCall == 0:
		d.Purity = PurityWriteLocal
	case sawCall > 0 && sawAssignment == 0:
		d.Purity = PurityReadOnly
	default:
		d.Purity = PurityWriteLocal
	}

	switch {
	case sawCall > 2:
		d.Aliasing = AliasMay
	case sawCall > 0:
		d.Aliasing = AliasMay
	default:
		d.Aliasing = AliasNone
	}

	if sawIf > 0 {
		zero := int64(0)
		d.Bounds.Lower = &zero
	}
	if sawNestedIf > 0 {
		hundred := int64(1 << 30)
		d.Bounds.Upper = &hundred
	}

	return d
}
