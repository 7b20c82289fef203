package provability

// NullabilityLattice tracks whether a value can be nil/null.
type NullabilityLattice uint8

const (
	NullTop NullabilityLattice = iota // unknown
	NullNotNull
	NullMaybeNull
	NullDefinite
	NullBottom // unreachable
)

// Join combines two nullability facts observed along different paths.
func (n NullabilityLattice) Join(o NullabilityLattice) NullabilityLattice {
	switch {
	case n == NullBottom:
		return o
	case o == NullBottom:
		return n
	case n == NullTop || o == NullTop:
		return NullTop
	case n == NullNotNull && o == NullNotNull:
		return NullNotNull
	case n == NullDefinite && o == NullDefinite:
		return NullDefinite
	case (n == NullNotNull && o == NullDefinite) || (n == NullDefinite && o == NullNotNull):
		return NullBottom
	default:
		return NullMaybeNull
	}
}

// BoundsLattice is an interval abstraction of an integer-valued expression.
// A nil bound means unbounded in that direction.
type BoundsLattice struct {
	Lower *int64
	Upper *int64
}

// Widen drops a bound that moved outward between iterations, the standard
// interval-lattice widening used to force fixed-point termination.
func (b BoundsLattice) Widen(o BoundsLattice) BoundsLattice {
	out := BoundsLattice{Lower: b.Lower, Upper: b.Upper}

	if b.Lower != nil && o.Lower != nil && *b.Lower > *o.Lower {
		out.Lower = nil
	} else if o.Lower != nil {
		out.Lower = o.Lower
	}

	if b.Upper != nil && o.Upper != nil && *b.Upper < *o.Upper {
		out.Upper = nil
	} else if o.Upper != nil {
		out.Upper = o.Upper
	}

	return out
}

// Equal reports whether two bounds lattices carry the same facts.
func (b BoundsLattice) Equal(o BoundsLattice) bool {
	return intPtrEqual(b.Lower, o.Lower) && intPtrEqual(b.Upper, o.Upper)
}

func intPtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// AliasLattice tracks whether a reference may share storage with another.
type AliasLattice uint8

const (
	AliasTop AliasLattice = iota // unknown
	AliasNone
	AliasMay
	AliasMust
	AliasBottom // unreachable
)

// Join combines two aliasing facts observed along different paths.
func (a AliasLattice) Join(o AliasLattice) AliasLattice {
	switch {
	case a == AliasBottom:
		return o
	case o == AliasBottom:
		return a
	case a == AliasTop || o == AliasTop:
		return AliasTop
	case a == AliasNone && o == AliasNone:
		return AliasNone
	case a == AliasMust && o == AliasMust:
		return AliasMust
	default:
		return AliasMay
	}
}

// PurityLattice tracks the side-effect class of a function body.
type PurityLattice uint8

const (
	PurityTop PurityLattice = iota // unknown
	PurityPure
	PurityReadOnly
	PurityWriteLocal
	PurityWriteGlobal
	PurityBottom // unreachable
)

// Meet takes the more conservative (more side-effecting) of two purity
// facts: a single write anywhere on any observed path taints the whole
// function, so purity composes by meet rather than join.
func (p PurityLattice) Meet(o PurityLattice) PurityLattice {
	switch {
	case p == PurityBottom || o == PurityBottom:
		return PurityBottom
	case p == PurityWriteGlobal || o == PurityWriteGlobal:
		return PurityWriteGlobal
	case p == PurityWriteLocal || o == PurityWriteLocal:
		return PurityWriteLocal
	case p == PurityReadOnly && o == PurityReadOnly:
		return PurityReadOnly
	case p == PurityPure && o == PurityPure:
		return PurityPure
	default:
		return PurityTop
	}
}

// Domain is the product lattice over the four tracked properties.
type Domain struct {
	Nullability NullabilityLattice
	Bounds      BoundsLattice
	Aliasing    AliasLattice
	Purity      PurityLattice
}

// Top returns the least-informative domain value, the starting point of
// every fixed-point iteration.
func Top() Domain {
	return Domain{Nullability: NullTop, Aliasing: AliasTop, Purity: PurityTop}
}

// Widen advances the fixed-point iteration: nullability and aliasing join
// (they have finite height so they stabilize on their own), bounds widen
// to force termination, and purity meets since any path's side effect
// applies to the whole function.
func (d Domain) Widen(o Domain) Domain {
	return Domain{
		Nullability: d.Nullability.Join(o.Nullability),
		Bounds:      d.Bounds.Widen(o.Bounds),
		Aliasing:    d.Aliasing.Join(o.Aliasing),
		Purity:      d.Purity.Meet(o.Purity),
	}
}

// Equal reports whether two domain states carry identical facts.
func (d Domain) Equal(o Domain) bool {
	return d.Nullability == o.Nullability &&
		d.Bounds.Equal(o.Bounds) &&
		d.Aliasing == o.Aliasing &&
		d.Purity == o.Purity
}
