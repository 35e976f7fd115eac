package main

import "github.com/samber/lo"

// TypeKind tags the Type sum type.
type TypeKind int

const (
	TyDummy TypeKind = iota // declarator placeholder, never visible past parsing
	TyVoid
	TyBool
	TyChar
	TyShort
	TyInt
	TyLong
	TyEnum
	TyPtr
	TyArray
	TyStruct
	TyFunc
)

// Member is a struct field: its Type and a byte Offset filled in by
// layoutStruct using align_to(running, member.align).
type Member struct {
	Type   *Type
	Name   string
	Offset int
}

// Type is the flat algebraic type descriptor: one struct with a kind
// discriminant and the fields relevant to that kind, rather than an
// interface hierarchy per kind.
type Type struct {
	Kind    TypeKind
	Base    *Type     // Ptr, Array, Func(return type)
	Len     int       // Array
	Members []*Member // Struct
	Size    int       // Struct (precomputed); ignored for other kinds
	Align   int        // Struct (precomputed)
	Name    string     // Struct/Enum tag name, for diagnostics only

	incomplete bool // Array without a length, or Struct without a body
}

var (
	typeVoid  = &Type{Kind: TyVoid}
	typeBool  = &Type{Kind: TyBool}
	typeChar  = &Type{Kind: TyChar}
	typeShort = &Type{Kind: TyShort}
	typeInt   = &Type{Kind: TyInt}
	typeLong  = &Type{Kind: TyLong}
)

func newPtrType(base *Type) *Type {
	return &Type{Kind: TyPtr, Base: base}
}

func newArrayType(base *Type, length int, incomplete bool) *Type {
	return &Type{Kind: TyArray, Base: base, Len: length, incomplete: incomplete}
}

func newFuncType(ret *Type) *Type {
	return &Type{Kind: TyFunc, Base: ret}
}

func newEnumType(name string) *Type {
	return &Type{Kind: TyEnum, Name: name}
}

// SizeOf returns the C size in bytes: void=1 (sentinel), bool=char=1,
// short=2, int=4, long=ptr=func=8, struct/array derived.
func (t *Type) SizeOf() int {
	switch t.Kind {
	case TyVoid, TyBool, TyChar:
		return 1
	case TyShort:
		return 2
	case TyInt, TyEnum:
		return 4
	case TyLong, TyPtr, TyFunc:
		return 8
	case TyArray:
		return t.Base.SizeOf() * t.Len
	case TyStruct:
		return t.Size
	default:
		panic("SizeOf: unexpected type kind")
	}
}

// AlignOf returns the alignment in bytes.
func (t *Type) AlignOf() int {
	switch t.Kind {
	case TyArray:
		return t.Base.AlignOf()
	case TyStruct:
		return t.Align
	default:
		return t.SizeOf()
	}
}

func (t *Type) IsInteger() bool {
	switch t.Kind {
	case TyBool, TyChar, TyShort, TyInt, TyLong, TyEnum:
		return true
	default:
		return false
	}
}

// HasBase reports pointer-or-array (both support pointer arithmetic and
// array-to-pointer decay).
func (t *Type) HasBase() bool {
	return t.Kind == TyPtr || t.Kind == TyArray
}

func (t *Type) IsIncomplete() bool {
	if t.Kind == TyArray {
		return t.incomplete
	}
	if t.Kind == TyStruct {
		return t.incomplete
	}
	return false
}

// BaseSize is the element size used to scale pointer arithmetic.
func (t *Type) BaseSize() int {
	if !t.HasBase() {
		panic("BaseSize: expected pointer or array type")
	}
	return t.Base.SizeOf()
}

// decay converts an array type to pointer-to-element; every other type is
// returned unchanged. Used at every use site where an array lvalue is read
// in rvalue position.
func decay(t *Type) *Type {
	if t.Kind == TyArray {
		return newPtrType(t.Base)
	}
	return t
}

// replaceInnerPtrTo walks through a Ptr/Array chain to its TyDummy leaf and
// overwrites it with newTy, completing the declarator placeholder trick
// used for forms like "int (*p)[4]".
func replaceInnerPtrTo(t *Type, newTy *Type) {
	switch t.Kind {
	case TyDummy:
		*t = *newTy
	case TyPtr, TyArray:
		replaceInnerPtrTo(t.Base, newTy)
	default:
		panic("replaceInnerPtrTo: declarator chain has no dummy leaf")
	}
}

func alignTo(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// layoutStruct assigns each member's offset in declaration order and
// computes the struct's overall size/alignment.
func layoutStruct(tag string, members []*Member) *Type {
	running := 0
	for _, m := range members {
		a := m.Type.AlignOf()
		running = alignTo(running, a)
		m.Offset = running
		running += m.Type.SizeOf()
	}
	maxAlign := 1
	if len(members) > 0 {
		widest := lo.MaxBy(members, func(a, b *Member) bool {
			return a.Type.AlignOf() > b.Type.AlignOf()
		})
		maxAlign = widest.Type.AlignOf()
	}
	size := alignTo(running, maxAlign)
	return &Type{Kind: TyStruct, Name: tag, Members: members, Size: size, Align: maxAlign}
}

func findMember(structTy *Type, name string) *Member {
	m, ok := lo.Find(structTy.Members, func(m *Member) bool { return m.Name == name })
	if !ok {
		return nil
	}
	return m
}

// Type-specifier counter-bitmap: each builtin keyword contributes a fixed
// shift, summed as it is seen; the sum uniquely identifies the resulting
// base type.
const (
	specVoid  = 1 << 0
	specBool  = 1 << 2
	specChar  = 1 << 4
	specShort = 1 << 6
	specInt   = 1 << 8
	specLong  = 1 << 10
	specOther = 1 << 12
)

// decodeCounter maps a finished counter value to a builtin type via a
// fixed lookup table.
func decodeCounter(counter int) (*Type, bool) {
	switch counter {
	case specVoid:
		return typeVoid, true
	case specBool:
		return typeBool, true
	case specChar:
		return typeChar, true
	case specShort, specShort | specInt:
		return typeShort, true
	case specInt:
		return typeInt, true
	case specLong, specLong + specInt, specLong + specLong, specLong + specLong + specInt:
		return typeLong, true
	default:
		return nil, false
	}
}
