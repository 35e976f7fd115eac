package main

import "github.com/samber/lo"

// varEntryKind distinguishes the three things that can occupy the ordinary
// identifier namespace: variables, typedefs, and enum constants all share
// one namespace in C, so a single tagged entry represents all three.
type varEntryKind int

const (
	entryVar varEntryKind = iota
	entryTypedef
	entryEnumConst
)

type varEntry struct {
	Kind     varEntryKind
	Name     string
	Var      *Var  // entryVar
	Typedef  *Type // entryTypedef
	EnumType *Type // entryEnumConst
	EnumVal  int64 // entryEnumConst
}

type tagEntry struct {
	Name string
	Type *Type
}

// Scope holds the two parallel stacks C scoping needs: ordinary
// identifiers (vars/typedefs/enum constants) and struct/enum tags. Both are
// searched most-recent-first so inner declarations shadow outer ones.
type Scope struct {
	vars []varEntry
	tags []tagEntry
}

func NewScope() *Scope {
	return &Scope{}
}

// scopeMark is a snapshot of both stacks' lengths, restored by Leave.
type scopeMark struct {
	varsLen int
	tagsLen int
}

func (s *Scope) Enter() scopeMark {
	return scopeMark{varsLen: len(s.vars), tagsLen: len(s.tags)}
}

func (s *Scope) Leave(m scopeMark) {
	s.vars = s.vars[:m.varsLen]
	s.tags = s.tags[:m.tagsLen]
}

func (s *Scope) declareVar(v *Var) {
	s.vars = append(s.vars, varEntry{Kind: entryVar, Name: v.Name, Var: v})
}

func (s *Scope) declareTypedef(name string, ty *Type) {
	s.vars = append(s.vars, varEntry{Kind: entryTypedef, Name: name, Typedef: ty})
}

func (s *Scope) declareEnumConst(name string, ty *Type, val int64) {
	s.vars = append(s.vars, varEntry{Kind: entryEnumConst, Name: name, EnumType: ty, EnumVal: val})
}

func (s *Scope) declareTag(name string, ty *Type) {
	s.tags = append(s.tags, tagEntry{Name: name, Type: ty})
}

// findVar looks up the ordinary-identifier namespace innermost-first.
func (s *Scope) findVar(name string) (varEntry, bool) {
	entry, _, found := lo.FindLastIndexOf(s.vars, func(e varEntry) bool { return e.Name == name })
	return entry, found
}

// findTag looks up the tag namespace innermost-first.
func (s *Scope) findTag(name string) (*Type, bool) {
	entry, _, found := lo.FindLastIndexOf(s.tags, func(e tagEntry) bool { return e.Name == name })
	if !found {
		return nil, false
	}
	return entry.Type, true
}

// lookupTypedef reports whether name currently resolves to a typedef, the
// case the parser must detect to treat an identifier as a type-specifier.
func (s *Scope) lookupTypedef(name string) (*Type, bool) {
	e, found := s.findVar(name)
	if !found || e.Kind != entryTypedef {
		return nil, false
	}
	return e.Typedef, true
}
