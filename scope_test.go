package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_ShadowingAndRestore(t *testing.T) {
	s := NewScope()
	outer := &Var{Name: "x", Type: typeInt}
	s.declareVar(outer)

	mark := s.Enter()
	inner := &Var{Name: "x", Type: typeLong}
	s.declareVar(inner)

	entry, ok := s.findVar("x")
	require.True(t, ok)
	assert.Same(t, inner, entry.Var)

	s.Leave(mark)
	entry, ok = s.findVar("x")
	require.True(t, ok)
	assert.Same(t, outer, entry.Var)
}

func TestScope_TagNamespaceIsSeparateFromVars(t *testing.T) {
	s := NewScope()
	structTy := &Type{Kind: TyStruct, Name: "Point"}
	s.declareTag("Point", structTy)

	_, varFound := s.findVar("Point")
	assert.False(t, varFound)

	ty, tagFound := s.findTag("Point")
	require.True(t, tagFound)
	assert.Same(t, structTy, ty)
}

func TestScope_LookupTypedef(t *testing.T) {
	s := NewScope()
	s.declareTypedef("myint", typeInt)

	ty, ok := s.lookupTypedef("myint")
	require.True(t, ok)
	assert.Same(t, typeInt, ty)

	_, ok = s.lookupTypedef("undefined_name")
	assert.False(t, ok)
}

func TestScope_EnumConstResolves(t *testing.T) {
	s := NewScope()
	enumTy := newEnumType("Color")
	s.declareEnumConst("RED", enumTy, 0)
	s.declareEnumConst("GREEN", enumTy, 1)

	entry, ok := s.findVar("GREEN")
	require.True(t, ok)
	assert.Equal(t, entryEnumConst, entry.Kind)
	assert.EqualValues(t, 1, entry.EnumVal)
}
