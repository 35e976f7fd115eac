package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpr_IsLvalue(t *testing.T) {
	tests := []struct {
		name string
		kind ExprKind
		want bool
	}{
		{"var", EVar, true},
		{"deref", EDeref, true},
		{"member", EMember, true},
		{"num", ENum, false},
		{"add", EAdd, false},
		{"call", EFnCall, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Expr{Kind: tt.kind}
			assert.Equal(t, tt.want, e.IsLvalue())
		})
	}
}

func TestFinalizeLocals_AssignsOffsetsInReverseDeclarationOrder(t *testing.T) {
	a := &Var{Name: "a", Type: typeChar}
	b := &Var{Name: "b", Type: typeInt}
	fn := &Function{Name: "f", Locals: []*Var{a, b}}

	finalizeLocals(fn)

	// Reverse order: b (int, 4 bytes) laid out first, then a (char, 1 byte).
	assert.Equal(t, 4, b.Offset)
	assert.Equal(t, 5, a.Offset)
	assert.True(t, a.HasOffset)
	assert.True(t, b.HasOffset)
	assert.Equal(t, 8, fn.StackSize) // rounded up to a multiple of 8
}

func TestFinalizeLocals_EmptyLocalsYieldsZeroStack(t *testing.T) {
	fn := &Function{Name: "f"}
	finalizeLocals(fn)
	assert.Equal(t, 0, fn.StackSize)
}
