package main

import "github.com/samber/lo"

// Var is shared, not owned: every Expr that references a variable holds
// the same *Var stored in Function.Locals/Params or Program.Globals, so
// patching Offset after parsing is observable everywhere via ordinary
// pointer identity (see DESIGN.md).
type Var struct {
	Name    string
	Type    *Type
	IsLocal bool

	Offset    int // distance below rbp for locals; meaningless for globals
	HasOffset bool

	Contents        []byte // string-literal globals only
	IsStringLiteral bool
}

// Function is one parsed function definition, ready for codegen once
// finalizeLocals has assigned stack offsets.
type Function struct {
	Name      string
	Nodes     []*Stmt
	Locals    []*Var
	Params    []*Var
	StackSize int
	IsStatic  bool
}

// Program is the parser's complete output: every function definition and
// every file-scope global (including string-literal globals).
type Program struct {
	Funcs   []*Function
	Globals []*Var
}

// finalizeLocals walks locals in reverse declaration order, accumulating
// align_to(running, member.align) offsets, and stores the final
// rounded-to-8 stack size.
func finalizeLocals(fn *Function) {
	offset := 0
	reversed := lo.Reverse(append([]*Var{}, fn.Locals...))
	for _, v := range reversed {
		offset += v.Type.SizeOf()
		offset = alignTo(offset, v.Type.AlignOf())
		v.Offset = offset
		v.HasOffset = true
	}
	fn.StackSize = alignTo(offset, 8)
}
