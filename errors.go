package main

import "fmt"

// CompileError is the single error type produced by every stage of the
// pipeline. Its text is always "row:col: message"; the CLI driver prepends
// the source filename to turn it into the "<file>:<row>:<col>:" form
// described in the external interface.
type CompileError struct {
	Pos Loc
	Msg string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s %s", e.Pos, e.Msg)
}

func errAt(pos Loc, format string, args ...any) error {
	return &CompileError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
