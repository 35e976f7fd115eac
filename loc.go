package main

import "fmt"

// Loc is a source position attached to every token, used only for
// diagnostics (never for semantic decisions).
type Loc struct {
	Row int
	Col int
}

// String renders the "row:col:" prefix shared by every diagnostic message.
func (l Loc) String() string {
	return fmt.Sprintf("%d:%d:", l.Row, l.Col)
}
