package main

// TokenKind tags the single flat Token struct every later stage consumes.
type TokenKind int

const (
	TokReserved TokenKind = iota // keyword or operator punctuator (single- or multi-letter)
	TokNum
	TokIdent
	TokSymbol // structural punctuator: ( ) ; { } . , [ ] :
	TokStr
	TokEOF
)

var reservedWords = map[string]bool{
	"return": true, "if": true, "while": true, "else": true, "for": true,
	"int": true, "short": true, "long": true, "char": true, "void": true,
	"_Bool": true, "sizeof": true, "struct": true, "typedef": true,
	"enum": true, "static": true, "break": true, "continue": true, "goto": true,
}

// multiLetterPunct is tried longest-first (the table is already ordered by
// construction: all entries are two characters).
var multiLetterPunct = []string{
	"==", "!=", "<=", ">=", "->", "++", "--", "+=", "-=", "*=", "/=", "&&", "||",
}

var singlePunctReserved = "=!<>+-*&/~|^"
var singlePunctSymbol = "();{}.,[]:"

// Token is a tagged union flattened into one struct with a discriminant
// field, rather than an interface hierarchy per variant.
type Token struct {
	Kind  TokenKind
	Text  string // exact source text (tk_str): operator spelling, keyword, punctuator
	IVal  int64  // Num: integer value
	Name  string // Ident: identifier name; Reserved: keyword/operator spelling
	Bytes []byte // Str: byte content, NUL-terminated
	Loc   Loc
}

func (t Token) isReserved(text string) bool {
	return t.Kind == TokReserved && t.Name == text
}

func (t Token) isSymbol(text string) bool {
	return t.Kind == TokSymbol && t.Name == text
}
