package main

import "fmt"

// storageClass is the result of scanning storage-class keywords
// (typedef/static) alongside the base-type specifiers.
type storageClass int

const (
	storageNone storageClass = iota
	storageTypedef
	storageStatic
)

// Parser is a recursive-descent parser over a position-addressable token
// cursor with O(1) rewind, needed by isFunction's speculative lookahead and
// the cast-vs-parenthesized-expression / sizeof disambiguation at "(".
type Parser struct {
	toks []Token
	pos  int

	scope *Scope

	globals []*Var
	funcs   []*Function

	// funcProtos lets a function redeclared with the same name (prototype
	// then definition) share one Var entry.
	funcProtos map[string]*Var

	curLocals   *[]*Var // locals of the function currently being parsed
	dataSeq     int     // .L.data.N counter for string-literal globals
	loopDepth   int     // nesting depth, to validate break/continue
}

// Parse runs the full recursive-descent grammar over toks and returns the
// typed Program, or the first parse error encountered.
func Parse(toks []Token) (*Program, error) {
	p := &Parser{
		toks:       toks,
		scope:      NewScope(),
		funcProtos: map[string]*Var{},
	}
	for !p.atEOF() {
		isFn, err := p.isFunction()
		if err != nil {
			return nil, err
		}
		if isFn {
			if err := p.parseFunction(); err != nil {
				return nil, err
			}
		} else {
			if err := p.parseGlobalVar(); err != nil {
				return nil, err
			}
		}
	}
	return &Program{Funcs: p.funcs, Globals: p.globals}, nil
}

// --- token cursor -----------------------------------------------------

func (p *Parser) cur() Token { return p.toks[p.pos] }

func (p *Parser) atEOF() bool { return p.cur().Kind == TokEOF }

func (p *Parser) currentPosition() int { return p.pos }

func (p *Parser) backTo(n int) { p.pos = n }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

func (p *Parser) consumeReserved(text string) bool {
	if p.cur().isReserved(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consumeSymbol(text string) bool {
	if p.cur().isSymbol(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectReserved(text string) error {
	if !p.consumeReserved(text) {
		return errAt(p.cur().Loc, "expected %q but found %q", text, p.tokenText(p.cur()))
	}
	return nil
}

func (p *Parser) expectSymbol(text string) error {
	if !p.consumeSymbol(text) {
		return errAt(p.cur().Loc, "expected %q but found %q", text, p.tokenText(p.cur()))
	}
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	t := p.cur()
	if t.Kind != TokIdent {
		return "", errAt(t.Loc, "expected an identifier but found %q", p.tokenText(t))
	}
	p.advance()
	return t.Name, nil
}

func (p *Parser) tokenText(t Token) string {
	switch t.Kind {
	case TokEOF:
		return "<eof>"
	case TokStr:
		return t.Text
	case TokNum:
		return t.Text
	default:
		return t.Name
	}
}

// --- function / global-var dispatch ------------------------------------

// isFunction saves the cursor, attempts "basetype declarator", records
// whether a name was produced and the next token is "(", then rewinds —
// the speculative lookahead needed to tell a function definition apart
// from a global variable declaration before committing to either.
func (p *Parser) isFunction() (bool, error) {
	save := p.currentPosition()
	defer p.backTo(save)

	baseTy, _, err := p.baseType()
	if err != nil {
		return false, nil
	}
	name, _, err := p.declarator(baseTy)
	if err != nil || name == "" {
		return false, nil
	}
	return p.cur().isSymbol("("), nil
}

func (p *Parser) parseGlobalVar() error {
	baseTy, storage, err := p.baseType()
	if err != nil {
		return err
	}
	if storage == storageTypedef {
		return p.finishTypedef(baseTy)
	}
	// A bare "struct S { ... };" or "enum E { ... };" only declares the
	// tag, with no variable following it.
	if p.consumeSymbol(";") {
		return nil
	}
	for {
		name, ty, err := p.declarator(baseTy)
		if err != nil {
			return err
		}
		v := &Var{Name: name, Type: ty, IsLocal: false}
		p.scope.declareVar(v)
		p.globals = append(p.globals, v)
		if !p.consumeSymbol(",") {
			break
		}
	}
	return p.expectSymbol(";")
}

func (p *Parser) finishTypedef(baseTy *Type) error {
	for {
		name, ty, err := p.declarator(baseTy)
		if err != nil {
			return err
		}
		p.scope.declareTypedef(name, ty)
		if !p.consumeSymbol(",") {
			break
		}
	}
	return p.expectSymbol(";")
}

func (p *Parser) parseFunction() error {
	baseTy, storage, err := p.baseType()
	if err != nil {
		return err
	}
	name, retTy, err := p.declarator(baseTy)
	if err != nil {
		return err
	}
	if err := p.expectSymbol("("); err != nil {
		return err
	}
	mark := p.scope.Enter()
	params, err := p.parseParamList()
	if err != nil {
		return err
	}
	if err := p.expectSymbol(")"); err != nil {
		return err
	}

	fnVar := p.funcProtos[name]
	if fnVar == nil {
		fnVar = &Var{Name: name, Type: newFuncType(retTy), IsLocal: false}
		p.funcProtos[name] = fnVar
		p.scope.declareVar(fnVar)
	}

	if p.consumeSymbol(";") {
		p.scope.Leave(mark)
		return nil
	}

	for _, prm := range params {
		p.scope.declareVar(prm)
	}
	fn := &Function{Name: name, Params: params, Locals: append([]*Var{}, params...), IsStatic: storage == storageStatic}
	p.curLocals = &fn.Locals

	if err := p.expectSymbol("{"); err != nil {
		p.scope.Leave(mark)
		return err
	}
	var body []*Stmt
	for !p.cur().isSymbol("}") {
		s, err := p.stmt()
		if err != nil {
			p.scope.Leave(mark)
			return err
		}
		body = append(body, s)
	}
	if err := p.expectSymbol("}"); err != nil {
		p.scope.Leave(mark)
		return err
	}
	p.scope.Leave(mark)

	fn.Nodes = body
	finalizeLocals(fn)
	p.funcs = append(p.funcs, fn)
	p.curLocals = nil
	return nil
}

func (p *Parser) parseParamList() ([]*Var, error) {
	if p.cur().isSymbol(")") {
		return nil, nil
	}
	if p.cur().isReserved("void") {
		save := p.currentPosition()
		p.advance()
		if p.cur().isSymbol(")") {
			return nil, nil
		}
		p.backTo(save)
	}
	var params []*Var
	for {
		baseTy, _, err := p.baseType()
		if err != nil {
			return nil, err
		}
		name, ty, err := p.declarator(baseTy)
		if err != nil {
			return nil, err
		}
		if ty.Kind == TyArray {
			ty = newPtrType(ty.Base) // parameter array decay
		}
		params = append(params, &Var{Name: name, Type: ty, IsLocal: true})
		if !p.consumeSymbol(",") {
			break
		}
	}
	return params, nil
}

// --- base type / declarator ---------------------------------------------

// baseType scans type specifiers in any order using a counter-bitmap
// (each specifier keyword contributes a fixed shift; the accumulated sum
// uniquely identifies the resulting type), handling storage classes,
// struct/enum specifiers, and typedef names sharing the ordinary
// identifier namespace.
func (p *Parser) baseType() (*Type, storageClass, error) {
	counter := 0
	storage := storageNone
	var resolvedOther *Type

specLoop:
	for {
		t := p.cur()
		if t.Kind == TokIdent {
			if ty, ok := p.scope.lookupTypedef(t.Name); ok && resolvedOther == nil && counter&specOther == 0 {
				resolvedOther = ty
				counter += specOther
				p.advance()
				continue
			}
			break
		}
		if t.Kind != TokReserved {
			break
		}
		switch t.Name {
		case "typedef":
			if storage == storageStatic {
				return nil, storage, errAt(t.Loc, "typedef and static may not be used together")
			}
			storage = storageTypedef
			p.advance()
			continue
		case "static":
			if storage == storageTypedef {
				return nil, storage, errAt(t.Loc, "typedef and static may not be used together")
			}
			storage = storageStatic
			p.advance()
			continue
		case "void":
			counter += specVoid
			p.advance()
			continue
		case "_Bool":
			counter += specBool
			p.advance()
			continue
		case "char":
			counter += specChar
			p.advance()
			continue
		case "short":
			counter += specShort
			p.advance()
			continue
		case "int":
			counter += specInt
			p.advance()
			continue
		case "long":
			counter += specLong
			p.advance()
			continue
		case "struct":
			// A second type-specifier after one is already resolved (e.g. a
			// stray "struct" following a typedef name) ends specifier
			// scanning rather than looping forever re-seeing this token;
			// the declarator parsed next then fails on the stray keyword.
			if counter&specOther != 0 {
				break specLoop
			}
			ty, err := p.structDecl()
			if err != nil {
				return nil, storage, err
			}
			resolvedOther = ty
			counter += specOther
			continue
		case "enum":
			if counter&specOther != 0 {
				break specLoop
			}
			ty, err := p.enumDecl()
			if err != nil {
				return nil, storage, err
			}
			resolvedOther = ty
			counter += specOther
			continue
		}
		break
	}

	if counter == 0 {
		return nil, storage, errAt(p.cur().Loc, "expected a type but found %q", p.tokenText(p.cur()))
	}
	if counter&specOther != 0 {
		if counter != specOther {
			return nil, storage, errAt(p.cur().Loc, "invalid type combination")
		}
		return resolvedOther, storage, nil
	}
	ty, ok := decodeCounter(counter)
	if !ok {
		return nil, storage, errAt(p.cur().Loc, "invalid type combination")
	}
	return ty, storage, nil
}

// isTypeStart reports whether the current token could begin a basetype,
// used to disambiguate cast/sizeof-of-type from a parenthesized expression
// and to decide whether a statement begins a declaration.
func (p *Parser) isTypeStart() bool {
	t := p.cur()
	if t.Kind == TokReserved {
		switch t.Name {
		case "void", "_Bool", "char", "short", "int", "long", "struct", "enum", "static", "typedef":
			return true
		}
		return false
	}
	if t.Kind == TokIdent {
		_, ok := p.scope.lookupTypedef(t.Name)
		return ok
	}
	return false
}

// declarator implements the classic placeholder trick: consume leading
// "*", recurse into a parenthesized declarator with a TyDummy placeholder,
// apply the trailing type-suffix to the *outer* base type, then splice
// that computed type into the recursed declarator's placeholder leaf. This
// is what makes "int (*p)[4]" read differently from "int *p[4]".
func (p *Parser) declarator(base *Type) (string, *Type, error) {
	ty := base
	for p.consumeReserved("*") {
		ty = newPtrType(ty)
	}
	if p.consumeSymbol("(") {
		dummy := &Type{Kind: TyDummy}
		name, inner, err := p.declarator(dummy)
		if err != nil {
			return "", nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return "", nil, err
		}
		outer, err := p.typeSuffix(ty)
		if err != nil {
			return "", nil, err
		}
		replaceInnerPtrTo(inner, outer)
		return name, inner, nil
	}
	name, err := p.expectIdent()
	if err != nil {
		return "", nil, err
	}
	ty, err = p.typeSuffix(ty)
	if err != nil {
		return "", nil, err
	}
	return name, ty, nil
}

// typeSuffix parses ("[" num? "]" type-suffix)?, recursing so that
// "int a[2][3]" yields Array{base: Array{base: Int, len: 3}, len: 2}.
func (p *Parser) typeSuffix(base *Type) (*Type, error) {
	if !p.consumeSymbol("[") {
		return base, nil
	}
	length := 0
	incomplete := true
	if p.cur().Kind == TokNum {
		length = int(p.advance().IVal)
		incomplete = false
	}
	if err := p.expectSymbol("]"); err != nil {
		return nil, err
	}
	inner, err := p.typeSuffix(base)
	if err != nil {
		return nil, err
	}
	return newArrayType(inner, length, incomplete), nil
}

// --- struct / enum declarations -----------------------------------------

func (p *Parser) structDecl() (*Type, error) {
	if err := p.expectReserved("struct"); err != nil {
		return nil, err
	}
	tag := ""
	if p.cur().Kind == TokIdent {
		tag = p.advance().Name
	}
	if !p.cur().isSymbol("{") {
		if tag == "" {
			return nil, errAt(p.cur().Loc, "expected a struct tag or body")
		}
		ty, ok := p.scope.findTag(tag)
		if !ok {
			return nil, errAt(p.cur().Loc, "unknown struct tag: %s", tag)
		}
		return ty, nil
	}
	p.advance() // "{"
	var members []*Member
	for !p.cur().isSymbol("}") {
		baseTy, _, err := p.baseType()
		if err != nil {
			return nil, err
		}
		for {
			name, ty, err := p.declarator(baseTy)
			if err != nil {
				return nil, err
			}
			members = append(members, &Member{Type: ty, Name: name})
			if !p.consumeSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	ty := layoutStruct(tag, members)
	if tag != "" {
		p.scope.declareTag(tag, ty)
	}
	return ty, nil
}

func (p *Parser) enumDecl() (*Type, error) {
	if err := p.expectReserved("enum"); err != nil {
		return nil, err
	}
	tag := ""
	if p.cur().Kind == TokIdent {
		tag = p.advance().Name
	}
	ty := newEnumType(tag)
	if !p.cur().isSymbol("{") {
		if tag == "" {
			return nil, errAt(p.cur().Loc, "expected an enum tag or body")
		}
		existing, ok := p.scope.findTag(tag)
		if !ok {
			return nil, errAt(p.cur().Loc, "unknown enum tag: %s", tag)
		}
		return existing, nil
	}
	p.advance() // "{"
	var next int64
	for !p.cur().isSymbol("}") {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.consumeReserved("=") {
			t := p.cur()
			if t.Kind != TokNum {
				return nil, errAt(t.Loc, "expected a constant after '='")
			}
			p.advance()
			next = t.IVal
		}
		p.scope.declareEnumConst(name, ty, next)
		next++
		if !p.consumeSymbol(",") {
			break
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	if tag != "" {
		p.scope.declareTag(tag, ty)
	}
	return ty, nil
}

func (p *Parser) addLocal(v *Var) {
	if p.curLocals != nil {
		*p.curLocals = append(*p.curLocals, v)
	}
}

func (p *Parser) nextStringLabel() string {
	label := fmt.Sprintf(".L.data.%d", p.dataSeq)
	p.dataSeq++
	return label
}
