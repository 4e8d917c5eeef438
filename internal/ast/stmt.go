package ast

import (
	"downlevel/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	StmtExpr StmtKind = iota + 1
	StmtVar
	StmtReturn
	StmtBlock
	StmtFunc
	StmtIf
	StmtEmpty
)

func (k StmtKind) String() string {
	switch k {
	case StmtExpr:
		return "Expr"
	case StmtVar:
		return "Var"
	case StmtReturn:
		return "Return"
	case StmtBlock:
		return "Block"
	case StmtFunc:
		return "Func"
	case StmtIf:
		return "If"
	case StmtEmpty:
		return "Empty"
	}
	return "StmtKind(?)"
}

type Stmt struct {
	Kind      StmtKind
	Span      source.Span
	Flags     NodeFlags
	Transform TransformFlags
	Payload   PayloadID
}

// VarKind is the declaration keyword.
type VarKind uint8

const (
	VarVar VarKind = iota + 1
	VarLet
	VarConst
)

func (k VarKind) String() string {
	switch k {
	case VarLet:
		return "let"
	case VarConst:
		return "const"
	default:
		return "var"
	}
}

type VarDecl struct {
	Name source.StringID
	Init ExprID
}

type StmtExprData struct {
	Expr ExprID
}

type StmtVarData struct {
	Kind  VarKind
	Decls []VarDecl
}

type StmtReturnData struct {
	Value ExprID
}

type StmtBlockData struct {
	Stmts []StmtID
}

type StmtFuncData struct {
	Name      source.StringID
	Params    []source.StringID
	Body      StmtID
	Async     bool
	Generator bool
}

type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

// Stmts manages allocation of statements.
type Stmts struct {
	Arena   *Arena[Stmt]
	Exprs   *Arena[StmtExprData]
	Vars    *Arena[StmtVarData]
	Returns *Arena[StmtReturnData]
	Blocks  *Arena[StmtBlockData]
	Funcs   *Arena[StmtFuncData]
	Ifs     *Arena[StmtIfData]

	exprs        *Exprs
	synthesizing bool
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Exprs:   NewArena[StmtExprData](capHint),
		Vars:    NewArena[StmtVarData](capHint / 4),
		Returns: NewArena[StmtReturnData](capHint / 4),
		Blocks:  NewArena[StmtBlockData](capHint / 4),
		Funcs:   NewArena[StmtFuncData](capHint / 8),
		Ifs:     NewArena[StmtIfData](capHint / 8),
	}
}

func (s *Stmts) SetSynthesizing(on bool) {
	s.synthesizing = on
}

func (s *Stmts) new(kind StmtKind, span source.Span, tf TransformFlags, payload PayloadID) StmtID {
	var flags NodeFlags
	if s.synthesizing {
		flags |= NodeSynthesized
	}
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Flags: flags, Transform: tf, Payload: payload}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) exprTransform(ids ...ExprID) TransformFlags {
	if s.exprs == nil {
		return 0
	}
	return s.exprs.transformOf(ids...)
}

func (s *Stmts) stmtTransform(ids ...StmtID) TransformFlags {
	var tf TransformFlags
	for _, id := range ids {
		if st := s.Get(id); st != nil {
			tf |= st.Transform
		}
	}
	return tf
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	payload := s.Exprs.Allocate(StmtExprData{Expr: expr})
	return s.new(StmtExpr, span, s.exprTransform(expr), PayloadID(payload))
}

func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewVar(span source.Span, kind VarKind, decls []VarDecl) StmtID {
	payload := s.Vars.Allocate(StmtVarData{Kind: kind, Decls: decls})
	var tf TransformFlags
	for _, d := range decls {
		tf |= s.exprTransform(d.Init)
	}
	return s.new(StmtVar, span, tf, PayloadID(payload))
}

func (s *Stmts) Var(id StmtID) (*StmtVarData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtVar {
		return nil, false
	}
	return s.Vars.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	payload := s.Returns.Allocate(StmtReturnData{Value: value})
	return s.new(StmtReturn, span, s.exprTransform(value), PayloadID(payload))
}

func (s *Stmts) Return(id StmtID) (*StmtReturnData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	payload := s.Blocks.Allocate(StmtBlockData{Stmts: stmts})
	return s.new(StmtBlock, span, s.stmtTransform(stmts...), PayloadID(payload))
}

func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewFunc(span source.Span, data StmtFuncData) StmtID {
	payload := s.Funcs.Allocate(data)
	tf := s.stmtTransform(data.Body) &^ scopedTransformFlags
	return s.new(StmtFunc, span, tf, PayloadID(payload))
}

func (s *Stmts) Func(id StmtID) (*StmtFuncData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtFunc {
		return nil, false
	}
	return s.Funcs.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	payload := s.Ifs.Allocate(StmtIfData{Cond: cond, Then: then, Else: els})
	tf := s.exprTransform(cond) | s.stmtTransform(then, els)
	return s.new(StmtIf, span, tf, PayloadID(payload))
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(st.Payload)), true
}

func (s *Stmts) NewEmpty(span source.Span) StmtID {
	return s.new(StmtEmpty, span, 0, NoPayloadID)
}
