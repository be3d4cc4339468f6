// Copyright Cedar Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ast defines the Cedar policy abstract syntax tree consumed by the
// validator. It has no dependency on the validator or on any concrete
// policy-text syntax: callers build a Policy by hand or from their own
// parser.
package ast

import "github.com/cedar-policy/cedar-validate/types"

// Span is a half-open byte range into a policy's original source text.
type Span struct {
	Start, End int
}

// SourceLoc locates a node in the policy's original source text. It is
// optional: an AST built programmatically may leave it unset.
type SourceLoc struct {
	Span Span
	Text string
}

// Expr is any Cedar expression node. All concrete node types are pointers,
// so two references to the same node compare equal with ==; this is what
// the validator's annotated-AST output keys on. Expr nodes are otherwise
// immutable once built.
type Expr interface {
	exprNode()
	// Location returns the node's source location, or nil if unset.
	Location() *SourceLoc
}

type base struct {
	Loc *SourceLoc
}

func (b *base) Location() *SourceLoc { return b.Loc }

// Var is one of the four request variables.
type Var struct {
	base
	Kind VarKind
}

func (*Var) exprNode() {}

// VarKind enumerates the four request variables.
type VarKind int

const (
	VarPrincipal VarKind = iota
	VarAction
	VarResource
	VarContext
)

func (k VarKind) String() string {
	switch k {
	case VarPrincipal:
		return "principal"
	case VarAction:
		return "action"
	case VarResource:
		return "resource"
	case VarContext:
		return "context"
	default:
		return "?var"
	}
}

// Slot is a template slot, `?principal` or `?resource`.
type Slot struct {
	base
	Kind SlotKind
}

func (*Slot) exprNode() {}

// SlotKind enumerates the two template slots.
type SlotKind int

const (
	SlotPrincipal SlotKind = iota
	SlotResource
)

func (k SlotKind) String() string {
	if k == SlotPrincipal {
		return "?principal"
	}
	return "?resource"
}

// Literal is a literal value: boolean, long, string, or entity UID.
type Literal struct {
	base
	Value types.Value
}

func (*Literal) exprNode() {}

// RecordAttr is one name/value pair of a record literal, in source order.
type RecordAttr struct {
	Name  string
	Value Expr
}

// RecordLit is a record literal `{ a: e1, b: e2, ... }`.
type RecordLit struct {
	base
	Attrs []RecordAttr
}

func (*RecordLit) exprNode() {}

// SetLit is a set literal `[e1, e2, ...]`.
type SetLit struct {
	base
	Elems []Expr
}

func (*SetLit) exprNode() {}

// Attr is attribute access, `e.name` or `e["name"]`.
type Attr struct {
	base
	Object Expr
	Name   string
}

func (*Attr) exprNode() {}

// Has is `e has name` or `e has "name"`.
type Has struct {
	base
	Object Expr
	Name   string
}

func (*Has) exprNode() {}

// Is is an entity type test, `e is T`.
type Is struct {
	base
	Object Expr
	Type   types.EntityType
}

func (*Is) exprNode() {}

// IsIn is `e is T in e2`.
type IsIn struct {
	base
	Object Expr
	Type   types.EntityType
	In     Expr
}

func (*IsIn) exprNode() {}

// In is `e1 in e2`.
type In struct {
	base
	Left, Right Expr
}

func (*In) exprNode() {}

// Eq is `e1 == e2` (Negate=false) or `e1 != e2` (Negate=true).
type Eq struct {
	base
	Left, Right Expr
	Negate      bool
}

func (*Eq) exprNode() {}

// ArithOp enumerates the arithmetic operators.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
)

func (o ArithOp) String() string { return [...]string{"+", "-", "*"}[o] }

// Arith is `e1 <op> e2` for `+ - *`.
type Arith struct {
	base
	Op          ArithOp
	Left, Right Expr
}

func (*Arith) exprNode() {}

// Neg is unary negation, `-e`.
type Neg struct {
	base
	Operand Expr
}

func (*Neg) exprNode() {}

// CmpOp enumerates the ordering comparison operators.
type CmpOp int

const (
	CmpLess CmpOp = iota
	CmpLessEq
	CmpGreater
	CmpGreaterEq
)

func (o CmpOp) String() string { return [...]string{"<", "<=", ">", ">="}[o] }

// Cmp is `e1 <op> e2` for `< <= > >=`.
type Cmp struct {
	base
	Op          CmpOp
	Left, Right Expr
}

func (*Cmp) exprNode() {}

// And is `e1 && e2`.
type And struct {
	base
	Left, Right Expr
}

func (*And) exprNode() {}

// Or is `e1 || e2`.
type Or struct {
	base
	Left, Right Expr
}

func (*Or) exprNode() {}

// Not is `!e`.
type Not struct {
	base
	Operand Expr
}

func (*Not) exprNode() {}

// If is `if c then t else e`.
type If struct {
	base
	Cond, Then, Else Expr
}

func (*If) exprNode() {}

// Like is `e like "pattern"`.
type Like struct {
	base
	Operand Expr
	Pattern string
}

func (*Like) exprNode() {}

// SetOpKind enumerates the set membership operators.
type SetOpKind int

const (
	SetOpContains SetOpKind = iota
	SetOpContainsAll
	SetOpContainsAny
)

// SetOp is `e1.contains(e2)`, `e1.containsAll(e2)`, or `e1.containsAny(e2)`.
type SetOp struct {
	base
	Op          SetOpKind
	Left, Right Expr
}

func (*SetOp) exprNode() {}

// ExtCall is an extension constructor or method call, e.g. `ip("1.2.3.4")`
// or `context.ip.isLoopback()`. Receiver is nil for a function-style call
// and non-nil for a method-style call (`receiver.name(args...)`).
type ExtCall struct {
	base
	Name     string
	Receiver Expr
	Args     []Expr
}

func (*ExtCall) exprNode() {}

// WithLoc sets e's source location and returns e, for fluent construction.
func WithLoc[T Expr](e T, loc SourceLoc) T {
	switch v := any(e).(type) {
	case *Var:
		v.Loc = &loc
	case *Slot:
		v.Loc = &loc
	case *Literal:
		v.Loc = &loc
	case *RecordLit:
		v.Loc = &loc
	case *SetLit:
		v.Loc = &loc
	case *Attr:
		v.Loc = &loc
	case *Has:
		v.Loc = &loc
	case *Is:
		v.Loc = &loc
	case *IsIn:
		v.Loc = &loc
	case *In:
		v.Loc = &loc
	case *Eq:
		v.Loc = &loc
	case *Arith:
		v.Loc = &loc
	case *Neg:
		v.Loc = &loc
	case *Cmp:
		v.Loc = &loc
	case *And:
		v.Loc = &loc
	case *Or:
		v.Loc = &loc
	case *Not:
		v.Loc = &loc
	case *If:
		v.Loc = &loc
	case *Like:
		v.Loc = &loc
	case *SetOp:
		v.Loc = &loc
	case *ExtCall:
		v.Loc = &loc
	}
	return e
}

// Convenience constructors, mirroring the fluent builder style of Cedar's
// own policy-builder packages.

func Principal() *Var { return &Var{Kind: VarPrincipal} }
func Action() *Var     { return &Var{Kind: VarAction} }
func Resource() *Var   { return &Var{Kind: VarResource} }
func Context() *Var    { return &Var{Kind: VarContext} }

func PrincipalSlot() *Slot { return &Slot{Kind: SlotPrincipal} }
func ResourceSlot() *Slot  { return &Slot{Kind: SlotResource} }

func Bool(b bool) *Literal               { return &Literal{Value: types.Boolean(b)} }
func Long(v int64) *Literal              { return &Literal{Value: types.Long(v)} }
func String(s string) *Literal           { return &Literal{Value: types.String(s)} }
func EntityUID(u types.EntityUID) *Literal { return &Literal{Value: u} }

func Record(attrs ...RecordAttr) *RecordLit { return &RecordLit{Attrs: attrs} }
func Set(elems ...Expr) *SetLit             { return &SetLit{Elems: elems} }

// Dot builds attribute access `e.name`.
func Dot(e Expr, name string) *Attr { return &Attr{Object: e, Name: name} }
