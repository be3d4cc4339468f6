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

package validator

import (
	"github.com/cedar-policy/cedar-validate/ast"
	"github.com/cedar-policy/cedar-validate/schema"
	"github.com/cedar-policy/cedar-validate/types"
)

// tc carries the fixed inputs to one policy/environment typecheck pass
// and accumulates its outputs as it walks the expression tree.
type tc struct {
	sch   *schema.Schema
	env   RequestEnv
	mode  Mode
	diags []Diagnostic
	typed map[ast.Expr]Type
}

func (c *tc) report(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// infer typechecks e under the incoming capability set and records its
// type in the annotated-AST map, keyed by node identity (pointer
// equality), before returning the type and the outbound capability set.
func (c *tc) infer(e ast.Expr, caps Capabilities) (Type, Capabilities) {
	t, out := c.inferRaw(e, caps)
	c.typed[e] = t
	return t, out
}

func (c *tc) inferRaw(e ast.Expr, caps Capabilities) (Type, Capabilities) {
	switch n := e.(type) {
	case *ast.Var:
		return c.inferVar(n), caps
	case *ast.Slot:
		return c.inferSlot(n), caps
	case *ast.Literal:
		return c.inferLiteral(n), caps
	case *ast.RecordLit:
		return c.inferRecordLit(n, caps)
	case *ast.SetLit:
		return c.inferSetLit(n, caps)
	case *ast.Attr:
		return c.inferAttr(n, caps)
	case *ast.Has:
		return c.inferHas(n, caps)
	case *ast.Is:
		return c.inferIs(n, caps)
	case *ast.IsIn:
		return c.inferIsIn(n, caps)
	case *ast.In:
		return c.inferIn(n, caps)
	case *ast.Eq:
		return c.inferEq(n, caps)
	case *ast.Arith:
		return c.inferArith(n, caps)
	case *ast.Neg:
		return c.inferNeg(n, caps)
	case *ast.Cmp:
		return c.inferCmp(n, caps)
	case *ast.And:
		return c.inferAnd(n, caps)
	case *ast.Or:
		return c.inferOr(n, caps)
	case *ast.Not:
		return c.inferNot(n, caps)
	case *ast.If:
		return c.inferIf(n, caps)
	case *ast.Like:
		return c.inferLike(n, caps)
	case *ast.SetOp:
		return c.inferSetOp(n, caps)
	case *ast.ExtCall:
		return c.inferExtCall(n, caps)
	default:
		return NeverType{}, caps
	}
}

func (c *tc) inferVar(n *ast.Var) Type {
	switch n.Kind {
	case ast.VarPrincipal:
		return EntityTypeT{LUB: NewEntityLUB(c.env.PrincipalType)}
	case ast.VarResource:
		return EntityTypeT{LUB: NewEntityLUB(c.env.ResourceType)}
	case ast.VarAction:
		return ActionEntityType{LUB: NewEntityLUB(c.env.ActionUID.Type)}
	case ast.VarContext:
		return c.env.ContextType
	default:
		return NeverType{}
	}
}

func (c *tc) inferSlot(n *ast.Slot) Type {
	var bound *types.EntityType
	switch n.Kind {
	case ast.SlotPrincipal:
		bound = c.env.PrincipalSlot
	case ast.SlotResource:
		bound = c.env.ResourceSlot
	}
	if bound == nil {
		return AnyEntityTypeT{}
	}
	return EntityTypeT{LUB: NewEntityLUB(*bound)}
}

func (c *tc) inferLiteral(n *ast.Literal) Type {
	switch v := n.Value.(type) {
	case types.Boolean:
		if bool(v) {
			return TrueType{}
		}
		return FalseType{}
	case types.Long:
		return LongType{}
	case types.String:
		return StringType{}
	case types.EntityUID:
		return c.literalEntityType(n, v)
	case types.Decimal:
		return ExtensionType{Name: "decimal"}
	case types.IPAddr:
		return ExtensionType{Name: "ip"}
	case types.Duration:
		return ExtensionType{Name: "duration"}
	case types.Datetime:
		return ExtensionType{Name: "datetime"}
	default:
		return NeverType{}
	}
}

func (c *tc) literalEntityType(n *ast.Literal, v types.EntityUID) Type {
	if c.sch.IsActionType(v.Type) {
		if _, ok := c.sch.Action(v); !ok {
			c.report(Diagnostic{ErrKind: UnrecognizedActionId, Loc: n.Location(), Expr: n,
				Identifier: v.String(), Suggestion: suggest(string(v.ID), c.sch.ActionIDs(v.Type))})
		}
		return ActionEntityType{LUB: NewEntityLUB(v.Type)}
	}
	if _, ok := c.sch.EntityType(v.Type); !ok {
		c.report(Diagnostic{ErrKind: UnrecognizedEntityType, Loc: n.Location(), Expr: n,
			Identifier: string(v.Type), Suggestion: suggest(string(v.Type), entityTypeNames(c.sch))})
		return AnyEntityTypeT{}
	}
	return EntityTypeT{LUB: NewEntityLUB(v.Type)}
}

func entityTypeNames(sch *schema.Schema) []string {
	names := sch.AllEntityTypeNames()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

func (c *tc) inferRecordLit(n *ast.RecordLit, caps Capabilities) (Type, Capabilities) {
	attrs := make(map[string]AttributeType, len(n.Attrs))
	out := caps
	for _, a := range n.Attrs {
		t, ac := c.infer(a.Value, caps)
		attrs[a.Name] = AttributeType{Type: t, Required: true}
		out = out.Union(ac)
	}
	return RecordType{Attrs: attrs, Open: false}, out
}

func (c *tc) inferSetLit(n *ast.SetLit, caps Capabilities) (Type, Capabilities) {
	if len(n.Elems) == 0 {
		c.report(Diagnostic{ErrKind: EmptySetForbidden, Loc: n.Location(), Expr: n})
		return SetType{Element: NeverType{}}, caps
	}
	out := caps
	elem, _ := c.infer(n.Elems[0], caps)
	for _, e := range n.Elems[1:] {
		t, ac := c.infer(e, caps)
		out = out.Union(ac)
		res := LeastUpperBound(elem, t, c.mode)
		if !res.OK {
			c.report(Diagnostic{ErrKind: IncompatibleTypes, Loc: e.Location(), Expr: e,
				Expected: elem, Actual: t, LUBCtx: LUBContextSet, LUBReason: res.Reason})
			elem = NeverType{}
			continue
		}
		elem = res.Type
	}
	return SetType{Element: elem}, out
}

func (c *tc) inferAttr(n *ast.Attr, caps Capabilities) (Type, Capabilities) {
	objType, _ := c.infer(n.Object, caps)
	at, ok := LookupAttribute(c.sch, objType, n.Name)
	prefix, path := reconstructAttrPath(c.typed, n.Object, n.Name)
	if !ok {
		c.report(Diagnostic{ErrKind: UnsafeAttributeAccess, Loc: n.Location(), Expr: n,
			AttrPrefix: prefix, AttrPath: path, MayExist: MayExist(objType),
			Suggestion: suggest(n.Name, DeclaredAttributeNames(c.sch, objType))})
		return NeverType{}, caps
	}
	if at.Required || caps.Has(n.Object, n.Name) {
		return at.Type, caps
	}
	c.report(Diagnostic{ErrKind: UnsafeOptionalAttributeAccess, Loc: n.Location(), Expr: n,
		AttrPrefix: prefix, AttrPath: path})
	return at.Type, caps
}

func (c *tc) inferHas(n *ast.Has, caps Capabilities) (Type, Capabilities) {
	objType, _ := c.infer(n.Object, caps)
	if objType.Kind() != KindRecord && !IsEntityLike(objType) {
		c.report(Diagnostic{ErrKind: UnexpectedType, Loc: n.Location(), Expr: n,
			Expected: RecordType{Attrs: map[string]AttributeType{}, Open: true}, Actual: objType})
		return BooleanType{}, caps
	}
	at, ok := LookupAttribute(c.sch, objType, n.Name)
	switch {
	case ok && at.Required:
		return TrueType{}, caps
	case ok && !at.Required:
		return BooleanType{}, caps.With(n.Object, n.Name)
	case MayExist(objType):
		return BooleanType{}, caps
	default:
		return FalseType{}, caps
	}
}

func (c *tc) inferIs(n *ast.Is, caps Capabilities) (Type, Capabilities) {
	objType, _ := c.infer(n.Object, caps)
	if !IsEntityLike(objType) {
		c.report(Diagnostic{ErrKind: UnexpectedType, Loc: n.Location(), Expr: n,
			Expected: EntityTypeT{LUB: NewEntityLUB(n.Type)}, Actual: objType, HelpText: HelpTypeTestNotSupported})
		return BooleanType{}, caps
	}
	return isTypeTest(objType, n.Type), caps
}

func isTypeTest(objType Type, want types.EntityType) Type {
	et, ok := objType.(EntityTypeT)
	if !ok {
		return BooleanType{} // AnyEntity or ActionEntity: undecidable
	}
	names := et.LUB.Names()
	if len(names) == 1 {
		if names[0] == want {
			return TrueType{}
		}
		return FalseType{}
	}
	for _, n := range names {
		if n == want {
			return BooleanType{}
		}
	}
	return FalseType{}
}

func (c *tc) inferIsIn(n *ast.IsIn, caps Capabilities) (Type, Capabilities) {
	objType, _ := c.infer(n.Object, caps)
	inType, _ := c.infer(n.In, caps)
	if !IsEntityLike(objType) {
		c.report(Diagnostic{ErrKind: UnexpectedType, Loc: n.Location(), Expr: n,
			Expected: EntityTypeT{LUB: NewEntityLUB(n.Type)}, Actual: objType, HelpText: HelpTypeTestNotSupported})
		return BooleanType{}, caps
	}
	isResult := isTypeTest(objType, n.Type)
	if isResult.Kind() == KindFalse {
		return FalseType{}, caps
	}
	if c.mode == Strict && IsEntityLike(inType) {
		if !c.hierarchyRespected([]types.EntityType{n.Type}, entityLUBNames(inType)) {
			c.report(Diagnostic{ErrKind: HierarchyNotRespected, Loc: n.Location(), Expr: n})
			return BooleanType{}, caps
		}
	}
	return BooleanType{}, caps
}

func entityLUBNames(t Type) []types.EntityType {
	switch v := t.(type) {
	case EntityTypeT:
		return v.LUB.Names()
	case ActionEntityType:
		return v.LUB.Names()
	default:
		return nil
	}
}

func (c *tc) hierarchyRespected(from, to []types.EntityType) bool {
	return c.sch.CanDescend(from, to)
}

func (c *tc) inferIn(n *ast.In, caps Capabilities) (Type, Capabilities) {
	lt, _ := c.infer(n.Left, caps)
	rt, _ := c.infer(n.Right, caps)
	if !IsEntityLike(lt) || !IsEntityLike(rt) {
		bad, badType := n.Left, lt
		if IsEntityLike(lt) {
			bad, badType = n.Right, rt
		}
		c.report(Diagnostic{ErrKind: UnexpectedType, Loc: bad.Location(), Expr: bad,
			Expected: AnyEntityTypeT{}, Actual: badType})
		return BooleanType{}, caps
	}
	if c.mode == Strict {
		from, to := entityLUBNames(lt), entityLUBNames(rt)
		if from != nil && to != nil && !c.hierarchyRespected(from, to) {
			c.report(Diagnostic{ErrKind: HierarchyNotRespected, Loc: n.Location(), Expr: n})
		}
	}
	return BooleanType{}, caps
}

func (c *tc) inferEq(n *ast.Eq, caps Capabilities) (Type, Capabilities) {
	lt, _ := c.infer(n.Left, caps)
	rt, _ := c.infer(n.Right, caps)
	res := LeastUpperBound(lt, rt, c.mode)
	if !res.OK {
		c.report(Diagnostic{ErrKind: IncompatibleTypes, Loc: n.Location(), Expr: n,
			Expected: lt, Actual: rt, LUBCtx: LUBContextEquality, LUBReason: res.Reason})
		return BooleanType{}, caps
	}
	if ll, lok := n.Left.(*ast.Literal); lok {
		if rl, rok := n.Right.(*ast.Literal); rok {
			if lu, ok1 := ll.Value.(types.EntityUID); ok1 {
				if ru, ok2 := rl.Value.(types.EntityUID); ok2 {
					eq := lu.Type == ru.Type && lu.ID == ru.ID
					if eq != n.Negate {
						return TrueType{}, caps
					}
					return FalseType{}, caps
				}
			}
		}
	}
	return BooleanType{}, caps
}

func (c *tc) inferArith(n *ast.Arith, caps Capabilities) (Type, Capabilities) {
	c.requireLong(n.Left, caps)
	c.requireLong(n.Right, caps)
	return LongType{}, caps
}

func (c *tc) inferNeg(n *ast.Neg, caps Capabilities) (Type, Capabilities) {
	c.requireLong(n.Operand, caps)
	return LongType{}, caps
}

func (c *tc) requireLong(e ast.Expr, caps Capabilities) {
	t, _ := c.infer(e, caps)
	if t.Kind() != KindLong {
		c.report(Diagnostic{ErrKind: UnexpectedType, Loc: e.Location(), Expr: e, Expected: LongType{}, Actual: t})
	}
}

func (c *tc) inferCmp(n *ast.Cmp, caps Capabilities) (Type, Capabilities) {
	c.requireLong(n.Left, caps)
	c.requireLong(n.Right, caps)
	return BooleanType{}, caps
}

func (c *tc) requireBoolean(e ast.Expr, t Type) {
	if !IsBoolean(t) {
		c.report(Diagnostic{ErrKind: UnexpectedType, Loc: e.Location(), Expr: e, Expected: BooleanType{}, Actual: t})
	}
}

func (c *tc) inferAnd(n *ast.And, caps Capabilities) (Type, Capabilities) {
	lt, lc := c.infer(n.Left, caps)
	c.requireBoolean(n.Left, lt)
	capsForRight := caps.Union(lc)
	rt, rc := c.infer(n.Right, capsForRight)
	c.requireBoolean(n.Right, rt)

	out := lc.Union(rc)
	switch lt.Kind() {
	case KindTrue:
		return rt, out
	case KindFalse:
		return FalseType{}, out
	default:
		return BooleanType{}, out
	}
}

func (c *tc) inferOr(n *ast.Or, caps Capabilities) (Type, Capabilities) {
	lt, lc := c.infer(n.Left, caps)
	c.requireBoolean(n.Left, lt)
	rt, rc := c.infer(n.Right, caps)
	c.requireBoolean(n.Right, rt)

	out := lc.Intersect(rc)
	switch lt.Kind() {
	case KindTrue:
		return TrueType{}, out
	case KindFalse:
		return rt, out
	default:
		return BooleanType{}, out
	}
}

func (c *tc) inferNot(n *ast.Not, caps Capabilities) (Type, Capabilities) {
	t, _ := c.infer(n.Operand, caps)
	c.requireBoolean(n.Operand, t)
	switch t.Kind() {
	case KindTrue:
		return FalseType{}, caps
	case KindFalse:
		return TrueType{}, caps
	default:
		return BooleanType{}, caps
	}
}

func (c *tc) inferIf(n *ast.If, caps Capabilities) (Type, Capabilities) {
	ct, cc := c.infer(n.Cond, caps)
	c.requireBoolean(n.Cond, ct)

	capsThen := caps.Union(cc)
	tt, tc2 := c.infer(n.Then, capsThen)
	et, ec := c.infer(n.Else, caps)

	switch ct.Kind() {
	case KindTrue:
		return tt, tc2
	case KindFalse:
		return et, ec
	default:
		res := LeastUpperBound(tt, et, c.mode)
		if !res.OK {
			c.report(Diagnostic{ErrKind: IncompatibleTypes, Loc: n.Location(), Expr: n,
				Expected: tt, Actual: et, LUBCtx: LUBContextConditional, LUBReason: res.Reason})
			return NeverType{}, caps
		}
		return res.Type, tc2.Intersect(ec)
	}
}

func (c *tc) inferLike(n *ast.Like, caps Capabilities) (Type, Capabilities) {
	t, _ := c.infer(n.Operand, caps)
	if t.Kind() != KindString {
		c.report(Diagnostic{ErrKind: UnexpectedType, Loc: n.Location(), Expr: n,
			Expected: StringType{}, Actual: t, HelpText: HelpTryUsingLike})
	}
	return BooleanType{}, caps
}

func (c *tc) inferSetOp(n *ast.SetOp, caps Capabilities) (Type, Capabilities) {
	lt, _ := c.infer(n.Left, caps)
	lset, ok := lt.(SetType)
	if !ok {
		c.report(Diagnostic{ErrKind: UnexpectedType, Loc: n.Left.Location(), Expr: n.Left,
			Expected: SetType{Element: NeverType{}}, Actual: lt})
		c.infer(n.Right, caps)
		return BooleanType{}, caps
	}
	rt, _ := c.infer(n.Right, caps)

	switch n.Op {
	case ast.SetOpContains:
		res := LeastUpperBound(lset.Element, rt, c.mode)
		if !res.OK {
			c.report(Diagnostic{ErrKind: IncompatibleTypes, Loc: n.Location(), Expr: n,
				Expected: lset.Element, Actual: rt, LUBCtx: LUBContextContains, LUBReason: res.Reason})
		}
	default: // ContainsAll, ContainsAny
		rset, ok := rt.(SetType)
		if !ok {
			c.report(Diagnostic{ErrKind: UnexpectedType, Loc: n.Right.Location(), Expr: n.Right,
				Expected: SetType{Element: NeverType{}}, Actual: rt})
			break
		}
		res := LeastUpperBound(lset.Element, rset.Element, c.mode)
		if !res.OK {
			c.report(Diagnostic{ErrKind: IncompatibleTypes, Loc: n.Location(), Expr: n,
				Expected: lset.Element, Actual: rset.Element, LUBCtx: LUBContextContainsAnyAll, LUBReason: res.Reason})
		}
	}
	return BooleanType{}, caps
}

func (c *tc) inferExtCall(n *ast.ExtCall, caps Capabilities) (Type, Capabilities) {
	candidates := resolveExtFunc(c.sch, n.Name)
	if len(candidates) == 0 {
		c.report(Diagnostic{ErrKind: UndefinedFunction, Loc: n.Location(), Expr: n, Identifier: n.Name})
		c.inferExtCallArgs(n, caps)
		return NeverType{}, caps
	}

	wantStyle := CallFunction
	if n.Receiver != nil {
		wantStyle = CallMethod
	}
	var styleMatched []*ExtFuncDef
	for _, f := range candidates {
		if f.Style == wantStyle {
			styleMatched = append(styleMatched, f)
		}
	}
	if len(styleMatched) == 0 {
		wrongWant := "function"
		if candidates[0].Style == CallMethod {
			wrongWant = "method"
		}
		c.report(Diagnostic{ErrKind: WrongCallStyle, Loc: n.Location(), Expr: n, Identifier: n.Name, CallStyleWant: wrongWant})
		c.inferExtCallArgs(n, caps)
		return NeverType{}, caps
	}

	args := n.Args
	var receiverType Type
	if n.Receiver != nil {
		receiverType, _ = c.infer(n.Receiver, caps)
		styleMatched = filterByReceiver(styleMatched, receiverType, c.mode)
		if len(styleMatched) == 0 {
			c.report(Diagnostic{ErrKind: FunctionArgumentValidation, Loc: n.Receiver.Location(), Expr: n.Receiver,
				Identifier: n.Name, Actual: receiverType})
			for _, a := range n.Args {
				c.infer(a, caps)
			}
			return NeverType{}, caps
		}
	}
	argTypes := make([]Type, len(args))
	for i, a := range args {
		argTypes[i], _ = c.infer(a, caps)
	}

	arityMatched := filterByArity(styleMatched, len(args))
	if len(arityMatched) == 0 {
		c.report(Diagnostic{ErrKind: WrongNumberArguments, Loc: n.Location(), Expr: n, Identifier: n.Name,
			ArgsExpected: len(styleMatched[0].ArgTypes), ArgsGot: len(args)})
		return styleMatched[0].ReturnType, caps
	}
	if len(arityMatched) > 1 {
		c.report(Diagnostic{ErrKind: MultiplyDefinedFunction, Loc: n.Location(), Expr: n, Identifier: n.Name})
		return arityMatched[0].ReturnType, caps
	}

	def := arityMatched[0]
	for i, want := range def.ArgTypes {
		if !IsSubtype(argTypes[i], want, c.mode) {
			c.report(Diagnostic{ErrKind: FunctionArgumentValidation, Loc: args[i].Location(), Expr: args[i],
				Identifier: n.Name, Expected: want, Actual: argTypes[i]})
		}
	}
	if def.IsConstructor {
		for _, a := range args {
			if _, ok := a.(*ast.Literal); !ok {
				c.report(Diagnostic{ErrKind: NonLitExtConstructor, Loc: a.Location(), Expr: a, Identifier: n.Name})
			}
		}
	}
	return def.ReturnType, caps
}

func (c *tc) inferExtCallArgs(n *ast.ExtCall, caps Capabilities) {
	if n.Receiver != nil {
		c.infer(n.Receiver, caps)
	}
	for _, a := range n.Args {
		c.infer(a, caps)
	}
}

// filterByReceiver keeps only the method overloads whose declared
// receiver extension type is a supertype-compatible match for
// receiverType, e.g. rejecting `someDuration.isLoopback()` even though
// isLoopback resolves by name.
func filterByReceiver(defs []*ExtFuncDef, receiverType Type, mode Mode) []*ExtFuncDef {
	var out []*ExtFuncDef
	for _, d := range defs {
		if IsSubtype(receiverType, ExtensionType{Name: d.ReceiverExt}, mode) {
			out = append(out, d)
		}
	}
	return out
}

func filterByArity(defs []*ExtFuncDef, n int) []*ExtFuncDef {
	var out []*ExtFuncDef
	for _, d := range defs {
		if len(d.ArgTypes) == n {
			out = append(out, d)
		}
	}
	return out
}
