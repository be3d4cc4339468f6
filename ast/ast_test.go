package ast

import "testing"

func TestWithLocSetsLocation(t *testing.T) {
	lit := WithLoc(Long(42), SourceLoc{Span: Span{Start: 3, End: 5}, Text: "42"})
	loc := lit.Location()
	if loc == nil {
		t.Fatalf("expected location to be set")
	}
	if loc.Span.Start != 3 || loc.Span.End != 5 || loc.Text != "42" {
		t.Fatalf("unexpected location: %+v", *loc)
	}
}

func TestLocationNilByDefault(t *testing.T) {
	v := Principal()
	if v.Location() != nil {
		t.Fatalf("expected nil location on a freshly built node")
	}
}

func TestVarKindStrings(t *testing.T) {
	cases := []struct {
		k    VarKind
		want string
	}{
		{VarPrincipal, "principal"},
		{VarAction, "action"},
		{VarResource, "resource"},
		{VarContext, "context"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("VarKind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}

func TestSlotKindStrings(t *testing.T) {
	if PrincipalSlot().Kind.String() != "?principal" {
		t.Errorf("expected ?principal")
	}
	if ResourceSlot().Kind.String() != "?resource" {
		t.Errorf("expected ?resource")
	}
}

func TestDotBuildsAttrAccess(t *testing.T) {
	var e Expr = Dot(Dot(Principal(), "a"), "b")
	attr, ok := e.(*Attr)
	if !ok {
		t.Fatalf("expected *Attr, got %T", e)
	}
	if attr.Name != "b" {
		t.Fatalf("expected outer attr name b, got %q", attr.Name)
	}
	inner, ok := attr.Object.(*Attr)
	if !ok {
		t.Fatalf("expected inner *Attr, got %T", attr.Object)
	}
	if inner.Name != "a" {
		t.Fatalf("expected inner attr name a, got %q", inner.Name)
	}
	if _, ok := inner.Object.(*Var); !ok {
		t.Fatalf("expected innermost object to be principal var, got %T", inner.Object)
	}
}

func TestPolicyHasSlot(t *testing.T) {
	p := &Policy{
		Principal: ScopeEqSlot{Slot: SlotPrincipal},
		Action:    ScopeAny{},
		Resource:  ScopeAny{},
	}
	if !p.HasSlot(SlotPrincipal) {
		t.Errorf("expected HasSlot(SlotPrincipal) true")
	}
	if p.HasSlot(SlotResource) {
		t.Errorf("expected HasSlot(SlotResource) false")
	}
}

func TestArithAndCmpOpStrings(t *testing.T) {
	if ArithAdd.String() != "+" || ArithSub.String() != "-" || ArithMul.String() != "*" {
		t.Errorf("unexpected ArithOp strings")
	}
	if CmpLess.String() != "<" || CmpLessEq.String() != "<=" || CmpGreater.String() != ">" || CmpGreaterEq.String() != ">=" {
		t.Errorf("unexpected CmpOp strings")
	}
}
