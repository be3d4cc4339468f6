package validator

import (
	"testing"

	"github.com/cedar-policy/cedar-validate/ast"
	"github.com/cedar-policy/cedar-validate/schema"
)

func TestResolveExtFuncBuiltinConstructor(t *testing.T) {
	sch := schema.New()
	defs := resolveExtFunc(sch, "ip")
	if len(defs) != 1 || !defs[0].IsConstructor || defs[0].Style != CallFunction {
		t.Fatalf("unexpected ip overloads: %+v", defs)
	}
}

func TestResolveExtFuncBuiltinMethodHasReceiver(t *testing.T) {
	sch := schema.New()
	defs := resolveExtFunc(sch, "isLoopback")
	if len(defs) != 1 || defs[0].ReceiverExt != "ip" {
		t.Fatalf("expected isLoopback to declare an ip receiver, got %+v", defs)
	}
}

func TestResolveExtFuncMergesSchemaDeclared(t *testing.T) {
	sch := schema.New()
	sch.Extensions["ip"] = []*schema.ExtensionFunc{{
		Name: "ip", ArgTypes: []schema.TypeSpec{{Kind: schema.KindString}},
		ReturnType: schema.TypeSpec{Kind: schema.KindExtension, ExtName: "ip"}, Style: schema.CallFunction, IsConstructor: true,
	}}
	defs := resolveExtFunc(sch, "ip")
	if len(defs) != 2 {
		t.Fatalf("expected the builtin and the schema-declared overload both present, got %d", len(defs))
	}
}

func TestFilterByReceiverAcceptsMatchingExtension(t *testing.T) {
	defs := resolveExtFunc(schema.New(), "isLoopback")
	got := filterByReceiver(defs, ExtensionType{Name: "ip"}, Strict)
	if len(got) != 1 {
		t.Fatalf("expected isLoopback to accept an ip receiver, got %+v", got)
	}
}

func TestFilterByReceiverRejectsMismatchedExtension(t *testing.T) {
	defs := resolveExtFunc(schema.New(), "isLoopback")
	got := filterByReceiver(defs, ExtensionType{Name: "duration"}, Strict)
	if len(got) != 0 {
		t.Fatalf("expected isLoopback to reject a duration receiver, got %+v", got)
	}
}

func durationCtor() *ast.ExtCall {
	return &ast.ExtCall{Name: "duration", Args: []ast.Expr{ast.String("PT5S")}}
}

func ipCtor() *ast.ExtCall {
	return &ast.ExtCall{Name: "ip", Args: []ast.Expr{ast.String("127.0.0.1")}}
}

func TestInferExtCallRejectsMismatchedReceiver(t *testing.T) {
	c := &tc{sch: schema.New(), mode: Strict, typed: map[ast.Expr]Type{}}
	call := &ast.ExtCall{Name: "isLoopback", Receiver: durationCtor()}
	typeOf, _ := c.infer(call, NoCapabilities)
	if typeOf.Kind() != KindNever {
		t.Fatalf("expected a receiver type mismatch to recover to Never, got %v", typeOf)
	}
	if len(c.diags) != 1 || c.diags[0].ErrKind != FunctionArgumentValidation {
		t.Fatalf("expected a single FunctionArgumentValidation diagnostic, got %+v", c.diags)
	}
}

func TestInferExtCallAcceptsMatchingReceiver(t *testing.T) {
	c := &tc{sch: schema.New(), mode: Strict, typed: map[ast.Expr]Type{}}
	call := &ast.ExtCall{Name: "isLoopback", Receiver: ipCtor()}
	typeOf, _ := c.infer(call, NoCapabilities)
	if !Equal(typeOf, BooleanType{}) {
		t.Fatalf("expected isLoopback on an ip receiver to typecheck as Boolean, got %v", typeOf)
	}
	if len(c.diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", c.diags)
	}
}

func TestInferExtCallWrongCallStyle(t *testing.T) {
	c := &tc{sch: schema.New(), mode: Strict, typed: map[ast.Expr]Type{}}
	// ip(...) is a constructor, called here as a method instead of a function.
	call := &ast.ExtCall{Name: "ip", Receiver: ipCtor()}
	_, _ = c.infer(call, NoCapabilities)
	if len(c.diags) != 1 || c.diags[0].ErrKind != WrongCallStyle {
		t.Fatalf("expected WrongCallStyle, got %+v", c.diags)
	}
}

func TestInferExtCallUndefinedFunction(t *testing.T) {
	c := &tc{sch: schema.New(), mode: Strict, typed: map[ast.Expr]Type{}}
	call := &ast.ExtCall{Name: "notARealFunction", Args: []ast.Expr{ast.String("x")}}
	typeOf, _ := c.infer(call, NoCapabilities)
	if typeOf.Kind() != KindNever {
		t.Fatalf("expected Never for an undefined function, got %v", typeOf)
	}
	if len(c.diags) != 1 || c.diags[0].ErrKind != UndefinedFunction {
		t.Fatalf("expected UndefinedFunction, got %+v", c.diags)
	}
}

func TestInferExtCallNonLiteralConstructorArg(t *testing.T) {
	c := &tc{sch: schema.New(), mode: Strict, typed: map[ast.Expr]Type{}}
	call := &ast.ExtCall{Name: "ip", Args: []ast.Expr{ast.Principal()}}
	_, _ = c.infer(call, NoCapabilities)
	found := false
	for _, d := range c.diags {
		if d.ErrKind == NonLitExtConstructor {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a NonLitExtConstructor diagnostic for a non-literal ip() argument, got %+v", c.diags)
	}
}
