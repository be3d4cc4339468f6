package validator

import (
	"testing"

	"github.com/cedar-policy/cedar-validate/ast"
)

func TestCapabilitiesHasAfterWith(t *testing.T) {
	obj := ast.Principal()
	caps := NoCapabilities.With(obj, "tag")
	if !caps.Has(obj, "tag") {
		t.Fatalf("expected tag to be a proven capability after With")
	}
	if caps.Has(obj, "other") {
		t.Fatalf("did not expect an unrelated attribute to be proven")
	}
}

func TestCapabilitiesStructuralIdentity(t *testing.T) {
	caps := NoCapabilities.With(ast.Principal(), "tag")
	// A distinct allocation of the same syntactic expression must match.
	if !caps.Has(ast.Principal(), "tag") {
		t.Fatalf("expected structural identity, not pointer identity, to govern capability lookups")
	}
}

func TestCapabilitiesWithIsImmutable(t *testing.T) {
	base := NoCapabilities
	extended := base.With(ast.Principal(), "tag")
	if len(base) != 0 {
		t.Fatalf("With should not mutate the receiver")
	}
	if len(extended) != 1 {
		t.Fatalf("expected the returned set to contain the new capability")
	}
}

func TestCapabilitiesUnion(t *testing.T) {
	left := NoCapabilities.With(ast.Principal(), "a")
	right := NoCapabilities.With(ast.Resource(), "b")
	union := left.Union(right)
	if !union.Has(ast.Principal(), "a") || !union.Has(ast.Resource(), "b") {
		t.Fatalf("expected union to contain capabilities from both sides")
	}
}

func TestCapabilitiesIntersect(t *testing.T) {
	left := NoCapabilities.With(ast.Principal(), "a").With(ast.Principal(), "b")
	right := NoCapabilities.With(ast.Principal(), "a")
	inter := left.Intersect(right)
	if !inter.Has(ast.Principal(), "a") {
		t.Fatalf("expected the shared capability to survive intersection")
	}
	if inter.Has(ast.Principal(), "b") {
		t.Fatalf("did not expect a capability unique to one side to survive intersection")
	}
}

func TestCapabilitiesIntersectEmpty(t *testing.T) {
	left := NoCapabilities.With(ast.Principal(), "a")
	right := NoCapabilities
	if len(left.Intersect(right)) != 0 {
		t.Fatalf("intersecting with the empty set should yield the empty set")
	}
}
