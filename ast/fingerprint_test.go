package ast

import (
	"testing"

	"github.com/cedar-policy/cedar-validate/types"
)

func TestFingerprintIdenticalShape(t *testing.T) {
	a := Dot(Principal(), "department")
	b := Dot(Principal(), "department")
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("expected equal fingerprints for structurally identical trees, got %q and %q", Fingerprint(a), Fingerprint(b))
	}
}

func TestFingerprintDistinguishesAttrName(t *testing.T) {
	a := Dot(Principal(), "department")
	b := Dot(Principal(), "team")
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("expected different fingerprints for different attribute names, got %q for both", Fingerprint(a))
	}
}

func TestFingerprintDistinguishesObject(t *testing.T) {
	a := Dot(Principal(), "department")
	b := Dot(Resource(), "department")
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("expected different fingerprints for different objects, got %q for both", Fingerprint(a))
	}
}

func TestFingerprintIgnoresAllocationIdentity(t *testing.T) {
	// Two distinct Has nodes over two distinct, but structurally equal,
	// Attr chains must fingerprint the same: capability sharing depends
	// on structural identity, not pointer identity.
	h1 := &Has{Object: Dot(Principal(), "a"), Name: "b"}
	h2 := &Has{Object: Dot(Principal(), "a"), Name: "b"}
	if h1 == Expr(h2) {
		t.Fatalf("test setup: expected distinct allocations")
	}
	if Fingerprint(h1) != Fingerprint(h2) {
		t.Fatalf("expected equal fingerprints, got %q and %q", Fingerprint(h1), Fingerprint(h2))
	}
}

func TestFingerprintDistinguishesEqAndNeq(t *testing.T) {
	lit := Long(1)
	eq := &Eq{Left: lit, Right: Long(1), Negate: false}
	neq := &Eq{Left: lit, Right: Long(1), Negate: true}
	if Fingerprint(eq) == Fingerprint(neq) {
		t.Fatalf("expected == and != to fingerprint differently")
	}
}

func TestFingerprintDistinguishesLiteralValues(t *testing.T) {
	u1 := types.EntityUID{Type: "User", ID: "alice"}
	u2 := types.EntityUID{Type: "User", ID: "bob"}
	if Fingerprint(EntityUID(u1)) == Fingerprint(EntityUID(u2)) {
		t.Fatalf("expected different fingerprints for different entity UID literals")
	}
}

func TestFingerprintRecordOrderMatters(t *testing.T) {
	r1 := Record(RecordAttr{Name: "a", Value: Long(1)}, RecordAttr{Name: "b", Value: Long(2)})
	r2 := Record(RecordAttr{Name: "b", Value: Long(2)}, RecordAttr{Name: "a", Value: Long(1)})
	if Fingerprint(r1) == Fingerprint(r2) {
		t.Fatalf("expected record literals with different attribute order to fingerprint differently")
	}
}
