package cedar

import (
	"sync"
	"testing"

	"github.com/cedar-policy/cedar-validate/ast"
	"github.com/cedar-policy/cedar-validate/schema"
	"github.com/cedar-policy/cedar-validate/types"
	"github.com/cedar-policy/cedar-validate/validator"
)

func permitAny() *ast.Policy {
	return &ast.Policy{Effect: ast.Permit, Principal: ast.ScopeAny{}, Action: ast.ScopeAny{}, Resource: ast.ScopeAny{}}
}

func TestPolicySetAddGetRemove(t *testing.T) {
	ps := NewPolicySet()
	p := permitAny()
	if !ps.Add("p1", p) {
		t.Fatalf("expected Add to report a new key")
	}
	if ps.Add("p1", p) {
		t.Fatalf("expected a second Add with the same ID to report no new key")
	}
	if got := ps.Get("p1"); got != p {
		t.Fatalf("Get returned a different policy than was added")
	}
	if ps.Get("missing") != nil {
		t.Fatalf("expected Get on an absent ID to return nil")
	}
	if !ps.Remove("p1") {
		t.Fatalf("expected Remove to report that p1 existed")
	}
	if ps.Remove("p1") {
		t.Fatalf("expected a second Remove to report false")
	}
	if ps.Len() != 0 {
		t.Fatalf("expected an empty set after removal, got len %d", ps.Len())
	}
}

func TestPolicySetFromMapIsIndependentOfCaller(t *testing.T) {
	m := PolicyMap{"p1": permitAny()}
	ps := NewPolicySetFromMap(m)
	m["p2"] = permitAny()
	if ps.Len() != 1 {
		t.Fatalf("expected the set's snapshot to be unaffected by later mutation of the caller's map, got len %d", ps.Len())
	}
}

func TestPolicySetMapIsACopy(t *testing.T) {
	ps := NewPolicySet()
	ps.Add("p1", permitAny())
	m := ps.Map()
	delete(m, "p1")
	if ps.Len() != 1 {
		t.Fatalf("mutating the returned map should not affect the set")
	}
}

func TestPolicySetAllIteratesEveryEntry(t *testing.T) {
	ps := NewPolicySet()
	ps.Add("p1", permitAny())
	ps.Add("p2", permitAny())
	seen := map[PolicyID]bool{}
	for id := range ps.All() {
		seen[id] = true
	}
	if !seen["p1"] || !seen["p2"] {
		t.Fatalf("expected All to yield both entries, got %v", seen)
	}
}

func TestPolicySetConcurrentReadWrite(t *testing.T) {
	ps := NewPolicySet()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			ps.Add(PolicyID(string(rune('a'+i%26))), permitAny())
		}(i)
		go func() {
			defer wg.Done()
			ps.Len()
			for range ps.All() {
			}
		}()
	}
	wg.Wait()
}

func docValidationSchema() *schema.Schema {
	sch := schema.New()
	sch.EntityTypes["User"] = &schema.EntityTypeInfo{Name: "User", Attrs: map[string]schema.AttributeSpec{}}
	sch.EntityTypes["Document"] = &schema.EntityTypeInfo{Name: "Document", Attrs: map[string]schema.AttributeSpec{}}
	viewUID := types.NewEntityUID("Action", "view")
	sch.Actions[viewUID] = &schema.ActionInfo{
		UID:       viewUID,
		AppliesTo: &schema.AppliesTo{Principals: []types.EntityType{"User"}, Resources: []types.EntityType{"Document"}},
		Context:   schema.TypeSpec{Kind: schema.KindRecord, Attrs: map[string]schema.AttributeSpec{}},
	}
	return sch
}

func TestPolicySetValidateAllAndAllOK(t *testing.T) {
	sch := docValidationSchema()
	good := &ast.Policy{Effect: ast.Permit, Principal: ast.ScopeAny{},
		Action: ast.ScopeEq{UID: types.NewEntityUID("Action", "view")}, Resource: ast.ScopeAny{}}
	bad := &ast.Policy{Effect: ast.Permit, Principal: ast.ScopeAny{},
		Action: ast.ScopeEq{UID: types.NewEntityUID("Action", "view")}, Resource: ast.ScopeAny{},
		Conditions: []ast.Condition{{Kind: ast.When, Body: ast.Dot(ast.Principal(), "nonexistent")}}}

	ps := NewPolicySetFromMap(PolicyMap{"good": good, "bad": bad})
	results := ps.ValidateAll(sch, validator.Strict)
	if len(results) != 2 {
		t.Fatalf("expected one result per policy, got %d", len(results))
	}
	if !results["good"].OK() {
		t.Fatalf("expected the good policy to validate cleanly, got %+v", results["good"].Diagnostics)
	}
	if results["bad"].OK() {
		t.Fatalf("expected the bad policy to be rejected")
	}
	if AllOK(results) {
		t.Fatalf("AllOK should be false when any policy fails")
	}
	if !AllOK(map[PolicyID]validator.Result{"good": results["good"]}) {
		t.Fatalf("AllOK should be true when every included policy passes")
	}
}
