package schema

import (
	"testing"

	"github.com/cedar-policy/cedar-validate/types"
)

func buildHierarchySchema() *Schema {
	s := New()
	s.EntityTypes["User"] = &EntityTypeInfo{Name: "User"}
	s.EntityTypes["Admin"] = &EntityTypeInfo{Name: "Admin", MemberOf: []types.EntityType{"User"}}
	s.EntityTypes["SuperAdmin"] = &EntityTypeInfo{Name: "SuperAdmin", MemberOf: []types.EntityType{"Admin"}}
	s.EntityTypes["Photo"] = &EntityTypeInfo{Name: "Photo"}
	return s
}

func TestDescendantsTransitive(t *testing.T) {
	s := buildHierarchySchema()
	got := s.Descendants("User")
	want := map[types.EntityType]bool{"User": true, "Admin": true, "SuperAdmin": true}
	if len(got) != len(want) {
		t.Fatalf("Descendants(User) = %v, want members of %v", got, want)
	}
	for _, t2 := range got {
		if !want[t2] {
			t.Errorf("unexpected descendant %s", t2)
		}
	}
}

func TestDescendantsExcludesUnrelated(t *testing.T) {
	s := buildHierarchySchema()
	for _, d := range s.Descendants("User") {
		if d == "Photo" {
			t.Fatalf("Photo should not be a descendant of User")
		}
	}
}

func TestCanDescend(t *testing.T) {
	s := buildHierarchySchema()
	if !s.CanDescend([]types.EntityType{"SuperAdmin"}, []types.EntityType{"User"}) {
		t.Errorf("expected SuperAdmin to descend from User")
	}
	if s.CanDescend([]types.EntityType{"Photo"}, []types.EntityType{"User"}) {
		t.Errorf("expected Photo not to descend from User")
	}
	if !s.CanDescend([]types.EntityType{"User"}, []types.EntityType{"User"}) {
		t.Errorf("expected a type to descend from itself (non-strict)")
	}
}

func buildActionGroupSchema() *Schema {
	s := New()
	readUID := types.EntityUID{Type: "Action", ID: "read"}
	writeUID := types.EntityUID{Type: "Action", ID: "write"}
	groupUID := types.EntityUID{Type: "Action", ID: "editorActions"}
	s.Actions[readUID] = &ActionInfo{UID: readUID, MemberOf: []types.EntityUID{groupUID}}
	s.Actions[writeUID] = &ActionInfo{UID: writeUID, MemberOf: []types.EntityUID{groupUID}}
	s.Actions[groupUID] = &ActionInfo{UID: groupUID}
	return s
}

func TestActionGroupMembersExpandsTransitively(t *testing.T) {
	s := buildActionGroupSchema()
	groupUID := types.EntityUID{Type: "Action", ID: "editorActions"}
	members := s.ActionGroupMembers(groupUID)
	want := map[types.EntityUID]bool{
		groupUID: true,
		{Type: "Action", ID: "read"}:  true,
		{Type: "Action", ID: "write"}: true,
	}
	if len(members) != len(want) {
		t.Fatalf("ActionGroupMembers = %v, want members of %v", members, want)
	}
	for _, m := range members {
		if !want[m] {
			t.Errorf("unexpected member %s", m)
		}
	}
}

func TestActionGroupMembersPlainAction(t *testing.T) {
	s := buildActionGroupSchema()
	readUID := types.EntityUID{Type: "Action", ID: "read"}
	members := s.ActionGroupMembers(readUID)
	if len(members) != 1 || members[0] != readUID {
		t.Fatalf("ActionGroupMembers(read) = %v, want just [read]", members)
	}
}

func TestIsActionTypeAndActionIDs(t *testing.T) {
	s := buildActionGroupSchema()
	if !s.IsActionType("Action") {
		t.Errorf("expected Action to be recognized as an action type")
	}
	if s.IsActionType("User") {
		t.Errorf("expected User not to be an action type")
	}
	ids := s.ActionIDs("Action")
	if len(ids) != 3 {
		t.Fatalf("expected 3 action ids, got %v", ids)
	}
}

func TestValidateWellFormedDetectsUnknownParent(t *testing.T) {
	s := New()
	s.EntityTypes["Admin"] = &EntityTypeInfo{Name: "Admin", MemberOf: []types.EntityType{"Ghost"}}
	if err := s.ValidateWellFormed(); err == nil {
		t.Fatalf("expected an error for an unknown parent type")
	}
}

func TestValidateWellFormedDetectsCycle(t *testing.T) {
	s := New()
	s.EntityTypes["A"] = &EntityTypeInfo{Name: "A", MemberOf: []types.EntityType{"B"}}
	s.EntityTypes["B"] = &EntityTypeInfo{Name: "B", MemberOf: []types.EntityType{"A"}}
	if err := s.ValidateWellFormed(); err == nil {
		t.Fatalf("expected an error for a membership cycle")
	}
}

func TestValidateWellFormedDetectsUnknownAttrEntityRef(t *testing.T) {
	s := New()
	s.EntityTypes["User"] = &EntityTypeInfo{
		Name: "User",
		Attrs: map[string]AttributeSpec{
			"manager": {Type: TypeSpec{Kind: KindEntity, EntityType: "Ghost"}, Required: true},
		},
	}
	if err := s.ValidateWellFormed(); err == nil {
		t.Fatalf("expected an error for an attribute referencing an unknown entity type")
	}
}

func TestValidateWellFormedAcceptsValidSchema(t *testing.T) {
	s := buildHierarchySchema()
	if err := s.ValidateWellFormed(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
