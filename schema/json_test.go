package schema

import (
	"testing"

	"github.com/cedar-policy/cedar-validate/types"
)

const photoAppSchema = `{
  "PhotoApp": {
    "commonTypes": {
      "PersonType": {
        "type": "Record",
        "attributes": {
          "age": { "type": "Long" }
        }
      }
    },
    "entityTypes": {
      "User": {
        "shape": {
          "type": "Record",
          "attributes": {
            "department": { "type": "String" },
            "info": { "type": "PersonType" }
          }
        }
      },
      "Admin": {
        "memberOfTypes": ["User"]
      },
      "Photo": {
        "shape": {
          "type": "Record",
          "attributes": {
            "private": { "type": "Boolean", "required": false }
          }
        }
      }
    },
    "actions": {
      "view": {
        "appliesTo": {
          "principalTypes": ["User"],
          "resourceTypes": ["Photo"],
          "context": {
            "type": "Record",
            "attributes": {
              "ip": { "type": "Extension", "name": "ipaddr" }
            }
          }
        }
      },
      "viewAny": {
        "memberOf": [{ "id": "view" }]
      }
    }
  }
}`

func TestParseJSONBuildsEntityTypes(t *testing.T) {
	s, err := ParseJSON([]byte(photoAppSchema))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	user, ok := s.EntityType("PhotoApp::User")
	if !ok {
		t.Fatalf("expected PhotoApp::User to be declared")
	}
	dept, ok := user.Attrs["department"]
	if !ok || dept.Type.Kind != KindString || !dept.Required {
		t.Fatalf("unexpected department attribute: %+v ok=%v", dept, ok)
	}
	info, ok := user.Attrs["info"]
	if !ok || info.Type.Kind != KindRecord {
		t.Fatalf("expected info to resolve the PersonType common type into a record, got %+v", info)
	}
	if _, ok := info.Type.Attrs["age"]; !ok {
		t.Fatalf("expected PersonType's age attribute to be present on info")
	}
}

func TestParseJSONEntityHierarchy(t *testing.T) {
	s, err := ParseJSON([]byte(photoAppSchema))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	admin, ok := s.EntityType("PhotoApp::Admin")
	if !ok {
		t.Fatalf("expected PhotoApp::Admin to be declared")
	}
	if len(admin.MemberOf) != 1 || admin.MemberOf[0] != "PhotoApp::User" {
		t.Fatalf("expected Admin to declare User as parent, got %v", admin.MemberOf)
	}
}

func TestParseJSONActionsAndContext(t *testing.T) {
	s, err := ParseJSON([]byte(photoAppSchema))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	viewUID := types.EntityUID{Type: "PhotoApp::Action", ID: "view"}
	view, ok := s.Action(viewUID)
	if !ok {
		t.Fatalf("expected view action to be declared")
	}
	if len(view.AppliesTo.Principals) != 1 || view.AppliesTo.Principals[0] != "PhotoApp::User" {
		t.Fatalf("unexpected principal types: %v", view.AppliesTo.Principals)
	}
	if len(view.AppliesTo.Resources) != 1 || view.AppliesTo.Resources[0] != "PhotoApp::Photo" {
		t.Fatalf("unexpected resource types: %v", view.AppliesTo.Resources)
	}
	ipAttr, ok := view.Context.Attrs["ip"]
	if !ok || ipAttr.Type.Kind != KindExtension || ipAttr.Type.ExtName != "ipaddr" {
		t.Fatalf("expected context.ip to be an ipaddr extension type, got %+v ok=%v", ipAttr, ok)
	}
}

func TestParseJSONActionMemberOf(t *testing.T) {
	s, err := ParseJSON([]byte(photoAppSchema))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	viewAnyUID := types.EntityUID{Type: "PhotoApp::Action", ID: "viewAny"}
	viewAny, ok := s.Action(viewAnyUID)
	if !ok {
		t.Fatalf("expected viewAny action to be declared")
	}
	wantParent := types.EntityUID{Type: "PhotoApp::Action", ID: "view"}
	if len(viewAny.MemberOf) != 1 || viewAny.MemberOf[0] != wantParent {
		t.Fatalf("unexpected memberOf: %v", viewAny.MemberOf)
	}
}

func TestParseJSONThenValidateWellFormed(t *testing.T) {
	s, err := ParseJSON([]byte(photoAppSchema))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if err := s.ValidateWellFormed(); err != nil {
		t.Fatalf("ValidateWellFormed: %v", err)
	}
}

func TestParseJSONRejectsInvalidDocument(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Fatalf("expected an error for invalid JSON")
	}
}

func TestParseJSONOptionalAttribute(t *testing.T) {
	s, err := ParseJSON([]byte(photoAppSchema))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	photo, ok := s.EntityType("PhotoApp::Photo")
	if !ok {
		t.Fatalf("expected PhotoApp::Photo to be declared")
	}
	private, ok := photo.Attrs["private"]
	if !ok {
		t.Fatalf("expected private attribute to be declared")
	}
	if private.Required {
		t.Fatalf("expected private to be optional")
	}
}
