package validator

import (
	"sort"
	"testing"

	"github.com/cedar-policy/cedar-validate/schema"
)

func TestConvertTypeSpecPrimitives(t *testing.T) {
	cases := []struct {
		ts   schema.TypeSpec
		want Type
	}{
		{schema.TypeSpec{Kind: schema.KindBoolean}, BooleanType{}},
		{schema.TypeSpec{Kind: schema.KindLong}, LongType{}},
		{schema.TypeSpec{Kind: schema.KindString}, StringType{}},
		{schema.TypeSpec{Kind: schema.KindExtension, ExtName: "ip"}, ExtensionType{Name: "ip"}},
		{schema.TypeSpec{Kind: schema.KindEntity, EntityType: "User"}, EntityTypeT{LUB: NewEntityLUB("User")}},
	}
	for _, c := range cases {
		got := ConvertTypeSpec(c.ts)
		if !Equal(got, c.want) {
			t.Errorf("ConvertTypeSpec(%+v) = %v, want %v", c.ts, got, c.want)
		}
	}
}

func TestConvertTypeSpecSet(t *testing.T) {
	elem := schema.TypeSpec{Kind: schema.KindLong}
	ts := schema.TypeSpec{Kind: schema.KindSet, Element: &elem}
	got, ok := ConvertTypeSpec(ts).(SetType)
	if !ok || !Equal(got.Element, LongType{}) {
		t.Fatalf("expected Set<Long>, got %+v", got)
	}
}

func TestConvertTypeSpecSetWithoutElementIsNever(t *testing.T) {
	ts := schema.TypeSpec{Kind: schema.KindSet}
	got, ok := ConvertTypeSpec(ts).(SetType)
	if !ok || !Equal(got.Element, NeverType{}) {
		t.Fatalf("expected Set<Never> for an unspecified element type, got %+v", got)
	}
}

func TestConvertTypeSpecRecord(t *testing.T) {
	ts := schema.TypeSpec{
		Kind: schema.KindRecord,
		Attrs: map[string]schema.AttributeSpec{
			"a": {Type: schema.TypeSpec{Kind: schema.KindLong}, Required: true},
			"b": {Type: schema.TypeSpec{Kind: schema.KindString}, Required: false},
		},
		Open: true,
	}
	got, ok := ConvertTypeSpec(ts).(RecordType)
	if !ok || !got.Open {
		t.Fatalf("expected an open record, got %+v", got)
	}
	if !Equal(got.Attrs["a"].Type, LongType{}) || !got.Attrs["a"].Required {
		t.Errorf("unexpected attr a: %+v", got.Attrs["a"])
	}
	if got.Attrs["b"].Required {
		t.Errorf("expected attr b to remain optional")
	}
}

func buildResolveSchema() *schema.Schema {
	sch := schema.New()
	sch.EntityTypes["User"] = &schema.EntityTypeInfo{
		Name: "User",
		Attrs: map[string]schema.AttributeSpec{
			"age":  {Type: schema.TypeSpec{Kind: schema.KindLong}, Required: true},
			"nick": {Type: schema.TypeSpec{Kind: schema.KindString}, Required: false},
		},
	}
	sch.EntityTypes["Admin"] = &schema.EntityTypeInfo{
		Name: "Admin",
		Attrs: map[string]schema.AttributeSpec{
			"age": {Type: schema.TypeSpec{Kind: schema.KindLong}, Required: true},
		},
	}
	sch.EntityTypes["Photo"] = &schema.EntityTypeInfo{
		Name: "Photo",
		Attrs: map[string]schema.AttributeSpec{
			"age": {Type: schema.TypeSpec{Kind: schema.KindString}, Required: true},
		},
	}
	return sch
}

func TestLookupAttributeRecord(t *testing.T) {
	rt := RecordType{Attrs: map[string]AttributeType{"x": {Type: LongType{}, Required: true}}}
	at, ok := LookupAttribute(nil, rt, "x")
	if !ok || !Equal(at.Type, LongType{}) {
		t.Fatalf("unexpected lookup result: %+v ok=%v", at, ok)
	}
	if _, ok := LookupAttribute(nil, rt, "missing"); ok {
		t.Fatalf("expected missing attribute to fail lookup")
	}
}

func TestLookupAttributeEntityLUBAgrees(t *testing.T) {
	sch := buildResolveSchema()
	lub := EntityTypeT{LUB: NewEntityLUB("User", "Admin")}
	at, ok := LookupAttribute(sch, lub, "age")
	if !ok || !Equal(at.Type, LongType{}) || !at.Required {
		t.Fatalf("expected age to resolve consistently across User and Admin, got %+v ok=%v", at, ok)
	}
}

func TestLookupAttributeEntityLUBDisagreesOnType(t *testing.T) {
	sch := buildResolveSchema()
	lub := EntityTypeT{LUB: NewEntityLUB("User", "Photo")}
	if _, ok := LookupAttribute(sch, lub, "age"); ok {
		t.Fatalf("expected age to be unsafe: User declares it Long, Photo declares it String")
	}
}

func TestLookupAttributeEntityLUBMissingOnOneMember(t *testing.T) {
	sch := buildResolveSchema()
	lub := EntityTypeT{LUB: NewEntityLUB("User", "Admin")}
	if _, ok := LookupAttribute(sch, lub, "nick"); ok {
		t.Fatalf("expected nick to be unsafe: Admin never declares it")
	}
}

func TestDeclaredAttributeNamesRecord(t *testing.T) {
	rt := RecordType{Attrs: map[string]AttributeType{"a": {}, "b": {}}}
	names := DeclaredAttributeNames(nil, rt)
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestDeclaredAttributeNamesEntity(t *testing.T) {
	sch := buildResolveSchema()
	names := DeclaredAttributeNames(sch, EntityTypeT{LUB: NewEntityLUB("User")})
	sort.Strings(names)
	if len(names) != 2 || names[0] != "age" || names[1] != "nick" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestMayExist(t *testing.T) {
	if MayExist(RecordType{Attrs: map[string]AttributeType{}, Open: false}) {
		t.Errorf("closed record should not may-exist")
	}
	if !MayExist(RecordType{Attrs: map[string]AttributeType{}, Open: true}) {
		t.Errorf("open record should may-exist")
	}
	if !MayExist(AnyEntityTypeT{}) {
		t.Errorf("AnyEntity should may-exist")
	}
	if MayExist(LongType{}) {
		t.Errorf("Long should not may-exist")
	}
}
