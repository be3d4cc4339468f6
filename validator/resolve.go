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

import "github.com/cedar-policy/cedar-validate/schema"

// ConvertTypeSpec lowers a schema.TypeSpec (as parsed from a JSON schema)
// into the validator's lattice Type.
func ConvertTypeSpec(ts schema.TypeSpec) Type {
	switch ts.Kind {
	case schema.KindBoolean:
		return BooleanType{}
	case schema.KindLong:
		return LongType{}
	case schema.KindString:
		return StringType{}
	case schema.KindSet:
		elem := Type(NeverType{})
		if ts.Element != nil {
			elem = ConvertTypeSpec(*ts.Element)
		}
		return SetType{Element: elem}
	case schema.KindRecord:
		attrs := make(map[string]AttributeType, len(ts.Attrs))
		for name, a := range ts.Attrs {
			attrs[name] = AttributeType{Type: ConvertTypeSpec(a.Type), Required: a.Required}
		}
		return RecordType{Attrs: attrs, Open: ts.Open}
	case schema.KindEntity:
		return EntityTypeT{LUB: NewEntityLUB(ts.EntityType)}
	case schema.KindExtension:
		return ExtensionType{Name: ts.ExtName}
	default:
		return NeverType{}
	}
}

// LookupAttribute resolves the declared type of attribute name on t. For
// an entity LUB it is defined only if every member entity type declares
// the attribute with equal required-ness and equal type.
func LookupAttribute(sch *schema.Schema, t Type, name string) (AttributeType, bool) {
	switch tv := t.(type) {
	case RecordType:
		a, ok := tv.Attrs[name]
		return a, ok
	case EntityTypeT:
		return lookupEntityLUBAttr(sch, tv.LUB, name)
	default:
		return AttributeType{}, false
	}
}

func lookupEntityLUBAttr(sch *schema.Schema, lub EntityLUB, name string) (AttributeType, bool) {
	var result AttributeType
	first := true
	for _, et := range lub.Names() {
		info, ok := sch.EntityType(et)
		if !ok {
			return AttributeType{}, false
		}
		aspec, ok := info.Attrs[name]
		if !ok {
			return AttributeType{}, false
		}
		at := AttributeType{Type: ConvertTypeSpec(aspec.Type), Required: aspec.Required}
		if first {
			result = at
			first = false
			continue
		}
		if at.Required != result.Required || !Equal(at.Type, result.Type) {
			return AttributeType{}, false
		}
	}
	return result, true
}

// DeclaredAttributeNames returns the attribute names declared on t, for
// fuzzy "did you mean" suggestions. It returns the first member entity
// type's attributes for an entity LUB, since a suggestion needs only be
// plausible, not exhaustively correct across every member.
func DeclaredAttributeNames(sch *schema.Schema, t Type) []string {
	switch tv := t.(type) {
	case RecordType:
		out := make([]string, 0, len(tv.Attrs))
		for n := range tv.Attrs {
			out = append(out, n)
		}
		return out
	case EntityTypeT:
		names := tv.LUB.Names()
		if len(names) == 0 {
			return nil
		}
		info, ok := sch.EntityType(names[0])
		if !ok {
			return nil
		}
		out := make([]string, 0, len(info.Attrs))
		for n := range info.Attrs {
			out = append(out, n)
		}
		return out
	default:
		return nil
	}
}

// MayExist reports whether an undeclared attribute access on t could
// still succeed at runtime: t is an open record, or an entity type the
// validator couldn't pin down precisely.
func MayExist(t Type) bool {
	if r, ok := t.(RecordType); ok {
		return r.Open
	}
	return t.Kind() == KindAnyEntity
}
