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

package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cedar-policy/cedar-validate/types"
)

// jsonNamespace mirrors one namespace block of Cedar's JSON schema format.
type jsonNamespace struct {
	EntityTypes map[string]jsonEntityType `json:"entityTypes"`
	Actions     map[string]jsonAction     `json:"actions"`
	CommonTypes map[string]jsonType       `json:"commonTypes,omitempty"`
}

type jsonEntityType struct {
	Shape         *jsonType `json:"shape,omitempty"`
	MemberOfTypes []string  `json:"memberOfTypes,omitempty"`
	Tags          *jsonType `json:"tags,omitempty"`
}

type jsonAction struct {
	AppliesTo *jsonAppliesTo  `json:"appliesTo,omitempty"`
	MemberOf  []jsonActionRef `json:"memberOf,omitempty"`
}

type jsonAppliesTo struct {
	PrincipalTypes []string  `json:"principalTypes,omitempty"`
	ResourceTypes  []string  `json:"resourceTypes,omitempty"`
	Context        *jsonType `json:"context,omitempty"`
}

type jsonActionRef struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id"`
}

type jsonType struct {
	Type       string              `json:"type"`
	Element    *jsonType           `json:"element,omitempty"`
	Attributes map[string]jsonAttr `json:"attributes,omitempty"`
	Name       string              `json:"name,omitempty"`
}

type jsonAttr struct {
	Type       string              `json:"type,omitempty"`
	Element    *jsonType           `json:"element,omitempty"`
	Required   *bool               `json:"required,omitempty"`
	Name       string              `json:"name,omitempty"`
	Attributes map[string]jsonAttr `json:"attributes,omitempty"`
}

type parser struct {
	schema      *Schema
	commonTypes map[string]TypeSpec
}

// ParseJSON decodes a Cedar JSON schema document into a Schema. It performs
// no well-formedness checking beyond what's needed to build the model;
// call ValidateWellFormed afterwards to check for cycles and dangling type
// references.
func ParseJSON(data []byte) (*Schema, error) {
	var namespaces map[string]*jsonNamespace
	if err := json.Unmarshal(data, &namespaces); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	p := &parser{schema: New(), commonTypes: map[string]TypeSpec{}}
	for nsName, ns := range namespaces {
		if ns == nil {
			continue
		}
		if err := p.parseNamespace(nsName, ns); err != nil {
			return nil, err
		}
	}
	return p.schema, nil
}

func (p *parser) parseNamespace(nsName string, ns *jsonNamespace) error {
	for name, jt := range ns.CommonTypes {
		full := qualifiedName(nsName, name)
		ts, err := p.parseJSONType(&jt, nsName)
		if err != nil {
			return fmt.Errorf("common type %s: %w", full, err)
		}
		p.commonTypes[full] = ts
	}
	for name, et := range ns.EntityTypes {
		full := qualifiedName(nsName, name)
		info, err := p.parseEntityType(nsName, full, &et)
		if err != nil {
			return err
		}
		p.schema.EntityTypes[types.EntityType(full)] = info
	}
	for name, act := range ns.Actions {
		info, err := p.parseAction(nsName, name, &act)
		if err != nil {
			return err
		}
		actionType := types.EntityType(qualifiedName(nsName, "Action"))
		uid := types.EntityUID{Type: actionType, ID: types.String(name)}
		info.UID = uid
		p.schema.Actions[uid] = info
	}
	return nil
}

func qualifiedName(namespace, local string) string {
	if namespace == "" {
		return local
	}
	return namespace + "::" + local
}

func qualifyTypeName(namespace, name string) string {
	if namespace == "" || strings.Contains(name, "::") {
		return name
	}
	return namespace + "::" + name
}

func (p *parser) parseEntityType(nsName, fullName string, et *jsonEntityType) (*EntityTypeInfo, error) {
	info := &EntityTypeInfo{
		Name:  types.EntityType(fullName),
		Attrs: map[string]AttributeSpec{},
	}
	if et.Shape != nil && et.Shape.Attributes != nil {
		for attrName, attr := range et.Shape.Attributes {
			as, err := p.parseJSONAttr(&attr, nsName)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", fullName, attrName, err)
			}
			info.Attrs[attrName] = as
		}
	}
	if et.Tags != nil {
		ts, err := p.parseJSONType(et.Tags, nsName)
		if err != nil {
			return nil, fmt.Errorf("%s tags: %w", fullName, err)
		}
		info.Tags = &ts
	}
	seen := map[types.EntityType]bool{}
	for _, mot := range et.MemberOfTypes {
		t := types.EntityType(qualifyTypeName(nsName, mot))
		if !seen[t] {
			seen[t] = true
			info.MemberOf = append(info.MemberOf, t)
		}
	}
	return info, nil
}

func (p *parser) parseAction(nsName, name string, act *jsonAction) (*ActionInfo, error) {
	info := &ActionInfo{
		Context: TypeSpec{Kind: KindRecord, Attrs: map[string]AttributeSpec{}},
	}

	if act.AppliesTo != nil {
		at := &AppliesTo{}
		seenP := map[types.EntityType]bool{}
		for _, pt := range act.AppliesTo.PrincipalTypes {
			t := types.EntityType(qualifyTypeName(nsName, pt))
			if !seenP[t] {
				seenP[t] = true
				at.Principals = append(at.Principals, t)
			}
		}
		seenR := map[types.EntityType]bool{}
		for _, rt := range act.AppliesTo.ResourceTypes {
			t := types.EntityType(qualifyTypeName(nsName, rt))
			if !seenR[t] {
				seenR[t] = true
				at.Resources = append(at.Resources, t)
			}
		}
		info.AppliesTo = at
		if act.AppliesTo.Context != nil {
			ctx, err := p.parseJSONType(act.AppliesTo.Context, nsName)
			if err != nil {
				return nil, fmt.Errorf("action %s context: %w", name, err)
			}
			info.Context = ctx
		}
	}

	for _, mo := range act.MemberOf {
		typ := qualifiedName(nsName, "Action")
		if mo.Type != "" {
			typ = mo.Type
		}
		info.MemberOf = append(info.MemberOf, types.EntityUID{Type: types.EntityType(typ), ID: types.String(mo.ID)})
	}

	return info, nil
}

func (p *parser) parseJSONType(jt *jsonType, nsName string) (TypeSpec, error) {
	if jt == nil {
		return TypeSpec{Kind: KindRecord, Attrs: map[string]AttributeSpec{}}, nil
	}
	switch jt.Type {
	case "Boolean", "Bool":
		return TypeSpec{Kind: KindBoolean}, nil
	case "Long":
		return TypeSpec{Kind: KindLong}, nil
	case "String":
		return TypeSpec{Kind: KindString}, nil
	case "Entity":
		return TypeSpec{Kind: KindEntity, EntityType: types.EntityType(qualifyTypeName(nsName, jt.Name))}, nil
	case "Set":
		elem, err := p.parseJSONType(jt.Element, nsName)
		if err != nil {
			return TypeSpec{}, err
		}
		return TypeSpec{Kind: KindSet, Element: &elem}, nil
	case "Record":
		return p.parseRecordAttrs(jt.Attributes, nsName)
	case "Extension":
		return TypeSpec{Kind: KindExtension, ExtName: jt.Name}, nil
	default:
		return p.resolveTypeRef(jt.Type, nsName)
	}
}

func (p *parser) parseRecordAttrs(attrs map[string]jsonAttr, nsName string) (TypeSpec, error) {
	rec := TypeSpec{Kind: KindRecord, Attrs: map[string]AttributeSpec{}}
	for name, a := range attrs {
		as, err := p.parseJSONAttr(&a, nsName)
		if err != nil {
			return TypeSpec{}, err
		}
		rec.Attrs[name] = as
	}
	return rec, nil
}

func (p *parser) resolveTypeRef(name, nsName string) (TypeSpec, error) {
	qualified := qualifyTypeName(nsName, name)
	if ts, ok := p.commonTypes[qualified]; ok {
		return ts, nil
	}
	if ts, ok := p.commonTypes[name]; ok {
		return ts, nil
	}
	if name == "" {
		return TypeSpec{}, fmt.Errorf("missing type")
	}
	// Not a common type: treat as an entity type reference. Whether it
	// names a declared entity type is checked later by ValidateWellFormed.
	return TypeSpec{Kind: KindEntity, EntityType: types.EntityType(qualified)}, nil
}

func (p *parser) parseJSONAttr(a *jsonAttr, nsName string) (AttributeSpec, error) {
	required := true
	if a.Required != nil {
		required = *a.Required
	}
	jt := jsonType{Type: a.Type, Element: a.Element, Attributes: a.Attributes, Name: a.Name}
	ts, err := p.parseJSONType(&jt, nsName)
	if err != nil {
		return AttributeSpec{}, err
	}
	return AttributeSpec{Type: ts, Required: required}, nil
}
