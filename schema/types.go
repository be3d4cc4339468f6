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

// Package schema models a validated Cedar schema: entity types, their
// attribute shapes and membership hierarchy, actions and the principal/
// resource/context shapes they apply to, and the extension function
// registry. It also decodes Cedar's JSON schema format into this model.
//
// Schema parsing and well-formedness checking are explicitly out of the
// validator core's scope; this package is the external collaborator that
// produces the validated schema the core consumes.
package schema

import "github.com/cedar-policy/cedar-validate/types"

// TypeKind enumerates the shapes a schema type reference can take.
type TypeKind int

const (
	KindBoolean TypeKind = iota
	KindLong
	KindString
	KindSet
	KindRecord
	KindEntity
	KindExtension
)

// AttributeSpec is one declared attribute of a record or entity shape.
type AttributeSpec struct {
	Type     TypeSpec
	Required bool
}

// TypeSpec is a schema-level type reference, as declared in the JSON
// schema (after resolving common-type aliases).
type TypeSpec struct {
	Kind TypeKind

	// KindSet
	Element *TypeSpec

	// KindRecord
	Attrs map[string]AttributeSpec
	Open  bool

	// KindEntity
	EntityType types.EntityType

	// KindExtension
	ExtName string
}

// CallStyle distinguishes `f(x, y)` from `x.f(y)`.
type CallStyle int

const (
	CallFunction CallStyle = iota
	CallMethod
)

// ExtensionFunc describes one extension constructor or method in the
// function registry a schema's extension types are checked against.
type ExtensionFunc struct {
	Name          string
	ArgTypes      []TypeSpec
	ReturnType    TypeSpec
	Style         CallStyle
	IsConstructor bool
}

// EntityTypeInfo is one entity type's declared shape.
type EntityTypeInfo struct {
	Name     types.EntityType
	Attrs    map[string]AttributeSpec
	Tags     *TypeSpec
	MemberOf []types.EntityType // direct declared parent types
}

// AppliesTo is the set of principal and resource types an action accepts.
// An empty or nil slice admits no type, so the action applies to no
// request environment.
type AppliesTo struct {
	Principals []types.EntityType
	Resources  []types.EntityType
}

// ActionInfo is one action's signature: the principal/resource types it
// applies to, its context shape, and the action groups it belongs to.
type ActionInfo struct {
	UID       types.EntityUID
	AppliesTo *AppliesTo // nil for an action with no applies-to (never used in a request)
	Context   TypeSpec   // always KindRecord
	MemberOf  []types.EntityUID
}
