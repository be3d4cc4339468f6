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

import (
	"slices"
	"strings"

	"github.com/cedar-policy/cedar-validate/types"
)

// Mode selects how strictly the lattice treats distinct entity types.
type Mode int

const (
	// Strict rejects operations between unrelated entity types and
	// enforces hierarchy respect for `in`.
	Strict Mode = iota
	// Permissive allows unequal entity types to unify through AnyEntity;
	// used for partial/permissive validation of templates.
	Permissive
)

// Kind tags the variant of a Type.
type Kind int

const (
	KindNever Kind = iota
	KindTrue
	KindFalse
	KindBoolean
	KindLong
	KindString
	KindSet
	KindRecord
	KindEntity
	KindActionEntity
	KindAnyEntity
	KindExtension
)

// Type is a Cedar type: one of a closed set of variants. It is a value
// type: two Types with equal fields are the same type (see Equal).
type Type interface {
	isCedarType()
	Kind() Kind
	String() string
}

type (
	// NeverType is the bottom type.
	NeverType struct{}
	// TrueType is the singleton type of the literal `true`.
	TrueType struct{}
	// FalseType is the singleton type of the literal `false`.
	FalseType struct{}
	// BooleanType is the join of True and False.
	BooleanType struct{}
	// LongType is Cedar's 64-bit signed integer type.
	LongType struct{}
	// StringType is Cedar's string type.
	StringType struct{}
	// AnyEntityTypeT matches any entity, of any declared type.
	AnyEntityTypeT struct{}
)

func (NeverType) isCedarType()      {}
func (TrueType) isCedarType()       {}
func (FalseType) isCedarType()      {}
func (BooleanType) isCedarType()    {}
func (LongType) isCedarType()       {}
func (StringType) isCedarType()     {}
func (AnyEntityTypeT) isCedarType() {}

func (NeverType) Kind() Kind      { return KindNever }
func (TrueType) Kind() Kind       { return KindTrue }
func (FalseType) Kind() Kind      { return KindFalse }
func (BooleanType) Kind() Kind    { return KindBoolean }
func (LongType) Kind() Kind       { return KindLong }
func (StringType) Kind() Kind     { return KindString }
func (AnyEntityTypeT) Kind() Kind { return KindAnyEntity }

func (NeverType) String() string      { return "Never" }
func (TrueType) String() string       { return "True" }
func (FalseType) String() string      { return "False" }
func (BooleanType) String() string    { return "Boolean" }
func (LongType) String() string       { return "Long" }
func (StringType) String() string     { return "String" }
func (AnyEntityTypeT) String() string { return "AnyEntity" }

// SetType is a homogeneous set type. SetType{Element: NeverType{}} is the
// empty-set type.
type SetType struct {
	Element Type
}

func (SetType) isCedarType() {}
func (SetType) Kind() Kind   { return KindSet }
func (s SetType) String() string {
	return "Set<" + s.Element.String() + ">"
}

// AttributeType is a record or entity attribute's declared type and
// optionality.
type AttributeType struct {
	Type     Type
	Required bool
}

// RecordType is a record type: a set of named, typed attributes, either
// closed (exactly these attributes) or open (at least these attributes).
type RecordType struct {
	Attrs map[string]AttributeType
	Open  bool
}

func (RecordType) isCedarType() {}
func (RecordType) Kind() Kind   { return KindRecord }
func (r RecordType) String() string {
	names := make([]string, 0, len(r.Attrs))
	for n := range r.Attrs {
		names = append(names, n)
	}
	slices.Sort(names)
	var b strings.Builder
	b.WriteByte('{')
	for i, n := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		a := r.Attrs[n]
		b.WriteString(n)
		if !a.Required {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		b.WriteString(a.Type.String())
	}
	if r.Open {
		if len(names) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteByte('}')
	return b.String()
}

// EntityLUB is a non-empty, canonically-sorted set of entity type names:
// "any entity whose type is in the set". Sorting yields canonical
// equality and hashing.
type EntityLUB struct {
	names []types.EntityType
}

// NewEntityLUB builds an EntityLUB from one or more entity type names.
// Duplicate names are removed; the result is sorted. Callers must supply
// at least one name.
func NewEntityLUB(names ...types.EntityType) EntityLUB {
	seen := make(map[types.EntityType]bool, len(names))
	out := make([]types.EntityType, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return EntityLUB{names: out}
}

// Names returns the LUB's member entity type names, sorted.
func (e EntityLUB) Names() []types.EntityType { return slices.Clone(e.names) }

// Len returns the number of distinct entity type names in the LUB.
func (e EntityLUB) Len() int { return len(e.names) }

// Subset reports whether every name in e also appears in other.
func (e EntityLUB) Subset(other EntityLUB) bool {
	for _, n := range e.names {
		if !slices.Contains(other.names, n) {
			return false
		}
	}
	return true
}

// Equal reports whether e and other denote the same set of names.
func (e EntityLUB) Equal(other EntityLUB) bool {
	return slices.Equal(e.names, other.names)
}

// Union returns the LUB containing the names of both e and other.
func (e EntityLUB) Union(other EntityLUB) EntityLUB {
	return NewEntityLUB(append(slices.Clone(e.names), other.names...)...)
}

func (e EntityLUB) String() string {
	ss := make([]string, len(e.names))
	for i, n := range e.names {
		ss[i] = string(n)
	}
	return strings.Join(ss, "|")
}

// EntityTypeT is the type of an entity known to be one of a finite,
// non-empty set of declared entity types.
type EntityTypeT struct {
	LUB EntityLUB
}

func (EntityTypeT) isCedarType() {}
func (EntityTypeT) Kind() Kind   { return KindEntity }
func (e EntityTypeT) String() string {
	return "Entity<" + e.LUB.String() + ">"
}

// ActionEntityType is like EntityTypeT but for the distinguished action
// entities.
type ActionEntityType struct {
	LUB EntityLUB
}

func (ActionEntityType) isCedarType() {}
func (ActionEntityType) Kind() Kind   { return KindActionEntity }
func (a ActionEntityType) String() string {
	return "ActionEntity<" + a.LUB.String() + ">"
}

// ExtensionType is an opaque extension value type, e.g. ipaddr or decimal.
type ExtensionType struct {
	Name string
}

func (ExtensionType) isCedarType() {}
func (ExtensionType) Kind() Kind   { return KindExtension }
func (e ExtensionType) String() string {
	return e.Name
}

// Equal reports whether a and b are the same type.
func Equal(a, b Type) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case SetType:
		return Equal(av.Element, b.(SetType).Element)
	case RecordType:
		bv := b.(RecordType)
		if av.Open != bv.Open || len(av.Attrs) != len(bv.Attrs) {
			return false
		}
		for name, aa := range av.Attrs {
			ba, ok := bv.Attrs[name]
			if !ok || aa.Required != ba.Required || !Equal(aa.Type, ba.Type) {
				return false
			}
		}
		return true
	case EntityTypeT:
		return av.LUB.Equal(b.(EntityTypeT).LUB)
	case ActionEntityType:
		return av.LUB.Equal(b.(ActionEntityType).LUB)
	case ExtensionType:
		return av.Name == b.(ExtensionType).Name
	default:
		return true // singleton kinds (Never/True/False/Boolean/Long/String/AnyEntity)
	}
}

// IsBoolean reports whether t is True, False, or Boolean.
func IsBoolean(t Type) bool {
	switch t.Kind() {
	case KindTrue, KindFalse, KindBoolean:
		return true
	default:
		return false
	}
}

// IsEntityLike reports whether t is an Entity, ActionEntity, or AnyEntity.
func IsEntityLike(t Type) bool {
	switch t.Kind() {
	case KindEntity, KindActionEntity, KindAnyEntity:
		return true
	default:
		return false
	}
}

// IsSubtype reports whether a is a subtype of b under the given mode.
func IsSubtype(a, b Type, mode Mode) bool {
	if a.Kind() == KindNever {
		return true
	}
	if Equal(a, b) {
		return true
	}
	switch b.Kind() {
	case KindBoolean:
		return a.Kind() == KindTrue || a.Kind() == KindFalse || a.Kind() == KindBoolean
	case KindSet:
		av, ok := a.(SetType)
		bv := b.(SetType)
		return ok && IsSubtype(av.Element, bv.Element, mode)
	case KindRecord:
		av, ok := a.(RecordType)
		if !ok {
			return false
		}
		return recordIsSubtype(av, b.(RecordType), mode)
	case KindEntity:
		bv := b.(EntityTypeT)
		switch av := a.(type) {
		case EntityTypeT:
			if av.LUB.Subset(bv.LUB) {
				return true
			}
			return mode == Permissive
		case AnyEntityTypeT:
			return mode == Permissive
		}
		return false
	case KindActionEntity:
		bv := b.(ActionEntityType)
		if av, ok := a.(ActionEntityType); ok {
			if av.LUB.Subset(bv.LUB) {
				return true
			}
			return mode == Permissive
		}
		return false
	case KindAnyEntity:
		return IsEntityLike(a)
	case KindExtension:
		av, ok := a.(ExtensionType)
		return ok && av.Name == b.(ExtensionType).Name
	default:
		return false
	}
}

func recordIsSubtype(a, b RecordType, mode Mode) bool {
	if !b.Open {
		if a.Open || len(a.Attrs) != len(b.Attrs) {
			return false
		}
	}
	for name, battr := range b.Attrs {
		aattr, ok := a.Attrs[name]
		if !ok || aattr.Required != battr.Required {
			return false
		}
		if !IsSubtype(aattr.Type, battr.Type, mode) {
			return false
		}
	}
	return true
}

// LUBFailureReason classifies why LeastUpperBound failed, for the
// IncompatibleTypes diagnostic's hint field.
type LUBFailureReason int

const (
	LUBReasonNone LUBFailureReason = iota
	LUBReasonAttributeQualifier
	LUBReasonRecordWidth
	LUBReasonEntityType
	LUBReasonEntityRecord
)

func (r LUBFailureReason) String() string {
	switch r {
	case LUBReasonAttributeQualifier:
		return "AttributeQualifier"
	case LUBReasonRecordWidth:
		return "RecordWidth"
	case LUBReasonEntityType:
		return "EntityType"
	case LUBReasonEntityRecord:
		return "EntityRecord"
	default:
		return "None"
	}
}

// LUBResult is the outcome of LeastUpperBound.
type LUBResult struct {
	Type   Type
	OK     bool
	Reason LUBFailureReason
}

// LeastUpperBound computes the least upper bound of a and b under the
// given mode.
func LeastUpperBound(a, b Type, mode Mode) LUBResult {
	if a.Kind() == KindNever {
		return LUBResult{Type: b, OK: true}
	}
	if b.Kind() == KindNever {
		return LUBResult{Type: a, OK: true}
	}
	if Equal(a, b) {
		return LUBResult{Type: a, OK: true}
	}

	aBool, bBool := IsBoolean(a), IsBoolean(b)
	if aBool && bBool {
		return LUBResult{Type: BooleanType{}, OK: true}
	}

	if a.Kind() == KindSet && b.Kind() == KindSet {
		er := LeastUpperBound(a.(SetType).Element, b.(SetType).Element, mode)
		if !er.OK {
			return LUBResult{OK: false, Reason: er.Reason}
		}
		return LUBResult{Type: SetType{Element: er.Type}, OK: true}
	}

	if a.Kind() == KindRecord && b.Kind() == KindRecord {
		return recordLUB(a.(RecordType), b.(RecordType), mode)
	}

	if a.Kind() == KindEntity && b.Kind() == KindEntity {
		av, bv := a.(EntityTypeT), b.(EntityTypeT)
		return LUBResult{Type: EntityTypeT{LUB: av.LUB.Union(bv.LUB)}, OK: true}
	}
	if a.Kind() == KindActionEntity && b.Kind() == KindActionEntity {
		av, bv := a.(ActionEntityType), b.(ActionEntityType)
		return LUBResult{Type: ActionEntityType{LUB: av.LUB.Union(bv.LUB)}, OK: true}
	}
	if (a.Kind() == KindAnyEntity || b.Kind() == KindAnyEntity) && IsEntityLike(a) && IsEntityLike(b) {
		return LUBResult{Type: AnyEntityTypeT{}, OK: true}
	}

	if a.Kind() == KindExtension && b.Kind() == KindExtension {
		if a.(ExtensionType).Name == b.(ExtensionType).Name {
			return LUBResult{Type: a, OK: true}
		}
		return LUBResult{OK: false, Reason: LUBReasonNone}
	}

	entityLike := func(t Type) bool { return t.Kind() == KindEntity || t.Kind() == KindActionEntity || t.Kind() == KindAnyEntity }
	switch {
	case entityLike(a) && entityLike(b):
		// Entity vs ActionEntity (or vice versa): distinct kinds of entity.
		return LUBResult{OK: false, Reason: LUBReasonEntityType}
	case (entityLike(a) && b.Kind() == KindRecord) || (entityLike(b) && a.Kind() == KindRecord):
		return LUBResult{OK: false, Reason: LUBReasonEntityRecord}
	default:
		return LUBResult{OK: false, Reason: LUBReasonNone}
	}
}

func recordLUB(a, b RecordType, mode Mode) LUBResult {
	if len(a.Attrs) != len(b.Attrs) {
		return LUBResult{OK: false, Reason: LUBReasonRecordWidth}
	}
	attrs := make(map[string]AttributeType, len(a.Attrs))
	for name, aa := range a.Attrs {
		ba, ok := b.Attrs[name]
		if !ok {
			return LUBResult{OK: false, Reason: LUBReasonRecordWidth}
		}
		if aa.Required != ba.Required {
			return LUBResult{OK: false, Reason: LUBReasonAttributeQualifier}
		}
		er := LeastUpperBound(aa.Type, ba.Type, mode)
		if !er.OK {
			return er
		}
		attrs[name] = AttributeType{Type: er.Type, Required: aa.Required}
	}
	return LUBResult{Type: RecordType{Attrs: attrs, Open: a.Open || b.Open}, OK: true}
}
