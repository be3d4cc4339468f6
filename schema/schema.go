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

import "github.com/cedar-policy/cedar-validate/types"

// Schema is a fully-resolved Cedar schema: every entity type's attribute
// shape and declared parents, every action's applies-to and context shape,
// and the registry of extension functions available to policies validated
// against it.
type Schema struct {
	EntityTypes map[types.EntityType]*EntityTypeInfo
	Actions     map[types.EntityUID]*ActionInfo

	// Extensions holds schema-declared extension function overloads, keyed
	// by name with possibly more than one entry (distinct call styles or
	// arities sharing a name). The validator merges these with its builtin
	// catalog; most schemas never populate this.
	Extensions map[string][]*ExtensionFunc
}

// New returns an empty Schema, ready to be populated by ParseJSON or by
// direct field assignment (e.g. from tests).
func New() *Schema {
	return &Schema{
		EntityTypes: map[types.EntityType]*EntityTypeInfo{},
		Actions:     map[types.EntityUID]*ActionInfo{},
		Extensions:  map[string][]*ExtensionFunc{},
	}
}

// IsActionType reports whether t is the entity type used by one or more
// of the schema's declared actions.
func (s *Schema) IsActionType(t types.EntityType) bool {
	for uid := range s.Actions {
		if uid.Type == t {
			return true
		}
	}
	return false
}

// ActionIDs returns the string IDs of every declared action whose entity
// type is t, for fuzzy "did you mean" suggestions.
func (s *Schema) ActionIDs(t types.EntityType) []string {
	var out []string
	for uid := range s.Actions {
		if uid.Type == t {
			out = append(out, string(uid.ID))
		}
	}
	return out
}

// EntityType looks up a declared entity type by name.
func (s *Schema) EntityType(name types.EntityType) (*EntityTypeInfo, bool) {
	info, ok := s.EntityTypes[name]
	return info, ok
}

// Action looks up a declared action by UID.
func (s *Schema) Action(uid types.EntityUID) (*ActionInfo, bool) {
	a, ok := s.Actions[uid]
	return a, ok
}

// Descendants returns every entity type that declares (directly or
// transitively) et as a parent, including et itself.
func (s *Schema) Descendants(et types.EntityType) []types.EntityType {
	seen := map[types.EntityType]bool{et: true}
	out := []types.EntityType{et}
	changed := true
	for changed {
		changed = false
		for name, info := range s.EntityTypes {
			if seen[name] {
				continue
			}
			for _, p := range info.MemberOf {
				if seen[p] {
					seen[name] = true
					out = append(out, name)
					changed = true
					break
				}
			}
		}
	}
	return out
}

// CanDescend reports whether some entity type named in froms can be a
// (possibly transitive, possibly non-strict) descendant of some entity
// type named in tos, per the schema's declared membership hierarchy.
func (s *Schema) CanDescend(froms, tos []types.EntityType) bool {
	toSet := map[types.EntityType]bool{}
	for _, t := range tos {
		toSet[t] = true
	}
	for _, f := range froms {
		for _, anc := range s.ancestorsIncludingSelf(f) {
			if toSet[anc] {
				return true
			}
		}
	}
	return false
}

func (s *Schema) ancestorsIncludingSelf(et types.EntityType) []types.EntityType {
	seen := map[types.EntityType]bool{et: true}
	queue := []types.EntityType{et}
	out := []types.EntityType{et}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		info, ok := s.EntityTypes[cur]
		if !ok {
			continue
		}
		for _, p := range info.MemberOf {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
				queue = append(queue, p)
			}
		}
	}
	return out
}

// ActionGroupMembers expands an action-group UID (or a plain action UID)
// into the set of concrete action UIDs it denotes: itself plus every
// action that transitively declares it in memberOf. The environment
// enumerator relies on it for `action in [Group::"x"]` scopes.
func (s *Schema) ActionGroupMembers(uid types.EntityUID) []types.EntityUID {
	seen := map[types.EntityUID]bool{uid: true}
	out := []types.EntityUID{}
	if _, ok := s.Actions[uid]; ok {
		out = append(out, uid)
	}
	changed := true
	for changed {
		changed = false
		for id, info := range s.Actions {
			if seen[id] {
				continue
			}
			for _, p := range info.MemberOf {
				if seen[p] {
					seen[id] = true
					out = append(out, id)
					changed = true
					break
				}
			}
		}
	}
	return out
}

// AllActions returns every action UID declared in the schema.
func (s *Schema) AllActions() []types.EntityUID {
	out := make([]types.EntityUID, 0, len(s.Actions))
	for uid := range s.Actions {
		out = append(out, uid)
	}
	return out
}

// AllEntityTypeNames returns every declared entity type name.
func (s *Schema) AllEntityTypeNames() []types.EntityType {
	out := make([]types.EntityType, 0, len(s.EntityTypes))
	for name := range s.EntityTypes {
		out = append(out, name)
	}
	return out
}
