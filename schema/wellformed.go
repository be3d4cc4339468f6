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
	"fmt"

	"github.com/cedar-policy/cedar-validate/types"
)

// ValidateWellFormed performs the minimal schema well-formedness checks the
// validator core assumes have already been done: every memberOf and entity
// type reference resolves to a declared entity type, and the memberOf
// hierarchy contains no cycles. This is an external-collaborator concern
// relative to the typechecker core; it exists here only because something
// must produce the validated schema the core's contract requires.
func (s *Schema) ValidateWellFormed() error {
	for name, info := range s.EntityTypes {
		for _, p := range info.MemberOf {
			if _, ok := s.EntityTypes[p]; !ok {
				return fmt.Errorf("entity type %s: declares unknown parent type %s", name, p)
			}
		}
		if err := checkAttrs(s, info.Attrs); err != nil {
			return fmt.Errorf("entity type %s: %w", name, err)
		}
	}
	for uid, info := range s.Actions {
		if info.AppliesTo != nil {
			for _, p := range info.AppliesTo.Principals {
				if _, ok := s.EntityTypes[p]; !ok {
					return fmt.Errorf("action %s: unknown principal type %s", uid, p)
				}
			}
			for _, r := range info.AppliesTo.Resources {
				if _, ok := s.EntityTypes[r]; !ok {
					return fmt.Errorf("action %s: unknown resource type %s", uid, r)
				}
			}
		}
		for _, p := range info.MemberOf {
			if _, ok := s.Actions[p]; !ok {
				return fmt.Errorf("action %s: declares unknown action group %s", uid, p)
			}
		}
	}
	if cyc := findCycle(s.EntityTypes, func(i *EntityTypeInfo) []types.EntityType { return i.MemberOf }); cyc != nil {
		return fmt.Errorf("entity type hierarchy has a cycle: %v", cyc)
	}
	if cyc := findCycle(s.Actions, func(i *ActionInfo) []types.EntityUID { return i.MemberOf }); cyc != nil {
		return fmt.Errorf("action hierarchy has a cycle: %v", cyc)
	}
	return nil
}

func checkAttrs(s *Schema, attrs map[string]AttributeSpec) error {
	for name, a := range attrs {
		if err := checkTypeSpec(s, a.Type); err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
	}
	return nil
}

func checkTypeSpec(s *Schema, t TypeSpec) error {
	switch t.Kind {
	case KindEntity:
		if _, ok := s.EntityTypes[t.EntityType]; !ok {
			return fmt.Errorf("references unknown entity type %s", t.EntityType)
		}
	case KindSet:
		if t.Element != nil {
			return checkTypeSpec(s, *t.Element)
		}
	case KindRecord:
		return checkAttrs(s, t.Attrs)
	}
	return nil
}

// findCycle runs a generic DFS cycle check over a map of comparable keys
// whose values declare edges via parentsOf, returning the cyclic path (each
// key rendered with fmt.Sprint) if one exists.
func findCycle[K comparable, V any](m map[K]V, parentsOf func(V) []K) []string {
	const (
		gray  = 1
		black = 2
	)
	color := map[K]int{}
	var path []K
	var visit func(k K) []K
	visit = func(k K) []K {
		switch color[k] {
		case gray:
			return append(append([]K{}, path...), k)
		case black:
			return nil
		}
		color[k] = gray
		path = append(path, k)
		if v, ok := m[k]; ok {
			for _, p := range parentsOf(v) {
				if cyc := visit(p); cyc != nil {
					return cyc
				}
			}
		}
		path = path[:len(path)-1]
		color[k] = black
		return nil
	}
	for k := range m {
		if cyc := visit(k); cyc != nil {
			out := make([]string, len(cyc))
			for i, c := range cyc {
				out[i] = fmt.Sprint(c)
			}
			return out
		}
	}
	return nil
}
