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

package ast

import "github.com/cedar-policy/cedar-validate/types"

// Effect is a policy's effect, permit or forbid.
type Effect int

const (
	Permit Effect = iota
	Forbid
)

// ScopeConstraint is one of a policy's three scope clauses (principal,
// action, or resource).
type ScopeConstraint interface {
	scopeNode()
}

// ScopeAny matches any entity, e.g. bare `principal`.
type ScopeAny struct{}

func (ScopeAny) scopeNode() {}

// ScopeEq is `var == uid`.
type ScopeEq struct{ UID types.EntityUID }

func (ScopeEq) scopeNode() {}

// ScopeEqSlot is `var == ?slot`, a template scope constraint.
type ScopeEqSlot struct{ Slot SlotKind }

func (ScopeEqSlot) scopeNode() {}

// ScopeIn is `var in uid`.
type ScopeIn struct{ UID types.EntityUID }

func (ScopeIn) scopeNode() {}

// ScopeInSlot is `var in ?slot`, a template scope constraint.
type ScopeInSlot struct{ Slot SlotKind }

func (ScopeInSlot) scopeNode() {}

// ScopeIs is `var is T`.
type ScopeIs struct{ Type types.EntityType }

func (ScopeIs) scopeNode() {}

// ScopeIsIn is `var is T in uid`.
type ScopeIsIn struct {
	Type types.EntityType
	UID  types.EntityUID
}

func (ScopeIsIn) scopeNode() {}

// ScopeInSet is `action in [uid1, uid2, ...]`, only valid on the action
// scope.
type ScopeInSet struct{ UIDs []types.EntityUID }

func (ScopeInSet) scopeNode() {}

// ConditionKind distinguishes `when` from `unless`.
type ConditionKind int

const (
	When ConditionKind = iota
	Unless
)

// Condition is one `when { ... }` or `unless { ... }` clause.
type Condition struct {
	Kind ConditionKind
	Body Expr
}

// Policy is a single Cedar policy (or the body of one template
// instantiation): an effect, three scope constraints, and an ordered list
// of when/unless conditions.
type Policy struct {
	ID         string
	Effect     Effect
	Principal  ScopeConstraint
	Action     ScopeConstraint
	Resource   ScopeConstraint
	Conditions []Condition
}

// HasSlot reports whether the policy is a template with the given slot
// appearing in its scope.
func (p *Policy) HasSlot(kind SlotKind) bool {
	check := func(c ScopeConstraint) bool {
		switch s := c.(type) {
		case ScopeEqSlot:
			return s.Slot == kind
		case ScopeInSlot:
			return s.Slot == kind
		}
		return false
	}
	return check(p.Principal) || check(p.Resource)
}
