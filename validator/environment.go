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
	"sort"

	"github.com/cedar-policy/cedar-validate/ast"
	"github.com/cedar-policy/cedar-validate/schema"
	"github.com/cedar-policy/cedar-validate/types"
)

// RequestEnv is one concrete (principal type, action, resource type,
// context type) combination a policy might be evaluated under.
type RequestEnv struct {
	PrincipalType types.EntityType
	ActionUID     types.EntityUID
	ResourceType  types.EntityType
	ContextType   Type

	PrincipalSlot *types.EntityType // nil unless the policy is a template binding ?principal
	ResourceSlot  *types.EntityType
}

// EnumerateEnvironments produces every RequestEnv compatible with the
// schema's action signatures and the policy's scope constraints. If the
// scope constraints admit no environment, it returns a single
// InvalidActionApplication diagnostic instead.
func EnumerateEnvironments(sch *schema.Schema, p *ast.Policy) ([]RequestEnv, []Diagnostic) {
	envs := enumerate(sch, p, p.Principal, p.Action, p.Resource)
	if len(envs) > 0 {
		return envs, nil
	}

	// Diagnose: would relaxing an `==` scope to `in` help?
	suggestEq2In := func(c ast.ScopeConstraint) ast.ScopeConstraint {
		if eq, ok := c.(ast.ScopeEq); ok {
			return ast.ScopeIn{UID: eq.UID}
		}
		return c
	}
	relaxedP := enumerate(sch, p, suggestEq2In(p.Principal), p.Action, p.Resource)
	relaxedR := enumerate(sch, p, p.Principal, p.Action, suggestEq2In(p.Resource))

	d := Diagnostic{ErrKind: InvalidActionApplication}
	if len(relaxedP) > 0 || len(relaxedR) > 0 {
		d.HelpText = HelpEqualityToIn
	}
	return nil, []Diagnostic{d}
}

func enumerate(sch *schema.Schema, p *ast.Policy, principal, action, resource ast.ScopeConstraint) []RequestEnv {
	actions := narrowActions(sch, action)

	var envs []RequestEnv
	for _, auid := range actions {
		info, ok := sch.Action(auid)
		if !ok || info.AppliesTo == nil {
			continue
		}
		principals := narrowEntityTypes(sch, principal, info.AppliesTo.Principals)
		resources := narrowEntityTypes(sch, resource, info.AppliesTo.Resources)
		ctxType := ConvertTypeSpec(info.Context)
		for _, pt := range principals {
			for _, rt := range resources {
				env := RequestEnv{PrincipalType: pt, ActionUID: auid, ResourceType: rt, ContextType: ctxType}
				if p.HasSlot(ast.SlotPrincipal) {
					t := pt
					env.PrincipalSlot = &t
				}
				if p.HasSlot(ast.SlotResource) {
					t := rt
					env.ResourceSlot = &t
				}
				envs = append(envs, env)
			}
		}
	}
	sort.Slice(envs, func(i, j int) bool {
		if envs[i].ActionUID.String() != envs[j].ActionUID.String() {
			return envs[i].ActionUID.String() < envs[j].ActionUID.String()
		}
		if envs[i].PrincipalType != envs[j].PrincipalType {
			return envs[i].PrincipalType < envs[j].PrincipalType
		}
		return envs[i].ResourceType < envs[j].ResourceType
	})
	return envs
}

func narrowActions(sch *schema.Schema, scope ast.ScopeConstraint) []types.EntityUID {
	switch s := scope.(type) {
	case ast.ScopeEq:
		if _, ok := sch.Action(s.UID); ok {
			return []types.EntityUID{s.UID}
		}
		return nil
	case ast.ScopeIn:
		return sch.ActionGroupMembers(s.UID)
	case ast.ScopeInSet:
		seen := map[types.EntityUID]bool{}
		var out []types.EntityUID
		for _, uid := range s.UIDs {
			for _, m := range sch.ActionGroupMembers(uid) {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		}
		return out
	default:
		return sch.AllActions()
	}
}

// narrowEntityTypes intersects an action's applicable entity types with
// whatever the policy's principal/resource scope constraint allows.
func narrowEntityTypes(sch *schema.Schema, scope ast.ScopeConstraint, applies []types.EntityType) []types.EntityType {
	allowed := scopeAllowedTypes(sch, scope)
	if allowed == nil {
		return applies
	}
	allow := make(map[types.EntityType]bool, len(allowed))
	for _, t := range allowed {
		allow[t] = true
	}
	var out []types.EntityType
	for _, t := range applies {
		if allow[t] {
			out = append(out, t)
		}
	}
	return out
}

// scopeAllowedTypes returns the entity types a principal/resource scope
// constraint admits, or nil for "no narrowing" (ScopeAny, slots).
func scopeAllowedTypes(sch *schema.Schema, scope ast.ScopeConstraint) []types.EntityType {
	switch s := scope.(type) {
	case ast.ScopeEq:
		return []types.EntityType{s.UID.Type}
	case ast.ScopeIn:
		return sch.Descendants(s.UID.Type)
	case ast.ScopeIs:
		return []types.EntityType{s.Type}
	case ast.ScopeIsIn:
		descendants := sch.Descendants(s.UID.Type)
		for _, d := range descendants {
			if d == s.Type {
				return []types.EntityType{s.Type}
			}
		}
		return []types.EntityType{} // empty: `is` and `in` disagree
	default:
		return nil
	}
}
