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
	"github.com/cedar-policy/cedar-validate/ast"
	"github.com/cedar-policy/cedar-validate/schema"
)

// EnvResult is one request environment's typecheck outcome: the
// annotated AST (a type for every sub-expression reachable under that
// environment) and the diagnostics it produced.
type EnvResult struct {
	Env         RequestEnv
	Annotated   map[ast.Expr]Type
	Diagnostics []Diagnostic
}

// Result is the outcome of validating one policy against a schema. A
// policy typechecks iff every EnvResult's Diagnostics contains no
// errors (warnings are informational).
type Result struct {
	Policy         *ast.Policy
	Mode           Mode
	PerEnvironment []EnvResult

	// Diagnostics is the deduplicated union of every environment's
	// diagnostics (deduplicated by Diagnostic.Key), plus any
	// environment-enumeration-level diagnostic such as
	// InvalidActionApplication.
	Diagnostics []Diagnostic
}

// OK reports whether the policy is accepted: no errors under any
// surviving request environment. Warnings do not affect this.
func (r Result) OK() bool {
	for _, d := range r.Diagnostics {
		if !d.IsWarning {
			return false
		}
	}
	return true
}

// Validate typechecks a single policy against sch under every request
// environment its scope admits. It is the package's sole entry point: run
// once per policy in a policy set.
func Validate(sch *schema.Schema, p *ast.Policy, mode Mode) Result {
	envs, enumDiags := EnumerateEnvironments(sch, p)
	if len(enumDiags) > 0 {
		return Result{Policy: p, Mode: mode, Diagnostics: enumDiags}
	}

	var per []EnvResult
	seen := map[string]bool{}
	var union []Diagnostic
	for _, env := range envs {
		er := validateUnderEnv(sch, p, env, mode)
		per = append(per, er)
		for _, d := range er.Diagnostics {
			k := d.Key()
			if !seen[k] {
				seen[k] = true
				union = append(union, d)
			}
		}
	}
	return Result{Policy: p, Mode: mode, PerEnvironment: per, Diagnostics: union}
}

func validateUnderEnv(sch *schema.Schema, p *ast.Policy, env RequestEnv, mode Mode) EnvResult {
	ctx := &tc{sch: sch, env: env, mode: mode, typed: map[ast.Expr]Type{}}

	caps := NoCapabilities
	combined := Type(TrueType{})
	var lastLoc *ast.SourceLoc
	var lastExpr ast.Expr
	for _, cond := range p.Conditions {
		t, outCaps := ctx.infer(cond.Body, caps)
		ctx.requireBoolean(cond.Body, t)
		caps = outCaps
		lastLoc, lastExpr = cond.Body.Location(), cond.Body

		effective := t
		if cond.Kind == ast.Unless {
			effective = negateFold(t)
		}
		combined = andFold(combined, effective)
	}
	if combined.Kind() == KindFalse {
		ctx.report(Diagnostic{IsWarning: true, WarnKind: ImpossiblePolicy, Loc: lastLoc, Expr: lastExpr})
	}

	return EnvResult{Env: env, Annotated: ctx.typed, Diagnostics: ctx.diags}
}

func negateFold(t Type) Type {
	switch t.Kind() {
	case KindTrue:
		return FalseType{}
	case KindFalse:
		return TrueType{}
	default:
		return BooleanType{}
	}
}

func andFold(a, b Type) Type {
	switch {
	case a.Kind() == KindFalse || b.Kind() == KindFalse:
		return FalseType{}
	case a.Kind() == KindTrue:
		return b
	case b.Kind() == KindTrue:
		return a
	default:
		return BooleanType{}
	}
}
