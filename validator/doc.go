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

// Package validator implements the Cedar policy typechecker: a type
// lattice with subtyping and least-upper-bound, capability-tracking
// inference rules for Cedar's expression language, request-environment
// enumeration driven by action signatures, and the closed diagnostic
// taxonomy they report through.
//
// The package deliberately knows nothing about policy text or schema
// JSON; it consumes a [*schema.Schema] (built and well-formedness-checked
// by the schema package) and an [*ast.Policy] (built by a parser this
// module does not provide), and produces a [Result].
//
// # Validating one policy
//
//	result := validator.Validate(sch, policy, validator.Strict)
//	if !result.OK() {
//	    for _, d := range result.Diagnostics {
//	        fmt.Println(d.ErrKind, d.Message())
//	    }
//	}
//
// # Strict vs. Permissive
//
// [Strict] mode rejects operations between unrelated entity types and
// requires a policy's `in` relationships to be possible under the
// schema's declared entity hierarchy. [Permissive] mode relaxes entity
// subtyping through [AnyEntityTypeT], for partial validation of
// templates before every slot is bound.
//
// # Reading the result
//
// [Result.PerEnvironment] holds one [EnvResult] per [RequestEnv] the
// policy's scope admits; each carries its own annotated AST (a [Type] for
// every reachable sub-expression) since a polymorphic policy can infer
// different types for the same node under different principal/resource
// types. [Result.Diagnostics] is the deduplicated union used to decide
// acceptance via [Result.OK].
package validator
