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

import "github.com/cedar-policy/cedar-validate/ast"

// Capabilities records which optional attribute accesses are proven safe
// at a point in the expression tree, because they're guarded by a `has`
// test earlier in the same conjunction (or in an enclosing `if`
// condition). Keys are structural, not pointer, identity: two
// different *ast.Attr allocations that read the same syntactic attribute
// off the same syntactic base expression share a capability.
type Capabilities map[capKey]struct{}

type capKey struct {
	expr string
	attr string
}

// NoCapabilities is the empty capability set, the starting point for
// typechecking a policy's scope-derived environment.
var NoCapabilities = Capabilities{}

func capKeyFor(obj ast.Expr, attr string) capKey {
	return capKey{expr: ast.Fingerprint(obj), attr: attr}
}

// Has reports whether accessing attr off obj is proven safe.
func (c Capabilities) Has(obj ast.Expr, attr string) bool {
	_, ok := c[capKeyFor(obj, attr)]
	return ok
}

// With returns a new capability set extending c with obj.attr proven safe.
func (c Capabilities) With(obj ast.Expr, attr string) Capabilities {
	out := make(Capabilities, len(c)+1)
	for k := range c {
		out[k] = struct{}{}
	}
	out[capKeyFor(obj, attr)] = struct{}{}
	return out
}

// Union returns the set of capabilities proven by either c or other: the
// combination rule for `&&`, where the right operand is typechecked with
// the left's capabilities already in scope, and for the `then` branch of
// an `if`, which is typechecked with the condition's capabilities added.
// The join after an `if` uses Intersect, not Union.
func (c Capabilities) Union(other Capabilities) Capabilities {
	out := make(Capabilities, len(c)+len(other))
	for k := range c {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Intersect returns the set of capabilities proven by both c and other:
// the combination rule for `||`, where neither branch is known to have
// run, so only capabilities both branches independently establish can be
// assumed afterward.
func (c Capabilities) Intersect(other Capabilities) Capabilities {
	out := make(Capabilities, 0)
	small, big := c, other
	if len(other) < len(c) {
		small, big = other, c
	}
	for k := range small {
		if _, ok := big[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}
