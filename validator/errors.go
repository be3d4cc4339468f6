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
	"fmt"

	"github.com/cedar-policy/cedar-validate/ast"
)

// ErrorKind is one member of the closed diagnostic taxonomy. New kinds
// are never added outside this file.
type ErrorKind int

const (
	UnrecognizedEntityType ErrorKind = iota
	UnrecognizedActionId
	InvalidActionApplication
	UnspecifiedEntity
	UnexpectedType
	IncompatibleTypes
	UnsafeAttributeAccess
	UnsafeOptionalAttributeAccess
	UndefinedFunction
	MultiplyDefinedFunction
	WrongNumberArguments
	WrongCallStyle
	FunctionArgumentValidation
	EmptySetForbidden
	NonLitExtConstructor
	HierarchyNotRespected
)

func (k ErrorKind) String() string {
	switch k {
	case UnrecognizedEntityType:
		return "UnrecognizedEntityType"
	case UnrecognizedActionId:
		return "UnrecognizedActionId"
	case InvalidActionApplication:
		return "InvalidActionApplication"
	case UnspecifiedEntity:
		return "UnspecifiedEntity"
	case UnexpectedType:
		return "UnexpectedType"
	case IncompatibleTypes:
		return "IncompatibleTypes"
	case UnsafeAttributeAccess:
		return "UnsafeAttributeAccess"
	case UnsafeOptionalAttributeAccess:
		return "UnsafeOptionalAttributeAccess"
	case UndefinedFunction:
		return "UndefinedFunction"
	case MultiplyDefinedFunction:
		return "MultiplyDefinedFunction"
	case WrongNumberArguments:
		return "WrongNumberArguments"
	case WrongCallStyle:
		return "WrongCallStyle"
	case FunctionArgumentValidation:
		return "FunctionArgumentValidation"
	case EmptySetForbidden:
		return "EmptySetForbidden"
	case NonLitExtConstructor:
		return "NonLitExtConstructor"
	case HierarchyNotRespected:
		return "HierarchyNotRespected"
	default:
		return "?errorKind"
	}
}

// WarningKind is the closed taxonomy of non-fatal diagnostics.
type WarningKind int

const (
	ImpossiblePolicy WarningKind = iota
)

func (k WarningKind) String() string {
	switch k {
	case ImpossiblePolicy:
		return "ImpossiblePolicy"
	default:
		return "?warningKind"
	}
}

// LUBContext says which syntactic construct triggered a failed
// least-upper-bound computation, for the IncompatibleTypes payload.
type LUBContext int

const (
	LUBContextNone LUBContext = iota
	LUBContextSet
	LUBContextConditional
	LUBContextEquality
	LUBContextContains
	LUBContextContainsAnyAll
)

func (c LUBContext) String() string {
	switch c {
	case LUBContextSet:
		return "Set"
	case LUBContextConditional:
		return "Conditional"
	case LUBContextEquality:
		return "Equality"
	case LUBContextContains:
		return "Contains"
	case LUBContextContainsAnyAll:
		return "ContainsAnyAll"
	default:
		return "None"
	}
}

// Help is a closed set of help-text identifiers, rendered from payload
// fields rather than free-form formatting.
type Help int

const (
	HelpNone Help = iota
	HelpEqualityToIn
	HelpTypeTestNotSupported
	HelpTryUsingLike
)

func (h Help) String() string {
	switch h {
	case HelpEqualityToIn:
		return "consider using `in` instead of `==`"
	case HelpTypeTestNotSupported:
		return "`is` requires an entity-typed operand"
	case HelpTryUsingLike:
		return "`like` requires a String operand"
	default:
		return ""
	}
}

// Diagnostic is one error or warning produced while typechecking a policy
// under a single request environment. It is not comparable with == (AttrPath
// is a slice); diagnostics are deduplicated across environments by Key.
type Diagnostic struct {
	IsWarning bool
	ErrKind   ErrorKind
	WarnKind  WarningKind

	Loc  *ast.SourceLoc
	Expr ast.Expr

	// Payload fields. Which are meaningful depends on ErrKind/WarnKind.
	Expected       Type
	Actual         Type
	Identifier     string   // unrecognized entity type / action id / function name
	Suggestion     string   // fuzzy "did you mean" suggestion, empty if none
	AttrPath       []string // reconstructed attribute access path, outermost first
	AttrPrefix     string   // "context" or "e", the root of AttrPath
	MayExist       bool     // attribute might exist on an open record/AnyEntity
	LUBReason      LUBFailureReason
	LUBCtx         LUBContext
	ArgsExpected   int
	ArgsGot        int
	CallStyleWant  string // "function" or "method"
	HelpText       Help
}

// Key returns a value usable to dedupe diagnostics across request
// environments: by source location and kind, and for errors also by
// Identifier and AttrPrefix.
func (d Diagnostic) Key() string {
	loc := ""
	if d.Loc != nil {
		loc = fmt.Sprintf("%d:%d", d.Loc.Span.Start, d.Loc.Span.End)
	}
	if d.IsWarning {
		return fmt.Sprintf("W:%s@%s", d.WarnKind, loc)
	}
	return fmt.Sprintf("E:%s@%s:%s:%s", d.ErrKind, loc, d.Identifier, d.AttrPrefix)
}

// Message renders a one-line human-readable description of the
// diagnostic from its payload fields.
func (d Diagnostic) Message() string {
	if d.IsWarning {
		switch d.WarnKind {
		case ImpossiblePolicy:
			return "this policy can never apply: its condition is always false"
		}
	}
	switch d.ErrKind {
	case UnrecognizedEntityType:
		return suggestSuffix(fmt.Sprintf("%q is not a declared entity type", d.Identifier), d.Suggestion)
	case UnrecognizedActionId:
		return suggestSuffix(fmt.Sprintf("%q is not a declared action", d.Identifier), d.Suggestion)
	case InvalidActionApplication:
		return "this policy's scope matches no valid (principal, action, resource) combination"
	case UnspecifiedEntity:
		return "request environment leaves this entity type unspecified"
	case UnexpectedType:
		return fmt.Sprintf("expected %s, found %s", typeName(d.Expected), typeName(d.Actual))
	case IncompatibleTypes:
		return fmt.Sprintf("incompatible types %s and %s in %s context", typeName(d.Expected), typeName(d.Actual), d.LUBCtx)
	case UnsafeAttributeAccess:
		return suggestSuffix(fmt.Sprintf("%s.%s is not a declared attribute", d.AttrPrefix, attrTail(d.AttrPath)), d.Suggestion)
	case UnsafeOptionalAttributeAccess:
		return fmt.Sprintf("%s is declared optional; guard the access with `%s`", attrPathString(d.AttrPrefix, d.AttrPath), d.SuggestedHasGuard())
	case UndefinedFunction:
		return fmt.Sprintf("%q is not a defined extension function", d.Identifier)
	case MultiplyDefinedFunction:
		return fmt.Sprintf("%q matches more than one extension function signature", d.Identifier)
	case WrongNumberArguments:
		return fmt.Sprintf("%q expects %d argument(s), got %d", d.Identifier, d.ArgsExpected, d.ArgsGot)
	case WrongCallStyle:
		return fmt.Sprintf("%q must be called as a %s", d.Identifier, d.CallStyleWant)
	case FunctionArgumentValidation:
		return fmt.Sprintf("argument to %q has the wrong type: expected %s, found %s", d.Identifier, typeName(d.Expected), typeName(d.Actual))
	case EmptySetForbidden:
		return "empty set literals are not permitted; their element type cannot be inferred"
	case NonLitExtConstructor:
		return fmt.Sprintf("%q requires a literal argument", d.Identifier)
	case HierarchyNotRespected:
		return "the schema's entity hierarchy never permits this `in` relationship"
	}
	return d.ErrKind.String()
}

// SuggestedHasGuard renders the `<prefix> has <attr>` hint attached to
// attribute-access diagnostics.
func (d Diagnostic) SuggestedHasGuard() string {
	prefix := d.AttrPrefix
	if prefix == "" {
		prefix = "e"
	}
	return fmt.Sprintf("%s has %s", prefix, attrTail(d.AttrPath))
}

func attrTail(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func attrPathString(prefix string, path []string) string {
	s := prefix
	for _, p := range path {
		s += "." + p
	}
	return s
}

func suggestSuffix(msg, suggestion string) string {
	if suggestion == "" {
		return msg
	}
	return fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
}

func typeName(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// reconstructAttrPath walks outward from a failing attribute access,
// collecting attribute names until it reaches the first entity-typed
// sub-expression (the error is attributed to that entity's LUB, not to
// whatever record attribute chain led to it) or the `context` variable.
// typeOf supplies each sub-expression's already-inferred type; it is
// nil only in tests that exercise record-only or single-level chains,
// where no intermediate node is ever entity-typed.
func reconstructAttrPath(typeOf map[ast.Expr]Type, obj ast.Expr, name string) (prefix string, path []string) {
	path = []string{name}
	cur := obj
	for {
		if t, ok := typeOf[cur]; ok && IsEntityLike(t) {
			return "e", path
		}
		attr, ok := cur.(*ast.Attr)
		if !ok {
			break
		}
		path = append([]string{attr.Name}, path...)
		cur = attr.Object
	}
	if v, ok := cur.(*ast.Var); ok && v.Kind == ast.VarContext {
		return "context", path
	}
	return "e", path
}
