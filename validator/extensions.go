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

import "github.com/cedar-policy/cedar-validate/schema"

// CallStyle distinguishes `f(x)` from `x.f()`.
type CallStyle int

const (
	CallFunction CallStyle = iota
	CallMethod
)

// ExtFuncDef is one resolved overload of an extension constructor or
// method, in the validator's own Type vocabulary (schema.ExtensionFunc
// uses schema.TypeSpec, which ConvertTypeSpec lowers into this).
type ExtFuncDef struct {
	Name          string
	ArgTypes      []Type
	ReturnType    Type
	Style         CallStyle
	IsConstructor bool

	// ReceiverExt is the extension type name a CallMethod overload is
	// defined on, e.g. "ip" for isLoopback. Empty for CallFunction
	// overloads, which have no receiver to check.
	ReceiverExt string
}

// builtinExtFuncs is the catalog of Cedar's standard extension functions.
// Schemas rarely declare their own; this is what most policies resolve
// against. Keyed by name, with room for more than one overload per name
// so MultiplyDefinedFunction has somewhere to come from.
var builtinExtFuncs = map[string][]*ExtFuncDef{
	"ip": {{
		Name: "ip", ArgTypes: []Type{StringType{}}, ReturnType: ExtensionType{Name: "ip"},
		Style: CallFunction, IsConstructor: true,
	}},
	"isIpv4":     {extMethod("isIpv4", "ip", nil, BooleanType{})},
	"isIpv6":     {extMethod("isIpv6", "ip", nil, BooleanType{})},
	"isLoopback": {extMethod("isLoopback", "ip", nil, BooleanType{})},
	"isMulticast": {extMethod("isMulticast", "ip", nil, BooleanType{})},
	"isInRange":  {extMethod("isInRange", "ip", []Type{ExtensionType{Name: "ip"}}, BooleanType{})},

	"decimal": {{
		Name: "decimal", ArgTypes: []Type{StringType{}}, ReturnType: ExtensionType{Name: "decimal"},
		Style: CallFunction, IsConstructor: true,
	}},
	"lessThan":           {extMethod("lessThan", "decimal", []Type{ExtensionType{Name: "decimal"}}, BooleanType{})},
	"lessThanOrEqual":    {extMethod("lessThanOrEqual", "decimal", []Type{ExtensionType{Name: "decimal"}}, BooleanType{})},
	"greaterThan":        {extMethod("greaterThan", "decimal", []Type{ExtensionType{Name: "decimal"}}, BooleanType{})},
	"greaterThanOrEqual": {extMethod("greaterThanOrEqual", "decimal", []Type{ExtensionType{Name: "decimal"}}, BooleanType{})},

	"datetime": {{
		Name: "datetime", ArgTypes: []Type{StringType{}}, ReturnType: ExtensionType{Name: "datetime"},
		Style: CallFunction, IsConstructor: true,
	}},
	"offset":        {extMethod("offset", "datetime", []Type{ExtensionType{Name: "duration"}}, ExtensionType{Name: "datetime"})},
	"durationSince": {extMethod("durationSince", "datetime", []Type{ExtensionType{Name: "datetime"}}, ExtensionType{Name: "duration"})},
	"toDate":        {extMethod("toDate", "datetime", nil, ExtensionType{Name: "datetime"})},
	"toTime":        {extMethod("toTime", "datetime", nil, ExtensionType{Name: "duration"})},

	"duration": {{
		Name: "duration", ArgTypes: []Type{StringType{}}, ReturnType: ExtensionType{Name: "duration"},
		Style: CallFunction, IsConstructor: true,
	}},
	"toMilliseconds": {extMethod("toMilliseconds", "duration", nil, LongType{})},
	"toSeconds":      {extMethod("toSeconds", "duration", nil, LongType{})},
	"toMinutes":      {extMethod("toMinutes", "duration", nil, LongType{})},
	"toHours":        {extMethod("toHours", "duration", nil, LongType{})},
	"toDays":         {extMethod("toDays", "duration", nil, LongType{})},
}

func extMethod(name, receiverExt string, args []Type, ret Type) *ExtFuncDef {
	return &ExtFuncDef{Name: name, ArgTypes: args, ReturnType: ret, Style: CallMethod, ReceiverExt: receiverExt}
}

// resolveExtFunc returns every overload of name known to the validator:
// the builtin catalog plus anything the schema itself declares.
func resolveExtFunc(sch *schema.Schema, name string) []*ExtFuncDef {
	var out []*ExtFuncDef
	out = append(out, builtinExtFuncs[name]...)
	for _, f := range sch.Extensions[name] {
		out = append(out, &ExtFuncDef{
			Name:          f.Name,
			ArgTypes:      convertTypeSpecs(f.ArgTypes),
			ReturnType:    ConvertTypeSpec(f.ReturnType),
			Style:         CallStyle(f.Style),
			IsConstructor: f.IsConstructor,
		})
	}
	return out
}

func convertTypeSpecs(ts []schema.TypeSpec) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = ConvertTypeSpec(t)
	}
	return out
}
