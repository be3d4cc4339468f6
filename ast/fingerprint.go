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

import (
	"fmt"
	"strings"
)

// Fingerprint returns a string that is equal for two expressions iff they
// are syntactically identical (same shape, same literals, same names),
// independent of whether they are the same allocation. The validator's
// capability set is keyed on this, so that identical sub-expressions
// share capabilities.
//
// The result is not meant to be compact or hashed further; it is already
// a small string for the expression sizes a single policy contains.
func Fingerprint(e Expr) string {
	var b strings.Builder
	writeFingerprint(&b, e)
	return b.String()
}

func writeFingerprint(b *strings.Builder, e Expr) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	switch n := e.(type) {
	case *Var:
		fmt.Fprintf(b, "var(%s)", n.Kind)
	case *Slot:
		fmt.Fprintf(b, "slot(%s)", n.Kind)
	case *Literal:
		fmt.Fprintf(b, "lit(%s)", n.Value.MarshalCedar())
	case *RecordLit:
		b.WriteString("record(")
		for i, a := range n.Attrs {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%q:", a.Name)
			writeFingerprint(b, a.Value)
		}
		b.WriteByte(')')
	case *SetLit:
		b.WriteString("set(")
		for i, el := range n.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			writeFingerprint(b, el)
		}
		b.WriteByte(')')
	case *Attr:
		writeFingerprint(b, n.Object)
		fmt.Fprintf(b, ".%q", n.Name)
	case *Has:
		b.WriteString("has(")
		writeFingerprint(b, n.Object)
		fmt.Fprintf(b, ",%q)", n.Name)
	case *Is:
		b.WriteString("is(")
		writeFingerprint(b, n.Object)
		fmt.Fprintf(b, ",%s)", n.Type)
	case *IsIn:
		b.WriteString("isin(")
		writeFingerprint(b, n.Object)
		fmt.Fprintf(b, ",%s,", n.Type)
		writeFingerprint(b, n.In)
		b.WriteByte(')')
	case *In:
		b.WriteString("in(")
		writeFingerprint(b, n.Left)
		b.WriteByte(',')
		writeFingerprint(b, n.Right)
		b.WriteByte(')')
	case *Eq:
		op := "eq"
		if n.Negate {
			op = "neq"
		}
		fmt.Fprintf(b, "%s(", op)
		writeFingerprint(b, n.Left)
		b.WriteByte(',')
		writeFingerprint(b, n.Right)
		b.WriteByte(')')
	case *Arith:
		fmt.Fprintf(b, "arith%s(", n.Op)
		writeFingerprint(b, n.Left)
		b.WriteByte(',')
		writeFingerprint(b, n.Right)
		b.WriteByte(')')
	case *Neg:
		b.WriteString("neg(")
		writeFingerprint(b, n.Operand)
		b.WriteByte(')')
	case *Cmp:
		fmt.Fprintf(b, "cmp%s(", n.Op)
		writeFingerprint(b, n.Left)
		b.WriteByte(',')
		writeFingerprint(b, n.Right)
		b.WriteByte(')')
	case *And:
		b.WriteString("and(")
		writeFingerprint(b, n.Left)
		b.WriteByte(',')
		writeFingerprint(b, n.Right)
		b.WriteByte(')')
	case *Or:
		b.WriteString("or(")
		writeFingerprint(b, n.Left)
		b.WriteByte(',')
		writeFingerprint(b, n.Right)
		b.WriteByte(')')
	case *Not:
		b.WriteString("not(")
		writeFingerprint(b, n.Operand)
		b.WriteByte(')')
	case *If:
		b.WriteString("if(")
		writeFingerprint(b, n.Cond)
		b.WriteByte(',')
		writeFingerprint(b, n.Then)
		b.WriteByte(',')
		writeFingerprint(b, n.Else)
		b.WriteByte(')')
	case *Like:
		b.WriteString("like(")
		writeFingerprint(b, n.Operand)
		fmt.Fprintf(b, ",%q)", n.Pattern)
	case *SetOp:
		fmt.Fprintf(b, "setop%d(", n.Op)
		writeFingerprint(b, n.Left)
		b.WriteByte(',')
		writeFingerprint(b, n.Right)
		b.WriteByte(')')
	case *ExtCall:
		b.WriteString("ext(")
		if n.Receiver != nil {
			writeFingerprint(b, n.Receiver)
			b.WriteByte('.')
		}
		fmt.Fprintf(b, "%s;", n.Name)
		for i, a := range n.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			writeFingerprint(b, a)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "?(%T)", e)
	}
}
