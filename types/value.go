package types

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
)

// A Value is a Cedar runtime value: a primitive, an entity reference, or
// an extension value. This package has no set or record values. The
// validator never evaluates values; it uses this model to infer the types
// of literals.
type Value interface {
	// Equal reports whether the receiver and v denote the same Cedar value.
	Equal(v Value) bool
	// MarshalCedar renders the value using Cedar's textual syntax.
	MarshalCedar() []byte
	String() string
	hash() uint64
}

// Boolean is a Cedar boolean value.
type Boolean bool

func (b Boolean) Equal(v Value) bool {
	o, ok := v.(Boolean)
	return ok && b == o
}

func (b Boolean) MarshalCedar() []byte { return []byte(b.String()) }

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Boolean) hash() uint64 {
	if b {
		return 1
	}
	return 0
}

// Long is a Cedar 64-bit signed integer value.
type Long int64

func (l Long) Equal(v Value) bool {
	o, ok := v.(Long)
	return ok && l == o
}

func (l Long) MarshalCedar() []byte { return []byte(l.String()) }
func (l Long) String() string       { return strconv.FormatInt(int64(l), 10) }
func (l Long) hash() uint64         { return uint64(l) }

// String is a Cedar string value.
type String string

func (s String) Equal(v Value) bool {
	o, ok := v.(String)
	return ok && s == o
}

func (s String) MarshalCedar() []byte { return []byte(strconv.Quote(string(s))) }
func (s String) String() string       { return string(s) }

func (s String) hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// EntityType is the name of an entity type declared in a schema, e.g.
// "User" or "Namespace::Action".
type EntityType string

// EntityUID uniquely identifies an entity: its declared type plus an
// instance identifier.
type EntityUID struct {
	Type EntityType
	ID   String
}

// NewEntityUID constructs an EntityUID from a type name and identifier.
func NewEntityUID(t EntityType, id String) EntityUID {
	return EntityUID{Type: t, ID: id}
}

func (e EntityUID) Equal(v Value) bool {
	o, ok := v.(EntityUID)
	return ok && e == o
}

func (e EntityUID) MarshalCedar() []byte { return []byte(e.String()) }

func (e EntityUID) String() string {
	return fmt.Sprintf("%s::%s", e.Type, strconv.Quote(string(e.ID)))
}

func (e EntityUID) hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(e.String()))
	return h.Sum64()
}

type entityUIDJSON struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (e EntityUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(entityUIDJSON{Type: string(e.Type), ID: string(e.ID)})
}

func (e *EntityUID) UnmarshalJSON(b []byte) error {
	var res entityUIDJSON
	if err := json.Unmarshal(b, &res); err != nil {
		return err
	}
	if res.Type == "" || res.ID == "" {
		return fmt.Errorf("%w: entity UID", errJSONDecode)
	}
	e.Type = EntityType(res.Type)
	e.ID = String(res.ID)
	return nil
}
