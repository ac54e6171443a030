package ir

import (
	"errors"
	"strings"
	"sync"

	"github.com/codewithboateng/storytest/internal/il"
)

type TypeKind string

const (
	TypeClass     TypeKind = "class"
	TypeStruct    TypeKind = "struct"
	TypeInterface TypeKind = "interface"
	TypeEnum      TypeKind = "enum"
)

type MemberKind string

const (
	MemberMethod      MemberKind = "method"
	MemberConstructor MemberKind = "constructor"
	MemberProperty    MemberKind = "property"
	MemberField       MemberKind = "field"
	MemberEvent       MemberKind = "event"
)

type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Internal  Visibility = "internal"
	Private   Visibility = "private"
)

// Unit is one loaded program unit. It is read-only once NewUnit returns.
type Unit struct {
	Name       string
	Path       string
	References []string
	Types      []*Type

	// MemberRefs maps MemberRef tokens to "Namespace.Type::Member".
	MemberRefs map[uint32]string
	Decoder    il.Decoder

	// LoadErr is set when the unit could not be read; such a unit has no types.
	LoadErr error

	defs map[uint32]*Member
}

type UnitOption func(*Unit)

func WithReferences(names ...string) UnitOption {
	return func(u *Unit) { u.References = append(u.References, names...) }
}

func WithMemberRefs(refs map[uint32]string) UnitOption {
	return func(u *Unit) { u.MemberRefs = refs }
}

func WithNotImplementedCtors(tokens ...uint32) UnitOption {
	return func(u *Unit) { u.Decoder.NotImplementedCtors = append(u.Decoder.NotImplementedCtors, tokens...) }
}

// NewUnit wires owner back-pointers, marks property accessors and binds
// every body to the unit's decoder.
func NewUnit(name, path string, types []*Type, opts ...UnitOption) *Unit {
	u := &Unit{Name: name, Path: path, Types: types, defs: map[uint32]*Member{}}
	for _, o := range opts {
		o(u)
	}
	for _, t := range types {
		t.unit = u
		for _, m := range t.Members {
			m.owner = t
			if m.Token != 0 {
				u.defs[m.Token] = m
			}
			if m.Body != nil {
				m.Body.dec = u.Decoder
			}
		}
		for _, m := range t.Members {
			if m.Getter != nil {
				m.Getter.accessor = true
			}
			if m.Setter != nil {
				m.Setter.accessor = true
			}
		}
	}
	return u
}

// FailedUnit records a unit that could not be loaded.
func FailedUnit(name, path string, err error) *Unit {
	if err == nil {
		err = errors.New("unit could not be loaded")
	}
	return &Unit{Name: name, Path: path, LoadErr: err}
}

// Definition returns the member of this unit declared with token.
func (u *Unit) Definition(token uint32) (*Member, bool) {
	m, ok := u.defs[token]
	return m, ok
}

// Resolve maps a body operand token to a qualified member name. Definition
// tokens resolve through the unit's own members, reference tokens through
// MemberRefs.
func (u *Unit) Resolve(token uint32) (string, bool) {
	if m, ok := u.defs[token]; ok {
		return m.QualifiedName(), true
	}
	name, ok := u.MemberRefs[token]
	return name, ok
}

type Type struct {
	Namespace  string
	Name       string
	Kind       TypeKind
	Abstract   bool
	Sealed     bool
	Visibility Visibility
	// BaseType is the qualified name of the base class, if any.
	BaseType string
	Markers  []string
	Members  []*Member

	Exemption    *Exemption
	ExemptionErr error

	unit *Unit
}

func (t *Type) Unit() *Unit { return t.unit }

func (t *Type) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

func (t *Type) HasMarker(name string) bool { return HasMarker(t.Markers, name) }

type Member struct {
	Name       string
	Kind       MemberKind
	Visibility Visibility
	// Special covers constructors, accessors and event plumbing.
	Special    bool
	Abstract   bool
	Virtual    bool
	Override   bool
	Static     bool
	ReturnType string
	Token      uint32
	Markers    []string

	// property data
	AutoImplemented bool
	Getter          *Member
	Setter          *Member

	// enum values
	Literal bool

	Exemption    *Exemption
	ExemptionErr error

	Body *Body

	owner    *Type
	accessor bool
}

func (m *Member) Owner() *Type { return m.owner }

// IsAccessor reports whether m is some property's getter or setter.
func (m *Member) IsAccessor() bool { return m.accessor }

func (m *Member) IsMethod() bool {
	return m.Kind == MemberMethod || m.Kind == MemberConstructor
}

func (m *Member) HasMarker(name string) bool { return HasMarker(m.Markers, name) }

// QualifiedName is Namespace.Type::Member.
func (m *Member) QualifiedName() string {
	if m.owner == nil {
		return "::" + m.Name
	}
	return m.owner.FullName() + "::" + m.Name
}

// Facts returns the decoded body facts; ok is false when there is no body.
func (m *Member) Facts() (il.Facts, bool) {
	if m.Body == nil {
		return il.Facts{}, false
	}
	return m.Body.Facts(), true
}

// Body is an immutable method body. Facts are decoded once on first use.
type Body struct {
	code  []byte
	dec   il.Decoder
	once  sync.Once
	facts il.Facts
}

func NewBody(code []byte) *Body {
	return &Body{code: append([]byte(nil), code...)}
}

func (b *Body) Len() int { return len(b.code) }

// Bytes returns a copy of the body.
func (b *Body) Bytes() []byte { return append([]byte(nil), b.code...) }

func (b *Body) Facts() il.Facts {
	b.once.Do(func() { b.facts = b.dec.Decode(b.code) })
	return b.facts
}

// HasMarker matches attribute names with or without the Attribute suffix,
// ignoring case and namespace.
func HasMarker(markers []string, name string) bool {
	want := MarkerName(name)
	for _, m := range markers {
		if MarkerName(m) == want {
			return true
		}
	}
	return false
}

// MarkerName normalizes an attribute name: last dotted segment, lower case,
// without the Attribute suffix.
func MarkerName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ToLower(s)
	return strings.TrimSuffix(s, "attribute")
}
