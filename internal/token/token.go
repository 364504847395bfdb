// Package token defines the fixed enumeration of symbolic traversal tokens
// that can appear as step arguments in feature scenarios.
//
// A Token is an atomic member of the domain (T.label, Order.desc, ...).
// Tokens compare by identity: two tokens are equal iff they are the same
// member.
package token

import (
	"fmt"
	"strings"
)

// Token is a member of the traversal token enumeration.
// The zero value is Invalid and is not a member of the domain.
type Token uint8

const (
	Invalid Token = iota

	TID
	TLabel
	TKey
	TValue

	OrderAsc
	OrderDesc
	OrderShuffle

	ColumnKeys
	ColumnValues

	PopFirst
	PopLast
	PopAll
	PopMixed

	ScopeLocal
	ScopeGlobal

	DirectionOut
	DirectionIn
	DirectionBoth

	numTokens
)

// Family names.
const (
	FamilyT         = "T"
	FamilyOrder     = "Order"
	FamilyColumn    = "Column"
	FamilyPop       = "Pop"
	FamilyScope     = "Scope"
	FamilyDirection = "Direction"
)

type member struct {
	family string
	name   string
}

var members = [numTokens]member{
	TID:    {FamilyT, "id"},
	TLabel: {FamilyT, "label"},
	TKey:   {FamilyT, "key"},
	TValue: {FamilyT, "value"},

	OrderAsc:     {FamilyOrder, "asc"},
	OrderDesc:    {FamilyOrder, "desc"},
	OrderShuffle: {FamilyOrder, "shuffle"},

	ColumnKeys:   {FamilyColumn, "keys"},
	ColumnValues: {FamilyColumn, "values"},

	PopFirst: {FamilyPop, "first"},
	PopLast:  {FamilyPop, "last"},
	PopAll:   {FamilyPop, "all"},
	PopMixed: {FamilyPop, "mixed"},

	ScopeLocal:  {FamilyScope, "local"},
	ScopeGlobal: {FamilyScope, "global"},

	DirectionOut:  {FamilyDirection, "OUT"},
	DirectionIn:   {FamilyDirection, "IN"},
	DirectionBoth: {FamilyDirection, "BOTH"},
}

// byQualified maps "Family.name" to its token.
var byQualified = func() map[string]Token {
	m := make(map[string]Token, numTokens)
	for t := TID; t < numTokens; t++ {
		m[t.String()] = t
	}
	return m
}()

// graphSONFamilies maps GraphSON v3 type tags to token families.
var graphSONFamilies = map[string]string{
	"g:T":         FamilyT,
	"g:Order":     FamilyOrder,
	"g:Column":    FamilyColumn,
	"g:Pop":       FamilyPop,
	"g:Scope":     FamilyScope,
	"g:Direction": FamilyDirection,
}

// All returns every member of the domain in declaration order.
func All() []Token {
	out := make([]Token, 0, numTokens-1)
	for t := TID; t < numTokens; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is a member of the domain.
func (t Token) Valid() bool {
	return t > Invalid && t < numTokens
}

// Family returns the token's family, e.g. "T" for T.label.
func (t Token) Family() string {
	if !t.Valid() {
		return ""
	}
	return members[t].family
}

// Name returns the member name within its family, e.g. "label" for T.label.
func (t Token) Name() string {
	if !t.Valid() {
		return ""
	}
	return members[t].name
}

// String returns the qualified form "Family.name".
func (t Token) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Token(%d)", uint8(t))
	}
	return members[t].family + "." + members[t].name
}

// Lookup resolves a qualified name such as "T.label".
func Lookup(qualified string) (Token, bool) {
	t, ok := byQualified[qualified]
	return t, ok
}

// IsFamily reports whether name is one of the known family names.
func IsFamily(name string) bool {
	switch name {
	case FamilyT, FamilyOrder, FamilyColumn, FamilyPop, FamilyScope, FamilyDirection:
		return true
	}
	return false
}

// FromGraphSON resolves a GraphSON v3 enum value such as
// {"@type":"g:T","@value":"label"}.
func FromGraphSON(typeTag, value string) (Token, error) {
	family, ok := graphSONFamilies[typeTag]
	if !ok {
		return Invalid, fmt.Errorf("not a token type: %q", typeTag)
	}
	t, ok := Lookup(family + "." + value)
	if !ok {
		return Invalid, fmt.Errorf("unknown %s member %q", family, value)
	}
	return t, nil
}

// IsGraphSONType reports whether typeTag is a GraphSON enum type that maps
// onto the token domain.
func IsGraphSONType(typeTag string) bool {
	_, ok := graphSONFamilies[typeTag]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (t Token) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid token %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Token) UnmarshalText(text []byte) error {
	v, ok := Lookup(strings.TrimSpace(string(text)))
	if !ok {
		return fmt.Errorf("unknown token %q", string(text))
	}
	*t = v
	return nil
}
