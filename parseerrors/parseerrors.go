// Copyright 2022-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

// Package parseerrors contains the errors returned by parsers generated
// with ruledispatch.
package parseerrors

import (
	"fmt"
	"strings"
)

// A Location identifies one token in the parser input.
//
// Token is nil when Index is outside the input, for example at the
// end of input.
type Location struct {
	Index int
	Token interface{}
}

// MakeLocation returns the Location of tokens[index].
func MakeLocation(tokens []interface{}, index int) Location {
	if index < 0 || index >= len(tokens) {
		return Location{index, nil}
	}
	return Location{index, tokens[index]}
}

// A Range is a sequence of tokens, from First to Last inclusive.
type Range struct {
	First, Last Location
}

// MakeRange returns the Range covering tokens[first] to tokens[last].
func MakeRange(tokens []interface{}, first, last int) Range {
	return Range{MakeLocation(tokens, first), MakeLocation(tokens, last)}
}

// A Rule describes a grammar rule in an error message.
type Rule struct {
	Name   string
	Target string
	Items  []string
}

func (r Rule) String() string {
	return r.Name + ": " + strings.Join(r.Items, " ")
}

// NoInput is returned when the parser is given no tokens.
type NoInput struct{}

func (NoInput) Error() string {
	return "no tokens in parser input"
}

// Unexpected is returned when the input cannot be matched
// beyond the given location.
type Unexpected struct {
	Location Location
}

func (u Unexpected) Error() string {
	if u.Location.Token == nil {
		return "unexpected end of input"
	}
	return fmt.Sprintf("unexpected token: %v", u.Location.Token)
}

// Ambiguous is returned when a range of tokens can be matched by two
// different rules for the same symbol.
type Ambiguous struct {
	Range        Range
	Rule1, Rule2 Rule
}

func (a Ambiguous) Error() string {
	return fmt.Sprintf("ambiguous match for %s\n   %s\nor %s", a.Rule1.Target, a.Rule1, a.Rule2)
}
