// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package parseerrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeLocation(t *testing.T) {
	tokens := []interface{}{17, "x"}
	assert.Equal(t, Location{0, 17}, MakeLocation(tokens, 0))
	assert.Equal(t, Location{1, "x"}, MakeLocation(tokens, 1))
	assert.Equal(t, Location{2, nil}, MakeLocation(tokens, 2))
	assert.Equal(t, Location{-1, nil}, MakeLocation(tokens, -1))

	r := MakeRange(tokens, 0, 1)
	assert.Equal(t, Range{Location{0, 17}, Location{1, "x"}}, r)
}

func TestMessages(t *testing.T) {
	assert.EqualError(t, NoInput{}, "no tokens in parser input")
	assert.EqualError(t, Unexpected{Location{1, 17}}, "unexpected token: 17")
	assert.EqualError(t, Unexpected{Location{2, nil}}, "unexpected end of input")

	a := Ambiguous{
		Range: MakeRange([]interface{}{1, 2}, 0, 1),
		Rule1: Rule{"Pair", "Goal", []string{"Open", "Close"}},
		Rule2: Rule{"Wrapped", "Goal", []string{"Inner"}},
	}
	assert.EqualError(t, a, "ambiguous match for Goal\n   Pair: Open Close\nor Wrapped: Inner")

	empty := Rule{"Blank", "Blank", nil}
	assert.Equal(t, "Blank: ", empty.String())
}
