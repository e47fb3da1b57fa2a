// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package ruledispatch

import (
	"errors"
	"go/scanner"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const enumSource = `package calc

// Rule identifies a rule of the Calc grammar.
type Rule int

const (
	EOI Rule = iota // end of input
	RuleSum
	RuleSingle
	RuleDigit
)
`

func TestExtractRules(t *testing.T) {
	rules, e := ExtractRules(enumSource)
	require.NoError(t, e)
	assert.Equal(t, RuleSet{"EOI", "Sum", "Single", "Digit"}, rules)
}

func TestExtractSentinelOnly(t *testing.T) {
	rules, e := ExtractRules("package p\n\ntype Rule int\n\nconst (\n\tEOI Rule = iota // end of input\n)\n")
	require.NoError(t, e)
	assert.Equal(t, RuleSet{"EOI"}, rules)
}

// Only the first constant block after the marker is read.
func TestExtractStopsAtBlockEnd(t *testing.T) {
	rules, e := ExtractRules(enumSource + "\nconst (\n\tRuleLater Rule = 99\n)\n")
	require.NoError(t, e)
	assert.Equal(t, RuleSet{"EOI", "Sum", "Single", "Digit"}, rules)
}

func TestExtractStructureErrors(t *testing.T) {
	for _, c := range []struct {
		src, detail string
	}{
		{"package p\n\ntype Rule uint8\n\nconst (\n\tEOI Rule = iota\n)\n", `marker "type Rule int\n\nconst (" not found`},
		{"package p\n\ntype Rule int\n\nconst (\n\tEOI Rule = iota\n", "closing parenthesis not found"},
		{"package p\n\ntype Rule int\n\nconst (\n\tEOI Rule = iota\n\tSum\n)\n", "constant Sum does not name a rule"},
		{"package p\n\ntype Rule int\n\nconst (\n\tEOI Rule = iota\n\tRuleA\n\tRuleA\n)\n", "duplicate rule A"},
		{"package p\n\ntype Rule int\n\nconst (\n\tRuleA Rule = iota\n\tEOI\n)\n", "sentinel EOI is not the first constant"},
		{"package p\n\ntype Rule int\n\nconst (\n\tRuleA Rule = iota\n)\n", "sentinel EOI missing"},
		{"package p\n\ntype Rule int\n\nconst (\n)\n", "sentinel EOI missing"},
	} {
		_, e := ExtractRules(c.src)
		var se *StructureError
		if assert.ErrorAs(t, e, &se, c.src) {
			assert.Equal(t, "rule enumeration", se.Boundary)
			assert.Equal(t, c.detail, se.Detail)
		}
	}
}

func TestExtractParseError(t *testing.T) {
	_, e := ExtractRules("package p\n\ntype Rule int\n\nconst (\n\tEOI Rule = iota +\n)\n")
	var pe *ParseError
	require.ErrorAs(t, e, &pe)
	assert.Equal(t, "rule enumeration", pe.Stage)

	var list scanner.ErrorList
	assert.True(t, errors.As(e, &list))
}
