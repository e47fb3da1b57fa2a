// Copyright 2021-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package ruledispatch

// A RuleAdder can have grammar rules added to it.
//
// Grammar symbols are represented by arbitrary strings. Each rule
// has a name, which should be unique.
//
// Rule names become type names in the generated code, so they
// should be valid Go identifiers.
type RuleAdder interface {
	// AddRule adds one rule to the grammar.
	//
	// Callers should ensure the same name is never used in two calls
	// to AddRule.
	AddRule(name, target string, items []string) error
}

// A Declaration describes the decorated type a grammar is compiled for.
type Declaration struct {
	Package string // package clause of the generated code
	Name    string // name of the decorated struct type
	Grammar string // grammar file, as written in the directive
	Dir     string // directory of the file containing the directive
}

// A Compiler turns a grammar into Go source.
//
// With enumOnly set, the result contains just the package clause and the
// rule enumeration. Otherwise it is a complete parser, containing the same
// enumeration along with the code that uses it.
//
// Generate depends on the shape of the enumeration in the output: a
// declaration of
//
//	type Rule int
//
// followed by a constant block in which the sentinel EOI comes first,
// with the explicit initializer Rule = iota, and every grammar rule Name
// follows as the constant RuleName, in declaration order.
type Compiler interface {
	Compile(enumOnly bool, decl Declaration) (string, error)
}

// Names shared with the compiler output.
const (
	// Sentinel is the rule identifier reserved for the end of input.
	Sentinel = "EOI"

	enumType    = "Rule"
	rulePrefix  = "Rule"
	listingFunc = "AllRules"
	parseMethod = "Parse"
	nodeType    = "Node"
	indexMethod = "RuleIndex"
)

// A RuleSet lists rule identifiers in grammar declaration order.
// It always contains Sentinel exactly once.
type RuleSet []string

// constName returns the constant naming rule id in compiler output.
func constName(id string) string {
	if id == Sentinel {
		return Sentinel
	}
	return rulePrefix + id
}

// ruleIdentifier is the inverse of constName.
func ruleIdentifier(name string) (string, bool) {
	if name == Sentinel {
		return Sentinel, true
	}
	if len(name) > len(rulePrefix) && name[:len(rulePrefix)] == rulePrefix {
		return name[len(rulePrefix):], true
	}
	return "", false
}
