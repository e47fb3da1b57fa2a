// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package ruledispatch

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// enumMarker precedes the constant block listing the rules.
const enumMarker = "type " + enumType + " int\n\nconst ("

// ExtractRules finds the rule enumeration in compiler output and returns
// the rules it declares, in declaration order.
//
// The enumeration is located textually, from enumMarker to the first
// closing parenthesis after it, and then parsed as Go.
func ExtractRules(src string) (RuleSet, error) {
	start := strings.Index(src, enumMarker)
	if start < 0 {
		return nil, &StructureError{"rule enumeration", fmt.Sprintf("marker %q not found", enumMarker)}
	}
	length := strings.IndexByte(src[start:], ')')
	if length < 0 {
		return nil, &StructureError{"rule enumeration", "closing parenthesis not found"}
	}
	text := "package rules\n\n" + src[start:start+length+1]

	fset := token.NewFileSet()
	f, e := parser.ParseFile(fset, "enumeration", text, 0)
	if e != nil {
		return nil, &ParseError{"rule enumeration", e}
	}

	var names []string
	for _, d := range f.Decls {
		if gd, ok := d.(*ast.GenDecl); ok && gd.Tok == token.CONST {
			for _, spec := range gd.Specs {
				for _, id := range spec.(*ast.ValueSpec).Names {
					names = append(names, id.Name)
				}
			}
		}
	}
	return ruleSetFromConstants(names)
}

// ruleSetFromConstants converts the constant names of an enumeration into
// rule identifiers, checking the sentinel and uniqueness.
func ruleSetFromConstants(names []string) (RuleSet, error) {
	rules := make(RuleSet, 0, len(names))
	seen := make(map[string]bool, len(names))
	for n, name := range names {
		id, ok := ruleIdentifier(name)
		if !ok {
			return nil, &StructureError{"rule enumeration", fmt.Sprintf("constant %s does not name a rule", name)}
		}
		if seen[id] {
			return nil, &StructureError{"rule enumeration", fmt.Sprintf("duplicate rule %s", id)}
		}
		if id == Sentinel && n != 0 {
			return nil, &StructureError{"rule enumeration", fmt.Sprintf("sentinel %s is not the first constant", Sentinel)}
		}
		seen[id] = true
		rules = append(rules, id)
	}
	if !seen[Sentinel] {
		return nil, &StructureError{"rule enumeration", fmt.Sprintf("sentinel %s missing", Sentinel)}
	}
	return rules, nil
}
