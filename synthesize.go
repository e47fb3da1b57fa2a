// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package ruledispatch

import (
	_ "embed"
	"strings"
	"text/template"
)

// A NominalTypeDecl is the empty struct type generated for one rule.
//
// Values of the type are comparable, usable as map keys and freely
// copied. Index is the rule's position in declaration order, which the
// generated RuleIndex method reports.
type NominalTypeDecl struct {
	Name    string
	Index   int
	Grammar string
}

// IsSentinel reports whether d is the type of the end-of-input rule.
func (d NominalTypeDecl) IsSentinel() bool {
	return d.Name == Sentinel
}

// Synthesize returns one type declaration per rule, in rule order.
func Synthesize(rules RuleSet, grammar string) []NominalTypeDecl {
	decls := make([]NominalTypeDecl, len(rules))
	for n, id := range rules {
		decls[n] = NominalTypeDecl{Name: id, Index: n, Grammar: grammar}
	}
	return decls
}

//go:embed generate.go.tmpl
var tmplText string

var tmpl = template.Must(template.New("generate.go.tmpl").Parse(tmplText))

// RenderNominalTypes returns the Go source declaring decls.
func RenderNominalTypes(decls []NominalTypeDecl) (string, error) {
	var out strings.Builder
	if e := tmpl.ExecuteTemplate(&out, "nominal", decls); e != nil {
		return "", e
	}
	return out.String(), nil
}
