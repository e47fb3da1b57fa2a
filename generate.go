// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package ruledispatch

import (
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"strings"
)

// Generate produces the Go file requested by inv.
//
// The compiler is run twice: once for the enumeration alone, from which
// the rule types are synthesized, and once for the complete parser, which
// is then rewritten to use those types. The result holds, after the
// package clause and imports, the binding of the decorated type to the
// parser, the rule types, and the rewritten parser.
//
// Generate fails without partial output. Errors from the compiler are
// returned with the location of the directive prepended.
func Generate(c Compiler, inv Invocation) ([]byte, error) {
	decl := inv.Declaration()

	enumSrc, e := c.Compile(true, decl)
	if e != nil {
		return nil, inv.wrap(e)
	}
	rules, e := ExtractRules(enumSrc)
	if e != nil {
		return nil, inv.wrap(e)
	}
	types, e := RenderNominalTypes(Synthesize(rules, inv.Args.Grammar))
	if e != nil {
		return nil, e
	}

	fullSrc, e := c.Compile(false, decl)
	if e != nil {
		return nil, inv.wrap(e)
	}
	parserSrc, e := Rewrite(fullSrc, rules, inv.Args.Interface)
	if e != nil {
		return nil, inv.wrap(e)
	}

	return assemble(inv, types, parserSrc)
}

// wrap prepends the location of the directive, if known, to an error.
func (inv Invocation) wrap(e error) error {
	if !inv.Pos.IsValid() {
		return e
	}
	return fmt.Errorf("%s: %w", inv.Pos, e)
}

// assemble joins the generated sections into one formatted file.
func assemble(inv Invocation, types, parserSrc string) ([]byte, error) {
	fset := token.NewFileSet()
	f, e := parser.ParseFile(fset, "generated.go", parserSrc, parser.ImportsOnly)
	if e != nil {
		return nil, &ParseError{"rewritten parser", e}
	}
	preamble := f.Name.End()
	for _, d := range f.Decls {
		preamble = d.End()
	}
	split := fset.Position(preamble).Offset

	data := struct {
		Grammar, TypeName, Enum, Node, Parse string
	}{inv.Args.Grammar, inv.TypeName, enumType, nodeType, parseMethod}

	var out strings.Builder
	if e := tmpl.ExecuteTemplate(&out, "header", data); e != nil {
		return nil, e
	}
	out.WriteString(parserSrc[:split])
	out.WriteString("\n\n")
	if e := tmpl.ExecuteTemplate(&out, "root", data); e != nil {
		return nil, e
	}
	out.WriteString(types)
	out.WriteString(parserSrc[split:])

	src, e := format.Source([]byte(out.String()))
	if e != nil {
		return nil, &AssemblyError{e}
	}
	return src, nil
}
