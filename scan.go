// Copyright 2021-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

// Package ruledispatch generates grammar parsers whose rules dispatch to
// user code through a single interface.
//
// A struct type declaration carrying the directive
//
//	//ruledispatch:parser grammar="calc.grammar" interface="Evaluator"
//	type CalcParser struct{}
//
// is turned into a generated file declaring one empty struct type per
// grammar rule, plus the sentinel EOI, and a Rule interface embedding
// Evaluator. Every match in a parse tree records its rule as a Rule value,
// so calling an Evaluator method on it runs the implementation belonging
// to that rule's type.
package ruledispatch

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// An Invocation is a ruledispatch:parser directive found in Go source.
type Invocation struct {
	Args     Args
	Package  string         // package containing the decorated type
	TypeName string         // name of the decorated type
	Dir      string         // directory of the file containing the directive
	Pos      token.Position // location of the directive
}

// Declaration returns the declaration a Compiler needs for inv.
func (inv Invocation) Declaration() Declaration {
	return Declaration{
		Package: inv.Package,
		Name:    inv.TypeName,
		Grammar: inv.Args.Grammar,
		Dir:     inv.Dir,
	}
}

// ScanFiles searches one or more files for ruledispatch:parser directives.
//
// All the files must belong to the same package; the name of that package
// is the first returned value. A package may hold at most one directive.
func ScanFiles(filenames ...string) (pkg string, invs []Invocation, warnings []error, err error) {
	if len(filenames) == 0 {
		panic("ScanFiles: no files listed")
	}

	var s dirScanner
	s.init()

	for _, fname := range filenames {
		file, e := parser.ParseFile(s.fset, fname, nil, parser.ParseComments)
		if e != nil {
			return "", nil, nil, e
		}
		if pkg == "" {
			pkg = file.Name.Name
		} else if pkg != file.Name.Name {
			return "", nil, nil, fmt.Errorf("different package names found: %s and %s", pkg, file.Name.Name)
		}

		if e = s.scanFile(file, filepath.Dir(fname)); e != nil {
			return "", nil, nil, e
		}
	}

	return pkg, s.invs, s.warnings, nil
}

// ScanDir searches for ruledispatch:parser directives in the .go files in a directory.
//
// Files named *_test.go are ignored.
func ScanDir(dirname string) (pkg string, invs []Invocation, warnings []error, err error) {
	entries, e := os.ReadDir(dirname)
	if e != nil {
		return "", nil, nil, e
	}

	var filenames []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
			filenames = append(filenames, filepath.Join(dirname, name))
		}
	}
	if len(filenames) == 0 {
		return "", nil, nil, fmt.Errorf("no Go files found in directory %s", dirname)
	}
	return ScanFiles(filenames...)
}

// A dirScanner contains the machinery with which to scan Go files for directives
type dirScanner struct {
	fset     *token.FileSet
	invs     []Invocation
	warnings []error
}

// init initializes a dirScanner
func (s *dirScanner) init() {
	s.fset = token.NewFileSet()
	s.invs = nil
	s.warnings = nil
}

// scanFile scans a file for directives.
func (s *dirScanner) scanFile(f *ast.File, dir string) error {
	attached := make(map[*ast.Comment]bool)

	for _, d := range f.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if !gd.Lparen.IsValid() {
				doc = gd.Doc
			}
			if doc == nil {
				continue
			}
			for _, c := range doc.List {
				if !isDirective(c.Text) {
					continue
				}
				attached[c] = true
				if e := s.addInvocation(f, ts, c, dir); e != nil {
					return e
				}
			}
		}
	}

	for _, group := range f.Comments {
		for _, c := range group.List {
			if isDirective(c.Text) && !attached[c] {
				s.warnings = append(s.warnings,
					fmt.Errorf("%s: warning: ignoring %s: not attached to a type declaration",
						s.fset.Position(c.Pos()), DirectivePrefix[2:]))
			}
		}
	}
	return nil
}

// addInvocation records the directive c attached to the type ts.
func (s *dirScanner) addInvocation(f *ast.File, ts *ast.TypeSpec, c *ast.Comment, dir string) error {
	where := s.fset.Position(c.Pos())

	args, e := ParseDirective(c.Text[len(DirectivePrefix):])
	if e != nil {
		var ae *ArgumentError
		if errors.As(e, &ae) {
			ae.Pos = where
		}
		return e
	}

	if _, isStruct := ts.Type.(*ast.StructType); !isStruct || ts.Assign.IsValid() || ts.TypeParams != nil {
		return &ArgumentError{Pos: where,
			Msg: fmt.Sprintf("%s is not a non-generic struct type", ts.Name.Name)}
	}

	if len(s.invs) > 0 {
		return fmt.Errorf("%s: %s previously used at %s", where, DirectivePrefix[2:], s.invs[0].Pos)
	}

	s.invs = append(s.invs, Invocation{
		Args:     args,
		Package:  f.Name.Name,
		TypeName: ts.Name.Name,
		Dir:      dir,
		Pos:      where,
	})
	return nil
}

// isDirective reports whether a comment is a ruledispatch:parser directive.
func isDirective(text string) bool {
	if !strings.HasPrefix(text, DirectivePrefix) {
		return false
	}
	rest := text[len(DirectivePrefix):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}
