// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package ruledispatch

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
)

// DirectivePrefix begins the comment that requests a generated parser:
//
//	//ruledispatch:parser grammar="calc.grammar" interface="Evaluator"
//	type CalcParser struct{}
const DirectivePrefix = "//ruledispatch:parser"

// Args holds the arguments of a ruledispatch:parser directive.
type Args struct {
	Grammar   string // grammar file name
	Interface string // interface every rule type will implement
}

type argument struct {
	key, value string
}

// ParseDirective parses the arguments following DirectivePrefix.
//
// There must be exactly two arguments, written key="value" and separated
// by spaces or commas. The keys are grammar and interface, in either order.
// Errors are of type *ArgumentError.
func ParseDirective(text string) (Args, error) {
	list, err := scanArguments(text)
	if err != nil {
		return Args{}, err
	}
	if len(list) != 2 {
		return Args{}, &ArgumentError{Msg: fmt.Sprintf("expected 2 arguments, but got %d", len(list))}
	}

	key0, key1 := list[0].key, list[1].key
	if !(key0 == "grammar" && key1 == "interface" || key0 == "interface" && key1 == "grammar") {
		return Args{}, &ArgumentError{Msg: fmt.Sprintf(
			"expected arguments are `grammar` and `interface`, but got `%s` and `%s`", key0, key1)}
	}
	if key0 == "interface" {
		list[0], list[1] = list[1], list[0]
	}
	args := Args{Grammar: list[0].value, Interface: list[1].value}

	if args.Grammar == "" || strings.ContainsAny(args.Grammar, "\n\r") {
		return Args{}, &ArgumentError{Msg: fmt.Sprintf("invalid grammar file name %q", args.Grammar)}
	}
	if !token.IsIdentifier(args.Interface) {
		return Args{}, &ArgumentError{Msg: fmt.Sprintf("interface '%s' is not a valid Go identifier", args.Interface)}
	}
	return args, nil
}

// scanArguments splits directive text into key/value pairs, using the Go scanner.
func scanArguments(text string) ([]argument, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(text))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(text), errs.Add, 0)

	next := func() (token.Token, string) {
		for {
			_, tok, lit := s.Scan()
			// Skip semicolons inserted automatically at the end of the text.
			if tok == token.SEMICOLON && lit == "\n" {
				continue
			}
			return tok, lit
		}
	}

	var list []argument
	for {
		tok, lit := next()
		if errs.Len() > 0 {
			return nil, &ArgumentError{Msg: errs[0].Msg}
		}
		switch tok {
		case token.EOF:
			return list, nil
		case token.COMMA:
			continue
		case token.IDENT:
		default:
			// interface is a Go keyword, but a fine argument key.
			if !tok.IsKeyword() {
				return nil, &ArgumentError{Msg: "key of argument must be an identifier"}
			}
		}

		key := lit
		if tok, _ = next(); tok != token.ASSIGN {
			return nil, &ArgumentError{Msg: fmt.Sprintf("expected '=' after argument key `%s`", key)}
		}
		tok, lit = next()
		if errs.Len() > 0 {
			return nil, &ArgumentError{Msg: errs[0].Msg}
		}
		if tok != token.STRING {
			return nil, &ArgumentError{Msg: "value of argument must be a string literal"}
		}
		value, e := strconv.Unquote(lit)
		if e != nil {
			return nil, &ArgumentError{Msg: fmt.Sprintf("invalid string literal %s", lit)}
		}
		list = append(list, argument{key, value})
	}
}
