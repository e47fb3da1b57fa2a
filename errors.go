// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package ruledispatch

import (
	"fmt"
	"go/token"
)

// An ArgumentError reports a malformed ruledispatch:parser directive.
// It is returned before any grammar is compiled.
type ArgumentError struct {
	Pos token.Position // location of the directive, if known
	Msg string
}

func (e *ArgumentError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

// A StructureError reports compiler output that does not have the shape
// Generate relies on. Boundary names the part of the output that is
// missing or malformed.
//
// These errors usually mean the compiler changed its output format.
type StructureError struct {
	Boundary string
	Detail   string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("unexpected compiler output: %s: %s", e.Boundary, e.Detail)
}

func notFound(boundary string) *StructureError {
	return &StructureError{boundary, "not found"}
}

// A ParseError reports compiler output, or part of it, that is not valid Go.
// Err is usually a go/scanner.ErrorList.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// An AssemblyError reports that the final generated file could not be formatted.
type AssemblyError struct {
	Err error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("generated code is malformed: %v", e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}
