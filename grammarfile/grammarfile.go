// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

// Package grammarfile reads grammar files and compiles them with the
// earley grammar compiler.
//
// A grammar file holds one rule per line:
//
//	# comment
//	Sum:    Expr = Expr Plus Term
//	Single: Expr = Term
//	Digit:  Term = int
//
// Each rule has a name, a target symbol, and zero or more item symbols.
// A semicolon may end a rule, allowing several on one line. Symbols that
// are not the target of any rule are terminals; they must name the Go
// types of the parser's input tokens.
package grammarfile

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/pat42smith/ruledispatch"
	"github.com/pat42smith/ruledispatch/earley"
)

// A File is the content of a grammar file.
type File struct {
	Entries []*Entry `parser:"( @@ | EOL )*"`
}

// An Entry is one rule in a grammar file.
type Entry struct {
	Pos lexer.Position

	Name   string   `parser:"@Ident \":\""`
	Target string   `parser:"@Ident \"=\""`
	Items  []string `parser:"@Ident* ( \";\" | EOL )?"`
}

var grammarLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{Nd}_]*`},
	{Name: "Punct", Pattern: `[:=;]`},
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

var fileParser = participle.MustBuild[File](
	participle.Lexer(grammarLexer),
	participle.Elide("Comment", "Whitespace"),
)

// Parse parses the text of a grammar file. The filename is used only
// in error positions.
func Parse(filename string, text []byte) (*File, error) {
	f, e := fileParser.ParseBytes(filename, text)
	if e != nil {
		var le *lexer.Error
		if errors.As(e, &le) {
			return nil, newSyntaxError(le.Pos, le.Msg, text)
		}
		var pe participle.Error
		if errors.As(e, &pe) {
			return nil, newSyntaxError(pe.Position(), pe.Message(), text)
		}
		return nil, e
	}
	return f, nil
}

// AddRules adds the rules of a grammar file to g, in file order.
// The text of the file is used for error context.
func AddRules(g ruledispatch.RuleAdder, f *File, text []byte) error {
	for _, entry := range f.Entries {
		if e := g.AddRule(entry.Name, entry.Target, entry.Items); e != nil {
			return newSyntaxError(entry.Pos, e.Error(), text)
		}
	}
	return nil
}

// Compiler implements ruledispatch.Compiler by reading grammar files.
type Compiler struct {
	// ReadFile reads a grammar file; os.ReadFile if nil.
	ReadFile func(name string) ([]byte, error)
}

// Compile reads the grammar named by decl, relative to decl.Dir, and
// writes the rule enumeration or the complete parser for it.
//
// The parser's file-level helper names begin with an underscore and
// the name of the decorated type.
func (c Compiler) Compile(enumOnly bool, decl ruledispatch.Declaration) (string, error) {
	path := decl.Grammar
	if !filepath.IsAbs(path) {
		path = filepath.Join(decl.Dir, path)
	}
	read := c.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	text, e := read(path)
	if e != nil {
		return "", e
	}

	f, e := Parse(path, text)
	if e != nil {
		return "", e
	}
	var g earley.Grammar
	if e := AddRules(&g, f, text); e != nil {
		return "", e
	}

	if enumOnly {
		return g.WriteRules(decl.Name, decl.Package)
	}
	return g.WriteParser(decl.Name, decl.Package, "_"+decl.Name)
}
