// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package ruledispatch

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strings"
)

// DispatchDirective is written before the rewritten Rule type,
// followed by the name of the interface it embeds.
const DispatchDirective = "//ruledispatch:dispatch"

// Rewrite converts a complete compiler output so that each rule is
// represented by a value of its own type.
//
// The integer Rule type becomes an interface embedding iface, every
// rule type gains a RuleIndex method in place of the constant block,
// switches over rule constants become type switches, and all other uses
// of rule constants become composite literals of the rule types.
//
// The source is analyzed once with go/parser; the changes are then
// applied as text edits, so comments and layout elsewhere are preserved.
func Rewrite(src string, rules RuleSet, iface string) (string, error) {
	if !token.IsIdentifier(iface) {
		return "", &ArgumentError{Msg: fmt.Sprintf("interface '%s' is not a valid Go identifier", iface)}
	}
	for _, id := range rules {
		if id == iface {
			return "", &ArgumentError{Msg: fmt.Sprintf("rule %s has the same name as the interface", id)}
		}
	}
	en, e := analyze(src, rules)
	if e != nil {
		return "", e
	}
	return applyEdits(src, en.edits(iface)), nil
}

// enumeration is the structure of a compiler output as far as the rule
// enumeration is concerned.
type enumeration struct {
	file      *token.File
	rules     RuleSet
	idOf      map[string]string // rule constant name to rule identifier
	typeDecl  *ast.GenDecl      // declaration containing typeSpec
	typeSpec  *ast.TypeSpec     // type Rule int
	constDecl *ast.GenDecl      // the rule constants
	listing   *ast.FuncDecl     // AllRules
	switches  []*ast.SwitchStmt // switches over rule constants
	refs      []*ast.Ident      // other uses of rule constants
	headers   []ast.Node        // expressions and statements in if, for and switch headers
}

// analyze parses src and locates the parts of it that Rewrite changes.
func analyze(src string, rules RuleSet) (*enumeration, error) {
	fset := token.NewFileSet()
	f, e := parser.ParseFile(fset, "generated.go", src, parser.ParseComments)
	if e != nil {
		return nil, &ParseError{"compiler output", e}
	}

	en := &enumeration{
		file:  fset.File(f.Pos()),
		rules: rules,
		idOf:  make(map[string]string, len(rules)),
	}
	for _, id := range rules {
		en.idOf[constName(id)] = id
	}

	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			switch d.Tok {
			case token.TYPE:
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					if ts.Name.Name != enumType || ts.Assign.IsValid() {
						continue
					}
					if underlying, ok := ts.Type.(*ast.Ident); ok && underlying.Name == "int" {
						en.typeDecl, en.typeSpec = d, ts
					}
				}
			case token.CONST:
				if declares(d, Sentinel) {
					if en.constDecl != nil {
						return nil, &StructureError{"rule constant block", "declared twice"}
					}
					en.constDecl = d
				}
			}
		case *ast.FuncDecl:
			if d.Recv == nil && d.Name.Name == listingFunc {
				en.listing = d
			}
		}
	}

	if en.typeSpec == nil {
		return nil, notFound("rule enumeration type")
	}
	if en.constDecl == nil {
		return nil, notFound("rule constant block")
	}
	if e := en.checkConstants(); e != nil {
		return nil, e
	}
	if en.listing == nil {
		return nil, notFound("rule listing function")
	}

	en.findUses(f)
	if len(en.switches) == 0 {
		return nil, notFound("rule dispatcher")
	}
	return en, nil
}

// declares reports whether a declaration declares the named identifier.
func declares(d *ast.GenDecl, name string) bool {
	for _, spec := range d.Specs {
		if vs, ok := spec.(*ast.ValueSpec); ok {
			for _, id := range vs.Names {
				if id.Name == name {
					return true
				}
			}
		}
	}
	return false
}

// checkConstants verifies that the constant block declares exactly the
// rules, in order, since RuleIndex values are taken from the rule order.
func (en *enumeration) checkConstants() error {
	var names []string
	for _, spec := range en.constDecl.Specs {
		for _, id := range spec.(*ast.ValueSpec).Names {
			names = append(names, id.Name)
		}
	}
	match := len(names) == len(en.rules)
	for n := 0; match && n < len(names); n++ {
		match = names[n] == constName(en.rules[n])
	}
	if !match {
		return &StructureError{"rule constant block",
			fmt.Sprintf("constants [%s] do not match rules [%s]",
				strings.Join(names, " "), strings.Join(en.rules, " "))}
	}
	return nil
}

// findUses records the dispatcher switches and the other references to
// rule constants outside the constant block.
func (en *enumeration) findUses(f *ast.File) {
	// Identifiers that name something other than a value in scope.
	skip := make(map[*ast.Ident]bool)

	ast.Inspect(f, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.GenDecl:
			return n != en.constDecl
		case *ast.SelectorExpr:
			skip[n.Sel] = true
		case *ast.Field:
			for _, id := range n.Names {
				skip[id] = true
			}
		case *ast.FuncDecl:
			skip[n.Name] = true
		case *ast.TypeSpec:
			skip[n.Name] = true
		case *ast.ValueSpec:
			for _, id := range n.Names {
				skip[id] = true
			}
		case *ast.LabeledStmt:
			skip[n.Label] = true
		case *ast.BranchStmt:
			if n.Label != nil {
				skip[n.Label] = true
			}
		case *ast.IfStmt:
			en.addHeaders(n.Init, n.Cond)
		case *ast.ForStmt:
			en.addHeaders(n.Init, n.Cond, n.Post)
		case *ast.RangeStmt:
			en.addHeaders(n.Key, n.Value, n.X)
		case *ast.TypeSwitchStmt:
			en.addHeaders(n.Init, n.Assign)
		case *ast.SwitchStmt:
			en.addHeaders(n.Init, n.Tag)
			if en.isDispatcher(n) {
				en.switches = append(en.switches, n)
				for _, stmt := range n.Body.List {
					for _, x := range stmt.(*ast.CaseClause).List {
						skip[x.(*ast.Ident)] = true
					}
				}
			}
		case *ast.Ident:
			if _, isRule := en.idOf[n.Name]; isRule && !skip[n] {
				en.refs = append(en.refs, n)
			}
		}
		return true
	})
}

// addHeaders records the parts of a statement header that are present.
func (en *enumeration) addHeaders(nodes ...ast.Node) {
	for _, n := range nodes {
		if n != nil {
			en.headers = append(en.headers, n)
		}
	}
}

// inHeader reports whether id is in a statement header, where a composite
// literal must be parenthesized.
func (en *enumeration) inHeader(id *ast.Ident) bool {
	for _, h := range en.headers {
		if h.Pos() <= id.Pos() && id.End() <= h.End() {
			return true
		}
	}
	return false
}

// isDispatcher reports whether s is an expression switch whose cases
// are all rule constants.
func (en *enumeration) isDispatcher(s *ast.SwitchStmt) bool {
	if s.Tag == nil {
		return false
	}
	cases := 0
	for _, stmt := range s.Body.List {
		for _, x := range stmt.(*ast.CaseClause).List {
			id, ok := x.(*ast.Ident)
			if !ok {
				return false
			}
			if _, isRule := en.idOf[id.Name]; !isRule {
				return false
			}
			cases++
		}
	}
	return cases > 0
}

// An edit replaces src[start:end] with text. Insertions have start == end.
type edit struct {
	start, end int
	text       string
}

func (en *enumeration) offset(pos token.Pos) int {
	return en.file.Offset(pos)
}

func (en *enumeration) insert(pos token.Pos, text string) edit {
	off := en.offset(pos)
	return edit{off, off, text}
}

func (en *enumeration) replace(n ast.Node, text string) edit {
	return edit{en.offset(n.Pos()), en.offset(n.End()), text}
}

// edits lists the changes that turn the rule constants into rule types.
func (en *enumeration) edits(iface string) []edit {
	var list []edit

	// Bind the enumeration to the interface. gofmt separates a directive
	// from the doc comment above it with an empty comment line.
	directive := DispatchDirective + " " + iface + "\n"
	if en.typeDecl.Doc != nil {
		directive = "//\n" + directive
	}
	list = append(list,
		en.insert(en.typeDecl.Pos(), directive),
		en.replace(en.typeSpec.Type, fmt.Sprintf("interface {\n\t%s\n\t%s() int\n}", iface, indexMethod)))

	// The constant block becomes the methods making each type a Rule.
	start := en.constDecl.Pos()
	if en.constDecl.Doc != nil {
		start = en.constDecl.Doc.Pos()
	}
	list = append(list, edit{en.offset(start), en.offset(en.constDecl.End()), en.bindings()})

	// Dispatchers switch on the type of the rule.
	for _, s := range en.switches {
		switch s.Tag.(type) {
		case *ast.Ident, *ast.SelectorExpr, *ast.CallExpr, *ast.IndexExpr, *ast.ParenExpr:
			list = append(list, en.insert(s.Tag.End(), ".(type)"))
		default:
			list = append(list, en.insert(s.Tag.Pos(), "("), en.insert(s.Tag.End(), ").(type)"))
		}
		for _, stmt := range s.Body.List {
			for _, x := range stmt.(*ast.CaseClause).List {
				id := x.(*ast.Ident)
				if typeName := en.idOf[id.Name]; typeName != id.Name {
					list = append(list, en.replace(id, typeName))
				}
			}
		}
	}

	// Everywhere else a constant was used, use a value of the rule type.
	for _, id := range en.refs {
		lit := en.idOf[id.Name] + "{}"
		if en.inHeader(id) {
			lit = "(" + lit + ")"
		}
		list = append(list, en.replace(id, lit))
	}

	return list
}

// bindings returns the RuleIndex methods for all the rule types.
func (en *enumeration) bindings() string {
	var b strings.Builder
	fmt.Fprintf(&b, "// %s reports the position of a rule in the grammar.", indexMethod)
	for n, id := range en.rules {
		fmt.Fprintf(&b, "\nfunc (%s) %s() int { return %d }", id, indexMethod, n)
	}
	return b.String()
}

// applyEdits applies non-overlapping edits to src.
func applyEdits(src string, edits []edit) string {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start < edits[j].start
	})

	var out strings.Builder
	last := 0
	for _, e := range edits {
		if e.start < last {
			panic("bug: overlapping edits")
		}
		out.WriteString(src[last:e.start])
		out.WriteString(e.text)
		last = e.end
	}
	out.WriteString(src[last:])
	return out.String()
}
