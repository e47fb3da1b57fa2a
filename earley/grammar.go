// Copyright 2021-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

// Package earley is a grammar compiler producing Go source for a simple
// Earley-style parser.
//
// The generated code enumerates the grammar rules as constants of the
// type Rule, with the sentinel EOI first, and its parser builds a tree of
// Nodes recording the rule of each match. Any rule may be used as the
// goal of a parse.
package earley

import (
	"fmt"
	"go/token"
	"go/types"
	"strconv"
	"strings"
)

// *Grammar accumulates rules and writes a parser for them.
type Grammar struct {
	rulenames                        map[string]struct{}
	name2symbol                      map[string]*symbol
	symbolOrder                      []*symbol // in order of first use
	rules                            []*rule
	symbols, terminals, nonterminals []*symbol
	prefixes                         []*prefix
	root, packname, prepend          string // Write* arguments
	builder                          *strings.Builder // accumulates parser text
}

// Identifiers declared by the generated code, other than those
// starting with the prefix.
var reserved = map[string]bool{
	"EOI":         true,
	"Rule":        true,
	"Node":        true,
	"AllRules":    true,
	"RuleName":    true,
	"fmt":         true,
	"parseerrors": true,
	"_":           true,
}

// Implements ruledispatch.RuleAdder.AddRule.
func (g *Grammar) AddRule(name, target string, items []string) error {
	if !token.IsIdentifier(name) {
		return fmt.Errorf("rule name '%s' is not a valid Go identifier", name)
	}
	if reserved[name] {
		return fmt.Errorf("rule name '%s' is reserved", name)
	}
	if types.Universe.Lookup(name) != nil {
		return fmt.Errorf("rule name '%s' is a predeclared Go identifier", name)
	}
	if !token.IsIdentifier(target) {
		return fmt.Errorf("target symbol '%s' is not a valid Go identifier", target)
	}
	for _, item := range items {
		if !token.IsIdentifier(item) {
			return fmt.Errorf("rule item '%s' is not a valid Go identifier", item)
		}
	}

	if g.rulenames == nil {
		g.rulenames = make(map[string]struct{})
	}
	if g.name2symbol == nil {
		g.name2symbol = make(map[string]*symbol)
	}

	if _, have := g.rulenames[name]; have {
		return fmt.Errorf("duplicate rule name: %s", name)
	}
	g.rulenames[name] = struct{}{}

	var r rule
	r.name = name
	r.target = g.findSymbol(target)
	r.items = make([]*symbol, len(items))
	for n, i := range items {
		r.items[n] = g.findSymbol(i)
	}
	r.id = len(g.rules)
	g.rules = append(g.rules, &r)
	r.target.rules = append(r.target.rules, &r)

	return nil
}

// Finds or creates a symbol from its name
func (g *Grammar) findSymbol(name string) *symbol {
	if s, have := g.name2symbol[name]; have {
		return s
	}
	s := &symbol{name: name}
	g.name2symbol[name] = s
	g.symbolOrder = append(g.symbolOrder, s)
	return s
}

// Checks and records the Write* arguments.
func (g *Grammar) setNames(root, packname, prepend string) error {
	if !token.IsIdentifier(root) {
		return fmt.Errorf("parser type '%s' is not a valid Go identifier", root)
	}
	if !token.IsIdentifier(packname) {
		return fmt.Errorf("package name '%s' is not a valid Go identifier", packname)
	}
	if prepend != "" && !token.IsIdentifier(prepend) {
		return fmt.Errorf("prefix '%s' is not a valid Go identifier", prepend)
	}
	if _, have := g.rulenames[root]; have {
		return fmt.Errorf("rule name '%s' conflicts with the parser type", root)
	}
	if prepend != "" {
		for _, r := range g.rules {
			if strings.HasPrefix(r.name, prepend+"_") {
				return fmt.Errorf("rule name '%s' conflicts with identifiers beginning with '%s_'", r.name, prepend)
			}
		}
	}
	g.root = root
	g.packname = packname
	g.prepend = prepend
	return nil
}

// WriteRules writes just the rule enumeration for the grammar.
//
// The root argument names the parser type the grammar is compiled for;
// packname is copied to the package clause.
func (g *Grammar) WriteRules(root, packname string) (string, error) {
	if e := g.setNames(root, packname, ""); e != nil {
		return "", e
	}

	g.builder = new(strings.Builder)
	g.addText("package #P\n")
	g.addEnumeration()
	return g.builder.String(), nil
}

// WriteParser writes a complete parser for the grammar.
//
// Besides the rule enumeration, the result declares AllRules, RuleName,
// Node, and a Parse method on the root type:
//
//	func (root) Parse(rule Rule, tokens []interface{}) (*Node, error)
//
// The prefix is prepended to the names of all other file-level identifiers.
func (g *Grammar) WriteParser(root, packname, prepend string) (string, error) {
	if e := g.setNames(root, packname, prepend); e != nil {
		return "", e
	}

	g.sortSymbols()
	for _, s := range g.symbols {
		s.sortRules()
		if r1, r2 := s.identicalRules(); r1 != nil {
			return "", fmt.Errorf("rules %s and %s are identical", r1.name, r2.name)
		}
	}
	if len(g.rules) > 0 && len(g.terminals) == 0 {
		return "", fmt.Errorf("grammar has no terminal symbols")
	}
	for _, s := range g.terminals {
		if _, have := g.rulenames[s.name]; have {
			return "", fmt.Errorf("rule name '%s' conflicts with a terminal symbol", s.name)
		}
	}

	g.makePrefixes()

	g.builder = new(strings.Builder)
	g.addText(header)
	g.addEnumeration()
	g.addAllRules()
	g.addRuleName()
	g.addText(boilerplate)
	g.addDispatcher()

	g.addFollowers()
	g.addLastTerminal()
	g.addExtendedBy()
	g.addExtensions()
	g.addSymbolFinished()
	g.addTokenType()
	g.addAppliers()
	g.addPrefix2Rule()
	g.addRuleDescriptions()

	return g.builder.String(), nil
}

// Sort the symbols so terminals precede non-terminals, and assign each symbol a unique id.
func (g *Grammar) sortSymbols() {
	t, u := 0, len(g.symbolOrder)
	g.symbols = make([]*symbol, u)
	for _, s := range g.symbolOrder {
		if s.isTerminal() {
			g.symbols[t] = s
			t++
		} else {
			u--
			g.symbols[u] = s
		}
	}
	if t != u {
		panic("bug")
	}
	g.terminals = g.symbols[:t]
	g.nonterminals = g.symbols[t:]

	for n, s := range g.symbols {
		s.id = n
	}
}

// Create all the rule prefixes
func (g *Grammar) makePrefixes() {
	g.prefixes = g.prefixes[:0]
	for _, s := range g.nonterminals {
		for _, r := range s.rules {
			r.fullPrefix = nil
		}
		p := g.newPrefix()
		p.target = s
		p.length = 0
		p.rules = s.rules
		g.makeExtensions(p)
		s.prefix0 = p
	}
}

// Extend a state by one symbol in each production
func (g *Grammar) makeExtensions(p *prefix) {
	n := p.length
	r := p.rules
	if len(r[0].items) == n {
		r[0].fullPrefix = p
		r = r[1:]
	}
	p.extensions = p.extensions[:0]
	for i, j := 0, 0; i < len(r); i = j {
		x := r[i].items[n]
		j = i + 1
		for j < len(r) && r[j].items[n] == x {
			j++
		}
		ext := g.newPrefix()
		ext.target = p.target
		ext.length = n + 1
		ext.rules = r[i:j]
		p.extensions = append(p.extensions, ext)
		g.makeExtensions(ext)
	}
}

// Return a new state with its id set correctly
func (g *Grammar) newPrefix() *prefix {
	var p prefix
	p.id = len(g.prefixes)
	g.prefixes = append(g.prefixes, &p)
	return &p
}

// Append a string to the parser text, replacing @ and #? with Write* parameters
func (g *Grammar) addText(s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '@':
			g.addString(g.prepend)
		case '#':
			i++
			d := s[i]
			var t string
			switch d {
			case 'R':
				t = g.root
			case 'P':
				t = g.packname
			default:
				t = fmt.Sprintf("#%c", d)
			}
			g.addString(t)
		default:
			e := g.builder.WriteByte(c)
			if e != nil {
				panic(e)
			}
		}
	}
}

// Append a string to the parser text, unchanged
func (g *Grammar) addString(s string) {
	n, e := g.builder.WriteString(s)
	if n != len(s) || e != nil {
		panic(e)
	}
}

// Append to the parser text, with formatting, without parameter replacement
func (g *Grammar) addf(format string, args ...interface{}) {
	_, e := fmt.Fprintf(g.builder, format, args...)
	if e != nil {
		panic(e)
	}
}

// Append an integer slice to the parser text
func (g *Grammar) addSlice(s []int) {
	g.addString("{")
	for n, i := range s {
		if n > 0 {
			g.addString(", ")
		}
		g.addf("%d", i)
	}
	g.addString("}")
}

// The name of the constant for a rule
func ruleConst(r *rule) string {
	return "Rule" + r.name
}

// Append the rule enumeration
func (g *Grammar) addEnumeration() {
	g.addText(`
// Rule identifies a rule of the #R grammar.
type Rule int

const (
	EOI Rule = iota // end of input
`)
	for _, r := range g.rules {
		g.addf("\t%s\n", ruleConst(r))
	}
	g.addString(")\n")
}

// Append the function listing all the rules
func (g *Grammar) addAllRules() {
	g.addText(`
// AllRules lists the rules of the #R grammar, in declaration order.
func AllRules() []Rule {
	return []Rule{EOI`)
	for _, r := range g.rules {
		g.addf(", %s", ruleConst(r))
	}
	g.addString("}\n}\n")
}

// Append the function naming the rules
func (g *Grammar) addRuleName() {
	g.addText(`
// RuleName returns the name of a rule in the #R grammar.
func RuleName(rule Rule) string {
	switch rule {
	case EOI:
		return "EOI"
`)
	for _, r := range g.rules {
		g.addf("\tcase %s:\n\t\treturn %s\n", ruleConst(r), strconv.Quote(r.name))
	}
	g.addString("\t}\n\treturn fmt.Sprintf(\"Rule(%v)\", rule)\n}\n")
}

// Append the Parse method, which selects the goal prefix for each rule.
func (g *Grammar) addDispatcher() {
	g.addText(`
// Parse matches all of tokens against rule, and returns the parse tree.
func (#R) Parse(rule Rule, tokens []interface{}) (*Node, error) {
	switch rule {
	case EOI:
		if len(tokens) > 0 {
			return nil, parseerrors.Unexpected{Location: parseerrors.MakeLocation(tokens, 0)}
		}
		return &Node{Rule: EOI}, nil
`)
	for _, r := range g.rules {
		g.addf("\tcase %s:\n", ruleConst(r))
		g.addText("\t\treturn (&@_Parser{tokens: tokens})")
		g.addf(".parse(%d, %d)\n", r.target.prefix0.id, r.fullPrefix.id)
	}
	g.addString("\t}\n\treturn nil, fmt.Errorf(\"unknown rule %v\", rule)\n}\n")
}

// Package clause and imports
var header = `package #P

import (
	"fmt"

	"github.com/pat42smith/ruledispatch/parseerrors"
)
`

// Standard text needing only simple modifications
var boilerplate = `
// Node is one rule match in a parse tree. The match covers
// tokens[Start:End]; Children holds the matches of the rule's
// nonterminal items, in order.
type Node struct {
	Rule       Rule
	Start, End int
	Children   []*Node
}

type @_Prefix int
type @_Rule int
type @_Symbol int

type @_Match struct {
	prefix          @_Prefix
	completePrefix  @_Prefix
	start, end      int
	shorter, last   *@_Match
	shorter2, last2 *@_Match
}

// A completed item of the trace: a token, or a rule match.
type @_Entry struct {
	node       *Node
	start, end int
}

type @_Parser struct {
	tokens     []interface{}
	matches    []map[@_Prefix][]*@_Match
	todo       [][]*@_Match
	trace      []func(*@_Parser)
	tokensUsed int
	stack      []@_Entry
}

func (parser *@_Parser) parse(start, goal @_Prefix) (*Node, error) {
	if len(parser.tokens) == 0 {
		return nil, parseerrors.NoInput{}
	}
	parser.matches = make([]map[@_Prefix][]*@_Match, len(parser.tokens)+1)
	parser.todo = make([][]*@_Match, len(parser.tokens)+1)
	for end := range parser.matches {
		parser.matches[end] = make(map[@_Prefix][]*@_Match)
	}

	if e := parser.findMatches(start); e != nil {
		return nil, e
	}
	if e := parser.findTrace(goal); e != nil {
		return nil, e
	}
	return parser.applyTrace(), nil
}

func (parser *@_Parser) addMatch(prefix @_Prefix, start, end int, shorter, last *@_Match) {
	list := parser.matches[end][prefix]
	for _, m := range list {
		if m.start == start {
			if m.shorter != shorter || m.last != last {
				if m.shorter2 == nil {
					m.shorter2 = shorter
					m.last2 = last
				}
			}
			return
		}
	}
	m := @_Match{prefix: prefix, completePrefix: -1, start: start, end: end, shorter: shorter, last: last}
	parser.matches[end][prefix] = append(list, &m)
	parser.todo[end] = append(parser.todo[end], &m)
}

func (parser *@_Parser) findMatches(start @_Prefix) error {
	parser.addMatch(start, 0, 0, nil, nil)
	for end := range parser.todo {
		var token @_Symbol = -1
		if end < len(parser.tokens) {
			token = @_tokenType(parser.tokens[end])
		}
		for k := 0; k < len(parser.todo[end]); k++ {
			t := parser.todo[end][k]
			for _, p := range @_followers[t.prefix] {
				parser.addMatch(p, end, end, nil, nil)
			}
			for _, e := range @_extensions[t.prefix] {
				if list, have := parser.matches[end][e.by]; have {
					for _, m := range list {
						if m.start == end {
							parser.addMatch(e.to, t.start, end, t, m)
							break
						}
					}
				}
			}
			if s := @_symbolFinished[t.prefix]; s >= 0 {
				for _, e := range @_extendedBy[s] {
					if list, have := parser.matches[t.start][e.from]; have {
						for _, m := range list {
							parser.addMatch(e.to, m.start, end, m, t)
						}
					}
				}
			}
			if token >= 0 {
				for _, e := range @_extendedBy[token] {
					if list, have := parser.matches[end][e.from]; have {
						for _, m := range list {
							parser.addMatch(e.to, m.start, end+1, m, nil)
						}
					}
				}
			}
		}
		if token >= 0 && len(parser.todo[end+1]) == 0 {
			return parseerrors.Unexpected{Location: parseerrors.MakeLocation(parser.tokens, end)}
		}
	}
	return nil
}

func (parser *@_Parser) ambiguous(m1, m2 *@_Match) error {
	return parseerrors.Ambiguous{
		Range: parseerrors.MakeRange(parser.tokens, m1.start, m1.end-1),
		Rule1: @_ruledesc[@_prefix2rule[m1.completePrefix]],
		Rule2: @_ruledesc[@_prefix2rule[m2.completePrefix]],
	}
}

func (parser *@_Parser) findTrace(goal @_Prefix) error {
	n := len(parser.tokens)
	var goalmatch *@_Match
	for _, m := range parser.matches[n][goal] {
		if m.start == 0 {
			m.completePrefix = m.prefix
			goalmatch = m
			break
		}
	}
	if goalmatch == nil {
		return parseerrors.Unexpected{Location: parseerrors.MakeLocation(parser.tokens, n)}
	}

	parser.trace = parser.trace[:0]
	parser.trace = append(parser.trace, @_appliers[goalmatch.prefix])

	var stack []*@_Match
	stack = append(stack, goalmatch)
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if m.shorter != nil {
			m.shorter.completePrefix = m.completePrefix
		}
		if m.shorter2 != nil {
			m.shorter2.completePrefix = m.completePrefix
		}
		if m.last != nil {
			m.last.completePrefix = m.last.prefix
		}
		if m.last2 != nil {
			m.last2.completePrefix = m.last2.prefix
		}

		if m.shorter2 != nil || m.last2 != nil {
			if m.shorter2 != nil && m.shorter2 != m.shorter {
				return parser.ambiguous(m, m)
			}
			if m.last2 == nil || m.last2 == m.last {
				panic("bug")
			}
			return parser.ambiguous(m.last, m.last2)
		}

		if m.shorter != nil {
			stack = append(stack, m.shorter)
		}
		if m.last != nil {
			parser.trace = append(parser.trace, @_appliers[m.last.prefix])
			stack = append(stack, m.last)
		} else if @_lastTerminal[m.prefix] >= 0 {
			parser.trace = append(parser.trace, (*@_Parser).applyTerminal)
		}
	}

	return nil
}

// applyTrace builds the parse tree. The trace is recorded right to left,
// so it is applied in reverse.
func (parser *@_Parser) applyTrace() *Node {
	parser.tokensUsed = 0
	parser.stack = parser.stack[:0]
	for n := len(parser.trace) - 1; n >= 0; n-- {
		parser.trace[n](parser)
	}
	return parser.stack[0].node
}

func (parser *@_Parser) applyTerminal() {
	parser.stack = append(parser.stack, @_Entry{start: parser.tokensUsed, end: parser.tokensUsed + 1})
	parser.tokensUsed++
}

// reduce replaces the top n entries of the stack with a match of rule.
func (parser *@_Parser) reduce(rule Rule, n int) {
	items := parser.stack[len(parser.stack)-n:]
	node := &Node{Rule: rule, Start: parser.tokensUsed, End: parser.tokensUsed}
	if n > 0 {
		node.Start = items[0].start
		node.End = items[n-1].end
	}
	for _, item := range items {
		if item.node != nil {
			node.Children = append(node.Children, item.node)
		}
	}
	parser.stack = append(parser.stack[:len(parser.stack)-n], @_Entry{node: node, start: node.Start, end: node.End})
}
`

// For each prefix, write the list of prefixes that can follow it through non-terminals
func (g *Grammar) addFollowers() {
	g.addText("\nvar @_followers = [][]@_Prefix{\n")
	for _, p := range g.prefixes {
		var list []int
		for _, ext := range p.extensions {
			s := ext.rules[0].items[p.length]
			if !s.isTerminal() {
				list = append(list, s.prefix0.id)
			}
		}
		g.addString("\t")
		g.addSlice(list)
		g.addString(",\n")
	}
	g.addString("}\n")
}

// For each prefix, write it's last symbol, if that is a terminal symbol
func (g *Grammar) addLastTerminal() {
	g.addText("\nvar @_lastTerminal = []@_Symbol{\n")
	for _, p := range g.prefixes {
		t := -1
		if p.length > 0 {
			s := p.rules[0].items[p.length-1]
			if s.isTerminal() {
				t = s.id
			}
		}
		g.addf("\t%d,\n", t)
	}
	g.addString("}\n")
}

// For each symbol, write how it can extend other prefixes.
func (g *Grammar) addExtendedBy() {
	g.addText(`
type @_ExtBy struct {
	from, to @_Prefix
}

var @_extendedBy = [][]@_ExtBy{
`)

	ext := make([][][2]int, len(g.symbols))
	for _, p := range g.prefixes {
		for _, q := range p.extensions {
			s := q.rules[0].items[p.length]
			ext[s.id] = append(ext[s.id], [2]int{p.id, q.id})
		}
	}

	for _, e := range ext {
		g.addString("\t{")
		for n, en := range e {
			if n > 0 {
				g.addString(", ")
			}
			g.addSlice(en[:])
		}
		g.addString("},\n")
	}
	g.addString("}\n")
}

// For each prefix, write its extensions by nonterminal symbols
func (g *Grammar) addExtensions() {
	g.addText(`
type @_Extend struct {
	by, to @_Prefix
}

var @_extensions = [][]@_Extend{
`)

	ext := make([][][2]int, len(g.prefixes))
	for _, p := range g.prefixes {
		for _, q := range p.extensions {
			s := q.rules[0].items[p.length]
			if !s.isTerminal() {
				for _, r := range s.rules {
					ext[p.id] = append(ext[p.id], [2]int{r.fullPrefix.id, q.id})
				}
			}
		}
	}

	for _, e := range ext {
		g.addString("\t{")
		for n, en := range e {
			if n > 0 {
				g.addString(", ")
			}
			g.addSlice(en[:])
		}
		g.addString("},\n")
	}
	g.addString("}\n")
}

// For each prefix that is a complete rule, write the symbol id.
func (g *Grammar) addSymbolFinished() {
	g.addText("\nvar @_symbolFinished = []int{\n")
	for _, p := range g.prefixes {
		r := p.completedRule()
		if r != nil {
			g.addf("\t%d,\n", r.target.id)
		} else {
			g.addf("\t-1,\n")
		}
	}
	g.addString("}\n")
}

// Add the function to determine a terminal's symbol id
func (g *Grammar) addTokenType() {
	g.addText(`
func @_tokenType(t interface{}) @_Symbol {
	switch t.(type) {
`)
	for _, s := range g.terminals {
		g.addf("\tcase %s:\n\t\treturn %d\n", s.name, s.id)
	}
	g.addString(
		`	default:
		panic(fmt.Sprintf("input token (type %T) is not a terminal symbol", t))
	}
}
`)
}

// Add the functions to apply rules (build a Node from the top of the stack)
func (g *Grammar) addAppliers() {
	g.addText("\nvar @_appliers = []func(*@_Parser){\n")
	for _, p := range g.prefixes {
		r := p.completedRule()
		if r == nil {
			g.addString("\tnil,\n")
			continue
		}
		g.addText("\tfunc(parser *@_Parser) { ")
		g.addf("parser.reduce(%s, %d)", ruleConst(r), len(r.items))
		g.addString(" },\n")
	}
	g.addString("}\n")
}

// Add the mapping of prefix to completed rule
func (g *Grammar) addPrefix2Rule() {
	g.addText("\nvar @_prefix2rule = []@_Rule{\n")
	for _, p := range g.prefixes {
		n := -1
		if r := p.completedRule(); r != nil {
			n = r.id
		}
		g.addf("\t%d,\n", n)
	}
	g.addString("}\n")
}

// Add the rule descriptions
func (g *Grammar) addRuleDescriptions() {
	g.addText(`
var @_ruledesc = []parseerrors.Rule{
`)
	for _, r := range g.rules {
		g.addf("\t{Name: %q, Target: %q, Items: []string{", r.name, r.target.name)
		for n, i := range r.items {
			if n > 0 {
				g.addString(", ")
			}
			g.addf("%q", i.name)
		}
		g.addString("}},\n")
	}
	g.addString("}\n")
}
