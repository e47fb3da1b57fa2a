// Copyright 2022-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.
//
// This is an interpreter for a very small language, used to test
// ruledispatch. The meaning of each grammar rule is given by the Run
// method of the rule's type.

package main

import (
	"fmt"
	"os"
	"strings"
)

//ruledispatch:parser grammar="interpret.grammar" interface="Semantics"
type Interpreter struct{}

type OpenParen struct{}
type CloseParen struct{}
type OpenBrace struct{}
type CloseBrace struct{}
type Plus struct{}
type Minus struct{}
type Times struct{}
type Quo struct{}
type Rem struct{}
type Comma struct{}
type Semicolon struct{}
type Equal struct{}
type Assign struct{}
type Less struct{}
type LessEqual struct{}
type Greater struct{}
type GreaterEqual struct{}
type NotEqual struct{}
type And struct{}
type Or struct{}
type If struct{}
type Else struct{}
type Func struct{}
type While struct{}
type Return struct{}
type Print struct{}

type Identifier string
type Int int

type Scope map[Identifier]int

// Semantics gives the meaning of a rule match.
type Semantics interface {
	// Run evaluates n. Expressions return their value, conditions 1 or 0,
	// and statements 1 if a return statement was executed.
	Run(m *machine, n *Node) int
}

type machine struct {
	tokens    []interface{}
	scope     Scope
	functions map[Identifier]*Node
	values    []int        // collected by expression lists
	names     []Identifier // collected by parameter lists
}

func (m *machine) run(n *Node) int {
	return n.Rule.Run(m, n)
}

func (m *machine) ident(k int) Identifier {
	return m.tokens[k].(Identifier)
}

// list evaluates an expression list.
func (m *machine) list(n *Node) []int {
	saved := m.values
	m.values = nil
	m.run(n)
	values := m.values
	m.values = saved
	return values
}

// call runs the function defined by f.
func (m *machine) call(f *Node, args []int) int {
	saved := m.scope
	m.scope = make(Scope)
	m.names = nil
	m.run(f.Children[0])
	for n, p := range m.names {
		if n < len(args) {
			m.scope[p] = args[n]
		}
	}
	m.run(f.Children[1])
	result := m.scope[""]
	m.scope = saved
	return result
}

func truth(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (EOI) Run(*machine, *Node) int { return 0 }

func (Number) Run(m *machine, n *Node) int {
	return int(m.tokens[n.Start].(Int))
}

func (Variable) Run(m *machine, n *Node) int {
	return m.scope[m.ident(n.Start)]
}

func (Parentheses) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (Call) Run(m *machine, n *Node) int {
	name := m.ident(n.Start)
	f := m.functions[name]
	if f == nil {
		panic(fmt.Sprint("no function named ", name))
	}
	return m.call(f, m.list(n.Children[0]))
}

func (Factor) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (Multiply) Run(m *machine, n *Node) int {
	return m.run(n.Children[0]) * m.run(n.Children[1])
}

func (Divide) Run(m *machine, n *Node) int {
	return m.run(n.Children[0]) / m.run(n.Children[1])
}

func (Modulo) Run(m *machine, n *Node) int {
	return m.run(n.Children[0]) % m.run(n.Children[1])
}

func (Single) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (Add) Run(m *machine, n *Node) int {
	return m.run(n.Children[0]) + m.run(n.Children[1])
}

func (Subtract) Run(m *machine, n *Node) int {
	return m.run(n.Children[0]) - m.run(n.Children[1])
}

func (IsLess) Run(m *machine, n *Node) int {
	return truth(m.run(n.Children[0]) < m.run(n.Children[1]))
}

func (IsLessEqual) Run(m *machine, n *Node) int {
	return truth(m.run(n.Children[0]) <= m.run(n.Children[1]))
}

func (IsGreater) Run(m *machine, n *Node) int {
	return truth(m.run(n.Children[0]) > m.run(n.Children[1]))
}

func (IsGreaterEqual) Run(m *machine, n *Node) int {
	return truth(m.run(n.Children[0]) >= m.run(n.Children[1]))
}

func (IsEqual) Run(m *machine, n *Node) int {
	return truth(m.run(n.Children[0]) == m.run(n.Children[1]))
}

func (IsNotEqual) Run(m *machine, n *Node) int {
	return truth(m.run(n.Children[0]) != m.run(n.Children[1]))
}

func (BoolParens) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }
func (Conjunct) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }
func (Disjunct) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (Both) Run(m *machine, n *Node) int {
	return truth(m.run(n.Children[0]) != 0 && m.run(n.Children[1]) != 0)
}

func (Either) Run(m *machine, n *Node) int {
	return truth(m.run(n.Children[0]) != 0 || m.run(n.Children[1]) != 0)
}

func (Assignment) Run(m *machine, n *Node) int {
	m.scope[m.ident(n.Start)] = m.run(n.Children[0])
	return 0
}

func (Nothing) Run(*machine, *Node) int { return 0 }

func (IfThen) Run(m *machine, n *Node) int {
	if m.run(n.Children[0]) != 0 {
		return m.run(n.Children[1])
	}
	return 0
}

func (IfElse) Run(m *machine, n *Node) int {
	if m.run(n.Children[0]) != 0 {
		return m.run(n.Children[1])
	}
	return m.run(n.Children[2])
}

func (Loop) Run(m *machine, n *Node) int {
	for m.run(n.Children[0]) != 0 {
		if m.run(n.Children[1]) != 0 {
			return 1
		}
	}
	return 0
}

func (ReturnValue) Run(m *machine, n *Node) int {
	m.scope[""] = m.run(n.Children[0])
	return 1
}

func (PrintValues) Run(m *machine, n *Node) int {
	var b strings.Builder
	for k, v := range m.list(n.Children[0]) {
		if k > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprint(&b, v)
	}
	fmt.Println(b.String())
	return 0
}

func (First) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (Sequence) Run(m *machine, n *Node) int {
	if m.run(n.Children[0]) != 0 {
		return 1
	}
	return m.run(n.Children[1])
}

func (Braces) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (NoExpressions) Run(*machine, *Node) int { return 0 }
func (SomeExpressions) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (OneExpression) Run(m *machine, n *Node) int {
	m.values = append(m.values, m.run(n.Children[0]))
	return 0
}

func (MoreExpressions) Run(m *machine, n *Node) int {
	m.run(n.Children[0])
	m.values = append(m.values, m.run(n.Children[1]))
	return 0
}

func (NoParameters) Run(*machine, *Node) int { return 0 }
func (SomeParameters) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (OneIdentifier) Run(m *machine, n *Node) int {
	m.names = append(m.names, m.ident(n.Start))
	return 0
}

func (MoreIdentifiers) Run(m *machine, n *Node) int {
	m.run(n.Children[0])
	m.names = append(m.names, m.ident(n.End-1))
	return 0
}

func (Function) Run(m *machine, n *Node) int {
	m.functions[m.ident(n.Start+1)] = n
	return 0
}

func (OneFunction) Run(m *machine, n *Node) int { return m.run(n.Children[0]) }

func (MoreFunctions) Run(m *machine, n *Node) int {
	m.run(n.Children[0])
	return m.run(n.Children[1])
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: interpret file")
		os.Exit(2)
	}
	text, e := os.ReadFile(os.Args[1])
	if e != nil {
		panic(e)
	}
	tokens := tokenize(string(text))

	// A program with several functions is matched by MoreFunctions,
	// and one with a single function by OneFunction.
	tree, e := Interpreter{}.Parse(MoreFunctions{}, tokens)
	if e != nil {
		tree, e = Interpreter{}.Parse(OneFunction{}, tokens)
	}
	if e != nil {
		panic(e)
	}

	m := &machine{tokens: tokens, scope: make(Scope), functions: make(map[Identifier]*Node)}
	m.run(tree)
	f := m.functions["main"]
	if f == nil {
		panic("no main function")
	}
	m.call(f, nil)
}

func tokenize(s string) []interface{} {
	var tokens []interface{}
loop:
	for n := 0; n < len(s); n++ {
		var t interface{}
		c := s[n]
		switch c {
		case ' ', '\t', '\n':
			continue loop
		case '(':
			t = OpenParen{}
		case ')':
			t = CloseParen{}
		case '{':
			t = OpenBrace{}
		case '}':
			t = CloseBrace{}
		case '+':
			t = Plus{}
		case '-':
			t = Minus{}
		case '*':
			t = Times{}
		case '/':
			t = Quo{}
		case '%':
			t = Rem{}
		case ',':
			t = Comma{}
		case ';':
			t = Semicolon{}
		case '=':
			if n+1 < len(s) && s[n+1] == '=' {
				t = Equal{}
				n++
			} else {
				t = Assign{}
			}
		case '<':
			if n+1 < len(s) && s[n+1] == '=' {
				t = LessEqual{}
				n++
			} else {
				t = Less{}
			}
		case '>':
			if n+1 < len(s) && s[n+1] == '=' {
				t = GreaterEqual{}
				n++
			} else {
				t = Greater{}
			}
		case '!':
			if n+1 < len(s) && s[n+1] == '=' {
				t = NotEqual{}
				n++
			} else {
				panic("! not followed by =")
			}
		case '&':
			if n+1 < len(s) && s[n+1] == '&' {
				t = And{}
				n++
			} else {
				panic("& not followed by &")
			}
		case '|':
			if n+1 < len(s) && s[n+1] == '|' {
				t = Or{}
				n++
			} else {
				panic("| not followed by |")
			}
		}
		if t == nil {
			if isdigit(c) {
				i := int(c - '0')
				for n+1 < len(s) && isdigit(s[n+1]) {
					n++
					i = i*10 + int(s[n]-'0')
				}
				t = Int(i)
			} else if isalpha(c) {
				a := n
				for n+1 < len(s) && isalnum(s[n+1]) {
					n++
				}
				u := s[a : n+1]
				switch u {
				case "if":
					t = If{}
				case "else":
					t = Else{}
				case "func":
					t = Func{}
				case "while":
					t = While{}
				case "return":
					t = Return{}
				case "print":
					t = Print{}
				default:
					t = Identifier(u)
				}
			} else {
				panic(fmt.Sprintf("invalid character '%c' (at position %d)", c, n))
			}
		}
		if t != nil {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func isdigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isalpha(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isalnum(c byte) bool {
	return isdigit(c) || isalpha(c)
}
