// Copyright 2022-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.
//
// This program is a trivial test case for ruledispatch. It uses a trivial
// grammar to sort a list of integers from the command line arguments.

package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
)

//ruledispatch:parser grammar="lister.grammar" interface="Evaluator"
type Lister struct{}

type Evaluator interface {
	Eval(n *Node, tokens []interface{}) []int
}

func (EOI) Eval(*Node, []interface{}) []int {
	return nil
}

func (Empty) Eval(*Node, []interface{}) []int {
	return nil
}

func (Append) Eval(n *Node, tokens []interface{}) []int {
	list := n.Children[0].Rule.Eval(n.Children[0], tokens)
	list = append(list, tokens[n.End-1].(int))
	sort.Ints(list)
	return list
}

func main() {
	var tokens []interface{}
	for _, arg := range os.Args[1:] {
		if x, e := strconv.Atoi(arg); e != nil {
			panic(e)
		} else {
			tokens = append(tokens, x)
		}
	}

	if node, e := (Lister{}).Parse(Append{}, tokens); e != nil {
		panic(e)
	} else {
		fmt.Println(node.Rule.Eval(node, tokens))
	}
}
