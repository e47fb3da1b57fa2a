// Copyright 2022-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

// Ruledispatch writes grammar parsers whose rules dispatch through an
// interface.
//
// Usage:
//
//	ruledispatch [-o file] [-j n] [dir|file.go ...]
//
// Each argument is a package directory, or a Go file; Go files in the same
// directory are scanned together. Without arguments, ruledispatch scans the
// file named by $GOFILE when run by go generate, and the current directory
// otherwise. Files named *_test.go in a directory are ignored.
//
// A package holds at most one struct type carrying the directive
//
//	//ruledispatch:parser grammar="calc.grammar" interface="Evaluator"
//
// For it, ruledispatch writes <type>_rules.go, with the type name in lower
// case, beside the file containing the directive. An existing file is only
// replaced if ruledispatch wrote it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pat42smith/ruledispatch"
	"github.com/pat42smith/ruledispatch/grammarfile"
)

var (
	output = flag.String("o", "", "write the parser to `file`; only with a single package")
	jobs   = flag.Int("j", runtime.NumCPU(), "process up to `n` packages at once")
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "\nUsage: %s [-o file] [-j n] [dir|file.go ...]\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(w, "Writes a parser for each struct type marked with\n\n")
	fmt.Fprintf(w, "\t%s grammar=\"file\" interface=\"Name\"\n\n", ruledispatch.DirectivePrefix)
	flag.PrintDefaults()
	fmt.Fprintln(w)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("ruledispatch: ")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		if gofile := os.Getenv("GOFILE"); gofile != "" {
			args = []string{gofile}
		} else {
			args = []string{"."}
		}
	}
	targets, e := collectTargets(args)
	if e != nil {
		log.Fatal(e)
	}
	if *output != "" && len(targets) > 1 {
		log.Fatal("-o requires a single package")
	}
	if *jobs < 1 {
		log.Fatal("-j must be at least 1")
	}

	if e := run(context.Background(), targets, *output, *jobs, grammarfile.Compiler{}); e != nil {
		log.Fatal(e)
	}
}

// A target is one package to scan: either a whole directory,
// or some of the files in it.
type target struct {
	dir   string
	files []string // nil to scan the whole directory
}

// collectTargets groups the command line arguments by directory.
// A directory named on the command line is scanned whole, even if some
// of its files are also named.
func collectTargets(args []string) ([]target, error) {
	byDir := make(map[string]*target)
	whole := make(map[string]bool)
	var dirs []string
	add := func(dir string) *target {
		t := byDir[dir]
		if t == nil {
			t = &target{dir: dir}
			byDir[dir] = t
			dirs = append(dirs, dir)
		}
		return t
	}

	for _, arg := range args {
		info, e := os.Stat(arg)
		if e != nil {
			return nil, e
		}
		if info.IsDir() {
			dir := filepath.Clean(arg)
			add(dir)
			whole[dir] = true
			continue
		}
		if !strings.HasSuffix(arg, ".go") {
			return nil, fmt.Errorf("%s is neither a directory nor a Go file", arg)
		}
		t := add(filepath.Dir(arg))
		t.files = append(t.files, arg)
	}

	sort.Strings(dirs)
	targets := make([]target, len(dirs))
	for n, dir := range dirs {
		targets[n] = *byDir[dir]
		if whole[dir] {
			targets[n].files = nil
		}
	}
	return targets, nil
}

// run processes the targets concurrently. The first failure stops
// targets not yet started.
func run(ctx context.Context, targets []target, output string, jobs int, c ruledispatch.Compiler) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			if e := ctx.Err(); e != nil {
				return e
			}
			return process(t, output, c)
		})
	}
	return g.Wait()
}

// process generates the parser for one package.
func process(t target, output string, c ruledispatch.Compiler) error {
	var invs []ruledispatch.Invocation
	var warnings []error
	var e error
	if t.files == nil {
		_, invs, warnings, e = ruledispatch.ScanDir(t.dir)
	} else {
		_, invs, warnings, e = ruledispatch.ScanFiles(t.files...)
	}
	if e != nil {
		return e
	}
	for _, w := range warnings {
		log.Print(w)
	}
	if len(invs) == 0 {
		return fmt.Errorf("%s: no %s directive found", t.dir, ruledispatch.DirectivePrefix[2:])
	}

	inv := invs[0]
	src, e := ruledispatch.Generate(c, inv)
	if e != nil {
		return e
	}

	path := output
	if path == "" {
		path = filepath.Join(inv.Dir, strings.ToLower(inv.TypeName)+"_rules.go")
	}
	return writeOutput(path, src)
}
