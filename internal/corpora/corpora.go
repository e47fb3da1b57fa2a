// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

// Package corpora runs table tests whose table is a directory of files.
//
// Each file with the corpus extension is one test case. The outputs of a
// case are compared with files named after it: for case foo.yaml and
// output extension "err", the expected output is in foo.yaml.err, and a
// missing file means the output should be empty.
//
// Setting the corpus's refresh variable to a glob, such as
//
//	RULEDISPATCH_REFRESH='**' go test ./...
//
// rewrites the expected outputs of the matching cases instead of
// comparing them. The test still fails, so a refresh is never mistaken
// for a pass.
package corpora

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// A Corpus describes a directory of test cases.
type Corpus struct {
	// Root is the directory holding the cases, relative to the file
	// calling Run.
	Root string

	// Refresh names the environment variable holding the refresh glob.
	Refresh string

	// Extension of the case files, without the dot.
	Extension string

	// Outputs lists the outputs each case produces.
	Outputs []Output

	// Test runs one case, returning one string per element of Outputs.
	Test func(t *testing.T, name, text string) []string
}

// An Output is one result of running a case.
type Output struct {
	// Extension is appended, after a dot, to the case file name to find
	// the expected output.
	Extension string

	// Compare reports how got differs from want, or "" if it does not.
	// If nil, the texts must be identical.
	Compare func(got, want string) string
}

// Run runs every case in the corpus as a subtest.
func (c Corpus) Run(t *testing.T) {
	t.Helper()
	testDir := callerDir()
	root := filepath.Join(testDir, c.Root)

	cases, e := c.find(root)
	if e != nil {
		t.Fatal("corpora:", e)
	}
	if len(cases) == 0 {
		t.Fatalf("corpora: no .%s files in %s", c.Extension, root)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if refresh != "" && !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: %s=%q is not a valid glob", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		t.Logf("corpora: refreshing outputs because %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, path := range cases {
		name, _ := filepath.Rel(root, path)
		name = filepath.ToSlash(name)
		t.Run(name, func(t *testing.T) {
			text, e := os.ReadFile(path)
			if e != nil {
				t.Fatal("corpora:", e)
			}
			results := c.Test(t, name, string(text))
			if len(results) != len(c.Outputs) {
				t.Fatalf("corpora: %d results for %d outputs", len(results), len(c.Outputs))
			}

			rewrite := refresh != "" && doublestar.MatchUnvalidated(refresh, name)
			for n, out := range c.Outputs {
				outPath := path + "." + out.Extension
				if rewrite {
					if e := update(outPath, results[n]); e != nil {
						t.Error("corpora:", e)
					}
					continue
				}
				want, e := os.ReadFile(outPath)
				if e != nil && !errors.Is(e, fs.ErrNotExist) {
					t.Error("corpora:", e)
					continue
				}
				compare := out.Compare
				if compare == nil {
					compare = Diff
				}
				if diff := compare(results[n], string(want)); diff != "" {
					t.Errorf("output mismatch for %s:\n%s", filepath.Base(outPath), diff)
				}
			}
		})
	}
}

// find lists the case files under root, in lexical order.
func (c Corpus) find(root string) ([]string, error) {
	var cases []string
	e := filepath.WalkDir(root, func(path string, d fs.DirEntry, e error) error {
		if e != nil {
			return e
		}
		if !d.IsDir() && strings.TrimPrefix(filepath.Ext(path), ".") == c.Extension {
			cases = append(cases, path)
		}
		return nil
	})
	sort.Strings(cases)
	return cases, e
}

// update writes an expected output, or removes it if it should be empty.
func update(path, text string) error {
	if text == "" {
		if e := os.Remove(path); e != nil && !errors.Is(e, fs.ErrNotExist) {
			return e
		}
		return nil
	}
	return os.WriteFile(path, []byte(text), 0644)
}

// Diff returns a unified diff from want to got, or "" if they are equal.
func Diff(got, want string) string {
	if got == want {
		return ""
	}
	diff, e := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if e != nil {
		return e.Error()
	}
	if diff == "" {
		// Only possible if the texts differ in a way SplitLines hides.
		return fmt.Sprintf("want %q\ngot  %q", want, got)
	}
	return diff
}

// callerDir returns the directory of the file that called Run.
func callerDir() string {
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		panic("corpora: cannot find the calling test file")
	}
	return filepath.Dir(file)
}
