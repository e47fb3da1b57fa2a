// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// generatedMarker begins every file ruledispatch writes.
const generatedMarker = "// Code generated by ruledispatch"

// writeOutput writes src to path. An existing file is replaced only if it
// is a regular file that ruledispatch generated. The new contents appear
// all at once, or not at all.
func writeOutput(path string, src []byte) error {
	info, e := os.Lstat(path)
	switch {
	case errors.Is(e, fs.ErrNotExist):
	case e != nil:
		return e
	case !info.Mode().IsRegular():
		return fmt.Errorf("%s exists and is not a regular file", path)
	default:
		generated, e := isGenerated(path)
		if e != nil {
			return e
		}
		if !generated {
			return fmt.Errorf("%s exists and was not written by ruledispatch", path)
		}
	}

	tmp, e := os.CreateTemp(filepath.Dir(path), ".ruledispatch-*.go")
	if e != nil {
		return e
	}
	defer os.Remove(tmp.Name())

	if _, e := tmp.Write(src); e != nil {
		tmp.Close()
		return e
	}
	if e := tmp.Close(); e != nil {
		return e
	}
	if e := os.Chmod(tmp.Name(), 0o644); e != nil {
		return e
	}
	return os.Rename(tmp.Name(), path)
}

// isGenerated reports whether the first line of a file is the marker.
func isGenerated(path string) (bool, error) {
	f, e := os.Open(path)
	if e != nil {
		return false, e
	}
	defer f.Close()

	line, e := bufio.NewReader(f).ReadString('\n')
	if e != nil && !errors.Is(e, io.EOF) {
		return false, e
	}
	return strings.HasPrefix(line, generatedMarker), nil
}
