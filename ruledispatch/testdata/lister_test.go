// Copyright 2022-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.
//
// A small test file to be installed beside lister.go. It contains no tests;
// its purpose is to demonstrate that ruledispatch does not scan _test.go files.

package main_test

// A second directive in the package would be rejected if this file were scanned.
//
//ruledispatch:parser grammar="missing.grammar" interface="Evaluator"
type Other struct{}
