// Package tester runs fixture-based end-to-end test cases against a
// source/target grammar pair: each case supplies a source program and
// the target text it must translate to (spec.md §8's testable
// properties), mirroring the teacher's own grammar-fixture test
// format but comparing rendered target text instead of parse trees.
package tester

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arj0019/eccgen/generator"
	"github.com/arj0019/eccgen/grammar"
	"github.com/arj0019/eccgen/optimizer"
	"github.com/arj0019/eccgen/parser"
)

// TestCase is one fixture: a source program and the target text it
// must translate to.
type TestCase struct {
	Source   string
	Expected string
}

// ParseTestCase reads a fixture in the form:
//
//	Test
//	---
//	<source program>
//	---
//	<expected target text>
//
// The leading "Test" line is a free-form title, kept only for
// readability; it is not otherwise interpreted.
func ParseTestCase(r *bufio.Reader) (*TestCase, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	sections := strings.Split(string(content), "\n---\n")
	if len(sections) != 3 {
		return nil, fmt.Errorf("malformed test case: want 3 sections (title, source, expected), got %d", len(sections))
	}
	return &TestCase{
		Source:   strings.TrimSuffix(strings.TrimPrefix(sections[1], "\n"), "\n"),
		Expected: strings.TrimSuffix(strings.TrimPrefix(sections[2], "\n"), "\n"),
	}, nil
}

// TestCaseWithMetadata pairs a parsed TestCase with the file it came
// from, or the error encountered while reading/parsing it.
type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

// ListTestCases walks testPath (a file or a directory tree) collecting
// every fixture found.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{{FilePath: testPath, Error: err}}
	}
	if !fi.IsDir() {
		c, err := parseTestCaseFile(testPath)
		return []*TestCaseWithMetadata{{TestCase: c, FilePath: testPath, Error: err}}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{{FilePath: testPath, Error: err}}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cases = append(cases, ListTestCases(filepath.Join(testPath, e.Name()))...)
	}
	return cases
}

func parseTestCaseFile(path string) (*TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(bufio.NewReader(f))
}

// TestResult is the outcome of running one fixture.
type TestResult struct {
	TestCasePath string
	Error        error
	Got          string
	Want         string
}

func (r *TestResult) String() string {
	if r.Error != nil {
		return fmt.Sprintf("Failed %v:\n    %v", r.TestCasePath, r.Error)
	}
	if r.Got != r.Want {
		return fmt.Sprintf("Failed %v:\n    want: %q\n    got:  %q", r.TestCasePath, r.Want, r.Got)
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

// Tester runs a set of fixtures through the full translate pipeline
// (spec.md §4.2-§4.4) under a fixed source/target grammar pair.
type Tester struct {
	Source *grammar.Grammar
	Target *grammar.Grammar
	Cases  []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(t.Source, t.Target, c))
	}
	return rs
}

func runTest(src, tgt *grammar.Grammar, c *TestCaseWithMetadata) *TestResult {
	if c.Error != nil {
		return &TestResult{TestCasePath: c.FilePath, Error: c.Error}
	}

	ctx := context.Background()
	iv, err := parser.Parse(ctx, src, c.TestCase.Source, nil)
	if err != nil {
		return &TestResult{TestCasePath: c.FilePath, Error: fmt.Errorf("parse: %w", err)}
	}
	iv = optimizer.Optimize(iv)
	got, err := generator.Generate(ctx, tgt, iv, nil)
	if err != nil {
		return &TestResult{TestCasePath: c.FilePath, Error: fmt.Errorf("generate: %w", err)}
	}

	if got != c.TestCase.Expected {
		return &TestResult{
			TestCasePath: c.FilePath,
			Got:          got,
			Want:         c.TestCase.Expected,
		}
	}
	return &TestResult{TestCasePath: c.FilePath, Got: got, Want: c.TestCase.Expected}
}
