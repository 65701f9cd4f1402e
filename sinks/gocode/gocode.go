// Package gocode renders an encoded DFA as a standalone Go source
// fragment: a state table with one transition function per state.
package gocode

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/corelang/lexgen/output"
	"golang.org/x/tools/imports"
)

// Options controls the rendered fragment's package clause and the
// generated table variable's name.
type Options struct {
	Package   string // defaults to "lexer"
	TableName string // defaults to "dfaStates"
}

// Generate renders dfa as a formatted, goimports-cleaned Go source
// fragment declaring a var of type []state named opts.TableName.
func Generate(dfa *output.DFA, opts Options) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = "lexer"
	}
	table := opts.TableName
	if table == "" {
		table = "dfaStates"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by lexgen. DO NOT EDIT.\n\npackage %s\n\n", pkg)
	b.WriteString("type state struct {\n")
	b.WriteString("\taccept  bool\n")
	b.WriteString("\truleTag int\n")
	b.WriteString("\tnext    func(r rune) int\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "var %s = []state{\n", table)
	byFrom := make(map[int][]output.Edge)
	for _, e := range dfa.Edges {
		byFrom[e.From] = append(byFrom[e.From], e)
	}

	for _, n := range dfa.Nodes {
		tag := -1
		if n.RuleTag != nil {
			tag = *n.RuleTag
		}
		fmt.Fprintf(&b, "\t{accept: %t, ruleTag: %d, next: func(r rune) int {\n", n.Accept, tag)
		edges := byFrom[n.ID]
		if len(edges) > 0 {
			b.WriteString("\t\tswitch {\n")
			for _, e := range edges {
				for _, r := range e.Label.Ranges() {
					if r.Min == r.Max {
						fmt.Fprintf(&b, "\t\tcase r == %d:\n\t\t\treturn %d\n", r.Min, e.To)
					} else {
						fmt.Fprintf(&b, "\t\tcase r >= %d && r <= %d:\n\t\t\treturn %d\n", r.Min, r.Max, e.To)
					}
				}
			}
			b.WriteString("\t\t}\n")
		}
		b.WriteString("\t\treturn -1\n\t}},\n")
	}
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "var initialState = %d\n\n", dfa.Initial)

	b.WriteString("var ruleNames = []string{")
	for i, name := range dfa.RuleTags {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", name)
	}
	b.WriteString("}\n")

	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, err
	}
	return imports.Process(pkg+".go", src, &imports.Options{
		TabWidth:  8,
		TabIndent: true,
		Comments:  true,
		Fragment:  true,
	})
}
