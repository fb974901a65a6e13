// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extensions

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// sourceUnit is a Go source file evaluated by the yaegi interpreter.
type sourceUnit struct {
	interp   *interp.Interpreter
	pkg      string
	declared map[string]bool
}

// openSource parses and evaluates the Go file at path. Only the standard
// library and package chatext are importable from extension sources.
func openSource(path string) (symbolTable, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Spec: path, Err: err}
	}

	pkg, declared, err := topLevelNames(path, src)
	if err != nil {
		return nil, &LoadError{Spec: path, Err: err}
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, &LoadError{Spec: path, Err: fmt.Errorf("load stdlib symbols: %w", err)}
	}
	if err := i.Use(Exports); err != nil {
		return nil, &LoadError{Spec: path, Err: fmt.Errorf("load chatext symbols: %w", err)}
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, &LoadError{Spec: path, Err: fmt.Errorf("evaluate: %w", err)}
	}

	return &sourceUnit{interp: i, pkg: pkg, declared: declared}, nil
}

func (u *sourceUnit) lookup(name string) (any, bool, error) {
	if !u.declared[name] {
		return nil, false, nil
	}
	v, err := u.interp.Eval(u.pkg + "." + name)
	if err != nil {
		return nil, false, fmt.Errorf("resolve %s: %w", name, err)
	}
	if !v.IsValid() || !v.CanInterface() {
		return nil, false, nil
	}
	return v.Interface(), true, nil
}

// topLevelNames returns the package name and the contract symbols
// declared at file scope.
func topLevelNames(path string, src []byte) (string, map[string]bool, error) {
	f, err := parser.ParseFile(token.NewFileSet(), path, src, parser.SkipObjectResolution)
	if err != nil {
		return "", nil, fmt.Errorf("parse: %w", err)
	}

	wanted := make(map[string]bool, len(contractSymbols))
	for _, s := range contractSymbols {
		wanted[s] = true
	}

	declared := make(map[string]bool)
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil && wanted[d.Name.Name] {
				declared[d.Name.Name] = true
			}
		case *ast.GenDecl:
			if d.Tok != token.VAR {
				continue
			}
			for _, spec := range d.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for _, n := range vs.Names {
					if wanted[n.Name] {
						declared[n.Name] = true
					}
				}
			}
		}
	}
	return f.Name.Name, declared, nil
}
