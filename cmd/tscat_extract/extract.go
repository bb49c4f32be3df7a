// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// key identifies a message by UI context and source text.
type key struct {
	ctx    string
	source string
}

type ref struct {
	file string
	line int
}

// found is what the scan learned about one message.
type found struct {
	numerus bool
	refs    []ref
}

// extractor holds the shared state and context for AST analysis within a package.
type extractor struct {
	found    map[key]*found
	relRoot  string
	fset     *token.FileSet
	info     *types.Info
	i18nPkgs map[string]struct{}
}

// extractMessages traverses all Go source files in the given packages,
// looking for translation calls and i18n.Message literals.
// Reference paths are made relative to relRoot.
func extractMessages(pkgs []*packages.Package, relRoot string, i18nPkgPaths map[string]struct{}) map[key]*found {
	out := map[key]*found{}

	for _, p := range pkgs {
		if p.TypesInfo == nil {
			continue
		}

		e := &extractor{
			found:    out,
			relRoot:  relRoot,
			fset:     p.Fset,
			info:     p.TypesInfo,
			i18nPkgs: i18nPkgPaths,
		}

		for _, f := range p.Syntax {
			ast.Inspect(f, func(n ast.Node) bool {
				switch x := n.(type) {
				case *ast.CallExpr:
					e.handleCallExpr(x)
				case *ast.CompositeLit:
					e.handleCompositeLit(x)
				}

				return true
			})
		}
	}

	return out
}

// findI18nPkgPaths returns the paths of the packages named i18n that define
// both the Message type and the Translator interface. Calls and literals are
// only matched against these, however the package is imported.
func findI18nPkgPaths(pkgs []*packages.Package) map[string]struct{} {
	out := make(map[string]struct{})

	packages.Visit(pkgs, nil, func(p *packages.Package) {
		if p.Name != "i18n" || p.Types == nil {
			return
		}

		scope := p.Types.Scope()

		msg, ok := scope.Lookup("Message").(*types.TypeName)
		if !ok {
			return
		}

		if _, ok := msg.Type().Underlying().(*types.Struct); !ok {
			return
		}

		tr, ok := scope.Lookup("Translator").(*types.TypeName)
		if !ok {
			return
		}

		if _, ok := tr.Type().Underlying().(*types.Interface); ok {
			out[p.PkgPath] = struct{}{}
		}
	})

	return out
}

// constString evaluates expr to a constant string if possible using types.Info.
// Handles string literals, const identifiers, and constant expressions like "a" + "b".
func constString(info *types.Info, expr ast.Expr) (string, bool) {
	tv, ok := info.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}

	return constant.StringVal(tv.Value), true
}

// isMessageType reports whether t is i18n.Message, or a pointer to it.
func (e *extractor) isMessageType(t types.Type) bool {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}

	named, ok := t.(*types.Named)
	if !ok {
		return false
	}

	obj := named.Obj()
	if obj == nil || obj.Pkg() == nil || obj.Name() != "Message" {
		return false
	}

	_, ok = e.i18nPkgs[obj.Pkg().Path()]

	return ok
}

// handleCompositeLit records i18n.Message{Context: …, Source: …} literals,
// keyed or positional, including those with elided types inside slices and maps.
func (e *extractor) handleCompositeLit(x *ast.CompositeLit) {
	tv, ok := e.info.Types[x]
	if !ok || tv.Type == nil || !e.isMessageType(tv.Type) {
		return
	}

	var ctxExpr, srcExpr ast.Expr

	for i, elt := range x.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			id, ok := kv.Key.(*ast.Ident)
			if !ok {
				continue
			}

			switch id.Name {
			case "Context":
				ctxExpr = kv.Value
			case "Source":
				srcExpr = kv.Value
			}

			continue
		}

		// Positional fields follow the declared order.
		switch i {
		case 0:
			ctxExpr = elt
		case 1:
			srcExpr = elt
		}
	}

	if srcExpr == nil {
		return
	}

	uiContext := ""
	if ctxExpr != nil {
		var ok bool
		if uiContext, ok = constString(e.info, ctxExpr); !ok {
			return
		}
	}

	if source, ok := constString(e.info, srcExpr); ok {
		e.add(srcExpr.Pos(), uiContext, source, false)
	}
}

// handleCallExpr records Tr, TrN and NewUserError calls from the i18n
// package whose context and source are constants. Tr and TrN may be called
// on a *Bundle or through the Translator interface.
func (e *extractor) handleCallExpr(x *ast.CallExpr) {
	sel, ok := x.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}

	fn, ok := e.info.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return
	}

	if _, ok := e.i18nPkgs[fn.Pkg().Path()]; !ok {
		return
	}

	var ctxArg, srcArg int

	numerus := false

	switch fn.Name() {
	case "Tr": // Tr(ctx, "context", "source", ...)
		ctxArg, srcArg = 1, 2
	case "TrN": // TrN(ctx, "context", "source", n, ...)
		ctxArg, srcArg = 1, 2
		numerus = true
	case "NewUserError": // NewUserError(ctx, t, "context", "source", ...)
		ctxArg, srcArg = 2, 3
	default:
		return
	}

	if len(x.Args) <= srcArg {
		return
	}

	uiContext, ok1 := constString(e.info, x.Args[ctxArg])

	source, ok2 := constString(e.info, x.Args[srcArg])
	if ok1 && ok2 {
		e.add(x.Args[srcArg].Pos(), uiContext, source, numerus)
	}
}

// add records a reference to a message, normalising the file path relative
// to the root directory.
func (e *extractor) add(pos token.Pos, uiContext, source string, numerus bool) {
	p := e.fset.Position(pos)

	file := p.Filename
	if rel, err := filepath.Rel(e.relRoot, file); err == nil {
		file = rel
	}

	k := key{ctx: uiContext, source: source}

	f, ok := e.found[k]
	if !ok {
		f = &found{}
		e.found[k] = f
	}

	f.numerus = f.numerus || numerus
	f.refs = append(f.refs, ref{file: filepath.ToSlash(file), line: p.Line})
}
