// Package instrument adds tracing calls to test source so a failing call can report
// where it stopped and which variables were bound there.
//
// The rewrite never adds or removes line breaks before the last declaration, so line
// numbers reported by the tracer match the file on disk.
package instrument

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"strings"
)

const (
	// ImportPath is the package path the rewritten source imports the tracer from
	ImportPath = "jet/trace"
	// PackageName is the declared name of the tracer package
	PackageName = "trace"

	alias     = "__jet"
	frameVar  = "__jetf"
	panicVar  = "__jetr"
	blankName = "_"
)

type insertion struct {
	offset int
	seq    int
	text   string
}

type rewriter struct {
	fset  *token.FileSet
	tf    *token.File
	edits []insertion
}

// Rewrite returns src with tracing calls inserted. file must be the result of parsing
// src with fset.
func Rewrite(fset *token.FileSet, file *ast.File, src []byte) ([]byte, error) {
	tf := fset.File(file.Package)
	if tf == nil {
		return nil, fmt.Errorf("instrument: file set does not contain %s", file.Name.Name)
	}
	if tf.Size() != len(src) {
		return nil, fmt.Errorf("instrument: source size %d does not match parsed file size %d", len(src), tf.Size())
	}

	r := &rewriter{fset: fset, tf: tf}

	// Import on the package line so nothing below moves
	r.insert(file.Name.End(), fmt.Sprintf("; import %s %q", alias, ImportPath))

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncDecl:
			if node.Body != nil {
				r.function(node.Type, node.Body)
			}
		case *ast.FuncLit:
			r.function(node.Type, node.Body)
		case *ast.BlockStmt:
			r.statements(node.List)
		case *ast.CaseClause:
			r.statements(node.Body)
		case *ast.CommClause:
			r.statements(node.Body)
		case *ast.RangeStmt:
			r.rangeBindings(node)
		}
		return true
	})

	var out bytes.Buffer
	out.Grow(len(src) + len(r.edits)*32)

	sort.SliceStable(r.edits, func(i, j int) bool {
		if r.edits[i].offset != r.edits[j].offset {
			return r.edits[i].offset < r.edits[j].offset
		}
		return r.edits[i].seq < r.edits[j].seq
	})

	last := 0
	for _, e := range r.edits {
		out.Write(src[last:e.offset])
		out.WriteString(e.text)
		last = e.offset
	}
	out.Write(src[last:])

	// Keeps the import used in files without function bodies
	fmt.Fprintf(&out, "\n\nvar _ = %s.Mark\n", alias)

	return out.Bytes(), nil
}

func (r *rewriter) insert(pos token.Pos, text string) {
	r.edits = append(r.edits, insertion{offset: r.tf.Offset(pos), seq: len(r.edits), text: text})
}

func (r *rewriter) line(pos token.Pos) int {
	return r.fset.Position(pos).Line
}

// function opens a frame on entry and binds parameters. The deferred closure closes
// the frame and, when the call unwinds with a panic, records it as failed before
// passing the panic on, so a panic inside a return expression still points here.
func (r *rewriter) function(typ *ast.FuncType, body *ast.BlockStmt) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s := %s.Enter(); ", frameVar, alias)
	fmt.Fprintf(&b, "defer func() { if %s := recover(); %s != nil { %s.Fail(%s); panic(%s) }; %s.Leave(%s) }(); ",
		panicVar, panicVar, alias, frameVar, panicVar, alias, frameVar)
	if typ.Params != nil {
		for _, field := range typ.Params.List {
			for _, name := range field.Names {
				if name.Name != blankName {
					b.WriteString(bindCall(name.Name) + "; ")
				}
			}
		}
	}
	r.insert(body.Lbrace+1, b.String())
}

func (r *rewriter) statements(list []ast.Stmt) {
	for _, stmt := range list {
		switch stmt.(type) {
		case *ast.EmptyStmt, *ast.CaseClause, *ast.CommClause:
			continue
		}
		r.insert(stmt.Pos(), fmt.Sprintf("%s.Mark(%d); ", alias, r.line(stmt.Pos())))

		names := boundNames(stmt)
		if len(names) == 0 {
			continue
		}
		calls := make([]string, 0, len(names))
		for _, name := range names {
			calls = append(calls, bindCall(name))
		}
		r.insert(stmt.End(), "; "+strings.Join(calls, "; "))
	}
}

func (r *rewriter) rangeBindings(stmt *ast.RangeStmt) {
	var b strings.Builder
	for _, expr := range []ast.Expr{stmt.Key, stmt.Value} {
		if ident, ok := expr.(*ast.Ident); ok && ident.Name != blankName {
			b.WriteString(bindCall(ident.Name) + "; ")
		}
	}
	if b.Len() > 0 {
		r.insert(stmt.Body.Lbrace+1, b.String())
	}
}

func bindCall(name string) string {
	return fmt.Sprintf("%s.Bind(%q, %s)", alias, name, name)
}

// boundNames lists the plain identifiers a statement assigns.
func boundNames(stmt ast.Stmt) []string {
	var names []string
	add := func(expr ast.Expr) {
		if ident, ok := expr.(*ast.Ident); ok && ident.Name != blankName {
			names = append(names, ident.Name)
		}
	}

	switch s := stmt.(type) {
	case *ast.AssignStmt:
		for _, lhs := range s.Lhs {
			add(lhs)
		}
	case *ast.IncDecStmt:
		add(s.X)
	case *ast.DeclStmt:
		gen, ok := s.Decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			return nil
		}
		for _, spec := range gen.Specs {
			if vs, ok := spec.(*ast.ValueSpec); ok {
				for _, name := range vs.Names {
					add(name)
				}
			}
		}
	}
	return names
}
