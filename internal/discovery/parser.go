package discovery

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strings"

	"jet/internal/naming"
)

// Declaration is an exported top-level function found in a unit's source
type Declaration struct {
	Name string
	Doc  string
	Line int
}

// Source is a parsed unit file
type Source struct {
	Path         string
	Package      string
	Doc          string
	Declarations []Declaration // In source order

	fset *token.FileSet
	file *ast.File
	src  []byte
}

// Parser reads unit files and extracts their declarations
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads and parses the unit at filePath
func (p *Parser) Parse(filePath string) (*Source, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing file %s: %w", filePath, err)
	}

	source := &Source{
		Path:    filePath,
		Package: file.Name.Name,
		fset:    fset,
		file:    file,
		src:     content,
	}
	if file.Doc != nil {
		source.Doc = strings.TrimSpace(file.Doc.Text())
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		// Methods are not reachable as package members
		if !ok || fn.Recv != nil || !fn.Name.IsExported() || fn.Type.TypeParams != nil {
			continue
		}

		d := Declaration{
			Name: fn.Name.Name,
			Line: fset.Position(fn.Pos()).Line,
		}
		if fn.Doc != nil {
			d.Doc = strings.TrimSpace(fn.Doc.Text())
		}
		source.Declarations = append(source.Declarations, d)
	}

	return source, nil
}

// FindTestCases lists the test function names declared in a unit without loading it
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	source, err := p.Parse(filePath)
	if err != nil {
		return nil, err
	}

	var testCases []string
	for _, d := range source.Declarations {
		if naming.IsTest(d.Name) {
			testCases = append(testCases, d.Name)
		}
	}
	return testCases, nil
}
