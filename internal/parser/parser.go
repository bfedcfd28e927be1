package parser

// Parser extracts failure locations from interpreter diagnostics
type Parser interface {
	ParseLocation(output string) (Location, bool)
}

// Location is a position in a source file
type Location struct {
	File   string
	Line   int
	Column int
}
