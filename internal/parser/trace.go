package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// The interpreter reports each frame a panic unwinds through as "file:line:col: panic",
// innermost first.
var panicLine = regexp.MustCompile(`^(?:(.*?):)?(\d+):(\d+): panic`)

// TraceParser parses the panic trace the interpreter writes to its standard error
type TraceParser struct{}

// NewTraceParser creates a new TraceParser
func NewTraceParser() *TraceParser {
	return &TraceParser{}
}

// ParseLocation returns the innermost location found in output
func (p *TraceParser) ParseLocation(output string) (Location, bool) {
	stack := p.ParseStack(output)
	if len(stack) == 0 {
		return Location{}, false
	}
	return stack[0], true
}

// ParseStack returns every location found in output, innermost first
func (p *TraceParser) ParseStack(output string) []Location {
	var stack []Location
	for _, line := range strings.Split(output, "\n") {
		match := panicLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}

		lineNo, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		col, _ := strconv.Atoi(match[3])
		stack = append(stack, Location{File: match[1], Line: lineNo, Column: col})
	}
	return stack
}
