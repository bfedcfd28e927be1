package report

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"jet/internal/domain"
	"jet/internal/naming"
)

const (
	failedHeadline   = "TEST FAILED"
	observationTitle = "Expected Behaviour: "
	outputTitle      = "Captured Output"
	localsTitle      = "Local variables"
)

// Assembler builds report blocks for diagnostics
type Assembler struct {
	// Buffer is the number of source lines shown above the failing line
	Buffer int
	// TextWidth is the column the descriptions are wrapped at
	TextWidth int
}

// Assemble returns the blocks of diag in display order: headline, expected
// behaviour, captured output (only when there is some), source context and locals.
func (a Assembler) Assemble(diag domain.Diagnostic) []Block {
	blocks := []Block{
		a.headline(diag),
		{
			Type:  ObservationBlock,
			Style: diag.Kind,
			Title: observationTitle,
			Body:  boundText(observationTitle, diag.TestDoc, a.TextWidth),
		},
	}

	if diag.CapturedOutput != "" {
		blocks = append(blocks, Block{
			Type:  OutputBlock,
			Style: diag.Kind,
			Title: outputTitle,
			Body:  diag.CapturedOutput,
		})
	}

	blocks = append(blocks, a.source(diag), locals(diag))
	return blocks
}

func (a Assembler) headline(diag domain.Diagnostic) Block {
	title := failedHeadline
	if diag.Kind != domain.KindFailed {
		title = naming.Headline(diag.AliasName)
	}

	b := Block{Type: HeadlineBlock, Style: diag.Kind, Title: title}
	if diag.Description != "" {
		b.Body = boundText(" "+title+" ", diag.Description, a.TextWidth)
	}
	return b
}

func (a Assembler) source(diag domain.Diagnostic) Block {
	b := Block{
		Type:  SourceBlock,
		Style: diag.Kind,
		Title: fmt.Sprintf("%s @ %s", diag.TestName, diag.UnitName),
	}

	lines, err := readWindow(diag.SourceFile, diag.SourceLine, a.Buffer)
	if err != nil {
		b.Unavailable = true
		b.Body = err.Error()
		return b
	}
	b.Lines = lines
	return b
}

func locals(diag domain.Diagnostic) Block {
	b := Block{Type: LocalsBlock, Style: diag.Kind, Title: localsTitle}
	for i, v := range diag.LocalVariables {
		b.Lines = append(b.Lines, Line{Number: i + 1, Text: v.Name + " = " + v.Text()})
	}
	return b
}

// readWindow returns lines [max(1, line-buffer), line] of path
func readWindow(path string, line, buffer int) ([]Line, error) {
	if line < 1 {
		return nil, fmt.Errorf("no source line recorded for %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	start := max(1, line-buffer)
	var lines []Line

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; scanner.Scan() && n <= line; n++ {
		if n < start {
			continue
		}
		lines = append(lines, Line{Number: n, Text: scanner.Text(), Failing: n == line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 || !lines[len(lines)-1].Failing {
		return nil, fmt.Errorf("%s has no line %d", path, line)
	}
	return lines, nil
}

// boundText wraps desc as if it followed title on the first line, then drops the
// title so the caller can style both parts separately.
func boundText(title, desc string, width int) string {
	if width <= 0 {
		return desc
	}
	wrapped := wordwrap.String(title+desc, width)
	if rest, ok := strings.CutPrefix(wrapped, title); ok {
		return rest
	}
	// The wrap may have eaten the spaces around the title
	rest := strings.TrimPrefix(strings.TrimLeft(wrapped, " "), strings.TrimSpace(title))
	return strings.TrimLeft(rest, " \n")
}
