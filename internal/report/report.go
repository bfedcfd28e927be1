// Package report turns one stored diagnostic into the ordered blocks a renderer
// displays. It reads the failing source file but draws nothing itself.
package report

import (
	"jet/internal/domain"
)

// BlockType identifies the section a Block represents
type BlockType int

const (
	HeadlineBlock BlockType = iota
	ObservationBlock
	OutputBlock
	SourceBlock
	LocalsBlock
)

func (t BlockType) String() string {
	switch t {
	case HeadlineBlock:
		return "headline"
	case ObservationBlock:
		return "observation"
	case OutputBlock:
		return "output"
	case SourceBlock:
		return "source"
	case LocalsBlock:
		return "locals"
	}
	return "unknown"
}

// Block is one section of a diagnostic report
type Block struct {
	Type BlockType
	// Style is the outcome kind the renderer picks colors by
	Style domain.Kind
	Title string
	Body  string
	Lines []Line
	// Unavailable is set on a source block whose file could not be read
	Unavailable bool
}

// Line is a numbered line of a source or locals block
type Line struct {
	Number  int
	Text    string
	Failing bool
}

// Renderer draws assembled blocks within a width budget
type Renderer interface {
	Render(blocks []Block, width int) error
}
