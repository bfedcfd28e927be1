package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"jet/internal/config"
	"jet/internal/domain"
)

var fgAttributes = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

var bgAttributes = map[string]color.Attribute{
	"black":   color.BgBlack,
	"red":     color.BgRed,
	"green":   color.BgGreen,
	"yellow":  color.BgYellow,
	"blue":    color.BgBlue,
	"magenta": color.BgMagenta,
	"cyan":    color.BgCyan,
	"white":   color.BgWhite,
}

// ansiCodes are the 16-color palette indexes lipgloss understands
var ansiCodes = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

// Palette maps outcome kinds and accents to the configured color names
type Palette struct {
	colors config.Colors
}

// NewPalette creates a Palette from the configured colors
func NewPalette(colors config.Colors) Palette {
	return Palette{colors: colors}
}

// Name returns the configured color name of kind
func (p Palette) Name(kind domain.Kind) string {
	switch kind {
	case domain.KindPass:
		return normalize(p.colors.Pass)
	case domain.KindFailed:
		return normalize(p.colors.Failed)
	case domain.KindWarning:
		return normalize(p.colors.Warning)
	default:
		return normalize(p.colors.Error)
	}
}

// Kind returns the terminal color of kind
func (p Palette) Kind(kind domain.Kind) *color.Color {
	return fg(p.Name(kind))
}

// Accent returns the foreground accent color
func (p Palette) Accent() *color.Color {
	return fg(normalize(p.colors.Foreground))
}

// Banner returns the color used for titles: white on the background accent
func (p Palette) Banner() *color.Color {
	c := color.New(color.FgWhite, color.Bold)
	if attr, ok := bgAttributes[normalize(p.colors.Background)]; ok {
		c.Add(attr)
	}
	return c
}

// Tag returns the tview color tag name of kind
func (p Palette) Tag(kind domain.Kind) string {
	return tag(p.Name(kind))
}

// AccentTag returns the tview color tag name of the foreground accent
func (p Palette) AccentTag() string {
	return tag(normalize(p.colors.Foreground))
}

// Lipgloss returns the lipgloss color of kind
func (p Palette) Lipgloss(kind domain.Kind) lipgloss.Color {
	return lipColor(p.Name(kind))
}

// AccentLipgloss returns the lipgloss color of the foreground accent
func (p Palette) AccentLipgloss() lipgloss.Color {
	return lipColor(normalize(p.colors.Foreground))
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func fg(name string) *color.Color {
	if attr, ok := fgAttributes[name]; ok {
		return color.New(attr)
	}
	return color.New(color.Reset)
}

func tag(name string) string {
	if name == "" {
		return "white"
	}
	return name
}

// lipColor accepts names, palette indexes and hex colors
func lipColor(name string) lipgloss.Color {
	if code, ok := ansiCodes[name]; ok {
		return lipgloss.Color(code)
	}
	return lipgloss.Color(name)
}
