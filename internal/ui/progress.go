package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"jet/internal/domain"
)

// ProgressBar shows how many tests have completed and how they went
type ProgressBar struct {
	bar     *progressbar.ProgressBar
	palette Palette
	out     io.Writer
}

// NewProgressBar creates a progress bar over count tests. Unless percentage is
// set the completed count is shown next to the bar.
func NewProgressBar(count int, percentage bool, palette Palette, out io.Writer) *ProgressBar {
	p := &ProgressBar{palette: palette, out: out}

	options := []progressbar.Option{
		progressbar.OptionSetDescription(p.describe(domain.RunSummary{})),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	}
	if !percentage {
		options = append(options, progressbar.OptionShowCount())
	}

	p.bar = progressbar.NewOptions(count, options...)
	return p
}

// Update moves the bar to the number of tests counted in summary
func (p *ProgressBar) Update(summary domain.RunSummary) {
	p.bar.Describe(p.describe(summary))
	p.bar.Set(summary.NTests)
}

// Clear removes the bar from the terminal so status lines can be printed
func (p *ProgressBar) Clear() {
	p.bar.Clear()
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

func (p *ProgressBar) describe(s domain.RunSummary) string {
	return p.palette.Accent().Sprint("Running tests: ") +
		p.palette.Kind(domain.KindPass).Sprintf("[pass: %d", s.Pass) +
		" | " +
		p.palette.Kind(domain.KindFailed).Sprintf("failed: %d", s.Failed) +
		" | " +
		p.palette.Kind(domain.KindWarning).Sprintf("warning: %d", s.Warning) +
		" | " +
		p.palette.Kind(domain.KindError).Sprintf("error: %d]", s.Error)
}
