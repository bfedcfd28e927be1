package cli

import "jet/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	Verbose     bool

	TestPath        string
	Files           []string
	RunAll          bool
	Quiet           bool
	Percentage      bool
	Workers         int
	Filter          string
	TestFilter      string
	LenientWarnings bool
	Watch           bool
	NoHistory       bool

	Buffer    int
	TextWidth int
	DocWidth  int
	Plain     bool

	ListTests bool
	ListDocs  bool
	Limit     int

	PassColor    string
	FailedColor  string
	WarningColor string
	ErrorColor   string
	Foreground   string
	Background   string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		TestPath:        f.TestPath,
		Files:           f.Files,
		RunAll:          f.RunAll,
		Quiet:           f.Quiet,
		Percentage:      f.Percentage,
		Workers:         f.Workers,
		Filter:          f.Filter,
		TestFilter:      f.TestFilter,
		LenientWarnings: f.LenientWarnings,
		Watch:           f.Watch,
		NoHistory:       f.NoHistory,
		Verbose:         f.Verbose,
		Buffer:          f.Buffer,
		TextWidth:       f.TextWidth,
		DocWidth:        f.DocWidth,
		Plain:           f.Plain,
		ListTests:       f.ListTests,
		ListDocs:        f.ListDocs,
		Limit:           f.Limit,
		Colors: config.Colors{
			Pass:       f.PassColor,
			Failed:     f.FailedColor,
			Warning:    f.WarningColor,
			Error:      f.ErrorColor,
			Foreground: f.Foreground,
			Background: f.Background,
		},
	}
}
