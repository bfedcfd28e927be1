package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"-"`
	TestPath    string `yaml:"test_path"`

	// Output settings
	ResultsFile string `yaml:"results_file"`

	// Execution settings
	Workers int `yaml:"workers"`

	// Paths to ignore when scanning
	PathsToIgnore []string `yaml:"ignore"`

	// Classify maps failure aliases to outcome kinds, overriding the defaults
	Classify map[string]string `yaml:"classify"`

	// Display settings
	Colors    Colors `yaml:"colors"`
	Buffer    int    `yaml:"buffer"`
	TextWidth int    `yaml:"text_width"`
	DocWidth  int    `yaml:"doc_width"`

	History  History  `yaml:"history"`
	Database Database `yaml:"database"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Colors holds the color names used per outcome kind and for accents
type Colors struct {
	Pass       string `yaml:"pass"`
	Failed     string `yaml:"failed"`
	Warning    string `yaml:"warning"`
	Error      string `yaml:"error"`
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`
}

// History configures the run archive
type History struct {
	Disabled bool   `yaml:"disabled"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Limit    int    `yaml:"limit"`
}

// Database holds the MySQL server settings used by the mysql history driver
type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Flags holds command-line flags
type Flags struct {
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
	Verbose         bool

	Buffer    int
	TextWidth int
	DocWidth  int
	Plain     bool

	ListTests bool
	ListDocs  bool
	Limit     int

	Colors Colors
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath: DefaultProjectPath,
		TestPath:    DefaultTestPath,
		ResultsFile: DefaultResultsFile,
		Workers:     DefaultWorkers,
		Colors:      DefaultColors,
		Buffer:      DefaultBuffer,
		TextWidth:   DefaultTextWidth,
		DocWidth:    DefaultDocWidth,
		History: History{
			Driver: DefaultHistoryDriver,
			Limit:  DefaultHistoryLimit,
		},
		Database: DefaultDatabase,
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load builds the configuration of the project at projectPath: defaults, then
// jet.yaml, then .env and the process environment, then flags.
func Load(projectPath string, flags Flags) (*Config, error) {
	cfg := New()
	if projectPath != "" {
		cfg.ProjectPath = projectPath
	}

	if err := cfg.LoadFile(filepath.Join(cfg.ProjectPath, DefaultConfigFile)); err != nil {
		return nil, err
	}
	cfg.LoadEnv()
	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFlags overrides settings with the flags that were set
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags

	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Buffer > 0 {
		c.Buffer = flags.Buffer
	}
	if flags.TextWidth > 0 {
		c.TextWidth = flags.TextWidth
	}
	if flags.DocWidth > 0 {
		c.DocWidth = flags.DocWidth
	}
	if flags.NoHistory {
		c.History.Disabled = true
	}
	if flags.Limit > 0 {
		c.History.Limit = flags.Limit
	}
	c.Colors = mergeColors(c.Colors, flags.Colors)
}

// Validate checks the settings that have a restricted range
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Buffer < 0 {
		return fmt.Errorf("buffer must not be negative, got %d", c.Buffer)
	}
	switch c.History.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported history driver %q", c.History.Driver)
	}
	for alias, kind := range c.Classify {
		switch kind {
		case "Pass", "Warning", "Failed", "Error":
		default:
			return fmt.Errorf("classify %s: unknown outcome kind %q", alias, kind)
		}
	}
	return nil
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to the project path if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	if filepath.IsAbs(c.TestPath) {
		return c.TestPath
	}
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the absolute path of the results file in the test directory,
// so run and see always use the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.GetTestPath(), c.ResultsFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetHistoryDSN returns the data source name of the run archive
func (c *Config) GetHistoryDSN() string {
	if c.History.DSN != "" {
		return c.History.DSN
	}

	if c.History.Driver == "mysql" {
		dsn := mysql.NewConfig()
		dsn.User = c.Database.Username
		dsn.Passwd = c.Database.Password
		dsn.Net = "tcp"
		dsn.Addr = c.Database.Host + ":" + c.Database.Port
		dsn.DBName = c.Database.Name
		dsn.ParseTime = true
		return dsn.FormatDSN()
	}

	return filepath.Join(c.GetTestPath(), filepath.FromSlash(DefaultHistoryFile))
}

// ServerDSN returns the MySQL DSN without a database, used to create it
func (c *Config) ServerDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.Database.Username
	dsn.Passwd = c.Database.Password
	dsn.Net = "tcp"
	dsn.Addr = c.Database.Host + ":" + c.Database.Port
	return dsn.FormatDSN()
}

func mergeColors(base, override Colors) Colors {
	pick := func(a, b string) string {
		if strings.TrimSpace(b) != "" {
			return b
		}
		return a
	}
	return Colors{
		Pass:       pick(base.Pass, override.Pass),
		Failed:     pick(base.Failed, override.Failed),
		Warning:    pick(base.Warning, override.Warning),
		Error:      pick(base.Error, override.Error),
		Foreground: pick(base.Foreground, override.Foreground),
		Background: pick(base.Background, override.Background),
	}
}
