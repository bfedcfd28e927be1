package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default directory holding test units
	DefaultTestPath = "tests"
	// DefaultResultsFile is the name of the results file written into the test directory
	DefaultResultsFile = "jet.results.json"
	// DefaultConfigFile is the optional configuration file in the project directory
	DefaultConfigFile = "jet.yaml"
	// DefaultWorkers runs units sequentially
	DefaultWorkers = 1

	// DefaultBuffer is the number of source lines shown above a failing line
	DefaultBuffer = 8
	// DefaultTextWidth is the wrap width of report descriptions
	DefaultTextWidth = 60
	// DefaultDocWidth is the wrap width of documentation in choosers
	DefaultDocWidth = 120

	// DefaultHistoryDriver stores the run history in a local SQLite file
	DefaultHistoryDriver = "sqlite"
	// DefaultHistoryFile is the SQLite history database, relative to the test directory
	DefaultHistoryFile = ".jet/history.db"
	// DefaultHistoryLimit is the number of runs listed by the history command
	DefaultHistoryLimit = 20
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"testdata",
}

// DefaultColors are the outcome and accent colors
var DefaultColors = Colors{
	Pass:       "green",
	Failed:     "red",
	Warning:    "yellow",
	Error:      "magenta",
	Foreground: "cyan",
	Background: "blue",
}

// DefaultDatabase is the MySQL server used when the history driver is mysql
var DefaultDatabase = Database{
	Host:     "127.0.0.1",
	Port:     "3306",
	Username: "root",
	Name:     "jet",
}
