package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the classified outcome of a test routine
type Kind string

const (
	KindPass    Kind = "Pass"
	KindWarning Kind = "Warning"
	KindFailed  Kind = "Failed"
	KindError   Kind = "Error"
)

// SummaryOrder is the order outcome kinds are listed in summaries
var SummaryOrder = []Kind{KindPass, KindFailed, KindWarning, KindError}

// Outcome is the result of running one test case
type Outcome struct {
	Kind       Kind
	Doc        string      // Test documentation, for display
	Output     string      // Standard output written during the call
	Diagnostic *Diagnostic // Nil for Pass
}

// Diagnostic is the forensic record attached to a non-passing outcome
type Diagnostic struct {
	Kind           Kind      `json:"kind"`
	AliasName      string    `json:"aliasName"`
	Description    string    `json:"description"`
	SourceFile     string    `json:"sourceFile"`
	SourceLine     int       `json:"sourceLine"`
	LocalVariables Variables `json:"localVariables"`
	CapturedOutput string    `json:"capturedOutput"`
	TestName       string    `json:"testName"`
	TestDoc        string    `json:"testDoc"`
	UnitName       string    `json:"unitName"`
	UnitDoc        string    `json:"unitDoc"`
	UnitPath       string    `json:"unitPath"`
}

// Variable is a captured local with its value already encoded as JSON
type Variable struct {
	Name  string
	Value json.RawMessage
}

// Text returns the value for display; strings are shown unquoted
func (v Variable) Text() string {
	var s string
	if err := json.Unmarshal(v.Value, &s); err == nil {
		return s
	}
	return string(v.Value)
}

// Variables is an ordered name -> value mapping, persisted as a JSON object
type Variables []Variable

// MarshalJSON writes the variables as an object, keeping their order
func (vs Variables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range vs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(v.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(v.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order and compacting each value
func (vs *Variables) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*vs = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("local variables: expected object, got %v", tok)
	}

	var out Variables
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("local variables: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("local variable %s: %w", name, err)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return fmt.Errorf("local variable %s: %w", name, err)
		}
		out = append(out, Variable{Name: name, Value: compact.Bytes()})
	}
	*vs = out
	return nil
}

// RunSummary holds the outcome counts of one run
type RunSummary struct {
	NTests  int `json:"n_tests"`
	Pass    int `json:"Pass"`
	Failed  int `json:"Failed"`
	Warning int `json:"Warning"`
	Error   int `json:"Error"`
}

// Add counts one completed test of the given kind
func (s *RunSummary) Add(kind Kind) {
	s.NTests++
	switch kind {
	case KindPass:
		s.Pass++
	case KindFailed:
		s.Failed++
	case KindWarning:
		s.Warning++
	default:
		s.Error++
	}
}

// Count returns the counter for kind
func (s RunSummary) Count(kind Kind) int {
	switch kind {
	case KindPass:
		return s.Pass
	case KindFailed:
		return s.Failed
	case KindWarning:
		return s.Warning
	case KindError:
		return s.Error
	}
	return 0
}

// Merge adds the counters of other
func (s *RunSummary) Merge(other RunSummary) {
	s.NTests += other.NTests
	s.Pass += other.Pass
	s.Failed += other.Failed
	s.Warning += other.Warning
	s.Error += other.Error
}

// Balanced reports whether the per-kind counters add up to the test count
func (s RunSummary) Balanced() bool {
	return s.Pass+s.Failed+s.Warning+s.Error == s.NTests
}

// RunMeta contains metadata about a run
type RunMeta struct {
	RunID           string  `json:"run_id"`
	Timestamp       string  `json:"timestamp"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
}

// NewRunMeta builds run metadata stamped with the current time
func NewRunMeta(runID string, duration time.Duration, workers int) RunMeta {
	return RunMeta{
		RunID:           runID,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		DurationSeconds: duration.Seconds(),
		Workers:         workers,
	}
}

// ResultRecord is the persisted form of a run
type ResultRecord struct {
	Summary     RunSummary   `json:"summary"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Meta        RunMeta      `json:"meta"`
}
