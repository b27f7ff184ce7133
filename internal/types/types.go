package types

import (
	"time"

	"github.com/gnolang/tmin/internal/reducer"
)

// OracleConfig describes the oracle a file is reduced against. Every set
// field adds a predicate, and a candidate must satisfy all of them.
type OracleConfig struct {
	Contains string `yaml:"contains,omitempty" json:"contains,omitempty"`
	Regex    string `yaml:"regex,omitempty" json:"regex,omitempty"`

	Command  string `yaml:"command,omitempty" json:"command,omitempty"`
	Stdin    bool   `yaml:"stdin,omitempty" json:"stdin,omitempty"`
	ExitCode *int   `yaml:"exit_code,omitempty" json:"exit_code,omitempty"`
	Output   string `yaml:"output,omitempty" json:"output,omitempty"`

	Analyzer string `yaml:"analyzer,omitempty" json:"analyzer,omitempty"`
	Mode     string `yaml:"mode,omitempty" json:"mode,omitempty"`
	Message  string `yaml:"message,omitempty" json:"message,omitempty"`

	// Timeout bounds a single evaluation. Zero means no bound.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Complexity is the summed cyclomatic complexity of the functions in a Go
// text, before and after reduction.
type Complexity struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Report describes the reduction of one file.
type Report struct {
	RunID     string `json:"run_id"`
	Filename  string `json:"filename"`
	Language  string `json:"language"`
	Original  string `json:"-"`
	Reduced   string `json:"reduced"`
	Extracted string `json:"extracted"`
	// Output is the path the result was written to, if any.
	Output     string          `json:"output,omitempty"`
	Phases     []reducer.Phase `json:"phases"`
	Stats      reducer.Stats   `json:"stats"`
	Complexity *Complexity     `json:"complexity,omitempty"`
	Duration   time.Duration   `json:"duration"`
}

// Ratio is the reduced size as a fraction of the original size.
func (r *Report) Ratio() float64 {
	if len(r.Original) == 0 {
		return 1
	}
	return float64(len(r.Reduced)) / float64(len(r.Original))
}
