package model

import (
	"strings"

	"github.com/hashicorp/go-version"
)

// Status ...
type Status string

// Statuses used by Robot Framework result documents.
const (
	StatusPass   Status = "PASS"
	StatusFail   Status = "FAIL"
	StatusSkip   Status = "SKIP"
	StatusNotRun Status = "NOT RUN"
)

func parseStatus(s string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(s)))
}

// IsFailed ...
func (s Status) IsFailed() bool {
	return s == StatusFail
}

// StatCounter holds passed/failed/skipped counts. Total always equals the sum of the others.
type StatCounter struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Add counts one test with the given status. Anything that is neither PASS nor FAIL counts as skipped.
func (c *StatCounter) Add(status Status) {
	c.Total++
	switch status {
	case StatusPass:
		c.Passed++
	case StatusFail:
		c.Failed++
	default:
		c.Skipped++
	}
}

// Result is the root of a loaded result document.
type Result struct {
	Suite      *Suite
	Errors     []ExecutionError
	Statistics StatCounter

	Generator        string
	GeneratorVersion *version.Version
}

// ElapsedMs ...
func (r *Result) ElapsedMs() int64 {
	if r.Suite == nil {
		return 0
	}
	return r.Suite.ElapsedMs
}

// Status ...
func (r *Result) Status() Status {
	if r.Suite == nil {
		return ""
	}
	return r.Suite.Status
}

// Suite ...
type Suite struct {
	Name      string
	LongName  string
	Source    string
	Status    Status
	Message   string
	ElapsedMs int64

	Setup    *Step
	Teardown *Step
	Suites   []*Suite
	Tests    []*Test

	// Statistics covers every test in the subtree.
	Statistics StatCounter
}

// Test ...
type Test struct {
	Name      string
	Status    Status
	Message   string
	ElapsedMs int64
	Tags      []string

	// Critical is set only when the document carries an explicit criticality flag.
	Critical *bool

	Steps []*Step
}

// Step is a keyword (or setup/teardown) executed inside a suite or test.
type Step struct {
	Name      string
	Type      string
	Status    Status
	Message   string
	ElapsedMs int64
	Steps     []*Step
}

// ExecutionError is a document level message not attached to any suite or test.
type ExecutionError struct {
	Level     string  `json:"level"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
	// Source is nil for messages without an origin, which output.xml never records.
	Source    *string `json:"source"`
}

func (s *Suite) computeStatistics() StatCounter {
	var stats StatCounter
	for _, test := range s.Tests {
		stats.Add(test.Status)
	}
	for _, child := range s.Suites {
		childStats := child.computeStatistics()
		stats.Passed += childStats.Passed
		stats.Failed += childStats.Failed
		stats.Skipped += childStats.Skipped
		stats.Total += childStats.Total
	}
	s.Statistics = stats
	return stats
}
