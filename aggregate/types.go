package aggregate

import "github.com/bitrise-steplib/steps-robot-framework-results/model"

// Summary ...
type Summary struct {
	Totals        model.StatCounter `json:"totals"`
	SuiteCount    int               `json:"suite_count"`
	TestCount     int               `json:"test_count"`
	OverallStatus model.Status      `json:"overall_status"`
}

// Details ...
type Details struct {
	Suites      []SuiteDetail `json:"suites"`
	FailedTests []FailedTest  `json:"failed_tests"`
	Tags        []NamedTotals `json:"tags"`
	Criticality []NamedTotals `json:"criticality"`
}

// SuiteDetail ...
type SuiteDetail struct {
	Name   string            `json:"name"`
	Status model.Status      `json:"status"`
	Totals model.StatCounter `json:"totals"`
	Tests  []TestDetail      `json:"tests"`
}

// TestDetail ...
type TestDetail struct {
	Name      string       `json:"name"`
	Status    model.Status `json:"status"`
	ElapsedMs int64        `json:"elapsed_ms"`
}

// FailedTest ...
type FailedTest struct {
	Name        string  `json:"name"`
	Suite       string  `json:"suite"`
	Message     string  `json:"message"`
	KeywordPath *string `json:"keyword_path"`
}

// NamedTotals ...
type NamedTotals struct {
	Name   string            `json:"name"`
	Totals model.StatCounter `json:"totals"`
}

// Errors ...
type Errors struct {
	ExecutionErrors    []model.ExecutionError `json:"execution_errors"`
	FailedTestMessages []FailedTestMessage    `json:"failed_test_messages"`
	KeywordErrors      []KeywordError         `json:"keyword_errors"`
}

// FailedTestMessage ...
type FailedTestMessage struct {
	Test        string  `json:"test"`
	Suite       string  `json:"suite"`
	Message     string  `json:"message"`
	KeywordPath *string `json:"keyword_path"`
}

// KeywordError ...
type KeywordError struct {
	Keyword   string `json:"keyword"`
	Test      string `json:"test"`
	Suite     string `json:"suite"`
	Message   string `json:"message"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// Timing ...
type Timing struct {
	Totals       ElapsedTotals `json:"totals"`
	SlowestTests []SlowTest    `json:"slowest_tests"`
	// SlowestKeywords is nil unless keyword timing was requested.
	SlowestKeywords *[]SlowKeyword `json:"slowest_keywords,omitempty"`
}

// ElapsedTotals ...
type ElapsedTotals struct {
	ElapsedMs int64 `json:"elapsed_ms"`
}

// SlowTest ...
type SlowTest struct {
	Name      string `json:"name"`
	Suite     string `json:"suite"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// SlowKeyword ...
type SlowKeyword struct {
	Name      string `json:"name"`
	Suite     string `json:"suite"`
	Test      string `json:"test"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// TimingOptions ...
type TimingOptions struct {
	MaxSlowestTests    int
	MaxSlowestKeywords int
	IncludeKeywords    bool
}
