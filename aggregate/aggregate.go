package aggregate

import (
	"sort"

	"github.com/bitrise-steplib/steps-robot-framework-results/model"
	"github.com/bitrise-steplib/steps-robot-framework-results/traverse"
)

type testKey struct {
	suite string
	test  string
}

// Aggregator computes report sections from a result tree and its flattened collection.
type Aggregator struct {
	result     *model.Result
	collection traverse.Collection
	// first failing step per (suite, test)
	firstFailures map[testKey]traverse.FailingStep
}

// NewAggregator ...
func NewAggregator(result *model.Result, collection traverse.Collection) Aggregator {
	firstFailures := map[testKey]traverse.FailingStep{}
	for _, step := range collection.FailingSteps {
		key := testKey{suite: step.Suite, test: step.Test}
		if _, ok := firstFailures[key]; !ok {
			firstFailures[key] = step
		}
	}

	return Aggregator{
		result:        result,
		collection:    collection,
		firstFailures: firstFailures,
	}
}

// Summary uses the document's own statistics for the totals.
func (a Aggregator) Summary() Summary {
	return Summary{
		Totals:        a.result.Statistics,
		SuiteCount:    len(a.collection.Suites),
		TestCount:     len(a.collection.Tests),
		OverallStatus: a.result.Status(),
	}
}

// Details ...
func (a Aggregator) Details() Details {
	details := Details{
		Suites:      make([]SuiteDetail, 0, len(a.collection.Suites)),
		FailedTests: []FailedTest{},
	}

	for _, suite := range a.collection.Suites {
		name := suite.LongName
		if name == "" {
			name = suite.Name
		}
		tests := make([]TestDetail, 0, len(suite.Tests))
		for _, test := range suite.Tests {
			tests = append(tests, TestDetail{Name: test.Name, Status: test.Status, ElapsedMs: test.ElapsedMs})
		}
		details.Suites = append(details.Suites, SuiteDetail{
			Name:   name,
			Status: suite.Status,
			Totals: suite.Statistics,
			Tests:  tests,
		})
	}

	tagStats := map[string]*model.StatCounter{}
	criticalityStats := map[model.Criticality]*model.StatCounter{}
	for _, group := range model.CriticalityGroups {
		criticalityStats[group] = &model.StatCounter{}
	}

	for _, record := range a.collection.Tests {
		test := record.Test

		seen := map[string]bool{}
		for _, tag := range test.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true

			counter, ok := tagStats[tag]
			if !ok {
				counter = &model.StatCounter{}
				tagStats[tag] = counter
			}
			counter.Add(test.Status)
		}

		criticalityStats[record.Criticality].Add(test.Status)

		if test.Status.IsFailed() {
			details.FailedTests = append(details.FailedTests, FailedTest{
				Name:        test.Name,
				Suite:       record.Suite,
				Message:     test.Message,
				KeywordPath: a.keywordPath(record),
			})
		}
	}

	details.Tags = sortedTotals(tagStats)

	details.Criticality = make([]NamedTotals, 0, len(model.CriticalityGroups))
	for _, group := range model.CriticalityGroups {
		details.Criticality = append(details.Criticality, NamedTotals{Name: group.String(), Totals: *criticalityStats[group]})
	}
	sort.SliceStable(details.Criticality, func(i, j int) bool {
		return details.Criticality[i].Name < details.Criticality[j].Name
	})

	return details
}

// Errors ...
func (a Aggregator) Errors() Errors {
	errs := Errors{
		ExecutionErrors:    make([]model.ExecutionError, 0, len(a.result.Errors)),
		FailedTestMessages: []FailedTestMessage{},
		KeywordErrors:      make([]KeywordError, 0, len(a.collection.FailingSteps)),
	}

	errs.ExecutionErrors = append(errs.ExecutionErrors, a.result.Errors...)

	for _, record := range a.collection.Tests {
		if !record.Test.Status.IsFailed() {
			continue
		}
		errs.FailedTestMessages = append(errs.FailedTestMessages, FailedTestMessage{
			Test:        record.Test.Name,
			Suite:       record.Suite,
			Message:     record.Test.Message,
			KeywordPath: a.keywordPath(record),
		})
	}

	for _, step := range a.collection.FailingSteps {
		errs.KeywordErrors = append(errs.KeywordErrors, KeywordError{
			Keyword:   step.Keyword,
			Test:      step.Test,
			Suite:     step.Suite,
			Message:   step.Message,
			ElapsedMs: step.ElapsedMs,
		})
	}

	return errs
}

// Timing ranks tests (and keywords when requested) by elapsed time. Ties keep document order.
func (a Aggregator) Timing(opts TimingOptions) Timing {
	tests := make([]SlowTest, 0, len(a.collection.Tests))
	for _, record := range a.collection.Tests {
		tests = append(tests, SlowTest{Name: record.Test.Name, Suite: record.Suite, ElapsedMs: record.Test.ElapsedMs})
	}
	sort.SliceStable(tests, func(i, j int) bool {
		return tests[i].ElapsedMs > tests[j].ElapsedMs
	})

	timing := Timing{
		Totals:       ElapsedTotals{ElapsedMs: a.result.ElapsedMs()},
		SlowestTests: tests[:limit(opts.MaxSlowestTests, len(tests))],
	}

	if opts.IncludeKeywords {
		keywords := make([]SlowKeyword, 0, len(a.collection.Steps))
		for _, record := range a.collection.Steps {
			keywords = append(keywords, SlowKeyword{
				Name:      record.Step.Name,
				Suite:     record.Suite,
				Test:      record.Test,
				ElapsedMs: record.Step.ElapsedMs,
			})
		}
		sort.SliceStable(keywords, func(i, j int) bool {
			return keywords[i].ElapsedMs > keywords[j].ElapsedMs
		})
		keywords = keywords[:limit(opts.MaxSlowestKeywords, len(keywords))]
		timing.SlowestKeywords = &keywords
	}

	return timing
}

// keywordPath is suite.test.keyword of the first failing step recorded for the test, if any.
func (a Aggregator) keywordPath(record traverse.TestRecord) *string {
	step, ok := a.firstFailures[testKey{suite: record.Suite, test: record.Test.Name}]
	if !ok || step.Keyword == "" {
		return nil
	}
	path := record.Suite + "." + record.Test.Name + "." + step.Keyword
	return &path
}

func sortedTotals(stats map[string]*model.StatCounter) []NamedTotals {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	totals := make([]NamedTotals, 0, len(names))
	for _, name := range names {
		totals = append(totals, NamedTotals{Name: name, Totals: *stats[name]})
	}
	return totals
}

func limit(n, length int) int {
	if n < 0 {
		return 0
	}
	if n > length {
		return length
	}
	return n
}
