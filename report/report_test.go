package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-robot-framework-results/aggregate"
	"github.com/bitrise-steplib/steps-robot-framework-results/model"
	"github.com/bitrise-steplib/steps-robot-framework-results/traverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timingOptions = aggregate.TimingOptions{MaxSlowestTests: 10, MaxSlowestKeywords: 10}

type stubAggregator struct {
	calls []string
}

func (s *stubAggregator) Summary() aggregate.Summary {
	s.calls = append(s.calls, "summary")
	return aggregate.Summary{TestCount: 1}
}

func (s *stubAggregator) Details() aggregate.Details {
	s.calls = append(s.calls, "details")
	return aggregate.Details{}
}

func (s *stubAggregator) Errors() aggregate.Errors {
	s.calls = append(s.calls, "errors")
	return aggregate.Errors{}
}

func (s *stubAggregator) Timing(aggregate.TimingOptions) aggregate.Timing {
	s.calls = append(s.calls, "timing")
	return aggregate.Timing{}
}

func Test_GivenSummaryOnly_WhenAssemble_ThenOnlyComputesSummary(t *testing.T) {
	// Given
	aggregator := &stubAggregator{}

	// When
	report := Assemble(Meta{Outputs: []string{"output.xml"}}, []Section{SectionSummary}, aggregator, timingOptions)

	// Then
	assert.Equal(t, []string{"summary"}, aggregator.calls)
	require.NotNil(t, report.Summary)
	assert.Nil(t, report.Details)
	assert.Nil(t, report.Errors)
	assert.Nil(t, report.Timing)

	var out bytes.Buffer
	require.NoError(t, Encode(&out, report, false))
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &keys))
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "meta")
	assert.Contains(t, keys, "summary")
}

func Test_GivenScenarioDocument_WhenAllSectionsEncoded_ThenMatchesExpectedReport(t *testing.T) {
	// Given
	report := assembleTestdata(t, AllSections)

	// When
	var out bytes.Buffer
	require.NoError(t, Encode(&out, report, false))

	// Then
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))

	assert.Equal(t, map[string]interface{}{"outputs": []interface{}{"testdata/rf7_output.xml"}, "merged": false}, decoded["meta"])
	summary := decoded["summary"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"passed": 1.0, "failed": 1.0, "skipped": 0.0, "total": 2.0}, summary["totals"])

	details := decoded["details"].(map[string]interface{})
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "smoke", "totals": map[string]interface{}{"passed": 1.0, "failed": 0.0, "skipped": 0.0, "total": 1.0}},
	}, details["tags"])

	errs := decoded["errors"].(map[string]interface{})
	messages := errs["failed_test_messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "T2", messages[0].(map[string]interface{})["test"])
	assert.Equal(t, "S.T2.Click", messages[0].(map[string]interface{})["keyword_path"])
	executionErrors := errs["execution_errors"].([]interface{})
	require.Len(t, executionErrors, 1)
	source, ok := executionErrors[0].(map[string]interface{})["source"]
	assert.True(t, ok, "source is always present")
	assert.Nil(t, source, "output.xml messages have no source")

	timing := decoded["timing"].(map[string]interface{})
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "T1", "suite": "S", "elapsed_ms": 120.0},
		map[string]interface{}{"name": "T2", "suite": "S", "elapsed_ms": 50.0},
	}, timing["slowest_tests"])
	assert.NotContains(t, timing, "slowest_keywords")
}

func Test_GivenSameInput_WhenEncodedTwice_ThenOutputIsByteIdentical(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var first, second bytes.Buffer
		require.NoError(t, Encode(&first, assembleTestdata(t, AllSections), pretty))
		require.NoError(t, Encode(&second, assembleTestdata(t, AllSections), pretty))

		assert.Equal(t, first.Bytes(), second.Bytes())
	}
}

func Test_GivenPretty_WhenEncode_ThenIndentsWithTwoSpaces(t *testing.T) {
	report := Report{Meta: Meta{Outputs: []string{"a.xml"}, Merged: true}}

	var compact, pretty bytes.Buffer
	require.NoError(t, Encode(&compact, report, false))
	require.NoError(t, Encode(&pretty, report, true))

	assert.Equal(t, `{"meta":{"outputs":["a.xml"],"merged":true}}`+"\n", compact.String())
	assert.Equal(t, "{\n  \"meta\": {\n    \"outputs\": [\n      \"a.xml\"\n    ],\n    \"merged\": true\n  }\n}\n", pretty.String())
}

func Test_GivenMessageWithMarkup_WhenEncode_ThenKeepsCharacters(t *testing.T) {
	report := Report{Meta: Meta{Outputs: []string{"<a&b>.xml"}}}

	var out bytes.Buffer
	require.NoError(t, Encode(&out, report, false))

	assert.True(t, strings.Contains(out.String(), `"<a&b>.xml"`))
}

func assembleTestdata(t *testing.T, sections []Section) Report {
	pth := filepath.Join("testdata", "rf7_output.xml")
	result, err := model.NewOutputXMLParser(log.NewLogger()).ParseFile(pth)
	require.NoError(t, err)

	aggregator := aggregate.NewAggregator(result, traverse.Walk(result, false))
	return Assemble(Meta{Outputs: []string{filepath.ToSlash(pth)}}, sections, aggregator, timingOptions)
}
