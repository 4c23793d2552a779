package model

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/hashicorp/go-version"
)

const (
	legacyTimestampLayout = "20060102 15:04:05.000"
	allTestsStatName      = "All Tests"
	criticalTestsStatName = "Critical Tests"
)

var (
	generatorPattern     = regexp.MustCompile(`^(?:Robot|Rebot)\s+(\S+)`)
	elapsedLayoutVersion = version.Must(version.NewVersion("7.0"))
)

type timingLayout int

const (
	timingLayoutUnknown timingLayout = iota
	// RF 7+: start timestamp plus elapsed seconds.
	timingLayoutElapsed
	// RF 6 and older: start and end timestamps.
	timingLayoutStartEnd
)

// OutputXMLParser reads Robot Framework output.xml documents.
type OutputXMLParser struct {
	logger log.Logger
}

// NewOutputXMLParser ...
func NewOutputXMLParser(logger log.Logger) OutputXMLParser {
	return OutputXMLParser{logger: logger}
}

// ParseFile ...
func (p OutputXMLParser) ParseFile(pth string) (*Result, error) {
	f, err := os.Open(pth)
	if err != nil {
		return nil, fmt.Errorf("failed to open output.xml (%s): %w", pth, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			p.logger.Warnf("Failed to close %s: %s", pth, err)
		}
	}()

	result, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pth, err)
	}
	return result, nil
}

// Parse decodes a whole document. Missing timing and message fields resolve to zero values.
func (p OutputXMLParser) Parse(r io.Reader) (*Result, error) {
	var doc xmlRobot
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode output.xml: %w", err)
	}
	if doc.Suite == nil {
		return nil, fmt.Errorf("output.xml has no root suite")
	}

	result := &Result{Generator: doc.Generator}
	layout := timingLayoutUnknown
	if v := parseGeneratorVersion(doc.Generator); v != nil {
		result.GeneratorVersion = v
		if v.LessThan(elapsedLayoutVersion) {
			layout = timingLayoutStartEnd
		} else {
			layout = timingLayoutElapsed
		}
	} else {
		p.logger.Debugf("Unknown output.xml generator (%s), detecting timing format per element", doc.Generator)
	}

	conv := converter{layout: layout}
	result.Suite = conv.suite(*doc.Suite, "")
	rootStats := result.Suite.computeStatistics()

	if stats, ok := doc.Statistics.total(); ok {
		result.Statistics = stats
	} else {
		result.Statistics = rootStats
	}

	for _, msg := range doc.Errors {
		result.Errors = append(result.Errors, ExecutionError{
			Level:     msg.Level,
			Message:   msg.Text,
			Timestamp: msg.timestamp(),
		})
	}

	return result, nil
}

func parseGeneratorVersion(generator string) *version.Version {
	match := generatorPattern.FindStringSubmatch(strings.TrimSpace(generator))
	if len(match) != 2 {
		return nil
	}
	v, err := version.NewVersion(match[1])
	if err != nil {
		return nil
	}
	return v
}

type xmlRobot struct {
	XMLName    xml.Name       `xml:"robot"`
	Generator  string         `xml:"generator,attr"`
	Suite      *xmlSuite      `xml:"suite"`
	Statistics *xmlStatistics `xml:"statistics"`
	Errors     []xmlMsg       `xml:"errors>msg"`
}

type xmlSuite struct {
	Name     string     `xml:"name,attr"`
	Source   string     `xml:"source,attr"`
	Setup    *xmlNode   `xml:"setup"`
	Teardown *xmlNode   `xml:"teardown"`
	Keywords []xmlNode  `xml:"kw"`
	Suites   []xmlSuite `xml:"suite"`
	Tests    []xmlTest  `xml:"test"`
	Status   xmlStatus  `xml:"status"`
}

type xmlTest struct {
	Name       string    `xml:"name,attr"`
	Tags       []string  `xml:"tag"`
	LegacyTags []string  `xml:"tags>tag"`
	Status     xmlStatus `xml:"status"`
	Body       []xmlNode `xml:",any"`
}

// xmlNode is any element of a test body: keywords, control structures and their iterations.
type xmlNode struct {
	XMLName  xml.Name
	Name     string     `xml:"name,attr"`
	Library  string     `xml:"library,attr"`
	Type     string     `xml:"type,attr"`
	Level    string     `xml:"level,attr"`
	Status   *xmlStatus `xml:"status"`
	Text     string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

type xmlStatus struct {
	Status    string `xml:"status,attr"`
	Start     string `xml:"start,attr"`
	Elapsed   string `xml:"elapsed,attr"`
	StartTime string `xml:"starttime,attr"`
	EndTime   string `xml:"endtime,attr"`
	Critical  string `xml:"critical,attr"`
	Message   string `xml:",chardata"`
}

type xmlMsg struct {
	Level     string `xml:"level,attr"`
	Time      string `xml:"time,attr"`
	Timestamp string `xml:"timestamp,attr"`
	Text      string `xml:",chardata"`
}

func (m xmlMsg) timestamp() string {
	if m.Time != "" {
		return m.Time
	}
	return m.Timestamp
}

type xmlStatistics struct {
	Total []xmlStat `xml:"total>stat"`
}

type xmlStat struct {
	Pass string `xml:"pass,attr"`
	Fail string `xml:"fail,attr"`
	Skip string `xml:"skip,attr"`
	Name string `xml:",chardata"`
}

func (s *xmlStatistics) total() (StatCounter, bool) {
	if s == nil || len(s.Total) == 0 {
		return StatCounter{}, false
	}

	// RF 3 lists "Critical Tests" before "All Tests". A critical-only counter is a subset, so it
	// never stands for the totals and the root suite counter is used instead.
	var stat *xmlStat
	for i := range s.Total {
		name := strings.TrimSpace(s.Total[i].Name)
		if name == allTestsStatName {
			stat = &s.Total[i]
			break
		}
		if name != criticalTestsStatName {
			stat = &s.Total[i]
		}
	}
	if stat == nil {
		return StatCounter{}, false
	}

	counter := StatCounter{
		Passed:  atoi(stat.Pass),
		Failed:  atoi(stat.Fail),
		Skipped: atoi(stat.Skip),
	}
	counter.Total = counter.Passed + counter.Failed + counter.Skipped
	return counter, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

type converter struct {
	layout timingLayout
}

func (c converter) suite(s xmlSuite, parentLongName string) *Suite {
	longName := s.Name
	if parentLongName != "" {
		longName = parentLongName + "." + s.Name
	}

	suite := &Suite{
		Name:      s.Name,
		LongName:  longName,
		Source:    s.Source,
		Status:    parseStatus(s.Status.Status),
		Message:   strings.TrimSpace(s.Status.Message),
		ElapsedMs: c.elapsedMs(s.Status),
	}

	if s.Setup != nil {
		suite.Setup = c.step(*s.Setup)
	}
	if s.Teardown != nil {
		suite.Teardown = c.step(*s.Teardown)
	}
	for _, kw := range s.Keywords {
		switch strings.ToUpper(kw.Type) {
		case "SETUP":
			suite.Setup = c.step(kw)
		case "TEARDOWN":
			suite.Teardown = c.step(kw)
		}
	}

	for _, child := range s.Suites {
		suite.Suites = append(suite.Suites, c.suite(child, longName))
	}
	for _, t := range s.Tests {
		suite.Tests = append(suite.Tests, c.test(t))
	}

	return suite
}

func (c converter) test(t xmlTest) *Test {
	test := &Test{
		Name:      t.Name,
		Status:    parseStatus(t.Status.Status),
		Message:   strings.TrimSpace(t.Status.Message),
		ElapsedMs: c.elapsedMs(t.Status),
		Tags:      append(append([]string{}, t.Tags...), t.LegacyTags...),
	}

	switch strings.ToLower(t.Status.Critical) {
	case "yes":
		critical := true
		test.Critical = &critical
	case "no":
		critical := false
		test.Critical = &critical
	}

	test.Steps = c.body(t.Body)
	return test
}

// body flattens control structures so their keywords belong to the enclosing test or keyword.
func (c converter) body(nodes []xmlNode) []*Step {
	var steps []*Step
	for _, node := range nodes {
		switch node.XMLName.Local {
		case "kw", "setup", "teardown":
			steps = append(steps, c.step(node))
		case "for", "iter", "if", "branch", "try", "while", "group":
			steps = append(steps, c.body(node.Children)...)
		}
	}
	return steps
}

func (c converter) step(node xmlNode) *Step {
	stepType := strings.ToUpper(node.Type)
	if stepType == "" {
		switch node.XMLName.Local {
		case "setup":
			stepType = "SETUP"
		case "teardown":
			stepType = "TEARDOWN"
		default:
			stepType = "KEYWORD"
		}
	}

	step := &Step{
		Name:  c.stepName(node),
		Type:  stepType,
		Steps: c.body(node.Children),
	}
	if node.Status != nil {
		step.Status = parseStatus(node.Status.Status)
		step.Message = strings.TrimSpace(node.Status.Message)
		step.ElapsedMs = c.elapsedMs(*node.Status)
	}
	if step.Message == "" && step.Status.IsFailed() {
		step.Message = failureMessage(node.Children)
	}
	return step
}

// stepName qualifies legacy keywords with their library, e.g. "BuiltIn.Log". RF 7 keeps the
// owner separate from the name.
func (c converter) stepName(node xmlNode) string {
	if c.layout == timingLayoutStartEnd && node.Library != "" {
		return node.Library + "." + node.Name
	}
	return node.Name
}

// failureMessage returns the last FAIL level log message of a keyword.
func failureMessage(children []xmlNode) string {
	message := ""
	for _, child := range children {
		if child.XMLName.Local == "msg" && strings.EqualFold(child.Level, "FAIL") {
			message = strings.TrimSpace(child.Text)
		}
	}
	return message
}

func (c converter) elapsedMs(status xmlStatus) int64 {
	switch c.layout {
	case timingLayoutElapsed:
		return elapsedSecondsToMs(status.Elapsed)
	case timingLayoutStartEnd:
		return startEndToMs(status.StartTime, status.EndTime)
	default:
		if status.Elapsed != "" {
			return elapsedSecondsToMs(status.Elapsed)
		}
		return startEndToMs(status.StartTime, status.EndTime)
	}
}

func elapsedSecondsToMs(elapsed string) int64 {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(elapsed), 64)
	if err != nil || seconds <= 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 0
	}
	// microsecond resolution first, so 1.234 yields 1234 and not 1233
	micros := int64(math.Round(seconds * 1e6))
	return micros / 1000
}

func startEndToMs(start, end string) int64 {
	startTime, err := time.Parse(legacyTimestampLayout, strings.TrimSpace(start))
	if err != nil {
		return 0
	}
	endTime, err := time.Parse(legacyTimestampLayout, strings.TrimSpace(end))
	if err != nil {
		return 0
	}
	elapsed := endTime.Sub(startTime).Milliseconds()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
