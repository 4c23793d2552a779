package traverse

import "github.com/bitrise-steplib/steps-robot-framework-results/model"

// TestRecord is a test together with the long name of its owning suite.
type TestRecord struct {
	Suite       string
	Test        *model.Test
	Criticality model.Criticality
}

// StepRecord ...
type StepRecord struct {
	Suite string
	Test  string
	Step  *model.Step
}

// FailingStep ...
type FailingStep struct {
	Keyword   string
	Test      string
	Suite     string
	Message   string
	ElapsedMs int64
}

// Collection is the flattened view of a result tree, every list in document order.
type Collection struct {
	// Suites only holds suites with at least one direct test.
	Suites []*model.Suite
	Tests  []TestRecord
	// Steps is only filled when steps were requested.
	Steps        []StepRecord
	FailingSteps []FailingStep
}

// Walk flattens the tree in a single pass. Steps of suite setups and teardowns have an empty test name.
func Walk(result *model.Result, includeSteps bool) Collection {
	c := &collector{includeSteps: includeSteps}
	result.Visit(c)
	return c.collection
}

type collector struct {
	includeSteps bool
	suiteStack   []string
	testStack    []string
	collection   Collection
}

func (c *collector) StartSuite(suite *model.Suite) {
	if len(suite.Tests) > 0 {
		c.collection.Suites = append(c.collection.Suites, suite)
	}

	name := suite.LongName
	if name == "" {
		name = suite.Name
	}
	c.suiteStack = append(c.suiteStack, name)
}

func (c *collector) EndSuite(*model.Suite) {
	c.suiteStack = pop(c.suiteStack)
}

func (c *collector) StartTest(test *model.Test) {
	c.collection.Tests = append(c.collection.Tests, TestRecord{
		Suite:       top(c.suiteStack),
		Test:        test,
		Criticality: model.ResolveCriticality(test),
	})
	c.testStack = append(c.testStack, test.Name)
}

func (c *collector) EndTest(*model.Test) {
	c.testStack = pop(c.testStack)
}

func (c *collector) StartStep(step *model.Step) {
	suite, test := top(c.suiteStack), top(c.testStack)

	if c.includeSteps {
		c.collection.Steps = append(c.collection.Steps, StepRecord{Suite: suite, Test: test, Step: step})
	}
	if step.Status.IsFailed() {
		c.collection.FailingSteps = append(c.collection.FailingSteps, FailingStep{
			Keyword:   step.Name,
			Test:      test,
			Suite:     suite,
			Message:   step.Message,
			ElapsedMs: step.ElapsedMs,
		})
	}
}

func (c *collector) EndStep(*model.Step) {}

func top(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}

func pop(stack []string) []string {
	if len(stack) == 0 {
		return stack
	}
	return stack[:len(stack)-1]
}
