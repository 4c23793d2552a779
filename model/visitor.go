package model

// Visitor receives the nodes of a result tree in document order.
type Visitor interface {
	StartSuite(suite *Suite)
	EndSuite(suite *Suite)
	StartTest(test *Test)
	EndTest(test *Test)
	StartStep(step *Step)
	EndStep(step *Step)
}

// Visit walks the tree depth first: suite setup, child suites, tests, suite teardown.
func (r *Result) Visit(v Visitor) {
	if r.Suite == nil {
		return
	}
	visitSuite(r.Suite, v)
}

func visitSuite(suite *Suite, v Visitor) {
	v.StartSuite(suite)
	if suite.Setup != nil {
		visitStep(suite.Setup, v)
	}
	for _, child := range suite.Suites {
		visitSuite(child, v)
	}
	for _, test := range suite.Tests {
		v.StartTest(test)
		for _, step := range test.Steps {
			visitStep(step, v)
		}
		v.EndTest(test)
	}
	if suite.Teardown != nil {
		visitStep(suite.Teardown, v)
	}
	v.EndSuite(suite)
}

func visitStep(step *Step, v Visitor) {
	v.StartStep(step)
	for _, child := range step.Steps {
		visitStep(child, v)
	}
	v.EndStep(step)
}
