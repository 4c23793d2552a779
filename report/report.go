package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bitrise-steplib/steps-robot-framework-results/aggregate"
)

// Meta ...
type Meta struct {
	Outputs []string `json:"outputs"`
	Merged  bool     `json:"merged"`
}

// Report is the JSON document. Only requested sections are set, meta is always present.
type Report struct {
	Meta    Meta               `json:"meta"`
	Summary *aggregate.Summary `json:"summary,omitempty"`
	Details *aggregate.Details `json:"details,omitempty"`
	Errors  *aggregate.Errors  `json:"errors,omitempty"`
	Timing  *aggregate.Timing  `json:"timing,omitempty"`
}

// Aggregator ...
type Aggregator interface {
	Summary() aggregate.Summary
	Details() aggregate.Details
	Errors() aggregate.Errors
	Timing(opts aggregate.TimingOptions) aggregate.Timing
}

// Assemble ...
func Assemble(meta Meta, sections []Section, aggregator Aggregator, timingOptions aggregate.TimingOptions) Report {
	if meta.Outputs == nil {
		meta.Outputs = []string{}
	}
	report := Report{Meta: meta}

	for _, section := range sections {
		switch section {
		case SectionSummary:
			summary := aggregator.Summary()
			report.Summary = &summary
		case SectionDetails:
			details := aggregator.Details()
			report.Details = &details
		case SectionErrors:
			errs := aggregator.Errors()
			report.Errors = &errs
		case SectionTiming:
			timing := aggregator.Timing(timingOptions)
			report.Timing = &timing
		}
	}

	return report
}

// Encode writes the report as a single newline terminated JSON document.
func Encode(w io.Writer, report Report, pretty bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
