package report

import (
	"errors"
	"fmt"
	"strings"
)

// Section ...
type Section string

// Sections ...
const (
	SectionSummary Section = "summary"
	SectionDetails Section = "details"
	SectionErrors  Section = "errors"
	SectionTiming  Section = "timing"

	allSections = "all"
)

// AllSections lists every section in report order.
var AllSections = []Section{SectionSummary, SectionDetails, SectionErrors, SectionTiming}

// ErrNoSections ...
var ErrNoSections = errors.New("no valid sections requested")

// UnknownSectionError ...
type UnknownSectionError struct {
	Name string
}

func (e *UnknownSectionError) Error() string {
	return fmt.Sprintf("unknown section: %s (valid: summary, details, errors, timing, all)", e.Name)
}

// ParseSections parses a comma separated, case-insensitive section list. The result is
// deduplicated and in report order, so the request order does not matter.
func ParseSections(raw string) ([]Section, error) {
	requested := map[Section]bool{}
	for _, item := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(item))
		if name == "" {
			continue
		}
		if name == allSections {
			for _, section := range AllSections {
				requested[section] = true
			}
			continue
		}
		if !isKnown(Section(name)) {
			return nil, &UnknownSectionError{Name: name}
		}
		requested[Section(name)] = true
	}

	if len(requested) == 0 {
		return nil, ErrNoSections
	}

	var sections []Section
	for _, section := range AllSections {
		if requested[section] {
			sections = append(sections, section)
		}
	}
	return sections, nil
}

func isKnown(section Section) bool {
	for _, known := range AllSections {
		if known == section {
			return true
		}
	}
	return false
}
