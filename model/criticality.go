package model

import "strings"

// Criticality groups tests for weighted reporting.
type Criticality int

// Criticality groups ...
const (
	CriticalityUnspecified Criticality = iota
	CriticalityCritical
	CriticalityNonCritical
)

// CriticalityGroups lists every group in name order.
var CriticalityGroups = []Criticality{CriticalityCritical, CriticalityNonCritical, CriticalityUnspecified}

func (c Criticality) String() string {
	switch c {
	case CriticalityCritical:
		return "critical"
	case CriticalityNonCritical:
		return "noncritical"
	default:
		return "unspecified"
	}
}

// ResolveCriticality returns the test's group. An explicit flag always wins over the tag convention.
func ResolveCriticality(test *Test) Criticality {
	if test.Critical != nil {
		if *test.Critical {
			return CriticalityCritical
		}
		return CriticalityNonCritical
	}

	var nonCritical bool
	for _, tag := range test.Tags {
		switch strings.ToLower(tag) {
		case "critical":
			return CriticalityCritical
		case "noncritical", "non-critical":
			nonCritical = true
		}
	}
	if nonCritical {
		return CriticalityNonCritical
	}
	return CriticalityUnspecified
}
