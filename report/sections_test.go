package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Section
	}{
		{name: "single", raw: "summary", want: []Section{SectionSummary}},
		{name: "trimmed and lower-cased", raw: " Timing , SUMMARY ", want: []Section{SectionSummary, SectionTiming}},
		{name: "order independent", raw: "errors,details", want: []Section{SectionDetails, SectionErrors}},
		{name: "duplicates", raw: "summary,summary", want: []Section{SectionSummary}},
		{name: "all", raw: "all", want: AllSections},
		{name: "all with others", raw: "timing,all", want: AllSections},
		{name: "empty items are skipped", raw: "summary,,", want: []Section{SectionSummary}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSections(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSections_Errors(t *testing.T) {
	_, err := ParseSections("")
	assert.ErrorIs(t, err, ErrNoSections)

	_, err = ParseSections(" , ")
	assert.ErrorIs(t, err, ErrNoSections)

	_, err = ParseSections("summary,everything")
	var unknown *UnknownSectionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "everything", unknown.Name)
}
