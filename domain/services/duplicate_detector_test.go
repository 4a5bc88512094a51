package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDuplicates(t *testing.T) {
	tests := []struct {
		name      string
		prints    []Fingerprint
		wantFlags []bool
		wantCount int
	}{
		{
			name:      "empty batch",
			prints:    nil,
			wantFlags: []bool{},
			wantCount: 0,
		},
		{
			name:      "all occurrences flagged",
			prints:    []Fingerprint{{"a.png", 100}, {"b.png", 200}, {"a.png", 100}},
			wantFlags: []bool{true, false, true},
			wantCount: 2,
		},
		{
			name:      "same name different size",
			prints:    []Fingerprint{{"a.png", 100}, {"a.png", 101}},
			wantFlags: []bool{false, false},
			wantCount: 0,
		},
		{
			name:      "three copies",
			prints:    []Fingerprint{{"x.gif", 5}, {"x.gif", 5}, {"y.gif", 5}, {"x.gif", 5}},
			wantFlags: []bool{true, true, false, true},
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := DetectDuplicates(tt.prints)
			assert.Equal(t, tt.wantFlags, report.Flags)
			assert.Equal(t, tt.wantCount, report.Count)
		})
	}
}

func TestDetectDuplicates_RecomputedFromScratch(t *testing.T) {
	prints := []Fingerprint{{"a.png", 100}, {"b.png", 200}, {"a.png", 100}}
	assert.Equal(t, 2, DetectDuplicates(prints).Count)

	// removing one copy clears the flag on the survivor
	prints = append(prints[:2:2], prints[3:]...)
	report := DetectDuplicates(prints)
	assert.Equal(t, []bool{false, false}, report.Flags)
	assert.Equal(t, 0, report.Count)
}
