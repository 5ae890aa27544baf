package scan

import (
	"testing"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
)

func TestScoreIsFloorOfPassRatio(t *testing.T) {
	cases := []struct {
		name string
		s    model.Summary
		want int
	}{
		{"all pass", model.Summary{Passed: 20}, 100},
		{"17 of 20", model.Summary{Passed: 17, Failed: 3}, 85},
		{"six of eight", model.Summary{Passed: 6, Warnings: 1, Failed: 1}, 75},
		{"floor not round", model.Summary{Passed: 2, Failed: 1}, 66},
		{"errors count against", model.Summary{Passed: 1, Errors: 1}, 50},
		{"warnings count against", model.Summary{Passed: 1, Warnings: 1}, 50},
		{"skips excluded", model.Summary{Passed: 1, Skipped: 9}, 100},
		{"nothing executed", model.Summary{Skipped: 5}, 0},
		{"empty", model.Summary{}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.s); got != tc.want {
				t.Fatalf("Score(%+v) = %d, want %d", tc.s, got, tc.want)
			}
		})
	}
}

func TestRiskTierBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  model.RiskLevel
	}{
		{100, model.RiskLow},
		{90, model.RiskLow},
		{89, model.RiskMedium},
		{70, model.RiskMedium},
		{69, model.RiskHigh},
		{50, model.RiskHigh},
		{49, model.RiskCritical},
		{0, model.RiskCritical},
	}

	for _, tc := range cases {
		if got := Risk(tc.score); got != tc.want {
			t.Fatalf("Risk(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
