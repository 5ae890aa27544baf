package scan

import "github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"

// Score computes the compliance score as the integer percentage of executed
// checks that passed. Skipped checks are excluded from the denominator;
// WARN, FAIL, and ERROR all count against the score equally. Severity never
// enters the formula. An empty run scores 0, the conservative default.
func Score(s model.Summary) int {
	executed := s.Passed + s.Warnings + s.Failed + s.Errors
	if executed == 0 {
		return 0
	}
	return 100 * s.Passed / executed
}

// Risk maps a compliance score onto a discrete tier. The boundaries are
// inclusive lower bounds: 90 is LOW, 89 is MEDIUM, 70 is MEDIUM, 69 is HIGH,
// 50 is HIGH, 49 is CRITICAL.
func Risk(score int) model.RiskLevel {
	switch {
	case score >= 90:
		return model.RiskLow
	case score >= 70:
		return model.RiskMedium
	case score >= 50:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}
