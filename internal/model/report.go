package model

import "time"

// Status is the recorded outcome of a single check.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusWarn  Status = "WARN"
	StatusFail  Status = "FAIL"
	StatusSkip  Status = "SKIP"
	StatusError Status = "ERROR"
)

// RiskLevel is the discrete tier derived from the compliance score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Outcome is one check's result within one scan run. Outcomes are built once
// by the engine and never mutated afterwards.
type Outcome struct {
	CheckID     string    `json:"check_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity"`
	Reference   string    `json:"reference,omitempty"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	Remediation string    `json:"remediation,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Executed reports whether the outcome counts toward the compliance score
// denominator. Skipped checks do not.
func (o Outcome) Executed() bool {
	return o.Status != StatusSkip
}

// Summary holds the derived counts for a scan run. Total counts executed
// checks only; skipped checks are tracked separately.
type Summary struct {
	Total    int `json:"total_checks"`
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// CheckDetail is the per-check entry in the report's keyed checks map.
type CheckDetail struct {
	Name        string `json:"name"`
	Status      Status `json:"status"`
	Severity    string `json:"severity"`
	Remediation string `json:"remediation,omitempty"`
}

// HostInfo identifies the scanned host in the report.
type HostInfo struct {
	Hostname        string `json:"hostname"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
}

// Report is the top-level output payload for one scan run. The snake_case
// field names are the machine-readable contract consumed by dashboards and
// CI; do not rename them.
type Report struct {
	ScanID          string                 `json:"scan_id"`
	Profile         string                 `json:"profile"`
	StartTime       time.Time              `json:"start_time"`
	DurationSeconds float64                `json:"duration_seconds"`
	Host            HostInfo               `json:"host"`
	ComplianceScore int                    `json:"compliance_score"`
	RiskLevel       RiskLevel              `json:"risk_level"`
	Summary         Summary                `json:"summary"`
	Results         []Outcome              `json:"results"`
	Checks          map[string]CheckDetail `json:"checks"`
}
