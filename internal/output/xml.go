package output

import (
	"encoding/xml"
	"io"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
)

// The XML rendering mirrors the JSON contract but with an explicit element
// layout, since consumers here are XSLT pipelines rather than dashboards.

type xmlReport struct {
	XMLName         xml.Name     `xml:"scan_report"`
	ScanID          string       `xml:"scan_id"`
	Profile         string       `xml:"profile"`
	StartTime       string       `xml:"start_time"`
	DurationSeconds float64      `xml:"duration_seconds"`
	Hostname        string       `xml:"hostname,omitempty"`
	ComplianceScore int          `xml:"compliance_score"`
	RiskLevel       string       `xml:"risk_level"`
	Summary         xmlSummary   `xml:"summary"`
	Checks          []xmlOutcome `xml:"checks>check"`
}

type xmlSummary struct {
	Total    int `xml:"total_checks"`
	Passed   int `xml:"passed"`
	Warnings int `xml:"warnings"`
	Failed   int `xml:"failed"`
	Skipped  int `xml:"skipped"`
	Errors   int `xml:"errors"`
}

type xmlOutcome struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name"`
	Category    string `xml:"category"`
	Severity    string `xml:"severity"`
	Status      string `xml:"status"`
	Message     string `xml:"message"`
	Remediation string `xml:"remediation,omitempty"`
	Reference   string `xml:"reference,omitempty"`
}

func writeXML(report model.Report, w io.Writer) error {
	out := xmlReport{
		ScanID:          report.ScanID,
		Profile:         report.Profile,
		StartTime:       report.StartTime.Format("2006-01-02T15:04:05Z07:00"),
		DurationSeconds: report.DurationSeconds,
		Hostname:        report.Host.Hostname,
		ComplianceScore: report.ComplianceScore,
		RiskLevel:       string(report.RiskLevel),
		Summary: xmlSummary{
			Total:    report.Summary.Total,
			Passed:   report.Summary.Passed,
			Warnings: report.Summary.Warnings,
			Failed:   report.Summary.Failed,
			Skipped:  report.Summary.Skipped,
			Errors:   report.Summary.Errors,
		},
	}
	for _, o := range report.Results {
		out.Checks = append(out.Checks, xmlOutcome{
			ID:          o.CheckID,
			Name:        o.Name,
			Category:    o.Category,
			Severity:    o.Severity,
			Status:      string(o.Status),
			Message:     o.Message,
			Remediation: o.Remediation,
			Reference:   o.Reference,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
