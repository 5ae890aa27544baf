package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/severity"
)

// Write renders a completed report in the requested format. Rendering is a
// pure transformation: the report is never modified.
func Write(report model.Report, format string, w io.Writer) error {
	switch strings.ToLower(format) {
	case "text":
		writeText(report, w)
		return nil
	case "json":
		return writeJSON(report, w)
	case "csv":
		return writeCSV(report, w)
	case "html":
		return writeHTML(report, w)
	case "xml":
		return writeXML(report, w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ContentType returns the MIME type for a report format, for upload and
// download headers.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv"
	case "html":
		return "text/html"
	case "xml":
		return "application/xml"
	default:
		return "text/plain"
	}
}

func writeText(report model.Report, w io.Writer) {
	fmt.Fprintln(w, "Linux Hardening & Compliance Scan")
	fmt.Fprintln(w, "---------------------------------")
	fmt.Fprintf(w, "Scan:     %s\n", report.ScanID)
	fmt.Fprintf(w, "Profile:  %s\n", report.Profile)
	if report.Host.Hostname != "" {
		fmt.Fprintf(w, "Host:     %s", report.Host.Hostname)
		if report.Host.Platform != "" {
			fmt.Fprintf(w, " (%s %s, kernel %s)", report.Host.Platform, report.Host.PlatformVersion, report.Host.KernelVersion)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Duration: %.2fs\n", report.DurationSeconds)
	fmt.Fprintln(w)

	for _, o := range report.Results {
		fmt.Fprintf(w, "%-7s %-9s %s: %s\n", statusBadge(o.Status), o.CheckID, o.Name, o.Message)
		if o.Status == model.StatusFail || o.Status == model.StatusWarn {
			if o.Remediation != "" {
				fmt.Fprintf(w, "        fix: %s\n", o.Remediation)
			}
		}
	}

	fmt.Fprintln(w)
	s := report.Summary
	fmt.Fprintf(w, "Summary: %d checks, passed=%d warnings=%d failed=%d errors=%d skipped=%d\n",
		s.Total, s.Passed, s.Warnings, s.Failed, s.Errors, s.Skipped)
	fmt.Fprintf(w, "Compliance score: %d%%\n", report.ComplianceScore)
	fmt.Fprintf(w, "Risk level: %s\n", report.RiskLevel)
	var failing []string
	for _, o := range report.Results {
		if o.Status == model.StatusFail || o.Status == model.StatusError {
			failing = append(failing, o.Severity)
		}
	}
	if top := severity.Max(failing...); top != "" {
		fmt.Fprintf(w, "Highest failing severity: %s\n", top)
	}
}

func statusBadge(status model.Status) string {
	return "[" + string(status) + "]"
}

func writeJSON(report model.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeCSV(report model.Report, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"Scan ID", "Check ID", "Check Name", "Status", "Severity", "Remediation"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, o := range report.Results {
		record := []string{
			report.ScanID,
			o.CheckID,
			o.Name,
			string(o.Status),
			o.Severity,
			o.Remediation,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	summary := []string{
		report.ScanID,
		"SUMMARY",
		fmt.Sprintf("%d checks, score %d, risk %s", report.Summary.Total, report.ComplianceScore, report.RiskLevel),
		"",
		"",
		"",
	}
	if err := cw.Write(summary); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
