package scan

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/check"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/waiver"
)

func staticCheck(id string, res check.Result) check.Definition {
	return check.Definition{
		ID:       id,
		Name:     "check " + id,
		Category: check.CategoryCustom,
		Severity: check.SeverityMedium,
		Probe: func(ctx context.Context) check.Result {
			return res
		},
	}
}

func passing(id string) check.Definition {
	return staticCheck(id, check.Passf("ok"))
}

func TestRunEndToEndScoring(t *testing.T) {
	// 10 checks, 2 excluded, of the 8 executed: 6 pass, 1 warn, 1 fail.
	checks := []check.Definition{
		passing("C-001"),
		passing("C-002"),
		passing("C-003"),
		passing("C-004"),
		passing("C-005"),
		passing("C-006"),
		staticCheck("C-007", check.Warnf("weak setting")),
		staticCheck("C-008", check.Failf("bad setting")),
		passing("C-009"),
		passing("C-010"),
	}

	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  checks,
		Exclude: []string{"C-009", "C-010"},
	})
	if err != nil {
		t.Fatal(err)
	}

	s := res.Report.Summary
	if s.Total != 8 {
		t.Fatalf("total = %d, want 8", s.Total)
	}
	if s.Passed != 6 || s.Warnings != 1 || s.Failed != 1 || s.Skipped != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Total != s.Passed+s.Warnings+s.Failed+s.Errors {
		t.Fatalf("total %d does not equal executed counts in %+v", s.Total, s)
	}
	if res.Report.ComplianceScore != 75 {
		t.Fatalf("score = %d, want 75", res.Report.ComplianceScore)
	}
	if res.Report.RiskLevel != model.RiskMedium {
		t.Fatalf("risk = %s, want MEDIUM", res.Report.RiskLevel)
	}
	if !res.ShouldFail {
		t.Fatal("expected ShouldFail with a FAIL outcome")
	}

	// Outcomes stay in registry order, including skips.
	for i, o := range res.Report.Results {
		if o.CheckID != checks[i].ID {
			t.Fatalf("outcome %d is %s, want %s", i, o.CheckID, checks[i].ID)
		}
	}
	if res.Report.Results[8].Status != model.StatusSkip || res.Report.Results[8].Message != "excluded" {
		t.Fatalf("unexpected skip outcome: %+v", res.Report.Results[8])
	}
}

func TestExcludeWinsOverIncludeOnly(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Profile:     "test",
		Checks:      []check.Definition{passing("A-001"), passing("A-002")},
		Exclude:     []string{"A-001"},
		IncludeOnly: []string{"A-001"},
	})
	if err != nil {
		t.Fatal(err)
	}

	first := res.Report.Results[0]
	if first.Status != model.StatusSkip || first.Message != "excluded" {
		t.Fatalf("expected A-001 excluded, got %+v", first)
	}
	second := res.Report.Results[1]
	if second.Status != model.StatusSkip || second.Message != "not included" {
		t.Fatalf("expected A-002 not included, got %+v", second)
	}
	if res.Report.Summary.Total != 0 {
		t.Fatalf("total = %d, want 0", res.Report.Summary.Total)
	}
}

func TestIncludeOnlyPatterns(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Profile:     "test",
		Checks:      []check.Definition{passing("SSH-001"), passing("FS-001")},
		IncludeOnly: []string{"SSH-*"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.Results[0].Status != model.StatusPass {
		t.Fatalf("SSH-001 should run, got %s", res.Report.Results[0].Status)
	}
	if res.Report.Results[1].Status != model.StatusSkip {
		t.Fatalf("FS-001 should be skipped, got %s", res.Report.Results[1].Status)
	}
}

func TestTimeoutIsolation(t *testing.T) {
	hang := check.Definition{
		ID:       "T-002",
		Name:     "hanging check",
		Category: check.CategoryCustom,
		Severity: check.SeverityLow,
		Probe: func(ctx context.Context) check.Result {
			select {
			case <-ctx.Done():
				return check.Errorf("cancelled")
			case <-time.After(5 * time.Second):
				return check.Passf("ok")
			}
		},
	}

	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  []check.Definition{passing("T-001"), hang, passing("T-003")},
		Timeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := res.Report.Results[0].Status; got != model.StatusPass {
		t.Fatalf("T-001 = %s, want PASS", got)
	}
	if got := res.Report.Results[1]; got.Status != model.StatusError || got.Message != "timed out" {
		t.Fatalf("T-002 = %+v, want ERROR/timed out", got)
	}
	if got := res.Report.Results[2].Status; got != model.StatusPass {
		t.Fatalf("T-003 = %s, want PASS", got)
	}
	if res.Report.Summary.Errors != 1 {
		t.Fatalf("errors = %d, want 1", res.Report.Summary.Errors)
	}
}

func TestProbeErrorRecordedAndScoredAsFailing(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks: []check.Definition{
			passing("E-001"),
			staticCheck("E-002", check.Errorf("missing file")),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := res.Report.Results[1]; got.Status != model.StatusError || got.Message != "missing file" {
		t.Fatalf("unexpected outcome: %+v", got)
	}
	// 1 pass of 2 executed.
	if res.Report.ComplianceScore != 50 {
		t.Fatalf("score = %d, want 50", res.Report.ComplianceScore)
	}
	if !res.ShouldFail {
		t.Fatal("expected ShouldFail with an ERROR outcome")
	}
}

func TestPanickingProbeIsIsolated(t *testing.T) {
	boom := check.Definition{
		ID:       "P-001",
		Name:     "panicking check",
		Category: check.CategoryCustom,
		Severity: check.SeverityLow,
		Probe: func(ctx context.Context) check.Result {
			panic("unexpected state")
		},
	}
	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  []check.Definition{boom, passing("P-002")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Report.Results[0]; got.Status != model.StatusError || !strings.Contains(got.Message, "panicked") {
		t.Fatalf("unexpected outcome: %+v", got)
	}
	if res.Report.Results[1].Status != model.StatusPass {
		t.Fatal("sibling check affected by panic")
	}
}

func TestZeroExecutedChecksScoreZero(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  []check.Definition{passing("Z-001")},
		Exclude: []string{"Z-*"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.ComplianceScore != 0 {
		t.Fatalf("score = %d, want 0", res.Report.ComplianceScore)
	}
	if res.Report.RiskLevel != model.RiskCritical {
		t.Fatalf("risk = %s, want CRITICAL", res.Report.RiskLevel)
	}
	if res.ShouldFail {
		t.Fatal("no executed failures, ShouldFail must be false")
	}
}

func TestFixModeRemediatesAndReprobesOnce(t *testing.T) {
	var probeCalls, fixCalls atomic.Int32
	def := check.Definition{
		ID:          "F-001",
		Name:        "fixable check",
		Category:    check.CategoryCustom,
		Severity:    check.SeverityHigh,
		Remediation: "chmod 600 the file",
		Probe: func(ctx context.Context) check.Result {
			if probeCalls.Add(1) == 1 {
				return check.Failf("mode too open")
			}
			return check.Passf("mode ok")
		},
		Fix: func(ctx context.Context) error {
			fixCalls.Add(1)
			return nil
		},
	}

	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  []check.Definition{def},
		Fix:     true,
	})
	if err != nil {
		t.Fatal(err)
	}

	got := res.Report.Results[0]
	if got.Status != model.StatusPass {
		t.Fatalf("status = %s, want PASS after remediation", got.Status)
	}
	if !strings.Contains(got.Message, "after remediation") {
		t.Fatalf("message lost remediation note: %q", got.Message)
	}
	if got.Remediation != "chmod 600 the file" {
		t.Fatalf("remediation text not preserved: %q", got.Remediation)
	}
	if probeCalls.Load() != 2 {
		t.Fatalf("probe invoked %d times, want exactly 2", probeCalls.Load())
	}
	if fixCalls.Load() != 1 {
		t.Fatalf("fix invoked %d times, want exactly 1", fixCalls.Load())
	}
	if res.Report.ComplianceScore != 100 {
		t.Fatalf("score = %d, want 100", res.Report.ComplianceScore)
	}
}

func TestFixModeFailedFixKeepsOriginalStatus(t *testing.T) {
	var probeCalls atomic.Int32
	def := check.Definition{
		ID:       "F-002",
		Name:     "unfixable check",
		Category: check.CategoryCustom,
		Severity: check.SeverityHigh,
		Probe: func(ctx context.Context) check.Result {
			probeCalls.Add(1)
			return check.Failf("mode too open")
		},
		Fix: func(ctx context.Context) error {
			return context.DeadlineExceeded
		},
	}

	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  []check.Definition{def},
		Fix:     true,
	})
	if err != nil {
		t.Fatal(err)
	}

	got := res.Report.Results[0]
	if got.Status != model.StatusFail {
		t.Fatalf("status = %s, want FAIL retained", got.Status)
	}
	if !strings.Contains(got.Message, "mode too open") || !strings.Contains(got.Message, "remediation failed") {
		t.Fatalf("message = %q, want original failure plus remediation note", got.Message)
	}
	if probeCalls.Load() != 1 {
		t.Fatalf("probe invoked %d times, want 1 (no re-probe after failed fix)", probeCalls.Load())
	}
}

func TestFixModeDisabledNeverInvokesFix(t *testing.T) {
	def := check.Definition{
		ID:       "F-003",
		Name:     "failing check",
		Category: check.CategoryCustom,
		Severity: check.SeverityHigh,
		Probe: func(ctx context.Context) check.Result {
			return check.Failf("bad")
		},
		Fix: func(ctx context.Context) error {
			panic("fix must not run when fix mode is off")
		},
	}
	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  []check.Definition{def},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Report.Results[0].Status != model.StatusFail {
		t.Fatalf("status = %s, want FAIL", res.Report.Results[0].Status)
	}
}

func TestWaivedCheckIsSkipped(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  []check.Definition{passing("W-001"), passing("W-002")},
		Waivers: waiver.Upsert(waiver.Empty(), waiver.Entry{
			CheckID: "W-001",
			Reason:  "legacy appliance",
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	got := res.Report.Results[0]
	if got.Status != model.StatusSkip || got.Message != "waived: legacy appliance" {
		t.Fatalf("unexpected outcome: %+v", got)
	}
	if res.Report.Summary.Total != 1 {
		t.Fatalf("total = %d, want 1", res.Report.Summary.Total)
	}
}

func TestWorkersPreserveLogicalOrder(t *testing.T) {
	var checks []check.Definition
	ids := []string{"O-001", "O-002", "O-003", "O-004", "O-005", "O-006", "O-007", "O-008"}
	for i, id := range ids {
		delay := time.Duration(len(ids)-i) * time.Millisecond
		id := id
		checks = append(checks, check.Definition{
			ID:       id,
			Name:     "check " + id,
			Category: check.CategoryCustom,
			Severity: check.SeverityLow,
			Probe: func(ctx context.Context) check.Result {
				time.Sleep(delay)
				return check.Passf("ok")
			},
		})
	}

	res, err := Run(context.Background(), Options{
		Profile: "test",
		Checks:  checks,
		Workers: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, o := range res.Report.Results {
		if o.CheckID != ids[i] {
			t.Fatalf("outcome %d is %s, want %s", i, o.CheckID, ids[i])
		}
	}
	if res.Report.Summary.Passed != len(ids) {
		t.Fatalf("passed = %d, want %d", res.Report.Summary.Passed, len(ids))
	}
}

func TestScanIDIsTimeDerived(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	res, err := Run(context.Background(), Options{
		Profile: "baseline",
		Checks:  []check.Definition{passing("S-001")},
		Now:     now,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "scan-1740830400-baseline-"
	if !strings.HasPrefix(res.Report.ScanID, want) {
		t.Fatalf("scan id %q missing prefix %q", res.Report.ScanID, want)
	}
}
