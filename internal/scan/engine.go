package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/check"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/waiver"
)

type Options struct {
	Profile string
	Checks  []check.Definition

	// Exclude and IncludeOnly are doublestar patterns matched against check
	// IDs. Exclude is evaluated first and wins over IncludeOnly.
	Exclude     []string
	IncludeOnly []string
	Waivers     waiver.File

	// Fix enables remediation: a failing check's Fix action runs once and
	// the probe is re-run once to verify. A probe never runs more than
	// twice per scan.
	Fix bool

	// Timeout bounds each individual probe, not the whole scan.
	Timeout time.Duration

	// Workers bounds concurrent check execution. 1 (the default) runs
	// checks strictly sequentially in registry order.
	Workers int

	Host model.HostInfo
	Now  time.Time

	// Progress, when set, is called once per completed check. With more
	// than one worker the calls arrive in completion order.
	Progress func(model.Outcome)
}

type Result struct {
	Report model.Report
	// ShouldFail is set when at least one check finished FAIL or ERROR;
	// the CLI maps it to a non-zero exit code.
	ShouldFail bool
}

// Run executes every check the options select, in registry order, and
// assembles the immutable report. Per-check failures, timeouts, and probe
// errors are recorded on their outcome and never abort the run; the only
// error returned here is for options detected bad before execution.
func Run(ctx context.Context, opts Options) (Result, error) {
	if len(opts.Checks) == 0 {
		return Result{}, fmt.Errorf("no checks to run")
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	scanID := newScanID(opts.Now, opts.Profile)
	started := time.Now()

	// Each check owns one outcome slot, so logical order is registry
	// order regardless of completion order.
	outcomes := make([]model.Outcome, len(opts.Checks))
	var runnable []int

	for i, def := range opts.Checks {
		if reason, skipped := skipReason(def.ID, opts); skipped {
			outcomes[i] = newOutcome(def, model.StatusSkip, reason)
			continue
		}
		runnable = append(runnable, i)
	}

	var progressMu sync.Mutex
	report := func(o model.Outcome) {
		if opts.Progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		opts.Progress(o)
	}

	workers := opts.Workers
	if workers > len(runnable) {
		workers = len(runnable)
	}

	if workers <= 1 {
		for _, i := range runnable {
			outcomes[i] = execute(ctx, opts.Checks[i], opts.Fix, opts.Timeout)
			report(outcomes[i])
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					outcomes[i] = execute(ctx, opts.Checks[i], opts.Fix, opts.Timeout)
					report(outcomes[i])
				}
			}()
		}
		for _, i := range runnable {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	summary := summarize(outcomes)
	score := Score(summary)

	checks := make(map[string]model.CheckDetail, len(outcomes))
	for _, o := range outcomes {
		checks[o.CheckID] = model.CheckDetail{
			Name:        o.Name,
			Status:      o.Status,
			Severity:    o.Severity,
			Remediation: o.Remediation,
		}
	}

	rep := model.Report{
		ScanID:          scanID,
		Profile:         opts.Profile,
		StartTime:       opts.Now,
		DurationSeconds: time.Since(started).Seconds(),
		Host:            opts.Host,
		ComplianceScore: score,
		RiskLevel:       Risk(score),
		Summary:         summary,
		Results:         outcomes,
		Checks:          checks,
	}

	return Result{
		Report:     rep,
		ShouldFail: summary.Failed+summary.Errors > 0,
	}, nil
}

// newScanID builds a time-derived identifier; the unix prefix keeps IDs
// monotonic, the suffix disambiguates scans started in the same second.
func newScanID(now time.Time, profile string) string {
	return fmt.Sprintf("scan-%d-%s-%s", now.Unix(), profile, uuid.NewString()[:8])
}

func skipReason(id string, opts Options) (string, bool) {
	if matchAny(opts.Exclude, id) {
		return "excluded", true
	}
	if len(opts.IncludeOnly) > 0 && !matchAny(opts.IncludeOnly, id) {
		return "not included", true
	}
	if e, ok := waiver.Find(opts.Waivers, id, opts.Now); ok {
		return "waived: " + e.Reason, true
	}
	return "", false
}

func matchAny(patterns []string, id string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, id); err == nil && ok {
			return true
		}
	}
	return false
}

// execute runs one check to its final outcome: probe, optional remediation,
// optional single verification re-probe.
func execute(ctx context.Context, def check.Definition, fixMode bool, timeout time.Duration) model.Outcome {
	res, timedOut := invoke(ctx, def.Probe, timeout)

	var status model.Status
	var message string
	switch {
	case timedOut:
		status = model.StatusError
		message = "timed out"
	case res.Err != nil:
		status = model.StatusError
		message = res.Err.Error()
	default:
		status, message = interpret(res)
	}

	// A timed-out or errored probe is never remediated: with no reliable
	// status there is nothing to verify a fix against.
	if fixMode && def.Fix != nil && (status == model.StatusFail || status == model.StatusWarn) {
		if err := def.Fix(ctx); err != nil {
			// Original status and message stay; a failed fix never
			// upgrades a check.
			message += "; remediation failed: " + err.Error()
		} else {
			retry, retryTimedOut := invoke(ctx, def.Probe, timeout)
			if !retryTimedOut && retry.Err == nil && retry.Verdict == check.Pass {
				status = model.StatusPass
				message = retry.Message + " (after remediation)"
			} else {
				message += "; still failing after remediation"
			}
		}
	}

	return newOutcome(def, status, message)
}

// invoke runs a probe under its timeout, isolating panics so a broken probe
// cannot take down sibling checks.
func invoke(ctx context.Context, probe check.Probe, timeout time.Duration) (check.Result, bool) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan check.Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- check.Result{Err: fmt.Errorf("probe panicked: %v", r)}
			}
		}()
		ch <- probe(cctx)
	}()

	select {
	case res := <-ch:
		return res, false
	case <-cctx.Done():
		return check.Result{}, true
	}
}

func interpret(res check.Result) (model.Status, string) {
	switch res.Verdict {
	case check.Pass:
		return model.StatusPass, res.Message
	case check.SoftFail:
		return model.StatusWarn, res.Message
	default:
		return model.StatusFail, res.Message
	}
}

func newOutcome(def check.Definition, status model.Status, message string) model.Outcome {
	return model.Outcome{
		CheckID:     def.ID,
		Name:        def.Name,
		Category:    string(def.Category),
		Severity:    def.Severity,
		Reference:   def.Reference,
		Status:      status,
		Message:     message,
		Remediation: def.Remediation,
		Timestamp:   time.Now().UTC(),
	}
}

func summarize(outcomes []model.Outcome) model.Summary {
	var s model.Summary
	for _, o := range outcomes {
		if o.Executed() {
			s.Total++
		}
		switch o.Status {
		case model.StatusPass:
			s.Passed++
		case model.StatusWarn:
			s.Warnings++
		case model.StatusFail:
			s.Failed++
		case model.StatusError:
			s.Errors++
		case model.StatusSkip:
			s.Skipped++
		}
	}
	return s
}
