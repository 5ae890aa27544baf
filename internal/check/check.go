package check

import (
	"context"
	"fmt"
)

// Category groups related checks. Report ordering follows the order these
// are declared in Categories.
type Category string

const (
	CategoryFileSystem     Category = "FileSystem"
	CategoryAuthentication Category = "Authentication"
	CategoryNetworking     Category = "Networking"
	CategoryServices       Category = "Services"
	CategoryKernel         Category = "Kernel"
	CategoryLogging        Category = "Logging"
	CategoryCustom         Category = "Custom"
)

// Categories lists all categories in presentation order.
var Categories = []Category{
	CategoryFileSystem,
	CategoryAuthentication,
	CategoryNetworking,
	CategoryServices,
	CategoryKernel,
	CategoryLogging,
	CategoryCustom,
}

// Severity levels are informational only: they are carried through to the
// report but never alter pass/fail logic or the compliance score.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// Verdict is a probe's tri-state answer. A failed determination (the probe
// could not tell either way) is signalled via Result.Err instead.
type Verdict int

const (
	// Pass means the system satisfies the check.
	Pass Verdict = iota
	// SoftFail is a warning-grade failure; recorded as WARN.
	SoftFail
	// HardFail is a full failure; recorded as FAIL.
	HardFail
)

// Result is what a probe returns for one invocation.
type Result struct {
	Verdict Verdict
	Message string
	// Err is set when the probe could not determine a status at all, e.g. a
	// file it depends on is unreadable. The engine records ERROR.
	Err error
}

// Probe inspects ambient system state and returns a Result. Probes must be
// idempotent: the engine may invoke a probe twice in one scan (once
// initially, once after remediation), never more.
type Probe func(ctx context.Context) Result

// Fix is an optional remediation action. It is only ever invoked when fix
// mode is enabled, and never after a probe timeout.
type Fix func(ctx context.Context) error

// Definition is the static description of one check, loaded once at startup.
type Definition struct {
	ID          string
	Name        string
	Category    Category
	Severity    string
	Reference   string
	Probe       Probe
	Remediation string
	Fix         Fix
}

func Passf(format string, args ...any) Result {
	return Result{Verdict: Pass, Message: fmt.Sprintf(format, args...)}
}

func Warnf(format string, args ...any) Result {
	return Result{Verdict: SoftFail, Message: fmt.Sprintf(format, args...)}
}

func Failf(format string, args ...any) Result {
	return Result{Verdict: HardFail, Message: fmt.Sprintf(format, args...)}
}

func Errorf(format string, args ...any) Result {
	return Result{Err: fmt.Errorf(format, args...)}
}
