package check

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Builtin returns the full built-in check catalogue, rooted at the given
// filesystem root ("/" for a live host, a mount point for an offline image).
// The returned order is the report order: category order first, declaration
// order within each category. It is stable across runs.
func Builtin(root string) []Definition {
	if root == "" {
		root = "/"
	}

	defs := []Definition{
		// FileSystem
		{
			ID:          "FS-001",
			Name:        "/etc/passwd permissions",
			Category:    CategoryFileSystem,
			Severity:    SeverityHigh,
			Reference:   "CIS 6.1.2",
			Probe:       permissionsAtMost(root, "etc/passwd", 0o644, HardFail),
			Remediation: "chmod 644 /etc/passwd",
			Fix:         chmodFix(root, "etc/passwd", 0o644),
		},
		{
			ID:          "FS-002",
			Name:        "/etc/shadow permissions",
			Category:    CategoryFileSystem,
			Severity:    SeverityCritical,
			Reference:   "CIS 6.1.3",
			Probe:       permissionsAtMost(root, "etc/shadow", 0o640, HardFail),
			Remediation: "chmod 640 /etc/shadow",
			Fix:         chmodFix(root, "etc/shadow", 0o640),
		},
		{
			ID:          "FS-003",
			Name:        "/etc/group permissions",
			Category:    CategoryFileSystem,
			Severity:    SeverityMedium,
			Reference:   "CIS 6.1.4",
			Probe:       permissionsAtMost(root, "etc/group", 0o644, SoftFail),
			Remediation: "chmod 644 /etc/group",
			Fix:         chmodFix(root, "etc/group", 0o644),
		},
		{
			ID:          "FS-004",
			Name:        "/etc/shadow ownership",
			Category:    CategoryFileSystem,
			Severity:    SeverityCritical,
			Reference:   "CIS 6.1.3",
			Probe:       rootOwned(root, "etc/shadow"),
			Remediation: "chown root /etc/shadow",
		},
		{
			ID:          "FS-005",
			Name:        "/tmp sticky bit",
			Category:    CategoryFileSystem,
			Severity:    SeverityHigh,
			Reference:   "CIS 1.1.2",
			Probe:       stickyBit(root, "tmp"),
			Remediation: "chmod +t /tmp",
			Fix:         chmodFix(root, "tmp", 0o777|os.ModeSticky),
		},
		{
			ID:          "FS-006",
			Name:        "World-writable files under /etc",
			Category:    CategoryFileSystem,
			Severity:    SeverityMedium,
			Probe:       noWorldWritableFiles(root, "etc"),
			Remediation: "Remove the world-writable bit: chmod o-w <file>",
		},
		{
			ID:          "FS-007",
			Name:        "sshd_config permissions",
			Category:    CategoryFileSystem,
			Severity:    SeverityMedium,
			Reference:   "CIS 5.2.1",
			Probe:       permissionsAtMost(root, "etc/ssh/sshd_config", 0o600, SoftFail),
			Remediation: "chmod 600 /etc/ssh/sshd_config",
			Fix:         chmodFix(root, "etc/ssh/sshd_config", 0o600),
		},

		// Authentication
		{
			ID:          "AUTH-001",
			Name:        "No empty password fields",
			Category:    CategoryAuthentication,
			Severity:    SeverityCritical,
			Reference:   "CIS 6.2.1",
			Probe:       emptyPasswords(root),
			Remediation: "Lock accounts without a password: passwd -l <user>",
		},
		{
			ID:          "AUTH-002",
			Name:        "No non-root UID 0 accounts",
			Category:    CategoryAuthentication,
			Severity:    SeverityCritical,
			Reference:   "CIS 6.2.5",
			Probe:       uidZeroAccounts(root),
			Remediation: "Remove or change the UID of any non-root UID 0 account",
		},
		{
			ID:          "AUTH-003",
			Name:        "No duplicate UIDs",
			Category:    CategoryAuthentication,
			Severity:    SeverityHigh,
			Reference:   "CIS 6.2.6",
			Probe:       duplicateUIDs(root),
			Remediation: "Assign unique UIDs in /etc/passwd",
		},
		{
			ID:        "AUTH-004",
			Name:      "Password expiration configured",
			Category:  CategoryAuthentication,
			Severity:  SeverityMedium,
			Reference: "CIS 5.4.1.1",
			Probe: loginDefsProbe(root, "PASS_MAX_DAYS", func(v int, present bool) Result {
				if !present {
					return Warnf("PASS_MAX_DAYS is not set in login.defs")
				}
				if v < 1 || v > 365 {
					return Warnf("PASS_MAX_DAYS is %d, expected 1-365", v)
				}
				return Passf("PASS_MAX_DAYS is %d", v)
			}),
			Remediation: "Set PASS_MAX_DAYS 365 in /etc/login.defs",
		},
		{
			ID:        "AUTH-005",
			Name:      "Minimum password change interval",
			Category:  CategoryAuthentication,
			Severity:  SeverityLow,
			Reference: "CIS 5.4.1.2",
			Probe: loginDefsProbe(root, "PASS_MIN_DAYS", func(v int, present bool) Result {
				if !present || v < 1 {
					return Warnf("PASS_MIN_DAYS is %d, expected at least 1", v)
				}
				return Passf("PASS_MIN_DAYS is %d", v)
			}),
			Remediation: "Set PASS_MIN_DAYS 1 in /etc/login.defs",
		},
		{
			ID:        "AUTH-006",
			Name:      "Password expiry warning period",
			Category:  CategoryAuthentication,
			Severity:  SeverityInfo,
			Reference: "CIS 5.4.1.3",
			Probe: loginDefsProbe(root, "PASS_WARN_AGE", func(v int, present bool) Result {
				if !present || v < 7 {
					return Warnf("PASS_WARN_AGE is %d, expected at least 7", v)
				}
				return Passf("PASS_WARN_AGE is %d", v)
			}),
			Remediation: "Set PASS_WARN_AGE 7 in /etc/login.defs",
		},

		// Networking
		{
			ID:          "NET-001",
			Name:        "IP forwarding disabled",
			Category:    CategoryNetworking,
			Severity:    SeverityMedium,
			Reference:   "CIS 3.1.1",
			Probe:       sysctlEquals(root, "net/ipv4/ip_forward", "0", SoftFail),
			Remediation: "sysctl -w net.ipv4.ip_forward=0",
		},
		{
			ID:          "NET-002",
			Name:        "ICMP redirects not accepted",
			Category:    CategoryNetworking,
			Severity:    SeverityMedium,
			Reference:   "CIS 3.2.2",
			Probe:       sysctlEquals(root, "net/ipv4/conf/all/accept_redirects", "0", SoftFail),
			Remediation: "sysctl -w net.ipv4.conf.all.accept_redirects=0",
		},
		{
			ID:          "NET-003",
			Name:        "Source-routed packets not accepted",
			Category:    CategoryNetworking,
			Severity:    SeverityHigh,
			Reference:   "CIS 3.2.1",
			Probe:       sysctlEquals(root, "net/ipv4/conf/all/accept_source_route", "0", HardFail),
			Remediation: "sysctl -w net.ipv4.conf.all.accept_source_route=0",
		},
		{
			ID:          "NET-004",
			Name:        "TCP SYN cookies enabled",
			Category:    CategoryNetworking,
			Severity:    SeverityHigh,
			Reference:   "CIS 3.2.8",
			Probe:       sysctlEquals(root, "net/ipv4/tcp_syncookies", "1", HardFail),
			Remediation: "sysctl -w net.ipv4.tcp_syncookies=1",
		},

		// Services (SSH daemon)
		{
			ID:        "SSH-001",
			Name:      "Root login over SSH disabled",
			Category:  CategoryServices,
			Severity:  SeverityCritical,
			Reference: "CIS 5.2.8",
			Probe: sshdProbe(root, "PermitRootLogin", func(v string, present bool) Result {
				if !present {
					return Warnf("PermitRootLogin is not explicitly set")
				}
				if strings.EqualFold(v, "no") || strings.EqualFold(v, "prohibit-password") {
					return Passf("PermitRootLogin is %s", v)
				}
				return Failf("PermitRootLogin is %s", v)
			}),
			Remediation: "Set PermitRootLogin no in /etc/ssh/sshd_config",
		},
		{
			ID:        "SSH-002",
			Name:      "SSH password authentication disabled",
			Category:  CategoryServices,
			Severity:  SeverityHigh,
			Reference: "CIS 5.2.9",
			Probe: sshdProbe(root, "PasswordAuthentication", func(v string, present bool) Result {
				if present && strings.EqualFold(v, "no") {
					return Passf("PasswordAuthentication is no")
				}
				if !present {
					return Warnf("PasswordAuthentication is not explicitly set (defaults to yes)")
				}
				return Warnf("PasswordAuthentication is %s", v)
			}),
			Remediation: "Set PasswordAuthentication no in /etc/ssh/sshd_config",
		},
		{
			ID:        "SSH-003",
			Name:      "SSH empty passwords rejected",
			Category:  CategoryServices,
			Severity:  SeverityCritical,
			Reference: "CIS 5.2.11",
			Probe: sshdProbe(root, "PermitEmptyPasswords", func(v string, present bool) Result {
				if present && strings.EqualFold(v, "yes") {
					return Failf("PermitEmptyPasswords is yes")
				}
				return Passf("PermitEmptyPasswords is not enabled")
			}),
			Remediation: "Set PermitEmptyPasswords no in /etc/ssh/sshd_config",
		},
		{
			ID:        "SSH-004",
			Name:      "SSH X11 forwarding disabled",
			Category:  CategoryServices,
			Severity:  SeverityLow,
			Reference: "CIS 5.2.6",
			Probe: sshdProbe(root, "X11Forwarding", func(v string, present bool) Result {
				if present && strings.EqualFold(v, "yes") {
					return Warnf("X11Forwarding is yes")
				}
				return Passf("X11Forwarding is not enabled")
			}),
			Remediation: "Set X11Forwarding no in /etc/ssh/sshd_config",
		},
		{
			ID:        "SSH-005",
			Name:      "SSH authentication attempts limited",
			Category:  CategoryServices,
			Severity:  SeverityMedium,
			Reference: "CIS 5.2.7",
			Probe: sshdProbe(root, "MaxAuthTries", func(v string, present bool) Result {
				if !present {
					return Warnf("MaxAuthTries is not set (defaults to 6)")
				}
				n := 0
				if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
					return Errorf("parse MaxAuthTries %q", v)
				}
				if n > 4 {
					return Warnf("MaxAuthTries is %d, expected at most 4", n)
				}
				return Passf("MaxAuthTries is %d", n)
			}),
			Remediation: "Set MaxAuthTries 4 in /etc/ssh/sshd_config",
		},
		{
			ID:        "SSH-006",
			Name:      "Legacy SSH protocol disabled",
			Category:  CategoryServices,
			Severity:  SeverityHigh,
			Probe: sshdProbe(root, "Protocol", func(v string, present bool) Result {
				if present && strings.Contains(v, "1") {
					return Failf("Protocol is %s", v)
				}
				return Passf("legacy protocol 1 is not enabled")
			}),
			Remediation: "Remove Protocol 1 from /etc/ssh/sshd_config",
		},

		// Kernel
		{
			ID:          "KRN-001",
			Name:        "Address space layout randomization",
			Category:    CategoryKernel,
			Severity:    SeverityHigh,
			Reference:   "CIS 1.5.3",
			Probe:       sysctlEquals(root, "kernel/randomize_va_space", "2", HardFail),
			Remediation: "sysctl -w kernel.randomize_va_space=2",
		},
		{
			ID:          "KRN-002",
			Name:        "Kernel pointer hiding",
			Category:    CategoryKernel,
			Severity:    SeverityMedium,
			Probe:       sysctlAtLeast(root, "kernel/kptr_restrict", 1, SoftFail),
			Remediation: "sysctl -w kernel.kptr_restrict=1",
		},
		{
			ID:          "KRN-003",
			Name:        "Kernel log access restricted",
			Category:    CategoryKernel,
			Severity:    SeverityLow,
			Probe:       sysctlEquals(root, "kernel/dmesg_restrict", "1", SoftFail),
			Remediation: "sysctl -w kernel.dmesg_restrict=1",
		},
		{
			ID:          "KRN-004",
			Name:        "Magic SysRq disabled",
			Category:    CategoryKernel,
			Severity:    SeverityLow,
			Probe:       sysctlEquals(root, "kernel/sysrq", "0", SoftFail),
			Remediation: "sysctl -w kernel.sysrq=0",
		},

		// Logging
		{
			ID:       "LOG-001",
			Name:     "System logger configured",
			Category: CategoryLogging,
			Severity: SeverityMedium,
			Probe: func(ctx context.Context) Result {
				if rel, ok := fileExistsAny(root, "etc/rsyslog.conf", "etc/systemd/journald.conf", "etc/syslog-ng/syslog-ng.conf"); ok {
					return Passf("/%s is present", rel)
				}
				return Failf("no rsyslog, journald, or syslog-ng configuration found")
			},
			Remediation: "Install and enable rsyslog or systemd-journald",
		},
		{
			ID:        "LOG-002",
			Name:      "Audit daemon configured",
			Category:  CategoryLogging,
			Severity:  SeverityMedium,
			Reference: "CIS 4.1.1",
			Probe: func(ctx context.Context) Result {
				if _, ok := fileExistsAny(root, "etc/audit/auditd.conf"); ok {
					return Passf("/etc/audit/auditd.conf is present")
				}
				return Warnf("auditd does not appear to be configured")
			},
			Remediation: "Install auditd and enable the audit service",
		},
		{
			ID:          "LOG-003",
			Name:        "/var/log not world-writable",
			Category:    CategoryLogging,
			Severity:    SeverityLow,
			Probe:       permissionsAtMost(root, "var/log", 0o775, SoftFail),
			Remediation: "chmod o-w /var/log",
		},
	}

	return defs
}

func emptyPasswords(root string) Probe {
	return func(ctx context.Context) Result {
		entries, err := shadowEntries(root)
		if err != nil {
			return Errorf("read /etc/shadow: %v", err)
		}
		var empty []string
		for _, e := range entries {
			if e[1] == "" {
				empty = append(empty, e[0])
			}
		}
		if len(empty) > 0 {
			return Failf("account(s) with empty password: %s", strings.Join(empty, ", "))
		}
		return Passf("no accounts with empty passwords")
	}
}

func uidZeroAccounts(root string) Probe {
	return func(ctx context.Context) Result {
		entries, err := passwdEntries(root)
		if err != nil {
			return Errorf("read /etc/passwd: %v", err)
		}
		var extra []string
		for _, e := range entries {
			if e[1] == "0" && e[0] != "root" {
				extra = append(extra, e[0])
			}
		}
		if len(extra) > 0 {
			return Failf("non-root UID 0 account(s): %s", strings.Join(extra, ", "))
		}
		return Passf("root is the only UID 0 account")
	}
}

func duplicateUIDs(root string) Probe {
	return func(ctx context.Context) Result {
		entries, err := passwdEntries(root)
		if err != nil {
			return Errorf("read /etc/passwd: %v", err)
		}
		seen := map[string]string{}
		var dups []string
		for _, e := range entries {
			if prev, ok := seen[e[1]]; ok {
				dups = append(dups, fmt.Sprintf("%s/%s (uid %s)", prev, e[0], e[1]))
				continue
			}
			seen[e[1]] = e[0]
		}
		if len(dups) > 0 {
			return Failf("duplicate UID(s): %s", strings.Join(dups, ", "))
		}
		return Passf("all UIDs are unique")
	}
}
