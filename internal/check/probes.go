package check

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// permissionsAtMost returns a probe that fails with the given verdict when
// the file's permission bits exceed max.
func permissionsAtMost(root, rel string, max os.FileMode, onExceed Verdict) Probe {
	return func(ctx context.Context) Result {
		path := filepath.Join(root, rel)
		info, err := os.Stat(path)
		if err != nil {
			return Errorf("stat %s: %v", rel, err)
		}
		perm := info.Mode().Perm()
		if perm&^max != 0 {
			return Result{
				Verdict: onExceed,
				Message: fmt.Sprintf("/%s has permissions %04o, expected at most %04o", rel, perm, max),
			}
		}
		return Passf("/%s has permissions %04o", rel, perm)
	}
}

// chmodFix returns a remediation action that tightens a file's mode.
func chmodFix(root, rel string, mode os.FileMode) Fix {
	return func(ctx context.Context) error {
		return os.Chmod(filepath.Join(root, rel), mode)
	}
}

func rootOwned(root, rel string) Probe {
	return func(ctx context.Context) Result {
		path := filepath.Join(root, rel)
		var st unix.Stat_t
		if err := unix.Stat(path, &st); err != nil {
			return Errorf("stat %s: %v", rel, err)
		}
		if st.Uid != 0 {
			return Failf("/%s is owned by uid %d, expected root", rel, st.Uid)
		}
		return Passf("/%s is owned by root", rel)
	}
}

func stickyBit(root, rel string) Probe {
	return func(ctx context.Context) Result {
		path := filepath.Join(root, rel)
		info, err := os.Stat(path)
		if err != nil {
			return Errorf("stat %s: %v", rel, err)
		}
		if info.Mode()&os.ModeSticky == 0 {
			return Failf("/%s is missing the sticky bit", rel)
		}
		return Passf("/%s has the sticky bit set", rel)
	}
}

func noWorldWritableFiles(root, rel string) Probe {
	return func(ctx context.Context) Result {
		base := filepath.Join(root, rel)
		var writable []string
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				// Unreadable subtrees are skipped, not fatal.
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.Mode().IsRegular() && info.Mode().Perm()&0o002 != 0 {
				r, _ := filepath.Rel(root, path)
				writable = append(writable, "/"+r)
			}
			return nil
		})
		if err != nil {
			return Errorf("walk /%s: %v", rel, err)
		}
		if len(writable) > 0 {
			return Warnf("%d world-writable file(s) under /%s: %s", len(writable), rel, summarizeList(writable, 5))
		}
		return Passf("no world-writable files under /%s", rel)
	}
}

func summarizeList(items []string, max int) string {
	if len(items) <= max {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:max], ", ") + fmt.Sprintf(" (and %d more)", len(items)-max)
}

// sshdDirective reads the effective value of a directive from sshd_config.
// OpenSSH uses the first occurrence of a keyword, so that is what wins here.
func sshdDirective(root, key string) (string, bool, error) {
	path := filepath.Join(root, "etc/ssh/sshd_config")
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	want := strings.ToLower(key)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.ToLower(fields[0]) == want {
			return strings.Join(fields[1:], " "), true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}

func sshdProbe(root, key string, eval func(value string, present bool) Result) Probe {
	return func(ctx context.Context) Result {
		value, present, err := sshdDirective(root, key)
		if err != nil {
			return Errorf("read sshd_config: %v", err)
		}
		return eval(value, present)
	}
}

// loginDefsValue reads a numeric setting from /etc/login.defs.
func loginDefsValue(root, key string) (int, bool, error) {
	path := filepath.Join(root, "etc/login.defs")
	f, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[0] != key {
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, false, fmt.Errorf("parse %s: %w", key, err)
		}
		return n, true, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}

func loginDefsProbe(root, key string, eval func(value int, present bool) Result) Probe {
	return func(ctx context.Context) Result {
		value, present, err := loginDefsValue(root, key)
		if err != nil {
			return Errorf("read login.defs: %v", err)
		}
		return eval(value, present)
	}
}

// sysctlEquals probes a kernel parameter via /proc/sys.
func sysctlEquals(root, key, want string, onMismatch Verdict) Probe {
	dotted := strings.ReplaceAll(key, "/", ".")
	return func(ctx context.Context) Result {
		data, err := os.ReadFile(filepath.Join(root, "proc/sys", key))
		if err != nil {
			return Errorf("read sysctl %s: %v", dotted, err)
		}
		got := strings.TrimSpace(string(data))
		if got != want {
			return Result{
				Verdict: onMismatch,
				Message: fmt.Sprintf("%s = %s, expected %s", dotted, got, want),
			}
		}
		return Passf("%s = %s", dotted, got)
	}
}

func sysctlAtLeast(root, key string, min int, onMismatch Verdict) Probe {
	dotted := strings.ReplaceAll(key, "/", ".")
	return func(ctx context.Context) Result {
		data, err := os.ReadFile(filepath.Join(root, "proc/sys", key))
		if err != nil {
			return Errorf("read sysctl %s: %v", dotted, err)
		}
		got, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return Errorf("parse sysctl %s: %v", dotted, err)
		}
		if got < min {
			return Result{
				Verdict: onMismatch,
				Message: fmt.Sprintf("%s = %d, expected at least %d", dotted, got, min),
			}
		}
		return Passf("%s = %d", dotted, got)
	}
}

func fileExistsAny(root string, rels ...string) (string, bool) {
	for _, rel := range rels {
		if _, err := os.Stat(filepath.Join(root, rel)); err == nil {
			return rel, true
		}
	}
	return "", false
}

// shadowEntries parses /etc/shadow into (user, passwordField) pairs.
func shadowEntries(root string) ([][2]string, error) {
	data, err := os.ReadFile(filepath.Join(root, "etc/shadow"))
	if err != nil {
		return nil, err
	}
	var entries [][2]string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		entries = append(entries, [2]string{fields[0], fields[1]})
	}
	return entries, nil
}

// passwdEntries parses /etc/passwd into (user, uid) pairs.
func passwdEntries(root string) ([][2]string, error) {
	data, err := os.ReadFile(filepath.Join(root, "etc/passwd"))
	if err != nil {
		return nil, err
	}
	var entries [][2]string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 3 {
			continue
		}
		entries = append(entries, [2]string{fields[0], fields[2]})
	}
	return entries, nil
}
