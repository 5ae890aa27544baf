package waiver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// File is the on-disk waiver store. A waiver marks a check as accepted risk:
// the check is skipped and does not count toward the compliance score.
type File struct {
	Version     string  `json:"version"`
	GeneratedAt string  `json:"generated_at"`
	Entries     []Entry `json:"entries"`
}

type Entry struct {
	CheckID   string `json:"check_id"`
	Reason    string `json:"reason"`
	ExpiresAt string `json:"expires_at,omitempty"`
	AddedAt   string `json:"added_at"`
	AddedBy   string `json:"added_by,omitempty"`
}

func Empty() File {
	return File{Version: "1", Entries: []Entry{}}
}

func Load(path string) (File, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Empty(), nil
		}
		return File{}, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse waivers: %w", err)
	}
	if f.Version == "" {
		f.Version = "1"
	}
	return f, nil
}

func Save(path string, f File) error {
	if path == "" {
		return fmt.Errorf("waiver path required")
	}
	if f.Version == "" {
		f.Version = "1"
	}
	f.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Find returns the active waiver for a check, if any. Expired waivers are
// ignored rather than removed.
func Find(f File, checkID string, now time.Time) (Entry, bool) {
	for _, e := range f.Entries {
		if e.CheckID != checkID {
			continue
		}
		if e.ExpiresAt != "" {
			exp, err := time.Parse("2006-01-02", e.ExpiresAt)
			if err != nil || !now.Before(exp.AddDate(0, 0, 1)) {
				continue
			}
		}
		return e, true
	}
	return Entry{}, false
}

// Upsert adds or replaces the waiver for a check.
func Upsert(f File, entry Entry) File {
	out := f
	if out.Version == "" {
		out.Version = "1"
	}
	if entry.AddedAt == "" {
		entry.AddedAt = time.Now().UTC().Format(time.RFC3339)
	}
	for i, e := range out.Entries {
		if e.CheckID == entry.CheckID {
			out.Entries[i] = entry
			return out
		}
	}
	out.Entries = append(out.Entries, entry)
	return out
}
