package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/check"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/config"
)

func TestUnknownProfileFailsFast(t *testing.T) {
	reg := New(check.Builtin("/"))
	_, err := reg.Checks("no-such-profile")
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	var ce *config.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigurationError, got %T: %v", err, err)
	}
}

func TestBaselineSelectsWholeCatalogueInOrder(t *testing.T) {
	defs := check.Builtin("/")
	reg := New(defs)

	got, err := reg.Checks("baseline")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(defs) {
		t.Fatalf("baseline selects %d checks, catalogue has %d", len(got), len(defs))
	}
	for i := range got {
		if got[i].ID != defs[i].ID {
			t.Fatalf("order differs at %d: %s vs %s", i, got[i].ID, defs[i].ID)
		}
	}
}

func TestCategoryProfiles(t *testing.T) {
	reg := New(check.Builtin("/"))

	cases := []struct {
		profile string
		prefix  string
	}{
		{"filesystem", "FS-"},
		{"auth", "AUTH-"},
		{"network", "NET-"},
		{"kernel", "KRN-"},
		{"logging", "LOG-"},
	}
	for _, tc := range cases {
		got, err := reg.Checks(tc.profile)
		if err != nil {
			t.Fatalf("%s: %v", tc.profile, err)
		}
		if len(got) == 0 {
			t.Fatalf("%s selects no checks", tc.profile)
		}
		for _, d := range got {
			if d.ID[:len(tc.prefix)] != tc.prefix {
				t.Fatalf("profile %s selected %s", tc.profile, d.ID)
			}
		}
	}
}

func TestSSHProfileIncludesConfigPermissions(t *testing.T) {
	reg := New(check.Builtin("/"))
	got, err := reg.Checks("ssh")
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]bool{}
	for _, d := range got {
		ids[d.ID] = true
	}
	if !ids["SSH-001"] || !ids["FS-007"] {
		t.Fatalf("ssh profile missing expected checks: %v", ids)
	}
}

func TestLoadCustomProfileFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "profiles.yaml")
	content := `profiles:
  - name: cis-level1
    description: CIS Level 1 subset
    checks: ["FS-00[12]", "SSH-*", "AUTH-001"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := New(check.Builtin("/"))
	if err := reg.LoadProfiles(path); err != nil {
		t.Fatal(err)
	}

	got, err := reg.Checks("cis-level1")
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	want := map[string]bool{"FS-001": true, "FS-002": true, "AUTH-001": true}
	for id := range want {
		found := false
		for _, got := range ids {
			if got == id {
				found = true
			}
		}
		if !found {
			t.Fatalf("cis-level1 missing %s, got %v", id, ids)
		}
	}
	// Catalogue order is preserved regardless of pattern order.
	for i := 1; i < len(ids); i++ {
		if indexOf(check.Builtin("/"), ids[i-1]) > indexOf(check.Builtin("/"), ids[i]) {
			t.Fatalf("profile checks out of catalogue order: %v", ids)
		}
	}
}

func indexOf(defs []check.Definition, id string) int {
	for i, d := range defs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func TestMalformedProfileFileFailsFast(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "profiles.yaml")
	if err := os.WriteFile(path, []byte("profiles: {not: [valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := New(check.Builtin("/"))
	err := reg.LoadProfiles(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	var ce *config.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigurationError, got %T", err)
	}
}

func TestProfileSelectingNothingFailsFast(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "profiles.yaml")
	content := `profiles:
  - name: empty
    checks: ["NOPE-*"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := New(check.Builtin("/"))
	if err := reg.LoadProfiles(path); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Checks("empty"); err == nil {
		t.Fatal("expected error for profile matching no checks")
	}
}

func TestByID(t *testing.T) {
	reg := New(check.Builtin("/"))
	d, err := reg.ByID("SSH-001")
	if err != nil {
		t.Fatal(err)
	}
	if d.Category != check.CategoryServices {
		t.Fatalf("SSH-001 category = %s", d.Category)
	}
	if _, err := reg.ByID("NOPE-001"); err == nil {
		t.Fatal("expected error for unknown check id")
	}
}
