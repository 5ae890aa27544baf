package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/check"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/config"
)

// Profile is a named subset of the catalogue representing a compliance
// baseline. Entries in Checks are doublestar patterns matched against check
// IDs, so "SSH-*" selects the whole SSH group.
type Profile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Checks      []string `yaml:"checks"`
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Registry holds the check catalogue and the known profiles. The catalogue
// order is fixed at construction and is the report order.
type Registry struct {
	defs     []check.Definition
	profiles map[string]Profile
	names    []string
}

// New builds a registry over the given catalogue with the built-in profiles
// registered.
func New(defs []check.Definition) *Registry {
	r := &Registry{
		defs:     defs,
		profiles: map[string]Profile{},
	}
	for _, p := range builtinProfiles() {
		r.profiles[p.Name] = p
		r.names = append(r.names, p.Name)
	}
	return r
}

func builtinProfiles() []Profile {
	return []Profile{
		{Name: "baseline", Description: "All built-in hardening checks", Checks: []string{"*"}},
		{Name: "full", Description: "Alias for baseline", Checks: []string{"*"}},
		{Name: "filesystem", Description: "File permission and ownership checks", Checks: []string{"FS-*"}},
		{Name: "auth", Description: "Account and password hygiene checks", Checks: []string{"AUTH-*"}},
		{Name: "network", Description: "Network stack hardening checks", Checks: []string{"NET-*"}},
		{Name: "ssh", Description: "SSH daemon configuration checks", Checks: []string{"SSH-*", "FS-007"}},
		{Name: "kernel", Description: "Kernel hardening checks", Checks: []string{"KRN-*"}},
		{Name: "logging", Description: "Logging and audit checks", Checks: []string{"LOG-*"}},
	}
}

// LoadProfiles merges custom profiles from a YAML file or a directory of
// YAML files. Custom profiles may shadow built-ins of the same name.
func (r *Registry) LoadProfiles(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return config.Errorf("profiles path %s: %v", path, err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return config.Errorf("read profiles dir %s: %v", path, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext == ".yaml" || ext == ".yml" {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return config.Errorf("read profiles file %s: %v", f, err)
		}
		var pf profileFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return config.Errorf("parse profiles file %s: %v", f, err)
		}
		for _, p := range pf.Profiles {
			if p.Name == "" {
				return config.Errorf("profile without a name in %s", f)
			}
			if len(p.Checks) == 0 {
				return config.Errorf("profile %s selects no checks", p.Name)
			}
			for _, pattern := range p.Checks {
				if !doublestar.ValidatePattern(pattern) {
					return config.Errorf("profile %s has invalid check pattern %q", p.Name, pattern)
				}
			}
			if _, exists := r.profiles[p.Name]; !exists {
				r.names = append(r.names, p.Name)
			}
			r.profiles[p.Name] = p
		}
	}
	return nil
}

// Profiles returns the known profile names, built-ins first, then custom
// profiles in load order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.profiles[name])
	}
	return out
}

// Checks resolves a profile into its ordered check definitions. Catalogue
// order is preserved regardless of pattern order inside the profile.
func (r *Registry) Checks(profile string) ([]check.Definition, error) {
	p, ok := r.profiles[profile]
	if !ok {
		return nil, config.Errorf("unknown profile: %s", profile)
	}

	out := make([]check.Definition, 0, len(r.defs))
	for _, d := range r.defs {
		if matchesAny(p.Checks, d.ID) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, config.Errorf("profile %s matches no checks", profile)
	}
	return out, nil
}

// All returns the full catalogue in report order.
func (r *Registry) All() []check.Definition {
	return r.defs
}

func matchesAny(patterns []string, id string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, id); err == nil && ok {
			return true
		}
	}
	return false
}

// ByID looks a single check up by its exact ID.
func (r *Registry) ByID(id string) (check.Definition, error) {
	for _, d := range r.defs {
		if d.ID == id {
			return d, nil
		}
	}
	return check.Definition{}, fmt.Errorf("unknown check: %s", id)
}
