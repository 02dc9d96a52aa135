// Package presets loads named exclusion policies from presets.toml and
// merges them over the built-in ones.
package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"

	"ladderscope/internal/pattern"
)

// ErrUnknownPreset is returned when a preset name is not registered
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is the on-disk form of an exclusion policy
type Preset struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description,omitempty"`
	Members     []string `toml:"members"`
	Threshold   float64  `toml:"threshold,omitempty"`
}

// File is the presets.toml document
type File struct {
	Default string   `toml:"default,omitempty"`
	Presets []Preset `toml:"preset"`
}

// Registry resolves preset names to policies
type Registry struct {
	policies map[string]pattern.ExclusionPolicy
	order    []string
	def      string
	source   string
}

// Builtin returns a registry holding only the built-in policies.
func Builtin() *Registry {
	r := &Registry{policies: map[string]pattern.ExclusionPolicy{}, def: pattern.DefaultPolicy().Name}
	for _, p := range pattern.BuiltinPolicies() {
		r.add(p)
	}
	return r
}

// Load reads path over the built-ins. A missing file is not an error.
// Unknown keys, unparseable symbols and invalid policies are.
func Load(path string) (*Registry, error) {
	r := Builtin()
	if path == "" {
		return r, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return r, nil
	}

	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	for i, p := range f.Presets {
		policy, err := p.Policy()
		if err != nil {
			return nil, fmt.Errorf("%s: preset %d: %w", path, i, err)
		}
		r.add(policy)
	}
	if f.Default != "" {
		if _, ok := r.policies[f.Default]; !ok {
			return nil, fmt.Errorf("%s: default %w %q", path, ErrUnknownPreset, f.Default)
		}
		r.def = f.Default
	}
	r.source = path
	return r, nil
}

// Policy converts the preset to a validated policy. A zero threshold
// means pattern.DefaultThreshold.
func (p Preset) Policy() (pattern.ExclusionPolicy, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return pattern.ExclusionPolicy{}, fmt.Errorf("%w: preset without a name", pattern.ErrInvalidPolicy)
	}

	policy := pattern.ExclusionPolicy{Name: name, Threshold: p.Threshold}
	if policy.Threshold == 0 {
		policy.Threshold = pattern.DefaultThreshold
	}
	for _, m := range p.Members {
		s, err := pattern.ParseSymbol(m)
		if err != nil {
			return pattern.ExclusionPolicy{}, fmt.Errorf("preset %q: %w", name, err)
		}
		policy.Canonical = append(policy.Canonical, s)
	}
	if err := policy.Validate(); err != nil {
		return pattern.ExclusionPolicy{}, err
	}
	return policy, nil
}

// FromPolicy converts a policy to its on-disk form using short notation.
func FromPolicy(p pattern.ExclusionPolicy) Preset {
	members := make([]string, len(p.Canonical))
	for i, s := range p.Canonical {
		members[i] = s.Short()
	}
	return Preset{Name: p.Name, Members: members, Threshold: p.Threshold}
}

func (r *Registry) add(p pattern.ExclusionPolicy) {
	if _, exists := r.policies[p.Name]; !exists {
		r.order = append(r.order, p.Name)
	}
	r.policies[p.Name] = p
}

// Get returns the named policy; "" selects the default.
func (r *Registry) Get(name string) (pattern.ExclusionPolicy, error) {
	if name == "" {
		name = r.def
	}
	p, ok := r.policies[name]
	if !ok {
		return pattern.ExclusionPolicy{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownPreset, name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// SetDefault changes the preset returned for an empty name.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.policies[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	r.def = name
	return nil
}

// Default returns the default preset name.
func (r *Registry) Default() string { return r.def }

// Source returns the file the registry was loaded from, or "" for built-ins only.
func (r *Registry) Source() string { return r.source }

// Names returns preset names sorted alphabetically.
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// List returns policies in registration order: built-ins first, then file
// additions.
func (r *Registry) List() []pattern.ExclusionPolicy {
	out := make([]pattern.ExclusionPolicy, len(r.order))
	for i, name := range r.order {
		out[i] = r.policies[name]
	}
	return out
}

// Template renders a presets.toml holding the built-in policies.
func Template() ([]byte, error) {
	f := File{Default: pattern.DefaultPolicy().Name}
	for _, p := range pattern.BuiltinPolicies() {
		preset := FromPolicy(p)
		preset.Description = describe(p)
		f.Presets = append(f.Presets, preset)
	}
	data, err := gotoml.Marshal(f)
	if err != nil {
		return nil, err
	}
	header := "# ladderscope exclusion presets.\n# Members use short notation: L/R, 3/4 lines, O/E parity.\n\n"
	return append([]byte(header), data...), nil
}

// WriteTemplate writes Template() to path. An existing file is kept unless
// force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := Template()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func describe(p pattern.ExclusionPolicy) string {
	members := make([]string, len(p.Canonical))
	for i, s := range p.Canonical {
		members[i] = s.Short()
	}
	return fmt.Sprintf("%s over %s", p.Name, strings.Join(members, ", "))
}
