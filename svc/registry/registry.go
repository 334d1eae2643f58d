package registry

import (
	"fmt"
	"slices"
	"sort"
)

// AdminModule is the mandatory administrative module every tenant gets,
// regardless of the bundle it was created with.
const AdminModule = "companyAdmin"

// PermissionDef is an immutable catalog entry describing one capability.
// The ID is a dotted, hierarchical identifier owned by exactly one module.
type PermissionDef struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
	// Enabled defaults to true when omitted; only an explicit false
	// excludes the permission from bundle resolution.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the permission takes part in resolution.
func (d PermissionDef) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Module is an installable feature area and its declared permission set.
type Module struct {
	Code        string          `yaml:"code"`
	Name        string          `yaml:"name"`
	Permissions []PermissionDef `yaml:"permissions,omitempty"`
}

// Bundle is a curated set of modules offered together.
type Bundle struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Modules []string `yaml:"modules"`
}

// Config is the raw catalog definition consumed by New.
type Config struct {
	Modules []Module `yaml:"modules"`
	Bundles []Bundle `yaml:"bundles"`
	// Dependencies maps a module code to the module codes it implicitly
	// requires. The relation must be acyclic.
	Dependencies map[string][]string `yaml:"dependencies,omitempty"`
}

// Registry is the read-only module/bundle/permission catalog. It is loaded
// once per process and passed explicitly into the components that need it;
// there is no ambient global.
type Registry struct {
	modules map[string]Module
	bundles map[string]Bundle
	deps    map[string][]string
}

// New validates the catalog definition and builds a Registry.
// Validation covers duplicate codes, references to unknown modules and
// cycles in the dependency relation.
func New(cfg Config) (*Registry, error) {
	modules := make(map[string]Module, len(cfg.Modules))
	for _, m := range cfg.Modules {
		if m.Code == "" {
			return nil, fmt.Errorf("%w: empty module code", ErrInvalidCatalog)
		}
		if _, exists := modules[m.Code]; exists {
			return nil, fmt.Errorf("%w: duplicate module %q", ErrInvalidCatalog, m.Code)
		}
		seen := make(map[string]struct{}, len(m.Permissions))
		for _, p := range m.Permissions {
			if p.ID == "" {
				return nil, fmt.Errorf("%w: module %q has a permission with empty id", ErrInvalidCatalog, m.Code)
			}
			if _, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("%w: module %q declares %q twice", ErrInvalidCatalog, m.Code, p.ID)
			}
			seen[p.ID] = struct{}{}
		}
		modules[m.Code] = m
	}

	bundles := make(map[string]Bundle, len(cfg.Bundles))
	for _, b := range cfg.Bundles {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: empty bundle id", ErrInvalidCatalog)
		}
		if _, exists := bundles[b.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate bundle %q", ErrInvalidCatalog, b.ID)
		}
		for _, code := range b.Modules {
			if _, ok := modules[code]; !ok {
				return nil, fmt.Errorf("%w: bundle %q references unknown module %q", ErrInvalidCatalog, b.ID, code)
			}
		}
		bundles[b.ID] = b
	}

	deps := make(map[string][]string, len(cfg.Dependencies))
	for code, required := range cfg.Dependencies {
		if _, ok := modules[code]; !ok {
			return nil, fmt.Errorf("%w: dependency table references unknown module %q", ErrInvalidCatalog, code)
		}
		for _, dep := range required {
			if _, ok := modules[dep]; !ok {
				return nil, fmt.Errorf("%w: module %q depends on unknown module %q", ErrInvalidCatalog, code, dep)
			}
		}
		deps[code] = slices.Clone(required)
	}

	if err := validateAcyclic(deps); err != nil {
		return nil, err
	}

	return &Registry{modules: modules, bundles: bundles, deps: deps}, nil
}

// MustNew is New that panics on an invalid catalog. The built-in default
// catalog goes through it so a broken definition fails at startup.
func MustNew(cfg Config) *Registry {
	r, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	return r
}

// Module returns the module with the given code.
func (r *Registry) Module(code string) (Module, bool) {
	m, ok := r.modules[code]
	return m, ok
}

// Modules returns all modules sorted by code.
func (r *Registry) Modules() []Module {
	out := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Bundle returns the bundle with the given id.
func (r *Registry) Bundle(id string) (Bundle, bool) {
	b, ok := r.bundles[id]
	return b, ok
}

// Dependencies returns the module codes the given module implicitly
// requires. The returned slice is a copy; missing entries yield nil.
func (r *Registry) Dependencies(code string) []string {
	return slices.Clone(r.deps[code])
}

// Closure returns the transitive dependency set of a module, deepest
// foundations first, the module itself excluded. The relation is validated
// acyclic at construction, so traversal always terminates.
func (r *Registry) Closure(code string) []string {
	var out []string
	seen := map[string]struct{}{code: {}}

	var visit func(code string)
	visit = func(code string) {
		for _, dep := range r.deps[code] {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			visit(dep)
			out = append(out, dep)
		}
	}
	visit(code)
	return out
}

// EnabledPermissions returns the ids of all enabled permissions declared by
// the given modules. Unknown codes are skipped; resolution treats them as
// contributing nothing.
func (r *Registry) EnabledPermissions(codes ...string) []string {
	var out []string
	for _, code := range codes {
		m, ok := r.modules[code]
		if !ok {
			continue
		}
		for _, p := range m.Permissions {
			if p.IsEnabled() {
				out = append(out, p.ID)
			}
		}
	}
	return out
}

// validateAcyclic runs a DFS over the dependency relation and rejects cycles.
func validateAcyclic(deps map[string][]string) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(deps))

	var visit func(code string, path []string) error
	visit = func(code string, path []string) error {
		switch state[code] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrCyclicDependency, formatCycle(append(path, code)))
		}
		state[code] = visiting
		for _, dep := range deps[code] {
			if err := visit(dep, append(path, code)); err != nil {
				return err
			}
		}
		state[code] = done
		return nil
	}

	codes := make([]string, 0, len(deps))
	for code := range deps {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if err := visit(code, nil); err != nil {
			return err
		}
	}
	return nil
}

func formatCycle(path []string) string {
	var b []byte
	for i, p := range path {
		if i > 0 {
			b = append(b, " -> "...)
		}
		b = append(b, p...)
	}
	return string(b)
}
