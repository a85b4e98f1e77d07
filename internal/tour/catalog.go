package tour

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// DefaultPattern matches scenario files inside a scenario directory.
const DefaultPattern = "**/*.{yaml,yml}"

// Decode reads a single scenario document and validates it.
func Decode(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ParseFile reads and validates the scenario stored at path.
func ParseFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Source = path
	return sc, nil
}

// Encode writes the scenario as YAML.
func Encode(w io.Writer, sc *Scenario) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sc); err != nil {
		return fmt.Errorf("failed to encode scenario %s: %w", sc.ID, err)
	}
	return enc.Close()
}

// Options controls which scenarios a catalog loads.
type Options struct {
	// IncludeBuiltin loads the scenarios embedded in the binary.
	IncludeBuiltin bool
	// Dirs are searched for scenario files matching Pattern.
	Dirs []string
	// Pattern is a doublestar glob relative to each dir.
	Pattern string
}

// Catalog is the read-only collection of scenarios, keyed by id.
type Catalog struct {
	opts Options

	mu    sync.RWMutex
	byID  map[string]*Scenario
	order []string
}

// LoadCatalog builds a catalog from opts. Scenarios found in Dirs replace
// built-in scenarios with the same id; two files declaring the same id is an
// error.
func LoadCatalog(opts Options) (*Catalog, error) {
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	c := &Catalog{opts: opts}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewCatalog builds a catalog from already-parsed scenarios.
func NewCatalog(scenarios ...*Scenario) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Scenario)}
	for _, sc := range scenarios {
		if err := sc.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[sc.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario id %q", sc.ID)
		}
		c.byID[sc.ID] = sc
		c.order = append(c.order, sc.ID)
	}
	return c, nil
}

// Reload re-reads every source. On error the previous contents are kept.
func (c *Catalog) Reload() error {
	byID := make(map[string]*Scenario)
	var order []string
	put := func(sc *Scenario) {
		if _, exists := byID[sc.ID]; !exists {
			order = append(order, sc.ID)
		}
		byID[sc.ID] = sc
	}

	if c.opts.IncludeBuiltin {
		builtins, err := loadBuiltins()
		if err != nil {
			return err
		}
		for _, sc := range builtins {
			put(sc)
		}
	}

	fromFiles := make(map[string]string)
	for _, dir := range c.opts.Dirs {
		paths, err := c.Files(dir)
		if err != nil {
			return err
		}
		for _, path := range paths {
			sc, err := ParseFile(path)
			if err != nil {
				return err
			}
			if prev, dup := fromFiles[sc.ID]; dup {
				return fmt.Errorf("duplicate scenario id %q in %s and %s", sc.ID, prev, path)
			}
			fromFiles[sc.ID] = path
			put(sc)
		}
	}

	c.mu.Lock()
	c.byID = byID
	c.order = order
	c.mu.Unlock()
	return nil
}

// Files lists the scenario files under dir, sorted.
func (c *Catalog) Files(dir string) ([]string, error) {
	pattern := filepath.Join(dir, c.opts.Pattern)
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Dirs returns the scenario directories the catalog reads from.
func (c *Catalog) Dirs() []string {
	return append([]string(nil), c.opts.Dirs...)
}

// Get returns the scenario with the given id.
func (c *Catalog) Get(id string) (*Scenario, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sc, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sc, nil
}

// List returns all scenarios in load order.
func (c *Catalog) List() []*Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Scenario, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of scenarios.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func loadBuiltins() ([]*Scenario, error) {
	paths, err := fs.Glob(builtinFS, "scenarios/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sc, err := Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", path, err)
		}
		out = append(out, sc)
	}
	return out, nil
}
