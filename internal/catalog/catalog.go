// Package catalog loads the model catalog: the YAML file that maps model
// identifiers to engine, kind, on-disk path and engine configuration. The
// catalog is read once at startup; the manager never resolves model names
// itself.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"voiced/internal/common/fsutil"
	"voiced/pkg/types"
)

// notFoundError signals an id absent from the catalog.
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "model not in catalog: " + e.id }

// IsNotFound reports whether err indicates an unknown catalog id.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

type entry struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Engine      string            `yaml:"engine"`
	Kind        string            `yaml:"type"`
	Path        string            `yaml:"path"`
	Repo        string            `yaml:"repo"`
	Description string            `yaml:"description"`
	Config      map[string]string `yaml:"config"`
}

type catalogFile struct {
	Models []entry `yaml:"models"`
}

// Catalog is an immutable view of the loaded catalog file.
type Catalog struct {
	models  []types.ModelInfo
	configs map[string]map[string]string
}

// Load reads and validates a catalog YAML file. Paths with a leading '~' are
// expanded.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{configs: make(map[string]map[string]string)}
	seen := make(map[string]bool)
	for i, e := range file.Models {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", e.ID)
		}
		seen[e.ID] = true
		if e.Engine == "" {
			return nil, fmt.Errorf("catalog entry %q: missing engine", e.ID)
		}
		if e.Path == "" {
			return nil, fmt.Errorf("catalog entry %q: missing path", e.ID)
		}
		kind := types.ModelKind(e.Kind)
		if kind != types.KindSTT && kind != types.KindTTS {
			return nil, fmt.Errorf("catalog entry %q: type must be stt or tts, got %q", e.ID, e.Kind)
		}
		p, err := fsutil.ExpandHome(e.Path)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", e.ID, err)
		}
		name := e.Name
		if name == "" {
			name = e.ID
		}
		c.models = append(c.models, types.ModelInfo{
			ID:          e.ID,
			Name:        name,
			Engine:      e.Engine,
			Kind:        kind,
			Path:        p,
			Repo:        e.Repo,
			Description: e.Description,
		})
		if len(e.Config) > 0 {
			cfg := make(map[string]string, len(e.Config))
			for k, v := range e.Config {
				cfg[k] = v
			}
			c.configs[e.ID] = cfg
		}
	}
	sort.Slice(c.models, func(i, j int) bool { return c.models[i].ID < c.models[j].ID })
	return c, nil
}

// List returns a copy of all catalog entries.
func (c *Catalog) List() []types.ModelInfo {
	out := make([]types.ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// Resolve looks up one model and its engine configuration.
func (c *Catalog) Resolve(id string) (types.ModelInfo, map[string]string, error) {
	for _, m := range c.models {
		if m.ID == id {
			return m, c.configs[id], nil
		}
	}
	return types.ModelInfo{}, nil, notFoundError{id: id}
}
