package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kode4food/nebula/internal/engine"
	"github.com/kode4food/nebula/pkg/api"
	"github.com/kode4food/nebula/pkg/log"
)

type (
	// Catalog is the startup content of the engine: script tools to
	// register and graphs to define
	Catalog struct {
		Tools  []*api.ToolDefinition `yaml:"tools"`
		Graphs []*Graph              `yaml:"graphs"`
	}

	// Graph is a named graph definition within a catalog
	Graph struct {
		Nodes     map[api.NodeKey]api.ToolName `yaml:"nodes"`
		Edges     map[api.NodeKey]api.NodeKey  `yaml:"edges"`
		Name      string                       `yaml:"name"`
		StartNode api.NodeKey                  `yaml:"start_node"`
	}
)

var (
	ErrGraphNameRequired = errors.New("catalog graph name is required")
	ErrDuplicateGraph    = errors.New("duplicate catalog graph name")
)

// Load reads and parses the catalog file at path
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks tool definitions and graph names. Graph structure is
// never validated
func (c *Catalog) Validate() error {
	for _, def := range c.Tools {
		if err := def.Validate(); err != nil {
			return err
		}
	}

	seen := map[string]bool{}
	for _, g := range c.Graphs {
		if g.Name == "" {
			return ErrGraphNameRequired
		}
		if seen[g.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateGraph, g.Name)
		}
		seen[g.Name] = true
	}
	return nil
}

// Apply registers the catalog's tools with the engine, then creates its
// graphs. Returns the ID assigned to each graph, keyed by graph name
func (c *Catalog) Apply(e *engine.Engine) (map[string]api.GraphID, error) {
	for _, def := range c.Tools {
		if err := e.Tools().RegisterDefinition(def); err != nil {
			return nil, err
		}
		slog.Info("Catalog tool registered",
			log.Tool(def.Name),
			slog.String("type", string(def.Type)))
	}

	res := make(map[string]api.GraphID, len(c.Graphs))
	for _, g := range c.Graphs {
		res[g.Name] = e.CreateGraph(g.Name, g.Nodes, g.Edges, g.StartNode)
	}
	return res, nil
}
