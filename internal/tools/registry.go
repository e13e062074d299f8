package tools

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kode4food/nebula/pkg/api"
)

type (
	// Tool is a named unit of work. Transform receives a copy of the run's
	// state and returns the complete replacement state
	Tool interface {
		Transform(api.State) (api.State, error)
	}

	// Func adapts a plain function to the Tool interface
	Func func(api.State) (api.State, error)

	// Registry binds tool names to tools
	Registry struct {
		tools map[api.ToolName]Tool
		mu    sync.RWMutex
	}
)

// Transform calls f
func (f Func) Transform(st api.State) (api.State, error) {
	return f(st)
}

// NewRegistry creates an empty tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: map[api.ToolName]Tool{},
	}
}

// Register binds a tool to name, replacing any existing binding
func (r *Registry) Register(name api.ToolName, tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = tool
}

// Get returns the tool bound to name
func (r *Registry) Get(name api.ToolName) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrToolNotFound, name)
	}
	return tool, nil
}

// List returns a snapshot of the current bindings
func (r *Registry) List() map[api.ToolName]Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.tools)
}

// Names returns the registered tool names in sorted order
func (r *Registry) Names() []api.ToolName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.tools))
}

// RegisterDefinition builds a script tool from def and registers it
func (r *Registry) RegisterDefinition(def *api.ToolDefinition) error {
	tool, err := Build(def)
	if err != nil {
		return err
	}
	r.Register(def.Name, tool)
	return nil
}
