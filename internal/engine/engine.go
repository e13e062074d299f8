package engine

import (
	"context"
	"log/slog"

	"github.com/kode4food/nebula/internal/store"
	"github.com/kode4food/nebula/internal/tools"
	"github.com/kode4food/nebula/pkg/api"
	"github.com/kode4food/nebula/pkg/log"
)

type (
	// Engine executes runs of the graphs held in its store using the
	// tools in its registry
	Engine struct {
		store     *store.Store
		tools     *tools.Registry
		observers []Observer
	}

	// Observer is notified of run events as the engine produces them.
	// Notification errors are logged and never affect the run
	Observer interface {
		Notify(ctx context.Context, ev *api.RunEvent) error
	}
)

// New creates an engine over the given store and tool registry
func New(st *store.Store, reg *tools.Registry, obs ...Observer) *Engine {
	return &Engine{
		store:     st,
		tools:     reg,
		observers: obs,
	}
}

// Tools returns the engine's tool registry
func (e *Engine) Tools() *tools.Registry {
	return e.tools
}

// CreateGraph defines a new graph and returns its ID
func (e *Engine) CreateGraph(
	name string, nodes map[api.NodeKey]api.ToolName,
	edges map[api.NodeKey]api.NodeKey, start api.NodeKey,
) api.GraphID {
	id := e.store.CreateGraph(name, nodes, edges, start)
	slog.Info("Graph created",
		log.GraphID(id),
		slog.String("name", name),
		slog.Int("nodes", len(nodes)))
	return id
}

// GetGraph returns the graph with the given ID
func (e *Engine) GetGraph(id api.GraphID) (*api.Graph, error) {
	return e.store.GetGraph(id)
}

// ListGraphs returns every defined graph
func (e *Engine) ListGraphs() []*api.Graph {
	return e.store.ListGraphs()
}

// CreateRun creates a run of the graph seeded with a copy of init
func (e *Engine) CreateRun(
	graphID api.GraphID, init api.State,
) (api.RunID, error) {
	id, err := e.store.CreateRun(graphID, init)
	if err != nil {
		return "", err
	}
	slog.Debug("Run created", log.RunID(id), log.GraphID(graphID))
	return id, nil
}

// GetRunState returns the run with the given ID
func (e *Engine) GetRunState(id api.RunID) (*api.Run, error) {
	return e.store.GetRun(id)
}

func (e *Engine) notify(ctx context.Context, ev *api.RunEvent) {
	for _, o := range e.observers {
		if err := o.Notify(ctx, ev); err != nil {
			slog.Warn("Failed to notify run observer",
				log.RunID(ev.RunID),
				slog.String("event_type", string(ev.Type)),
				log.Error(err))
		}
	}
}
