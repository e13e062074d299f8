// Package store keeps graph definitions and runs in process memory
package store

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kode4food/nebula/pkg/api"
)

// Store holds immutable graphs and the mutable runs executing them. The
// maps are guarded, but a Run handed out by GetRun is not: callers must not
// mutate or read one run from several goroutines at once
type Store struct {
	graphs map[api.GraphID]*api.Graph
	runs   map[api.RunID]*api.Run
	mu     sync.RWMutex
}

// New creates an empty store
func New() *Store {
	return &Store{
		graphs: map[api.GraphID]*api.Graph{},
		runs:   map[api.RunID]*api.Run{},
	}
}

// CreateGraph stores a copy of the graph definition under a fresh ID. No
// structural validation is performed
func (s *Store) CreateGraph(
	name string, nodes map[api.NodeKey]api.ToolName,
	edges map[api.NodeKey]api.NodeKey, start api.NodeKey,
) api.GraphID {
	id := api.GraphID(uuid.NewString())
	g := api.NewGraph(id, name, nodes, edges, start)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[id] = g
	return id
}

// GetGraph returns the graph with the given ID
func (s *Store) GetGraph(id api.GraphID) (*api.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrGraphNotFound, id)
	}
	return g, nil
}

// ListGraphs returns all graphs ordered by creation time
func (s *Store) ListGraphs() []*api.Graph {
	s.mu.RLock()
	res := slices.Collect(maps.Values(s.graphs))
	s.mu.RUnlock()

	slices.SortFunc(res, func(a, b *api.Graph) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return res
}

// CreateRun starts a new run of the graph, positioned at its start node
// with a copy of the initial state and an empty log
func (s *Store) CreateRun(
	graphID api.GraphID, init api.State,
) (api.RunID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.graphs[graphID]
	if !ok {
		return "", fmt.Errorf("%w: %s", api.ErrGraphNotFound, graphID)
	}

	id := api.RunID(uuid.NewString())
	run := &api.Run{
		ID:        id,
		GraphID:   graphID,
		State:     init.Copy(),
		Log:       []*api.LogEntry{},
		CreatedAt: time.Now(),
	}
	run.MoveTo(g.StartNode)
	s.runs[id] = run
	return id, nil
}

// GetRun returns the run with the given ID
func (s *Store) GetRun(id api.RunID) (*api.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", api.ErrRunNotFound, id)
	}
	return r, nil
}
