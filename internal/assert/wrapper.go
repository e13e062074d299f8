package assert

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/nebula/internal/config"
	"github.com/kode4food/nebula/pkg/api"
)

// Wrapper wraps testify assertions with engine-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
}

// New creates a new test assertion wrapper with testify assertions plus
// engine-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
	}
}

// ConfigValid asserts that a configuration passes validation
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
}

// ConfigInvalid asserts that a configuration fails validation
func (w *Wrapper) ConfigInvalid(
	cfg *config.Config, expectedErrorContains string,
) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && expectedErrorContains != "" {
		w.Contains(err.Error(), expectedErrorContains)
	}
}

// RunFinished asserts that a run is finished with no current node
func (w *Wrapper) RunFinished(run *api.Run) {
	w.Helper()
	w.True(run.Finished, "run should be finished")
	w.Nil(run.CurrentNode, "finished run should have no current node")
}

// RunAt asserts that a run is unfinished and positioned at node
func (w *Wrapper) RunAt(run *api.Run, node api.NodeKey) {
	w.Helper()
	w.False(run.Finished, "run should not be finished")
	if w.NotNil(run.CurrentNode, "run should have a current node") {
		w.Equal(node, *run.CurrentNode)
	}
}

// LogSequence asserts that log steps increase by one from first, and that
// each entry executed the expected node
func (w *Wrapper) LogSequence(
	log []*api.LogEntry, first int, nodes ...api.NodeKey,
) {
	w.Helper()
	if !w.Len(log, len(nodes)) {
		return
	}
	for i, entry := range log {
		w.Equal(first+i, entry.Step, "step number at index %d", i)
		w.Equal(nodes[i], entry.Node, "node at index %d", i)
	}
}
