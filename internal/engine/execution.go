package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kode4food/nebula/pkg/api"
	"github.com/kode4food/nebula/pkg/log"
)

// RunToCompletion executes the run from its current node until it
// finishes. A node missing from the graph ends the run quietly, while a
// missing or failing tool returns an error and leaves the run where it was.
// There is no bound on the number of steps: a cycle that never sets the
// stop signal never returns. Calling it on a finished run does nothing
func (e *Engine) RunToCompletion(
	ctx context.Context, id api.RunID,
) (*api.Run, error) {
	run, err := e.store.GetRun(id)
	if err != nil {
		return nil, err
	}

	g, err := e.store.GetGraph(run.GraphID)
	if err != nil {
		return nil, err
	}

	for run.Active() {
		node := *run.CurrentNode

		name, ok := g.ToolFor(node)
		if !ok {
			e.finish(ctx, run, node, api.FinishMissingNode)
			break
		}

		tool, err := e.tools.Get(name)
		if err != nil {
			e.fail(ctx, run, node, err)
			return nil, err
		}

		res, err := tool.Transform(run.State.Copy())
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", api.ErrToolFailed, name, err)
			e.fail(ctx, run, node, err)
			return nil, err
		}
		if res == nil {
			res = api.State{}
		}
		run.State = res

		entry := &api.LogEntry{
			Step:     len(run.Log),
			Node:     node,
			Tool:     name,
			Snapshot: res.Clone(),
		}
		run.Log = append(run.Log, entry)
		e.stepCompleted(ctx, run, entry)

		if res.Stopped() {
			e.finish(ctx, run, node, api.FinishStopped)
			break
		}

		next, ok := g.Next(node)
		if !ok {
			e.finish(ctx, run, node, api.FinishSink)
			break
		}
		run.MoveTo(next)
	}

	return run, nil
}

func (e *Engine) stepCompleted(
	ctx context.Context, run *api.Run, entry *api.LogEntry,
) {
	slog.Debug("Step completed",
		log.RunID(run.ID),
		log.Node(entry.Node),
		log.Tool(entry.Tool),
		log.Step(entry.Step))

	e.notify(ctx, &api.RunEvent{
		Type:      api.EventTypeStepCompleted,
		Timestamp: time.Now(),
		RunID:     run.ID,
		GraphID:   run.GraphID,
		Node:      entry.Node,
		Entry:     entry,
	})
}

func (e *Engine) finish(
	ctx context.Context, run *api.Run, node api.NodeKey,
	reason api.FinishReason,
) {
	run.Finish()

	slog.Info("Run finished",
		log.RunID(run.ID),
		log.GraphID(run.GraphID),
		log.Node(node),
		slog.String("reason", string(reason)),
		slog.Int("steps", len(run.Log)))

	e.notify(ctx, &api.RunEvent{
		Type:      api.EventTypeRunFinished,
		Timestamp: time.Now(),
		RunID:     run.ID,
		GraphID:   run.GraphID,
		Node:      node,
		Reason:    reason,
		Run:       run,
	})
}

func (e *Engine) fail(
	ctx context.Context, run *api.Run, node api.NodeKey, err error,
) {
	slog.Warn("Run failed",
		log.RunID(run.ID),
		log.GraphID(run.GraphID),
		log.Node(node),
		log.Error(err))

	e.notify(ctx, &api.RunEvent{
		Type:      api.EventTypeRunFailed,
		Timestamp: time.Now(),
		RunID:     run.ID,
		GraphID:   run.GraphID,
		Node:      node,
		Error:     err.Error(),
	})
}
