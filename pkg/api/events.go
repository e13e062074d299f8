package api

import "time"

type (
	// EventType identifies the kind of run event
	EventType string

	// FinishReason explains why a run stopped
	FinishReason string

	// RunEvent is emitted by the engine as a run progresses
	RunEvent struct {
		Timestamp time.Time    `json:"timestamp"`
		Entry     *LogEntry    `json:"entry,omitempty"`
		Run       *Run         `json:"run,omitempty"`
		Type      EventType    `json:"type"`
		RunID     RunID        `json:"run_id"`
		GraphID   GraphID      `json:"graph_id"`
		Node      NodeKey      `json:"node,omitempty"`
		Reason    FinishReason `json:"reason,omitempty"`
		Error     string       `json:"error,omitempty"`
	}
)

const (
	EventTypeStepCompleted EventType = "step_completed"
	EventTypeRunFinished   EventType = "run_finished"
	EventTypeRunFailed     EventType = "run_failed"
)

const (
	// FinishMissingNode means the current node is not declared in the graph
	FinishMissingNode FinishReason = "missing_node"

	// FinishStopped means a tool set the stop signal
	FinishStopped FinishReason = "stopped"

	// FinishSink means the executed node has no outgoing edge
	FinishSink FinishReason = "sink"
)
