package api

type (
	// CreateGraphRequest contains parameters for defining a new graph
	CreateGraphRequest struct {
		Nodes     map[NodeKey]ToolName `json:"nodes"`
		Edges     map[NodeKey]NodeKey  `json:"edges"`
		Name      string               `json:"name"`
		StartNode NodeKey              `json:"start_node"`
	}

	// CreateGraphResponse is returned when a graph is created
	CreateGraphResponse struct {
		GraphID GraphID `json:"graph_id"`
	}

	// GraphsListResponse contains all defined graphs
	GraphsListResponse struct {
		Graphs []*Graph `json:"graphs"`
		Count  int      `json:"count"`
	}

	// RunGraphRequest contains parameters for executing a graph
	RunGraphRequest struct {
		InitialState State   `json:"initial_state"`
		GraphID      GraphID `json:"graph_id"`
	}

	// RunGraphResponse is returned once a run has completed
	RunGraphResponse struct {
		FinalState State       `json:"final_state"`
		RunID      RunID       `json:"run_id"`
		Log        []*LogEntry `json:"log"`
	}

	// RunStateResponse describes the current position of a run
	RunStateResponse struct {
		State       State       `json:"state"`
		CurrentNode *NodeKey    `json:"current_node"`
		RunID       RunID       `json:"run_id"`
		GraphID     GraphID     `json:"graph_id"`
		Log         []*LogEntry `json:"log"`
		Finished    bool        `json:"finished"`
	}

	// ToolsListResponse contains the names of all registered tools
	ToolsListResponse struct {
		Tools []ToolName `json:"tools"`
		Count int        `json:"count"`
	}

	// ToolRegisteredResponse is returned when a tool is registered
	ToolRegisteredResponse struct {
		Message string   `json:"message"`
		Name    ToolName `json:"name"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Version string `json:"version"`
		Status  string `json:"status"`
	}

	// ErrorResponse contains error details for failed requests. RunID is
	// set when the failed request left a run behind that can be inspected
	// or continued
	ErrorResponse struct {
		Error  string `json:"error"`
		RunID  RunID  `json:"run_id,omitempty"`
		Status int    `json:"status,omitempty"`
	}
)

// NewRunGraphResponse builds the completion response for a run
func NewRunGraphResponse(r *Run) *RunGraphResponse {
	return &RunGraphResponse{
		RunID:      r.ID,
		FinalState: r.State,
		Log:        r.Log,
	}
}

// NewRunStateResponse builds the state response for a run
func NewRunStateResponse(r *Run) *RunStateResponse {
	return &RunStateResponse{
		RunID:       r.ID,
		GraphID:     r.GraphID,
		CurrentNode: r.CurrentNode,
		Finished:    r.Finished,
		State:       r.State,
		Log:         r.Log,
	}
}
