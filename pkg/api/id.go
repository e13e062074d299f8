package api

type (
	// GraphID is a unique identifier for a graph
	GraphID string

	// RunID is a unique identifier for a run
	RunID string

	// NodeKey names a node within a graph
	NodeKey string

	// ToolName names a registered tool
	ToolName string

	// Name is a string key within a state bag
	Name string
)
