package api

import (
	"maps"
	"time"
)

type (
	// Graph is an immutable workflow definition. Nodes bind node keys to
	// tool names and Edges give each node at most one successor. Neither
	// the start node nor edge targets are required to be declared nodes
	Graph struct {
		CreatedAt time.Time            `json:"created_at"`
		Nodes     map[NodeKey]ToolName `json:"nodes"`
		Edges     map[NodeKey]NodeKey  `json:"edges"`
		ID        GraphID              `json:"graph_id"`
		Name      string               `json:"name"`
		StartNode NodeKey              `json:"start_node"`
	}

	// Run is one execution of a graph. A nil CurrentNode means the run has
	// nowhere left to go
	Run struct {
		CreatedAt   time.Time   `json:"created_at"`
		State       State       `json:"state"`
		CurrentNode *NodeKey    `json:"current_node"`
		ID          RunID       `json:"run_id"`
		GraphID     GraphID     `json:"graph_id"`
		Log         []*LogEntry `json:"log"`
		Finished    bool        `json:"finished"`
	}

	// LogEntry records a single executed step of a run
	LogEntry struct {
		Snapshot State    `json:"state_snapshot"`
		Node     NodeKey  `json:"node"`
		Tool     ToolName `json:"tool"`
		Step     int      `json:"step"`
	}
)

// NewGraph builds a Graph holding its own copies of the node and edge maps
func NewGraph(
	id GraphID, name string, nodes map[NodeKey]ToolName,
	edges map[NodeKey]NodeKey, start NodeKey,
) *Graph {
	g := &Graph{
		ID:        id,
		Name:      name,
		Nodes:     maps.Clone(nodes),
		Edges:     maps.Clone(edges),
		StartNode: start,
		CreatedAt: time.Now(),
	}
	if g.Nodes == nil {
		g.Nodes = map[NodeKey]ToolName{}
	}
	if g.Edges == nil {
		g.Edges = map[NodeKey]NodeKey{}
	}
	return g
}

// ToolFor returns the tool bound to a node and whether the node is declared
func (g *Graph) ToolFor(node NodeKey) (ToolName, bool) {
	tool, ok := g.Nodes[node]
	return tool, ok
}

// Next returns the successor of a node and whether it has one
func (g *Graph) Next(node NodeKey) (NodeKey, bool) {
	next, ok := g.Edges[node]
	return next, ok
}

// Finish marks the run finished with no current node
func (r *Run) Finish() {
	r.Finished = true
	r.CurrentNode = nil
}

// MoveTo positions the run at the given node
func (r *Run) MoveTo(node NodeKey) {
	r.CurrentNode = &node
}

// Active reports whether the run still has a node to execute
func (r *Run) Active() bool {
	return !r.Finished && r.CurrentNode != nil
}
