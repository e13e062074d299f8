// Package engine implements the workflow execution engine
//
// The engine drives a run through its graph one node at a time: it resolves
// the node's tool, replaces the run's state with the tool's result, records
// a log entry, and follows the node's edge until the run stops, reaches a
// sink, or lands on an undeclared node
package engine
