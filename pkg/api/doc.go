// Package api defines the core data types shared by the workflow engine
//
// This package contains graph and run definitions, the dynamically typed
// state bag threaded through tools, execution log entries, run events,
// script tool definitions, and HTTP messages
package api
