// Package tools holds the named transformations that graph nodes invoke
//
// A Tool maps a state bag to its replacement. The Registry binds names to
// tools, and script tools (Lua and JSON-path extract) can be built from
// declarative definitions at runtime
package tools
