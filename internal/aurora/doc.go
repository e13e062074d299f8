// Package aurora provides the AuroraText condenser: a set of text
// summarization tools and the graph that loops them until the summary fits
// its length limit
package aurora
