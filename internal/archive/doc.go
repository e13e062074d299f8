// Package archive exports finished runs to blob storage
package archive
