// Package dirstat enumerates the regular files of a directory tree and
// aggregates their sizes by file extension.
//
// The walk uses fastwalk for parallel traversal; the aggregation is a plain
// fold over the collected files and keeps no state between calls.
package dirstat
