// Package feature exposes typed, read-only accessors over a loaded corpus.
//
// Every accessor behaves identically whether the corpus was assembled from
// feature files in memory or mapped from a compiled build. Absent values are
// reported with an explicit ok flag and never leak storage sentinels.
//
// Accessors are safe for concurrent use; none of them mutates the corpus.
package feature
