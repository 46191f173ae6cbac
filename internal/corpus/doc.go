// Package corpus holds the assembled columnar form of a corpus.
//
// A Data value is produced either by parsing text feature files or by
// mapping a compiled build directory. Both paths fill the same container
// types (heap-backed in the first case, mmap-backed in the second), so every
// accessor built on top behaves identically regardless of origin.
//
// Data is immutable after construction and safe for concurrent readers.
package corpus
