// Package mmap provides read-only memory-mapped file access for compiled
// corpus sections.
//
// Every section file of a compiled corpus is mapped with MAP_SHARED and
// PROT_READ, so any number of processes opening the same build share the
// same physical pages. Nothing is copied until a page is touched; page
// faults are the only blocking points of a reader.
//
// # Usage
//
//	m, err := mmap.Open("node/word.tfb")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	r, _ := m.Region(off, n)
//	_ = r.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix: mmap(2) and madvise(2) via golang.org/x/sys/unix
//   - Windows: CreateFileMapping/MapViewOfFile (advice is a no-op)
//
// # Thread Safety
//
// Mapping and Region are safe for concurrent read access. Close is
// idempotent. Callers must not touch slices obtained from Bytes after Close.
package mmap
