// Package columnar implements the primitive containers of a compiled corpus
// and their on-disk section format.
//
// # Containers
//
//   - CSR: compressed sparse rows (indptr + flat data) for variable-length
//     per-node sequences such as slot lists, levUp/levDown and edge targets
//   - Pool: a sorted, deduplicated string table (offsets + bytes)
//   - StringColumn: one pool index per position, NoString meaning "no value"
//   - IntColumn: one int64 per position, Missing meaning "no value"
//
// Absence never leaks out of this package as a value: Get returns a
// (value, ok) pair and Items skips absent entries with one linear scan.
//
// # Section Files
//
// Every container is persisted into a section file:
//
//	Header (32 bytes):
//	  Magic     (4 bytes) - 0x54464731 ("TFG1")
//	  Version   (4 bytes) - format version (currently 1)
//	  Kind      (4 bytes) - what the sections encode
//	  Flags     (4 bytes) - kind specific flags
//	  Sections  (4 bytes) - number of sections
//	  Reserved  (8 bytes)
//	  Checksum  (4 bytes) - CRC32C of header bytes 0..28 and the section table
//
//	Section table: Sections x (Offset uint64, Length uint64)
//	Sections: 8-byte aligned little-endian arrays or blobs
//
// Sections are mapped read-only and reinterpreted in place, so readers in
// different processes share the same physical pages.
package columnar
