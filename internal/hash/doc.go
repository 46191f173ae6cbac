// Package hash provides the checksum used by compiled corpus files.
//
// Section file headers and their section tables are protected with
// CRC32-Castagnoli, which Go computes with hardware instructions where
// available:
//
//	checksum := hash.CRC32C(headerAndTable)
//
// Section payloads are not checksummed; they are mapped lazily and a full
// scan would defeat demand paging.
package hash
