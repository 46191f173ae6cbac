// Package fs provides the filesystem seam used by the corpus compiler.
//
//   - [FileSystem]: the operations the compiler performs (open, rename,
//     remove, directory listing)
//   - [LocalFS]: production implementation on top of package os
//   - [FaultyFS]: test wrapper injecting write, sync, close and rename faults
//   - [CreateFile] and [WriteFileAtomic]: durable file publication helpers
//   - [Lock]: an advisory inter-process lock file
//
// Readers never go through this package; compiled files are opened with
// internal/mmap.
//
// Filesystem calls take no context.Context. Only [Lock], which may wait on
// another process, is cancellable.
package fs
