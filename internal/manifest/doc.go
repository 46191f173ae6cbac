// Package manifest implements the manifest and CURRENT pointer of a compiled
// corpus cache.
//
// # Layout
//
//	<root>/LOCK            advisory lock held while compiling
//	<root>/CURRENT         name of the active build directory
//	<root>/<build>/        one immutable compiled corpus
//	  struct/ precomp/ node/ edge/
//	  MANIFEST.json        written last; marks the build complete
//
// # Atomic Protocol
//
//  1. Write every section file into a fresh staging directory
//  2. Write MANIFEST.json into it
//  3. Rename the staging directory to its final build name
//  4. Atomically replace CURRENT (write temp + rename)
//
// Readers resolve CURRENT once and then only touch that build directory, so
// a later compilation never changes what an open reader sees.
//
// The manifest is plain JSON without timestamps: compiling the same corpus
// twice yields byte-identical manifests.
package manifest
