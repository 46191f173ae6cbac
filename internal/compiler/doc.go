// Package compiler turns text feature files into a columnar corpus and
// persists it as a memory-mappable build directory.
//
// The pipeline runs in strict order and aborts on the first failing stage:
//
//  1. structure: parse otype and oslots, derive maxSlot, maxNode and types
//  2. text config: parse the optional otext config feature
//  3. precompute: levels, order, rank, levUp, levDown, boundary, sections,
//     structure
//  4. features: parse the remaining feature files in parallel
//
// When compiling, every stage serializes its output as soon as it is
// computed; the manifest is written last and the build is published with an
// atomic rename. Build produces the same corpus.Data without touching disk,
// and Open maps a published build back into a corpus.Data.
package compiler
