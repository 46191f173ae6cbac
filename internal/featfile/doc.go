// Package featfile parses the plain-text feature file format.
//
// A feature file starts with a role line (@node, @edge or @config), then
// @key=value metadata lines, then a blank line and the data lines:
//
//	@node
//	@valueType=str
//	@description=surface form
//
//	hello
//	2	world
//	4-5	again
//
// Node feature data lines are "nodes<TAB>value" or just "value", where an
// omitted node column means "one past the previous node". Edge feature lines
// are "from<TAB>to[<TAB>value]", with the from column optional in the same
// way. Node columns accept range specs such as "1-3,7".
//
// The parser returns entries in file order; normalization (sorting,
// deduplication, inverse construction) happens in the compiler.
package featfile
