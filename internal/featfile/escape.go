package featfile

import "strings"

var (
	unescaper = strings.NewReplacer(`\\`, `\`, `\t`, "\t", `\n`, "\n")
	escaper   = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`)
)

// Unescape decodes the \t, \n and \\ escapes of a value field.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return unescaper.Replace(s)
}

// Escape encodes a value for a data line.
func Escape(s string) string {
	return escaper.Replace(s)
}
