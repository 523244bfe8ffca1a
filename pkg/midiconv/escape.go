package midiconv

import "strings"

var metaEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\n", "\\n",
	"\r", "\\r",
)

var metaUnescaper = strings.NewReplacer(
	"\\n", "\n",
	"\\r", "\r",
	"\\\\", "\\",
)

// escapeMeta makes SMF text payloads safe for a single MTXT line.
func escapeMeta(s string) string {
	return metaEscaper.Replace(s)
}

// unescapeMeta restores the raw text for SMF emission.
func unescapeMeta(s string) string {
	return metaUnescaper.Replace(s)
}
