package pstotal

import "strings"

var (
	pathReplacer = strings.NewReplacer(
		`"`, "",
		`\`, `\\`)

	nameReplacer = strings.NewReplacer(
		`"`, "",
		"{", "",
		"}", "")

	commandLineReplacer = strings.NewReplacer(
		`"`, "",
		`\`, `\\`,
		"{", "",
		"}", "")
)

// Command lines end up inside dot record labels where quotes and
// braces are syntax.
func SanitizeCommandLine(in string) string {
	return commandLineReplacer.Replace(in)
}

func SanitizePath(in string) string {
	return pathReplacer.Replace(in)
}

// Names come from scanned blocks which may be corrupt.
func SanitizeName(in string) string {
	return nameReplacer.Replace(in)
}
