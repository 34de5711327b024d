package utils

import "strings"

// ShellEscape wraps a value in single quotes for use inside a shell command
// line. Titles and narration text come straight out of the queue, so anything
// can show up here.
func ShellEscape(value string) string {
	if value == "" {
		return "''"
	}
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(value); i++ {
		if value[i] == '\'' {
			b.WriteString(`'"'"'`)
			continue
		}
		b.WriteByte(value[i])
	}
	b.WriteByte('\'')
	return b.String()
}

// ShellJoin escapes every argument and joins them with spaces.
func ShellJoin(args ...string) string {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = ShellEscape(arg)
	}
	return strings.Join(escaped, " ")
}
