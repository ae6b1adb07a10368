package command

import "strings"

// Fields is the whitespace split applied before the line reaches the shell.
// It does not interpret quotes.
func Fields(line string) []string {
	return strings.Fields(line)
}

// Unwrap strips the outer quote layer the way "cmd /C" does: when the line
// starts with a quote, that quote and the last quote in the line are removed.
func Unwrap(line string) string {
	if !strings.HasPrefix(line, `"`) {
		return line
	}
	last := strings.LastIndex(line, `"`)
	if last == 0 {
		return line[1:]
	}
	return line[1:last] + line[last+1:]
}

// Split tokenizes s the way the target executable parses its command line:
// whitespace separates tokens outside quotes, quotes group and are removed.
func Split(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return tokens
}
