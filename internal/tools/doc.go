package tools

import (
	"regexp"
	"strings"
)

var argLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?:\([^)]*\))?\s*:\s*(.*)$`)

// parseDoc splits an operation's documentation into its summary line and the
// parameter descriptions of its Args block.
func parseDoc(doc string) (string, map[string]string) {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")

	summary := ""
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			summary = s
			break
		}
	}

	params := map[string]string{}
	start := -1
	headerIndent := 0
	for i, l := range lines {
		if strings.TrimSpace(l) == "Args:" {
			start = i + 1
			headerIndent = indentOf(l)
			break
		}
	}
	if start < 0 {
		return summary, params
	}

	current := ""
	entryIndent := -1
	for _, l := range lines[start:] {
		text := strings.TrimSpace(l)
		if text == "" {
			continue
		}
		ind := indentOf(l)
		if ind <= headerIndent {
			break
		}
		if current != "" && ind > entryIndent {
			params[current] = strings.TrimSpace(params[current] + " " + text)
			continue
		}
		m := argLine.FindStringSubmatch(text)
		if m == nil {
			break
		}
		current = m[1]
		entryIndent = ind
		params[current] = strings.TrimSpace(m[2])
	}
	return summary, params
}

func indentOf(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

func placeholder(name string) string {
	return "The " + name + " parameter"
}
