package sqsgath

import "strings"

// trimStrToRect clamps s to maxHeight lines of maxWidth characters,
// marking every cut with "[...]". Error messages can carry arbitrary
// child output; the stream fields stay bounded.
func trimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = append(lines[:maxHeight], "[...]")
	}
	for i, line := range lines {
		if len(line) > maxWidth {
			lines[i] = line[:maxWidth] + "[...]"
		}
	}
	return strings.Join(lines, "\n")
}
