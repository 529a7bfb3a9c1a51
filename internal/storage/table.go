package storage

import (
	"regexp"
	"strings"
)

// separatorRowPattern matches the delimiter row under a table header:
// pipes, dashes, colons and whitespace only. At least one dash is
// required so a run of blank space is not mistaken for a separator.
var separatorRowPattern = regexp.MustCompile(`^[\s|:-]+$`)

func isSeparatorRow(line string) bool {
	return strings.Contains(line, "-") && separatorRowPattern.MatchString(line)
}

// convertTables detects a header row followed by a separator row and
// emits a table with head and body sections. The separator line is
// consumed, body rows run until the first line without a pipe, and a
// table still open at the end of the buffer is force-closed. Cell
// counts are positional; ragged rows pass through as-is.
func convertTables(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inTable := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		switch {
		case !inTable && strings.Contains(line, "|") && i+1 < len(lines) && isSeparatorRow(lines[i+1]):
			inTable = true
			out = append(out, "<table>", "<thead>", "<tr>")
			for _, cell := range splitTableRow(line) {
				out = append(out, "<th>"+cell+"</th>")
			}
			out = append(out, "</tr>", "</thead>", "<tbody>")
			i++ // separator row is consumed, not rendered

		case inTable && strings.Contains(line, "|"):
			out = append(out, "<tr>")
			for _, cell := range splitTableRow(line) {
				out = append(out, "<td>"+cell+"</td>")
			}
			out = append(out, "</tr>")

		case inTable:
			out = append(out, "</tbody>", "</table>")
			inTable = false
			out = append(out, line)

		default:
			out = append(out, line)
		}
	}

	if inTable {
		out = append(out, "</tbody>", "</table>")
	}

	return strings.Join(out, "\n")
}

// splitTableRow splits a row on pipes, discards the empty first and
// last segments produced by leading and trailing pipes, and trims
// each remaining cell.
func splitTableRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, len(parts))
	for i, part := range parts {
		cells[i] = strings.TrimSpace(part)
	}
	return cells
}
