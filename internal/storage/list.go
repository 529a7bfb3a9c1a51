package storage

import (
	"regexp"
	"strings"
)

var (
	unorderedItemPattern = regexp.MustCompile(`^(\s*)[-*+] (.+)$`)
	orderedItemPattern   = regexp.MustCompile(`^(\s*)\d+\. (.+)$`)

	incompleteTaskPattern = regexp.MustCompile(`(?m)^- \[ \] (.+)$`)
	completeTaskPattern   = regexp.MustCompile(`(?m)^- \[x\] (.+)$`)
)

// convertTaskLists rewrites checkbox items into task elements. This
// pass runs before the list pass; otherwise the list pass would
// swallow the lines as plain list items.
func convertTaskLists(text string) string {
	text = incompleteTaskPattern.ReplaceAllString(text,
		"<ac:task><ac:task-status>incomplete</ac:task-status><ac:task-body>$1</ac:task-body></ac:task>")
	text = completeTaskPattern.ReplaceAllString(text,
		"<ac:task><ac:task-status>complete</ac:task-status><ac:task-body>$1</ac:task-body></ac:task>")
	return text
}

// convertLists scans lines in order, tracking the currently open list
// markers as a stack keyed by nesting depth. Indentation divided by
// two gives the depth; jumps deeper than one level per item are
// clamped. Any non-list line closes every open list, as does the end
// of the buffer, so open and close tags always balance.
func convertLists(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	var stack []string

	closeDownTo := func(depth int) {
		for len(stack) > depth {
			out = append(out, "</"+stack[len(stack)-1]+">")
			stack = stack[:len(stack)-1]
		}
	}

	for _, line := range lines {
		var indent, content, listType string

		if m := unorderedItemPattern.FindStringSubmatch(line); m != nil {
			indent, content, listType = m[1], m[2], "ul"
		} else if m := orderedItemPattern.FindStringSubmatch(line); m != nil {
			indent, content, listType = m[1], m[2], "ol"
		} else {
			closeDownTo(0)
			out = append(out, line)
			continue
		}

		level := len(indent) / 2
		if level > len(stack) {
			level = len(stack)
		}

		closeDownTo(level + 1)
		if len(stack) == level+1 && stack[level] != listType {
			closeDownTo(level)
		}
		if len(stack) == level {
			out = append(out, "<"+listType+">")
			stack = append(stack, listType)
		}

		out = append(out, "<li>"+content+"</li>")
	}

	closeDownTo(0)
	return strings.Join(out, "\n")
}
