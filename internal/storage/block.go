package storage

import (
	"regexp"
	"strings"
)

var (
	dashRulePattern = regexp.MustCompile(`(?m)^---+$`)
	starRulePattern = regexp.MustCompile(`(?m)^\*\*\*+$`)

	// blockElementPattern recognizes lines that already carry
	// block-level markup and must not be wrapped in a paragraph.
	blockElementPattern = regexp.MustCompile(`^<(?:h[1-6]|p|ul|ol|li|table|blockquote|ac:|hr)`)
)

// convertBlockquotes wraps consecutive '>' lines in a single
// blockquote, stripping the marker and one following space. Quote
// depth is flattened to one level.
func convertBlockquotes(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inQuote := false

	for _, line := range lines {
		if strings.HasPrefix(line, ">") {
			if !inQuote {
				out = append(out, "<blockquote>")
				inQuote = true
			}
			content := strings.TrimPrefix(line, ">")
			content = strings.TrimPrefix(content, " ")
			out = append(out, content)
		} else {
			if inQuote {
				out = append(out, "</blockquote>")
				inQuote = false
			}
			out = append(out, line)
		}
	}

	if inQuote {
		out = append(out, "</blockquote>")
	}

	return strings.Join(out, "\n")
}

// convertRules rewrites lines of three or more dashes or asterisks
// into horizontal rules.
func convertRules(text string) string {
	text = dashRulePattern.ReplaceAllString(text, "<hr/>")
	text = starRulePattern.ReplaceAllString(text, "<hr/>")
	return text
}

// wrapParagraphs is the final pass: groups of consecutive non-blank
// lines are joined with a single space and wrapped in a paragraph
// unless the group already starts with block-level markup. Blank
// lines are preserved as separators.
func wrapParagraphs(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	var group []string

	flush := func() {
		if len(group) == 0 {
			return
		}
		content := strings.Join(group, " ")
		if !blockElementPattern.MatchString(content) && !strings.HasPrefix(content, "__CODE_BLOCK_") {
			content = "<p>" + content + "</p>"
		}
		out = append(out, content)
		group = nil
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			out = append(out, "")
		} else {
			group = append(group, line)
		}
	}
	flush()

	return strings.Join(out, "\n")
}
