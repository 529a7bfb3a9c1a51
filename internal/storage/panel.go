package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// panelKinds are the admonition macros the panel syntax maps onto.
var panelKinds = []string{"info", "warning", "note", "success"}

// panelPatterns matches one fenced panel block per kind:
//
//	::: warning "Optional Title"
//	body lines
//	:::
var panelPatterns = compilePanelPatterns()

func compilePanelPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(panelKinds))
	for _, kind := range panelKinds {
		patterns[kind] = regexp.MustCompile(`(?m)^::: ` + kind + `(?: "([^"]+)")?\n([\s\S]*?)\n:::`)
	}
	return patterns
}

// convertPanels rewrites panel blocks into structured macros. Panels
// are matched per kind, left to right, non-overlapping; an unclosed
// panel never matches and stays literal text.
func convertPanels(text string) string {
	for _, kind := range panelKinds {
		pattern := panelPatterns[kind]
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			m := pattern.FindStringSubmatch(match)
			return panelMacro(kind, m[1], m[2])
		})
	}
	return text
}

// panelMacro renders one panel macro with an optional title parameter
// and the trimmed body wrapped in a paragraph.
func panelMacro(kind, title, body string) string {
	body = strings.TrimSpace(body)

	if title != "" {
		return fmt.Sprintf(`<ac:structured-macro ac:name="%s">
    <ac:parameter ac:name="title">%s</ac:parameter>
    <ac:rich-text-body>
        <p>%s</p>
    </ac:rich-text-body>
</ac:structured-macro>`, kind, title, body)
	}

	return fmt.Sprintf(`<ac:structured-macro ac:name="%s">
    <ac:rich-text-body>
        <p>%s</p>
    </ac:rich-text-body>
</ac:structured-macro>`, kind, body)
}
