package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// headerRules rewrite heading prefixes, level 6 down to level 1 so a
// deep heading is never misread as a level-1 heading with leftover
// hash marks.
var headerRules = []rewriteRule{
	{regexp.MustCompile(`(?m)^###### (.+)$`), "<h6>$1</h6>"},
	{regexp.MustCompile(`(?m)^##### (.+)$`), "<h5>$1</h5>"},
	{regexp.MustCompile(`(?m)^#### (.+)$`), "<h4>$1</h4>"},
	{regexp.MustCompile(`(?m)^### (.+)$`), "<h3>$1</h3>"},
	{regexp.MustCompile(`(?m)^## (.+)$`), "<h2>$1</h2>"},
	{regexp.MustCompile(`(?m)^# (.+)$`), "<h1>$1</h1>"},
}

// emphasisRules run in strict precedence order: triple markers first,
// then double, then single. Reversing the order would split a bold
// span into two italic markers. All spans match non-greedily.
var emphasisRules = []rewriteRule{
	{regexp.MustCompile(`\*\*\*(.+?)\*\*\*`), "<strong><em>$1</em></strong>"},
	{regexp.MustCompile(`___(.+?)___`), "<strong><em>$1</em></strong>"},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>$1</strong>"},
	{regexp.MustCompile(`__(.+?)__`), "<strong>$1</strong>"},
	{regexp.MustCompile(`\*(.+?)\*`), "<em>$1</em>"},
	{regexp.MustCompile(`_(.+?)_`), "<em>$1</em>"},
}

var (
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	imagePattern      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	// markerRunPattern classifies lines that are horizontal rule
	// markers. The emphasis pass must leave them alone or a line of
	// asterisks would read as an empty italic span.
	markerRunPattern = regexp.MustCompile(`^\*{3,}$|^-{3,}$`)
)

type rewriteRule struct {
	pattern *regexp.Regexp
	repl    string
}

func convertHeaders(text string) string {
	for _, rule := range headerRules {
		text = rule.pattern.ReplaceAllString(text, rule.repl)
	}
	return text
}

func convertEmphasis(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if markerRunPattern.MatchString(line) {
			continue
		}
		lines[i] = replaceOutsideTokens(line, applyEmphasisRules)
	}
	return strings.Join(lines, "\n")
}

func applyEmphasisRules(s string) string {
	for _, rule := range emphasisRules {
		s = rule.pattern.ReplaceAllString(s, rule.repl)
	}
	return s
}

func convertInlineCode(text string) string {
	return inlineCodePattern.ReplaceAllString(text, "<code>$1</code>")
}

// convertLinksAndImages rewrites image syntax before link syntax:
// image syntax is link syntax prefixed by '!', so running the link
// rule first would leave a stray exclamation mark behind.
func convertLinksAndImages(text string) string {
	text = imagePattern.ReplaceAllStringFunc(text, func(match string) string {
		m := imagePattern.FindStringSubmatch(match)
		return imageElement(m[1], m[2])
	})
	return linkPattern.ReplaceAllString(text, `<a href="$2">$1</a>`)
}

func imageElement(alt, url string) string {
	if alt == "" {
		return fmt.Sprintf(`<ac:image><ri:url ri:value="%s" /></ac:image>`, url)
	}
	return fmt.Sprintf(`<ac:image ac:alt="%s"><ri:url ri:value="%s" /></ac:image>`, alt, url)
}
