package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// Fenced regions are matched non-greedily, so a fence without a
// closing delimiter never matches and passes through as literal text.
var (
	fencedBlockPattern = regexp.MustCompile("(?s)```.*?```")
	codeBlockPattern   = regexp.MustCompile("(?s)^```([A-Za-z0-9_]*)\n(.*?)```")
	placeholderPattern = regexp.MustCompile(`__CODE_BLOCK_\d+__`)
)

// languageAliases normalizes common short language tags to the names
// the code macro understands.
var languageAliases = map[string]string{
	"js":         "javascript",
	"ts":         "typescript",
	"py":         "python",
	"rb":         "ruby",
	"yml":        "yaml",
	"sh":         "bash",
	"dockerfile": "docker",
}

// protectCodeBlocks extracts every fenced code region into an ordered
// placeholder table and replaces it in the buffer with an opaque
// token, keeping the contents out of reach of every other pass.
func protectCodeBlocks(text string) (string, []string) {
	var blocks []string
	out := fencedBlockPattern.ReplaceAllStringFunc(text, func(match string) string {
		token := placeholderToken(len(blocks))
		blocks = append(blocks, match)
		return token
	})
	return out, blocks
}

// restoreCodeBlocks replaces each placeholder, in index order, with
// the converted code macro for the block it stands for.
func restoreCodeBlocks(text string, blocks []string) string {
	for i, block := range blocks {
		text = strings.Replace(text, placeholderToken(i), formatCodeBlock(block), 1)
	}
	return text
}

func placeholderToken(index int) string {
	return fmt.Sprintf("__CODE_BLOCK_%d__", index)
}

// formatCodeBlock converts one raw fenced block into a code macro.
// The language tag is normalized through the alias table and the body
// is kept verbatim apart from trailing whitespace. A block that does
// not parse as a fence is returned unchanged.
func formatCodeBlock(block string) string {
	m := codeBlockPattern.FindStringSubmatch(block)
	if m == nil {
		return block
	}

	lang := m[1]
	if lang == "" {
		lang = "text"
	}
	if alias, ok := languageAliases[strings.ToLower(lang)]; ok {
		lang = alias
	}

	code := strings.TrimRight(m[2], " \t\n\r")

	return fmt.Sprintf(`<ac:structured-macro ac:name="code">
    <ac:parameter ac:name="language">%s</ac:parameter>
    <ac:plain-text-body><![CDATA[%s]]></ac:plain-text-body>
</ac:structured-macro>`, lang, code)
}

// replaceOutsideTokens applies fn to the stretches of line between
// placeholder tokens, leaving the tokens themselves untouched.
// Placeholders contain double underscores, which the emphasis pass
// would otherwise read as bold markers.
func replaceOutsideTokens(line string, fn func(string) string) string {
	tokens := placeholderPattern.FindAllStringIndex(line, -1)
	if tokens == nil {
		return fn(line)
	}

	var sb strings.Builder
	last := 0
	for _, loc := range tokens {
		sb.WriteString(fn(line[last:loc[0]]))
		sb.WriteString(line[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(fn(line[last:]))
	return sb.String()
}
