// Package storage converts Markdown text to Confluence storage format.
// The converter is a fixed sequence of transformation passes over a
// single document buffer: fenced code blocks are extracted into opaque
// placeholders first, block and inline syntax is rewritten pass by
// pass, and the protected code regions are restored as code macros at
// the end. Pass order matters: later passes must not re-match markup
// emitted by earlier ones.
package storage

// Converter transforms Markdown into Confluence storage format.
// It holds no per-call state, so a single Converter is safe to use
// from multiple goroutines.
type Converter struct{}

// NewConverter creates a new Markdown to storage format converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert transforms the given Markdown content into Confluence
// storage format. Conversion is total: malformed input (unterminated
// fences, ragged tables, irregular indentation) falls back to the most
// literal interpretation instead of failing.
func (c *Converter) Convert(markdown string) string {
	doc, blocks := protectCodeBlocks(markdown)

	doc = convertPanels(doc)
	doc = convertHeaders(doc)
	doc = convertEmphasis(doc)
	doc = convertInlineCode(doc)
	doc = convertLinksAndImages(doc)
	doc = convertTaskLists(doc)
	doc = convertLists(doc)
	doc = convertTables(doc)
	doc = convertBlockquotes(doc)
	doc = convertRules(doc)

	// Paragraph wrapping runs while code regions are still opaque
	// single-line tokens; restoring first would expose multi-line
	// macro bodies to the line grouping.
	doc = wrapParagraphs(doc)
	doc = restoreCodeBlocks(doc, blocks)

	return doc
}
