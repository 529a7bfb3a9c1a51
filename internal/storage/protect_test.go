package storage

import (
	"strings"
	"testing"
)

func TestConvert_CodeBlock(t *testing.T) {
	c := NewConverter()

	got := c.Convert("```python\nprint(1)\n```")

	if !strings.Contains(got, `<ac:structured-macro ac:name="code">`) {
		t.Fatalf("expected code macro, got %q", got)
	}
	if !strings.Contains(got, `<ac:parameter ac:name="language">python</ac:parameter>`) {
		t.Errorf("expected language parameter, got %q", got)
	}
	if !strings.Contains(got, "<![CDATA[print(1)]]>") {
		t.Errorf("expected CDATA body, got %q", got)
	}
}

func TestConvert_CodeBlockLanguageAliases(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		tag  string
		want string
	}{
		{"js", "javascript"},
		{"ts", "typescript"},
		{"py", "python"},
		{"rb", "ruby"},
		{"yml", "yaml"},
		{"sh", "bash"},
		{"dockerfile", "docker"},
		{"go", "go"},
		{"", "text"},
	}

	for _, tt := range tests {
		t.Run("tag_"+tt.tag, func(t *testing.T) {
			got := c.Convert("```" + tt.tag + "\ncode\n```")
			want := `<ac:parameter ac:name="language">` + tt.want + `</ac:parameter>`
			if !strings.Contains(got, want) {
				t.Errorf("tag %q: expected language %q, got %q", tt.tag, tt.want, got)
			}
		})
	}
}

func TestConvert_CodeBlockContentsImmune(t *testing.T) {
	c := NewConverter()

	// Markdown-significant content inside a fence must survive every
	// pass verbatim, with only trailing whitespace trimmed.
	body := "# not a heading\n- not a list item\n**not bold**\n| not | a | table |"
	got := c.Convert("```\n" + body + "   \n```")

	if !strings.Contains(got, "<![CDATA["+body+"]]>") {
		t.Errorf("code body was rewritten:\n%q", got)
	}
	if strings.Contains(got, "<h1>") || strings.Contains(got, "<li>") || strings.Contains(got, "<strong>") {
		t.Errorf("converter stages leaked into code block: %q", got)
	}
}

func TestConvert_CodeBlockInsideList(t *testing.T) {
	c := NewConverter()

	got := c.Convert("- item\n```python\n- looks like a list\nprint(1)\n```")

	if !strings.Contains(got, "<li>item</li>") {
		t.Errorf("expected surrounding list item, got %q", got)
	}
	if !strings.Contains(got, "- looks like a list\nprint(1)") {
		t.Errorf("expected code body untouched, got %q", got)
	}
	if strings.Contains(got, "<li>- looks") || strings.Contains(got, "<li>looks") {
		t.Errorf("code content interpreted as list syntax: %q", got)
	}
}

func TestConvert_MultipleCodeBlocksRestoredInOrder(t *testing.T) {
	c := NewConverter()

	got := c.Convert("```js\nfirst\n```\n\nmiddle\n\n```sh\nsecond\n```")

	first := strings.Index(got, "<![CDATA[first]]>")
	second := strings.Index(got, "<![CDATA[second]]>")
	if first == -1 || second == -1 || first > second {
		t.Errorf("expected both blocks restored in order, got %q", got)
	}
	if strings.Contains(got, "__CODE_BLOCK_") {
		t.Errorf("placeholder leaked into output: %q", got)
	}
	if !strings.Contains(got, "<p>middle</p>") {
		t.Errorf("expected text between blocks wrapped, got %q", got)
	}
}

func TestConvert_UnterminatedFencePassesThrough(t *testing.T) {
	c := NewConverter()

	got := c.Convert("```python\nprint(1)")

	if strings.Contains(got, "ac:name=\"code\"") {
		t.Errorf("unterminated fence must not become a code macro: %q", got)
	}
	if !strings.Contains(got, "```python") {
		t.Errorf("expected fence left as literal text, got %q", got)
	}
}

func TestConvert_PlaceholderSurvivesEmphasisPass(t *testing.T) {
	// Placeholder tokens contain double underscores; the emphasis
	// pass must not read them as bold markers.
	got := convertEmphasis("__CODE_BLOCK_0__ and __really bold__")

	if !strings.Contains(got, "__CODE_BLOCK_0__") {
		t.Errorf("placeholder consumed by emphasis pass: %q", got)
	}
	if !strings.Contains(got, "<strong>really bold</strong>") {
		t.Errorf("surrounding emphasis not converted: %q", got)
	}
}

func TestFormatCodeBlock_TrailingWhitespaceTrimmed(t *testing.T) {
	got := formatCodeBlock("```go\nfmt.Println(1)\n\n\n```")

	if !strings.Contains(got, "<![CDATA[fmt.Println(1)]]>") {
		t.Errorf("expected trailing blank lines trimmed, got %q", got)
	}
}
