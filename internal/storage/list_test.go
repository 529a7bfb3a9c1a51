package storage

import (
	"strings"
	"testing"
)

func TestConvert_SimpleUnorderedList(t *testing.T) {
	c := NewConverter()

	got := c.Convert("- a\n- b")
	want := "<ul> <li>a</li> <li>b</li> </ul>"

	if got != want {
		t.Errorf("Convert() = %q, want %q", got, want)
	}
}

func TestConvert_OrderedList(t *testing.T) {
	c := NewConverter()

	got := c.Convert("1. first\n2. second\n3. third")

	if strings.Count(got, "<ol>") != 1 || strings.Count(got, "</ol>") != 1 {
		t.Fatalf("expected exactly one ordered list, got %q", got)
	}
	if strings.Count(got, "<li>") != 3 {
		t.Errorf("expected three items, got %q", got)
	}
}

func TestConvert_NestedList(t *testing.T) {
	c := NewConverter()

	got := c.Convert("- a\n  - a1\n  - a2\n- b")

	if strings.Count(got, "<ul>") != 2 || strings.Count(got, "</ul>") != 2 {
		t.Fatalf("expected two nested lists, got %q", got)
	}
	// The nested list must close before item b is emitted.
	inner := strings.Index(got, "</ul>")
	b := strings.Index(got, "<li>b</li>")
	if inner == -1 || b == -1 || inner > b {
		t.Errorf("nested list not closed before sibling item: %q", got)
	}
}

func TestConvert_MixedListTypesAtSameLevel(t *testing.T) {
	c := NewConverter()

	got := c.Convert("- bullet\n1. number")

	ulClose := strings.Index(got, "</ul>")
	olOpen := strings.Index(got, "<ol>")
	if ulClose == -1 || olOpen == -1 || ulClose > olOpen {
		t.Errorf("expected ul closed before ol opened: %q", got)
	}
}

func TestConvert_ListMarkerVariants(t *testing.T) {
	c := NewConverter()

	for _, marker := range []string{"-", "*", "+"} {
		got := c.Convert(marker + " item")
		if !strings.Contains(got, "<li>item</li>") {
			t.Errorf("marker %q: expected list item, got %q", marker, got)
		}
	}
}

func TestConvert_ListTagsBalance(t *testing.T) {
	c := NewConverter()

	inputs := []string{
		"- a\n- b\n- c",
		"- a\n  - b\n    - c\n- d",
		"1. a\n2. b\n\ntext\n\n- c",
		"- a\n      - deep jump",
		"- a\n  1. b\n  2. c\n- d",
	}

	for _, input := range inputs {
		got := c.Convert(input)
		for _, tag := range []string{"ul", "ol"} {
			open := strings.Count(got, "<"+tag+">")
			closed := strings.Count(got, "</"+tag+">")
			if open != closed {
				t.Errorf("input %q: %d <%s> but %d </%s>: %q", input, open, tag, closed, tag, got)
			}
		}
	}
}

func TestConvert_IrregularIndentClampedToOneLevel(t *testing.T) {
	c := NewConverter()

	// A jump of three levels in one step opens only one nested list.
	got := c.Convert("- a\n      - deep")

	if strings.Count(got, "<ul>") != 2 {
		t.Errorf("expected level jump clamped to one new list, got %q", got)
	}
}

func TestConvert_NonListLineClosesLists(t *testing.T) {
	c := NewConverter()

	got := c.Convert("- a\n  - b\nplain text")

	closing := strings.LastIndex(got, "</ul>")
	text := strings.Index(got, "plain text")
	if closing == -1 || text == -1 || closing > text {
		t.Errorf("expected all lists closed before plain text: %q", got)
	}
}
