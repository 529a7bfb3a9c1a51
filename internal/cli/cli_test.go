package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSetVersion(t *testing.T) {
	oldVersion := version
	defer func() { version = oldVersion }()

	SetVersion("1.2.3")
	if version != "1.2.3" {
		t.Errorf("expected version '1.2.3', got '%s'", version)
	}
}

func TestRootCommand(t *testing.T) {
	// Test that root command exists and has expected properties
	if rootCmd.Use != "confluence-md" {
		t.Errorf("expected Use 'confluence-md', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
}

func TestVersionCommand(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("expected Use 'version', got '%s'", versionCmd.Use)
	}

	if versionCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
}

func TestConvertCommandFlags(t *testing.T) {
	if convertCmd.Use != "convert [file]" {
		t.Errorf("expected Use 'convert [file]', got '%s'", convertCmd.Use)
	}

	if convertCmd.Flags().Lookup("output") == nil {
		t.Error("expected flag 'output' to exist")
	}
}

func TestPageCommand(t *testing.T) {
	if pageCmd.Use != "page" {
		t.Errorf("expected Use 'page', got '%s'", pageCmd.Use)
	}

	// Check subcommands exist
	subcommands := []string{"create", "get", "update", "delete"}
	for _, name := range subcommands {
		found := false
		for _, cmd := range pageCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand '%s' to exist", name)
		}
	}
}

func TestBulkCommand(t *testing.T) {
	subcommands := []string{"create-csv", "update", "replace"}
	for _, name := range subcommands {
		found := false
		for _, cmd := range bulkCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand '%s' to exist", name)
		}
	}
}

func TestSpaceCommand(t *testing.T) {
	subcommands := []string{"list", "create", "audit", "clone"}
	for _, name := range subcommands {
		found := false
		for _, cmd := range spaceCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand '%s' to exist", name)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	if configCmd.Use != "config" {
		t.Errorf("expected Use 'config', got '%s'", configCmd.Use)
	}

	// Check subcommands exist
	subcommands := []string{"show", "init", "set", "path"}
	for _, name := range subcommands {
		found := false
		for _, cmd := range configCmd.Commands() {
			if cmd.Use == name || cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand '%s' to exist", name)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "****"},
		{"12345678", "****"},
		{"atlassian-token-abcd", "atla****abcd"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			result := maskSecret(tc.input)
			if result != tc.expected {
				t.Errorf("maskSecret(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"short", 60, "short"},
		{strings.Repeat("a", 60), 60, strings.Repeat("a", 60)},
		{strings.Repeat("a", 61), 60, strings.Repeat("a", 57) + "..."},
		{strings.Repeat("ü", 61), 60, strings.Repeat("ü", 57) + "..."},
	}

	for _, tc := range tests {
		result := truncate(tc.input, tc.max)
		if result != tc.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.input, tc.max, result, tc.expected)
		}
		if !utf8.ValidString(result) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tc.input, tc.max)
		}
	}
}

func TestRunConvertFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "doc.md")
	content := "---\ntitle: Doc\n---\n# Hello\n\nSome **bold** text.\n"
	if err := os.WriteFile(inputPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	oldOutput := convertOutput
	convertOutput = ""
	defer func() { convertOutput = oldOutput }()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	rootCmd.SetArgs([]string{"convert", inputPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "<h1>Hello</h1>") {
		t.Errorf("output missing heading: %q", got)
	}
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("output missing bold text: %q", got)
	}
	if strings.Contains(got, "title: Doc") {
		t.Errorf("front matter leaked into output: %q", got)
	}
}

func TestRunConvertToFile(t *testing.T) {
	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "doc.md")
	outputPath := filepath.Join(tmpDir, "out.xhtml")
	if err := os.WriteFile(inputPath, []byte("# Title\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	oldOutput := convertOutput
	defer func() { convertOutput = oldOutput }()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	rootCmd.SetArgs([]string{"convert", inputPath, "-o", outputPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != "<h1>Title</h1>\n" {
		t.Errorf("output = %q, want heading line", string(data))
	}
}

func TestRunConvertMissingFile(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	rootCmd.SetArgs([]string{"convert", "/nonexistent/file.md"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for missing file")
	}
}
