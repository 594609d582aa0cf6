package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}

func TestAddHeadings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "my-first_post.md"), "Body text\n")
	writeFile(t, filepath.Join(dir, "titled.md"), "# Already Titled\nBody\n")
	writeFile(t, filepath.Join(dir, "meta.md"), "---\ntitle: Meta\n---\nBody\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not an article\n")
	writeFile(t, filepath.Join(dir, "nested", "deep-post.markdown"), "Nested body\n")

	if err := addHeadings(dir); err != nil {
		t.Fatalf("addHeadings() error = %v", err)
	}

	tests := []struct {
		file     string
		expected string
	}{
		{"my-first_post.md", "# My First Post\n\nBody text\n"},
		{"titled.md", "# Already Titled\nBody\n"},
		{"meta.md", "---\ntitle: Meta\n---\nBody\n"},
		{"notes.txt", "not an article\n"},
		{filepath.Join("nested", "deep-post.markdown"), "# Deep Post\n\nNested body\n"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			if got := readFile(t, filepath.Join(dir, tt.file)); got != tt.expected {
				t.Errorf("content = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRestoreArchived(t *testing.T) {
	tempDir := t.TempDir()
	archiveDir := filepath.Join(tempDir, "published")
	postsDir := filepath.Join(tempDir, "posts")

	writeFile(t, filepath.Join(archiveDir, "a.md"), "# A\n")
	writeFile(t, filepath.Join(archiveDir, "b.md"), "# B archived\n")
	writeFile(t, filepath.Join(archiveDir, ".hidden.md"), "hidden\n")
	writeFile(t, filepath.Join(postsDir, "b.md"), "# B pending\n")

	if err := restoreArchived(archiveDir, postsDir); err != nil {
		t.Fatalf("restoreArchived() error = %v", err)
	}

	if got := readFile(t, filepath.Join(postsDir, "a.md")); got != "# A\n" {
		t.Errorf("a.md = %q", got)
	}
	if _, err := os.Stat(filepath.Join(archiveDir, "a.md")); !os.IsNotExist(err) {
		t.Error("a.md was not moved out of the archive")
	}

	if got := readFile(t, filepath.Join(postsDir, "b.md")); got != "# B pending\n" {
		t.Errorf("existing b.md was overwritten: %q", got)
	}
	if _, err := os.Stat(filepath.Join(archiveDir, "b.md")); err != nil {
		t.Error("b.md should stay archived when the posts copy exists")
	}
	if _, err := os.Stat(filepath.Join(postsDir, ".hidden.md")); !os.IsNotExist(err) {
		t.Error("hidden file was restored")
	}
}

func TestRestoreArchivedMissingDirectory(t *testing.T) {
	tempDir := t.TempDir()
	if err := restoreArchived(filepath.Join(tempDir, "missing"), filepath.Join(tempDir, "posts")); err == nil {
		t.Error("expected error for a missing archive directory")
	}
}

func TestHumanizeFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"hello-world.md", "Hello World"},
		{"snake_case_name.markdown", "Snake Case Name"},
		{"---.md", "Untitled post"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := humanizeFilename(tt.filename); got != tt.expected {
				t.Errorf("humanizeFilename(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}
