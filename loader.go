package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const untitledPost = "Untitled post"

// frontMatter holds the optional per-article overrides
type frontMatter struct {
	Title  string   `yaml:"title"`
	Labels []string `yaml:"labels"`
	Draft  *bool    `yaml:"draft"`
}

// PostLoader scans a directory for article files
type PostLoader struct {
	extensions []string
}

// NewPostLoader creates a loader accepting the given file extensions
func NewPostLoader(extensions []string) *PostLoader {
	return &PostLoader{extensions: extensions}
}

// Load returns one PostRecord per article file in dir, ordered by filename.
// A missing directory is created and yields no records. Files that cannot be
// read or parsed are logged and skipped.
func (l *PostLoader) Load(dir string) ([]PostRecord, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("Directory %s does not exist, creating it", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("✗ Failed to create %s: %v", dir, err)
		}
		return []PostRecord{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	records := make([]PostRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !l.isArticle(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		record, err := l.loadFile(path)
		if err != nil {
			log.Printf("✗ Skipping %v", err)
			continue
		}

		log.Printf("Found article: %s", record.Title)
		records = append(records, record)
	}

	return records, nil
}

func (l *PostLoader) isArticle(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range l.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (l *PostLoader) loadFile(path string) (PostRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return PostRecord{}, &FileReadError{Path: path, Err: err}
	}

	record := parsePost(filepath.Base(path), content)
	record.Path = path
	return record, nil
}

// parsePost splits an article into title and body. A first line starting
// with '#' is the title; otherwise the title comes from the filename and the
// whole content is the body. Front matter that does not decode is treated as
// part of the article.
func parsePost(filename string, content []byte) PostRecord {
	var meta frontMatter
	rest, err := frontmatter.Parse(bytes.NewReader(content), &meta)
	if err != nil {
		// A "---" rule pair around plain prose is not front matter.
		debugLog("%s: ignoring front matter: %v", filename, err)
		meta = frontMatter{}
		rest = content
	}

	text := strings.ReplaceAll(string(rest), "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var title, body string
	if strings.HasPrefix(lines[0], "#") {
		title = strings.TrimSpace(strings.TrimLeft(lines[0], "#"))
		body = strings.TrimLeft(strings.Join(lines[1:], "\n"), "\n")
	} else {
		title = humanizeFilename(filename)
		body = string(rest)
	}

	if meta.Title != "" {
		title = strings.TrimSpace(meta.Title)
	}
	if title == "" {
		title = untitledPost
	}

	return PostRecord{
		Filename: filename,
		Title:    title,
		Body:     body,
		Labels:   meta.Labels,
		Draft:    meta.Draft,
	}
}

// humanizeFilename turns "my-first_post.md" into "My First Post"
func humanizeFilename(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	words := strings.Fields(stem)
	if len(words) == 0 {
		return untitledPost
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
