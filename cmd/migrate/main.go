package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <add-headings <posts-directory>|restore <archive-directory> <posts-directory>>")
	}

	command := os.Args[1]

	switch command {
	case "add-headings":
		if err := addHeadings(os.Args[2]); err != nil {
			log.Fatal(err)
		}
	case "restore":
		if len(os.Args) < 4 {
			log.Fatal("Usage: migrate restore <archive-directory> <posts-directory>")
		}
		if err := restoreArchived(os.Args[2], os.Args[3]); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("Unknown command %q", command)
	}
}

// addHeadings prefixes "# Title" to article files without a leading heading,
// using the title the publisher would derive from the filename.
func addHeadings(postsDir string) error {
	return filepath.WalkDir(postsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on errors
		}

		if !d.IsDir() && isArticle(path) {
			if err := addHeading(path); err != nil {
				log.Printf("Error processing %s: %v", path, err)
			}
		}

		return nil
	})
}

func addHeading(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", filePath, err)
	}

	text := string(content)
	if hasHeading(text) {
		log.Printf("File %s already has a heading, skipping", filepath.Base(filePath))
		return nil
	}
	if strings.HasPrefix(text, "---") {
		log.Printf("File %s has front matter, skipping", filepath.Base(filePath))
		return nil
	}

	title := humanizeFilename(filepath.Base(filePath))
	log.Printf("Adding heading %q to %s", title, filepath.Base(filePath))

	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	updated := "# " + title + "\n\n" + text
	return os.WriteFile(filePath, []byte(updated), info.Mode().Perm())
}

// restoreArchived moves archived articles back so the next run publishes them again
func restoreArchived(archiveDir, postsDir string) error {
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		return fmt.Errorf("reading archive directory %s: %w", archiveDir, err)
	}

	if err := os.MkdirAll(postsDir, 0755); err != nil {
		return fmt.Errorf("creating posts directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isArticle(entry.Name()) {
			continue
		}

		destination := filepath.Join(postsDir, entry.Name())
		if _, err := os.Stat(destination); err == nil {
			log.Printf("File %s already exists in %s, skipping", entry.Name(), postsDir)
			continue
		}

		log.Printf("Restoring %s", entry.Name())
		if err := os.Rename(filepath.Join(archiveDir, entry.Name()), destination); err != nil {
			log.Printf("Error restoring %s: %v", entry.Name(), err)
		}
	}

	return nil
}

// isArticle and humanizeFilename mirror PostLoader.isArticle and
// humanizeFilename in loader.go with the default extensions; keep them in step.
func isArticle(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

func hasHeading(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "#")
}

func humanizeFilename(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	words := strings.Fields(stem)
	if len(words) == 0 {
		return "Untitled post"
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
