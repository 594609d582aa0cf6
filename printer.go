package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const excerptLength = 60

var debugEnabled bool

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// ResolveColors reports whether the terminal should get colored output
func ResolveColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return !color.NoColor
}

// Printer writes the operator-facing report of a run
type Printer struct {
	out       io.Writer
	useColors bool
	converter *md.Converter
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer, useColors bool) *Printer {
	return &Printer{
		out:       out,
		useColors: useColors,
		converter: md.NewConverter("", true, nil),
	}
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...interface{}) {
	p.printf(color.FgCyan, "", format, args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	p.printf(color.FgGreen, "✓ ", format, args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	p.printf(color.FgYellow, "⚠ ", format, args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	p.printf(color.FgRed, "✗ ", format, args...)
}

func (p *Printer) printf(attr color.Attribute, prefix, format string, args ...interface{}) {
	if p.useColors {
		color.New(attr).Fprintf(p.out, prefix+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, prefix+format+"\n", args...)
}

// Banner prints the run header
func (p *Printer) Banner(blogID, timestamp string) {
	p.Info("Starting automatic publishing to Blogger")
	fmt.Fprintf(p.out, "Blog ID: %s\nTime:    %s\n%s\n", blogID, timestamp, strings.Repeat("-", 50))
}

// TokenHandoff prints a newly created token so the operator can store it as
// the BLOGGER_TOKEN secret. Storing it is a manual step.
func (p *Printer) TokenHandoff(encoded string) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(p.out, "\n%s\n", rule)
	p.Warning("IMPORTANT: store this token as a secret named BLOGGER_TOKEN")
	fmt.Fprintf(p.out, "%s\n", rule)
	fmt.Fprintf(p.out, "Secret name: BLOGGER_TOKEN\nValue:\n%s\n", encoded)
	fmt.Fprintf(p.out, "%s\n", rule)
	fmt.Fprintln(p.out, "1. Open your repository Settings → Secrets → Actions")
	fmt.Fprintln(p.out, "2. Add (or update) the secret BLOGGER_TOKEN with the value above")
	fmt.Fprintf(p.out, "%s\n\n", rule)
}

// PublishOutcome prints the result of one create-post call
func (p *Printer) PublishOutcome(result PublishResult, draft bool) {
	if !result.Success {
		p.Error("Failed to publish %q: %v", result.Title, result.Error)
		return
	}

	url := result.URL
	if url == "" {
		url = "draft - no URL"
	}
	status := "live"
	if draft {
		status = "draft"
	}

	p.Success("Published: %s", result.Title)
	fmt.Fprintf(p.out, "   URL:       %s\n   Status:    %s\n   Published: %s\n", url, status, result.Published)
}

// RecentPosts prints the verification listing
func (p *Printer) RecentPosts(posts []RemotePost) {
	if len(posts) == 0 {
		p.Info("No posts returned by the blog")
		return
	}

	p.Info("Last %d posts on the blog:", len(posts))
	table := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	table.Header("#", "Title", "Status", "Excerpt")

	for i, post := range posts {
		if err := table.Append([]string{strconv.Itoa(i + 1), post.Title, postStatus(post.Status), p.excerpt(post.Content)}); err != nil {
			debugLog("table append: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		log.Printf("Warning: rendering recent posts: %v", err)
	}
}

// Summary prints the final published/total count
func (p *Printer) Summary(summary *RunSummary) {
	fmt.Fprintln(p.out)
	msg := fmt.Sprintf("Result: published %d of %d posts", summary.Published, summary.Total)
	if summary.Placeholder {
		msg += " (placeholder test post)"
	}

	switch {
	case summary.Published == summary.Total:
		p.Success("%s", msg)
	case summary.Published == 0:
		p.Error("%s", msg)
	default:
		p.Warning("%s", msg)
	}
}

// excerpt converts post HTML to a single line of Markdown text
func (p *Printer) excerpt(html string) string {
	if html == "" {
		return ""
	}
	text, err := p.converter.ConvertString(html)
	if err != nil {
		debugLog("converting excerpt: %v", err)
		return ""
	}

	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > excerptLength {
		return string(runes[:excerptLength]) + "..."
	}
	return text
}

func postStatus(status string) string {
	if strings.EqualFold(status, "DRAFT") {
		return "draft"
	}
	return "live"
}
