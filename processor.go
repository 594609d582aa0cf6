package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"
)

// CredentialSource yields the access token a run publishes with
type CredentialSource interface {
	Obtain(ctx context.Context) (*oauth2.Token, error)
}

// PublisherFactory builds the blog client once a token is available
type PublisherFactory func(ctx context.Context, token *oauth2.Token) (Publisher, error)

// PostProcessor runs one publishing pass: authenticate, load articles,
// publish and archive them one at a time, then verify.
type PostProcessor struct {
	settings     *Settings
	credentials  CredentialSource
	newPublisher PublisherFactory
	loader       *PostLoader
	renderer     ContentRenderer
	printer      *Printer
	draft        bool
	now          func() time.Time
	state        RunState
}

// NewPostProcessor creates a processor from validated settings
func NewPostProcessor(settings *Settings, credentials CredentialSource, newPublisher PublisherFactory, printer *Printer) (*PostProcessor, error) {
	renderer, err := NewContentRenderer(settings.ContentFormat, settings.TitleHeading)
	if err != nil {
		return nil, &ConfigurationError{Key: "content_format", Err: err}
	}

	return &PostProcessor{
		settings:     settings,
		credentials:  credentials,
		newPublisher: newPublisher,
		loader:       NewPostLoader(settings.Extensions),
		renderer:     renderer,
		printer:      printer,
		draft:        settings.Draft,
		now:          time.Now,
		state:        StateInit,
	}, nil
}

// SetDraft sets whether posts are created as drafts by default
func (pp *PostProcessor) SetDraft(draft bool) {
	pp.draft = draft
}

// State returns the step the last run reached
func (pp *PostProcessor) State() RunState {
	return pp.state
}

// Run executes the publishing pass. The run fails only when credentials
// cannot be obtained, the Blogger client cannot be built, or the posts
// directory exists but cannot be listed. Per-post publish and archive
// failures are recorded in the summary.
func (pp *PostProcessor) Run(ctx context.Context) (*RunSummary, error) {
	pp.transition(StateInit)

	token, err := pp.credentials.Obtain(ctx)
	if err != nil {
		return nil, pp.fail(fmt.Errorf("obtaining credentials: %w", err))
	}
	pp.transition(StateAuthenticated)

	publisher, err := pp.newPublisher(ctx, token)
	if err != nil {
		return nil, pp.fail(fmt.Errorf("connecting to blogger: %w", err))
	}
	log.Printf("✓ Connected to Blogger")

	records, err := pp.loader.Load(pp.settings.PostsDirectory)
	if err != nil {
		return nil, pp.fail(fmt.Errorf("loading posts: %w", err))
	}
	pp.transition(StateLoaded)

	pp.transition(StatePublishing)
	summary := &RunSummary{}
	if len(records) == 0 {
		log.Printf("No new posts to publish, publishing a placeholder test post")
		summary.Placeholder = true
		pp.record(summary, pp.publishPlaceholder(ctx, publisher))
	} else {
		log.Printf("Publishing %d posts...", len(records))
		for i, rec := range records {
			log.Printf("[%d/%d] %s", i+1, len(records), rec.Filename)
			pp.record(summary, pp.publishRecord(ctx, publisher, rec))
		}
	}

	pp.transition(StateVerifying)
	summary.RecentPosts = pp.verify(ctx, publisher)

	pp.transition(StateDone)
	pp.printer.Summary(summary)
	return summary, nil
}

func (pp *PostProcessor) record(summary *RunSummary, result PublishResult) {
	summary.Total++
	if result.Success {
		summary.Published++
	}
	summary.Results = append(summary.Results, result)
}

// publishRecord publishes one article and archives it only on success
func (pp *PostProcessor) publishRecord(ctx context.Context, publisher Publisher, rec PostRecord) PublishResult {
	content, err := pp.renderer.Render(rec.Title, rec.Body)
	if err != nil {
		result := PublishResult{
			Filename: rec.Filename,
			Title:    rec.Title,
			Error:    &PublishError{Title: rec.Title, Err: err},
		}
		pp.printer.PublishOutcome(result, pp.draft)
		return result
	}

	labels := pp.settings.Labels
	if rec.Labels != nil {
		labels = rec.Labels
	}
	draft := pp.draft
	if rec.Draft != nil {
		draft = *rec.Draft
	}

	result := publisher.Publish(ctx, PostRequest{
		Title:   rec.Title,
		Content: content,
		Labels:  labels,
		Draft:   draft,
	})
	result.Filename = rec.Filename
	pp.printer.PublishOutcome(result, draft)

	if result.Success {
		result.Archived = ArchiveFile(rec.Path, pp.settings.ArchiveDirectory)
	}
	return result
}

// publishPlaceholder publishes a dated test post to prove connectivity
func (pp *PostProcessor) publishPlaceholder(ctx context.Context, publisher Publisher) PublishResult {
	now := pp.now()
	title := fmt.Sprintf("Automated test - %s", now.Format("2006-01-02 15:04"))
	content := fmt.Sprintf(`<h2>This is an automated test post</h2>
<p>Published automatically by blogger-publisher.</p>
<p>Date: %s</p>
<p>Add articles to the <code>%s</code> directory to publish them.</p>`,
		now.Format("2006-01-02 15:04:05"), pp.settings.PostsDirectory)

	result := publisher.Publish(ctx, PostRequest{
		Title:   title,
		Content: content,
		Labels:  pp.settings.Placeholder.Labels,
		Draft:   pp.draft,
	})
	pp.printer.PublishOutcome(result, pp.draft)
	return result
}

// verify lists recent posts; failure is only logged
func (pp *PostProcessor) verify(ctx context.Context, publisher Publisher) []RemotePost {
	log.Printf("→ Verifying recent posts...")
	posts, err := publisher.ListRecent(ctx, pp.settings.VerifyLimit)
	if err != nil {
		pp.printer.Warning("Could not verify posts: %v", err)
		return nil
	}
	pp.printer.RecentPosts(posts)
	return posts
}

func (pp *PostProcessor) transition(state RunState) {
	debugLog("state %s → %s", pp.state, state)
	pp.state = state
}

func (pp *PostProcessor) fail(err error) error {
	pp.transition(StateFailed)
	return err
}
