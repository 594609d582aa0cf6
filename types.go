package main

// PostRecord is one article file ready to publish
type PostRecord struct {
	Filename string   // base name inside the posts directory
	Path     string   // full path used for archiving
	Title    string
	Body     string
	Labels   []string // front matter override, nil means settings labels
	Draft    *bool    // front matter override, nil means run default
}

// PostRequest is the create-post payload sent to the blog
type PostRequest struct {
	Title   string
	Content string
	Labels  []string
	Draft   bool
}

// PublishResult tracks the outcome of publishing each post
type PublishResult struct {
	Filename  string
	Title     string
	Success   bool
	PostID    string
	URL       string
	Status    string
	Published string
	Archived  bool
	Error     error
}

// RemotePost is a post returned by the recent-posts listing
type RemotePost struct {
	ID      string
	Title   string
	Status  string
	URL     string
	Content string
}

// RunState is a step of the publishing run
type RunState string

const (
	StateInit          RunState = "init"
	StateAuthenticated RunState = "authenticated"
	StateLoaded        RunState = "loaded"
	StatePublishing    RunState = "publishing"
	StateVerifying     RunState = "verifying"
	StateDone          RunState = "done"
	StateFailed        RunState = "failed"
)

// RunSummary is the final report of a publishing run
type RunSummary struct {
	Published   int
	Total       int
	Placeholder bool
	Results     []PublishResult
	RecentPosts []RemotePost
}
