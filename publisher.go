package main

import (
	"context"
	"fmt"
	"log"

	blogger "google.golang.org/api/blogger/v3"
	"google.golang.org/api/option"
)

// Publisher submits posts to a blog and lists what is already there
type Publisher interface {
	Publish(ctx context.Context, req PostRequest) PublishResult
	ListRecent(ctx context.Context, limit int64) ([]RemotePost, error)
}

// BloggerPublisher talks to the Blogger v3 API for one blog
type BloggerPublisher struct {
	service *blogger.Service
	blogID  string
}

// NewBloggerPublisher creates a publisher for blogID. Authentication is
// supplied through opts, usually option.WithTokenSource.
func NewBloggerPublisher(ctx context.Context, blogID string, opts ...option.ClientOption) (*BloggerPublisher, error) {
	service, err := blogger.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating blogger service: %w", err)
	}

	return &BloggerPublisher{
		service: service,
		blogID:  blogID,
	}, nil
}

// Publish creates a post. Failures are returned in the result, never as a panic
// or a separate error, so the caller can move on to the next post.
func (p *BloggerPublisher) Publish(ctx context.Context, req PostRequest) PublishResult {
	log.Printf("  → Publishing: %s", req.Title)

	post, err := p.service.Posts.Insert(p.blogID, &blogger.Post{
		Title:   req.Title,
		Content: req.Content,
		Labels:  req.Labels,
	}).IsDraft(req.Draft).Context(ctx).Do()
	if err != nil {
		return PublishResult{
			Title: req.Title,
			Error: &PublishError{Title: req.Title, Err: err},
		}
	}

	debugLog("Insert response: id=%s status=%s url=%s", post.Id, post.Status, post.Url)

	return PublishResult{
		Title:     req.Title,
		Success:   true,
		PostID:    post.Id,
		URL:       post.Url,
		Status:    post.Status,
		Published: post.Published,
	}
}

// ListRecent returns up to limit of the most recent posts, bodies included
func (p *BloggerPublisher) ListRecent(ctx context.Context, limit int64) ([]RemotePost, error) {
	list, err := p.service.Posts.List(p.blogID).
		MaxResults(limit).
		FetchBodies(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &VerificationError{Err: err}
	}

	posts := make([]RemotePost, 0, len(list.Items))
	for _, item := range list.Items {
		posts = append(posts, RemotePost{
			ID:      item.Id,
			Title:   item.Title,
			Status:  item.Status,
			URL:     item.Url,
			Content: item.Content,
		})
	}
	return posts, nil
}
