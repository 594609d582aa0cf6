package main

import "fmt"

// ConfigurationError reports a missing or malformed required input. It is fatal.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AuthError reports a failure to obtain an access token
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FileReadError reports an article file that could not be read or parsed
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// PublishError reports a rejected or failed create-post call
type PublishError struct {
	Title string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publishing %q: %v", e.Title, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// ArchiveError reports a published file that could not be moved to the archive
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archiving %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// VerificationError reports a failed listing of recent posts
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verifying recent posts: %v", e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }
