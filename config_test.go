package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseSettingsDefaults(t *testing.T) {
	settings, err := parseSettings(nil)
	if err != nil {
		t.Fatalf("parseSettings() error = %v", err)
	}

	if settings.PostsDirectory != "posts" {
		t.Errorf("PostsDirectory = %q, want posts", settings.PostsDirectory)
	}
	if settings.ArchiveDirectory != "published" {
		t.Errorf("ArchiveDirectory = %q, want published", settings.ArchiveDirectory)
	}
	if !settings.Draft {
		t.Error("Draft should default to true")
	}
	if !settings.TitleHeading {
		t.Error("TitleHeading should default to true")
	}
	if settings.ContentFormat != ContentFormatBreaks {
		t.Errorf("ContentFormat = %q, want %q", settings.ContentFormat, ContentFormatBreaks)
	}
	if !reflect.DeepEqual(settings.Labels, []string{"auto-published", "github"}) {
		t.Errorf("Labels = %v", settings.Labels)
	}
	if !reflect.DeepEqual(settings.Placeholder.Labels, []string{"test", "github-actions", "first"}) {
		t.Errorf("Placeholder.Labels = %v", settings.Placeholder.Labels)
	}
	if settings.VerifyLimit != 5 {
		t.Errorf("VerifyLimit = %d, want 5", settings.VerifyLimit)
	}
	if settings.OAuth.CallbackTimeout != 5*time.Minute {
		t.Errorf("CallbackTimeout = %v, want 5m", settings.OAuth.CallbackTimeout)
	}
}

func TestParseSettingsOverlay(t *testing.T) {
	data := `posts_directory: articles
draft: false
verify_limit: 0
extensions: [md, " .TXT "]
`
	settings, err := parseSettings([]byte(data))
	if err != nil {
		t.Fatalf("parseSettings() error = %v", err)
	}

	if settings.PostsDirectory != "articles" {
		t.Errorf("PostsDirectory = %q, want articles", settings.PostsDirectory)
	}
	if settings.Draft {
		t.Error("Draft should be overridden to false")
	}
	if settings.VerifyLimit != defaultVerifyLimit {
		t.Errorf("VerifyLimit = %d, want %d", settings.VerifyLimit, defaultVerifyLimit)
	}
	if !reflect.DeepEqual(settings.Extensions, []string{".md", ".txt"}) {
		t.Errorf("Extensions = %v, want [.md .txt]", settings.Extensions)
	}
	if settings.ArchiveDirectory != "published" {
		t.Errorf("ArchiveDirectory = %q, want default", settings.ArchiveDirectory)
	}
}

func TestParseSettingsValidation(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		errorMsg string
	}{
		{"unknown content format", "content_format: html", "unknown content_format"},
		{"same directories", "posts_directory: posts\narchive_directory: ./posts", "must differ"},
		{"no extensions", "extensions: []", "at least one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSettings([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error to contain %q, got: %v", tt.errorMsg, err)
			}
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	settings, err := LoadSettings(path, false)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings.PostsDirectory != "posts" {
		t.Errorf("expected defaults, got PostsDirectory %q", settings.PostsDirectory)
	}

	_, err = LoadSettings(path, true)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("labels: [news]\ncontent_format: markdown\n"), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := LoadSettings(path, true)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if !reflect.DeepEqual(settings.Labels, []string{"news"}) {
		t.Errorf("Labels = %v, want [news]", settings.Labels)
	}
	if settings.ContentFormat != ContentFormatMarkdown {
		t.Errorf("ContentFormat = %q, want markdown", settings.ContentFormat)
	}
}

func TestEnsureConfigExists(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(tempDir)

	if err := ensureConfigExists(); err != nil {
		t.Fatalf("ensureConfigExists() error = %v", err)
	}

	data, err := os.ReadFile(getConfigPath("settings.yaml"))
	if err != nil {
		t.Fatalf("settings.yaml not written: %v", err)
	}
	if string(data) != defaultSettings {
		t.Error("written settings differ from embedded defaults")
	}
}

const testClientSecret = `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestLoadRunConfig(t *testing.T) {
	settings, _ := parseSettings(nil)

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("BLOG_ID", " 12345 ")
		t.Setenv("CLIENT_SECRET_JSON", testClientSecret)
		t.Setenv("BLOGGER_TOKEN", "encoded")

		cfg, err := LoadRunConfig(newRuntimeViper(), settings)
		if err != nil {
			t.Fatalf("LoadRunConfig() error = %v", err)
		}
		if cfg.BlogID != "12345" {
			t.Errorf("BlogID = %q, want 12345", cfg.BlogID)
		}
		if string(cfg.ClientSecretJSON) != testClientSecret {
			t.Errorf("ClientSecretJSON = %s", cfg.ClientSecretJSON)
		}
		if cfg.EncodedToken != "encoded" {
			t.Errorf("EncodedToken = %q, want encoded", cfg.EncodedToken)
		}
		if cfg.Settings != settings {
			t.Error("settings not carried into run config")
		}
	})

	t.Run("client secret file fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client_secret.json")
		if err := os.WriteFile(path, []byte(testClientSecret), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("BLOG_ID", "1")
		t.Setenv("CLIENT_SECRET_JSON", "")

		v := newRuntimeViper()
		v.Set("client_secret_file", path)
		cfg, err := LoadRunConfig(v, settings)
		if err != nil {
			t.Fatalf("LoadRunConfig() error = %v", err)
		}
		if string(cfg.ClientSecretJSON) != testClientSecret {
			t.Errorf("ClientSecretJSON = %s", cfg.ClientSecretJSON)
		}
	})

	errorCases := []struct {
		name   string
		blogID string
		secret string
		key    string
	}{
		{"missing blog id", "", testClientSecret, "BLOG_ID"},
		{"missing client secret", "1", "", "CLIENT_SECRET_JSON"},
		{"invalid client secret", "1", "{not json", "CLIENT_SECRET_JSON"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BLOG_ID", tt.blogID)
			t.Setenv("CLIENT_SECRET_JSON", tt.secret)

			v := newRuntimeViper()
			v.Set("client_secret_file", filepath.Join(t.TempDir(), "missing.json"))
			_, err := LoadRunConfig(v, settings)

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Key != tt.key {
				t.Errorf("Key = %q, want %q", cfgErr.Key, tt.key)
			}
		})
	}
}
