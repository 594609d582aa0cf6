package main

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDir      = ".blog-publisher"
	defaultVerifyLimit    = 5
	defaultClientSecret   = "client_secret.json"
	defaultCallbackWindow = 5 * time.Minute
)

// Embedded default settings, written to .blog-publisher/settings.yaml on first run
//
//go:embed config/settings.yaml
var defaultSettings string

// PlaceholderSettings configures the connectivity post published when no articles are found
type PlaceholderSettings struct {
	Labels []string `yaml:"labels"`
}

// OAuthSettings configures the interactive authorization flow
type OAuthSettings struct {
	CallbackTimeout time.Duration `yaml:"callback_timeout"`
}

// Settings represents the YAML configuration structure
type Settings struct {
	PostsDirectory   string              `yaml:"posts_directory"`
	ArchiveDirectory string              `yaml:"archive_directory"`
	TokenCachePath   string              `yaml:"token_cache_path"`
	Extensions       []string            `yaml:"extensions"`
	Labels           []string            `yaml:"labels"`
	Draft            bool                `yaml:"draft"`
	ContentFormat    string              `yaml:"content_format"`
	TitleHeading     bool                `yaml:"title_heading"`
	VerifyLimit      int64               `yaml:"verify_limit"`
	Placeholder      PlaceholderSettings `yaml:"placeholder"`
	OAuth            OAuthSettings       `yaml:"oauth"`
}

// RunConfig carries everything a publishing run needs, so nothing is read from
// the environment after startup.
type RunConfig struct {
	BlogID           string
	ClientSecretJSON []byte
	EncodedToken     string
	Settings         *Settings
}

// getConfigPath returns the path to a config file in .blog-publisher directory
func getConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// ensureConfigExists creates the config directory and writes settings.yaml if needed
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	settingsFile := getConfigPath("settings.yaml")
	if _, err := os.Stat(settingsFile); os.IsNotExist(err) {
		if err := os.WriteFile(settingsFile, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("writing settings.yaml: %w", err)
		}
	}

	return nil
}

// LoadSettings loads settings from path. A missing file falls back to the
// embedded defaults unless required is set.
func LoadSettings(path string, required bool) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return parseSettings(nil)
		}
		return nil, &ConfigurationError{Key: "settings", Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	settings, err := parseSettings(data)
	if err != nil {
		return nil, &ConfigurationError{Key: "settings", Err: fmt.Errorf("parsing %s: %w", path, err)}
	}
	return settings, nil
}

// parseSettings overlays data on top of the embedded defaults, so keys the
// user leaves out keep their default value.
func parseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal([]byte(defaultSettings), &settings); err != nil {
		return nil, fmt.Errorf("parsing embedded settings: %w", err)
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, err
		}
	}

	if err := settings.normalize(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) normalize() error {
	if s.PostsDirectory == "" {
		return errors.New("posts_directory must not be empty")
	}
	if s.ArchiveDirectory == "" {
		return errors.New("archive_directory must not be empty")
	}
	if filepath.Clean(s.PostsDirectory) == filepath.Clean(s.ArchiveDirectory) {
		return fmt.Errorf("archive_directory must differ from posts_directory (%s)", s.PostsDirectory)
	}

	switch s.ContentFormat {
	case "":
		s.ContentFormat = ContentFormatBreaks
	case ContentFormatBreaks, ContentFormatMarkdown:
	default:
		return fmt.Errorf("unknown content_format %q: must be %s or %s", s.ContentFormat, ContentFormatBreaks, ContentFormatMarkdown)
	}

	if s.VerifyLimit <= 0 {
		log.Printf("Warning: verify_limit is %d, defaulting to %d", s.VerifyLimit, defaultVerifyLimit)
		s.VerifyLimit = defaultVerifyLimit
	}
	if s.OAuth.CallbackTimeout <= 0 {
		s.OAuth.CallbackTimeout = defaultCallbackWindow
	}
	if s.TokenCachePath == "" {
		s.TokenCachePath = getConfigPath("token")
	}

	exts := make([]string, 0, len(s.Extensions))
	for _, ext := range s.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return errors.New("extensions must list at least one article extension")
	}
	s.Extensions = exts

	return nil
}

// newRuntimeViper binds the runtime inputs to their environment variables.
// Command flags are bound on top by the root command.
func newRuntimeViper() *viper.Viper {
	v := viper.New()
	_ = v.BindEnv("blog_id", "BLOG_ID")
	_ = v.BindEnv("client_secret_json", "CLIENT_SECRET_JSON")
	_ = v.BindEnv("token", "BLOGGER_TOKEN")
	v.SetDefault("client_secret_file", defaultClientSecret)
	return v
}

// LoadRunConfig resolves the blog identifier, the application credentials and
// the optional pre-obtained token. Missing required inputs are reported as
// ConfigurationError.
func LoadRunConfig(v *viper.Viper, settings *Settings) (*RunConfig, error) {
	blogID := strings.TrimSpace(v.GetString("blog_id"))
	if blogID == "" {
		return nil, &ConfigurationError{Key: "BLOG_ID", Err: errors.New("not set: use --blog-id or the BLOG_ID environment variable")}
	}

	secret, err := loadClientSecret(v)
	if err != nil {
		return nil, err
	}

	return &RunConfig{
		BlogID:           blogID,
		ClientSecretJSON: secret,
		EncodedToken:     strings.TrimSpace(v.GetString("token")),
		Settings:         settings,
	}, nil
}

// loadClientSecret reads the application credentials from CLIENT_SECRET_JSON,
// falling back to the client secret file.
func loadClientSecret(v *viper.Viper) ([]byte, error) {
	secret := []byte(strings.TrimSpace(v.GetString("client_secret_json")))

	if len(secret) == 0 {
		path := v.GetString("client_secret_file")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &ConfigurationError{Key: "CLIENT_SECRET_JSON", Err: fmt.Errorf("not set and %s does not exist", path)}
			}
			return nil, &ConfigurationError{Key: "CLIENT_SECRET_JSON", Err: fmt.Errorf("reading %s: %w", path, err)}
		}
		secret = data
	}

	if !json.Valid(secret) {
		return nil, &ConfigurationError{Key: "CLIENT_SECRET_JSON", Err: errors.New("value is not valid JSON")}
	}

	return secret, nil
}
