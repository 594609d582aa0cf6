package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

var (
	settingsPath     string
	blogID           string
	clientSecretFile string
	encodedToken     string
	publishLive      bool
	debugMode        bool
)

var runtimeConfig = newRuntimeViper()

var rootCmd = &cobra.Command{
	Use:   "blogger-publisher",
	Short: "Publish local Markdown articles to a Blogger blog",
	Long: `Reads article files from the posts directory, publishes each one to Blogger
and moves published files to the archive directory.

Required environment:
  BLOG_ID              target blog identifier
  CLIENT_SECRET_JSON   OAuth client secrets (or --client-secret-file)
Optional:
  BLOGGER_TOKEN        encoded token printed by a previous authorization`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if debugMode {
			SetDebugMode(true)
		}

		settings, err := loadRunSettings()
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}

		cfg, err := LoadRunConfig(runtimeConfig, settings)
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}

		printer := NewPrinter(os.Stdout, ResolveColors())
		printer.Banner(cfg.BlogID, time.Now().Format("2006-01-02 15:04:05"))

		provider, err := NewCredentialProvider(cfg, printer)
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}

		processor, err := NewPostProcessor(settings, provider, bloggerPublisherFactory(cfg.BlogID, provider), printer)
		if err != nil {
			log.Fatalf("Failed to create processor: %v", err)
		}
		if publishLive {
			processor.SetDraft(false)
		}

		if _, err := processor.Run(context.Background()); err != nil {
			log.Fatalf("Publishing failed: %v", err)
		}
	},
}

// loadRunSettings loads the --settings file, which must exist, or the default
// settings file, which is created on first run.
func loadRunSettings() (*Settings, error) {
	if settingsPath != "" {
		return LoadSettings(settingsPath, true)
	}
	if err := ensureConfigExists(); err != nil {
		return nil, err
	}
	return LoadSettings(getConfigPath("settings.yaml"), false)
}

func bloggerPublisherFactory(blogID string, provider *CredentialProvider) PublisherFactory {
	return func(ctx context.Context, token *oauth2.Token) (Publisher, error) {
		return NewBloggerPublisher(ctx, blogID, option.WithTokenSource(provider.TokenSource(ctx, token)))
	}
}

func init() {
	rootCmd.Flags().StringVar(&settingsPath, "settings", "", "Path to settings file (default .blog-publisher/settings.yaml)")
	rootCmd.Flags().StringVar(&blogID, "blog-id", "", "Blogger blog ID (overrides BLOG_ID)")
	rootCmd.Flags().StringVar(&clientSecretFile, "client-secret-file", defaultClientSecret, "OAuth client secrets file, used when CLIENT_SECRET_JSON is unset")
	rootCmd.Flags().StringVar(&encodedToken, "token", "", "Encoded token (overrides BLOGGER_TOKEN)")
	rootCmd.Flags().BoolVar(&publishLive, "publish", false, "Publish posts live instead of as drafts")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	_ = runtimeConfig.BindPFlag("blog_id", rootCmd.Flags().Lookup("blog-id"))
	_ = runtimeConfig.BindPFlag("client_secret_file", rootCmd.Flags().Lookup("client-secret-file"))
	_ = runtimeConfig.BindPFlag("token", rootCmd.Flags().Lookup("token"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
