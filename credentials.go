package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	blogger "google.golang.org/api/blogger/v3"
)

// FileTokenStore keeps the encoded token in a local file between runs
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a token store backed by path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load returns the stored encoded token, or "" when none has been saved
func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading token cache %s: %w", s.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the encoded token, readable only by the current user
func (s *FileTokenStore) Save(encoded string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating token cache directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(encoded+"\n"), 0600); err != nil {
		return fmt.Errorf("writing token cache %s: %w", s.path, err)
	}
	return nil
}

// EncodeToken serializes a token for storage in an environment variable or file
func EncodeToken(token *oauth2.Token) (string, error) {
	data, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("marshaling token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeToken reverses EncodeToken
func DecodeToken(encoded string) (*oauth2.Token, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token JSON: %w", err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, errors.New("token has neither access nor refresh token")
	}
	return &token, nil
}

// CredentialProvider obtains a Blogger access token, reusing or refreshing a
// stored one when possible and falling back to browser consent otherwise.
type CredentialProvider struct {
	oauthConfig     *oauth2.Config
	envToken        string
	cache           *FileTokenStore
	printer         *Printer
	callbackTimeout time.Duration

	// openURL is called with the consent URL once the callback listener is up
	openURL func(authURL string) error
}

// NewCredentialProvider builds a provider from the run configuration
func NewCredentialProvider(cfg *RunConfig, printer *Printer) (*CredentialProvider, error) {
	oauthConfig, err := google.ConfigFromJSON(cfg.ClientSecretJSON, blogger.BloggerScope)
	if err != nil {
		return nil, &ConfigurationError{Key: "CLIENT_SECRET_JSON", Err: err}
	}

	return &CredentialProvider{
		oauthConfig:     oauthConfig,
		envToken:        cfg.EncodedToken,
		cache:           NewFileTokenStore(cfg.Settings.TokenCachePath),
		printer:         printer,
		callbackTimeout: cfg.Settings.OAuth.CallbackTimeout,
	}, nil
}

// Obtain returns a valid token. A stored valid token is returned as is, an
// expired one with a refresh token is refreshed, anything else goes through
// interactive authorization. New tokens are persisted and printed for the
// operator to store out-of-band.
func (p *CredentialProvider) Obtain(ctx context.Context) (*oauth2.Token, error) {
	token := p.loadStored()

	if token != nil && token.Valid() {
		log.Printf("✓ Loaded stored token")
		return token, nil
	}

	if token != nil && token.RefreshToken != "" {
		log.Printf("→ Refreshing token...")
		refreshed, err := p.oauthConfig.TokenSource(ctx, token).Token()
		if err == nil {
			p.persist(refreshed)
			return refreshed, nil
		}
		log.Printf("✗ Token refresh failed, falling back to authorization: %v", err)
	}

	log.Printf("→ No usable token, starting browser authorization...")
	token, err := p.authorize(ctx)
	if err != nil {
		return nil, &AuthError{Op: "authorize", Err: err}
	}

	p.persist(token)
	return token, nil
}

// TokenSource returns a refreshing token source seeded with token
func (p *CredentialProvider) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return p.oauthConfig.TokenSource(ctx, token)
}

// loadStored prefers the environment token over the local cache. Anything
// that fails to decode counts as no token.
func (p *CredentialProvider) loadStored() *oauth2.Token {
	if p.envToken != "" {
		token, err := DecodeToken(p.envToken)
		if err == nil {
			debugLog("Loaded token from BLOGGER_TOKEN")
			return token
		}
		log.Printf("Warning: failed to load token from BLOGGER_TOKEN: %v", err)
	}

	encoded, err := p.cache.Load()
	if err != nil {
		log.Printf("Warning: %v", err)
		return nil
	}
	if encoded == "" {
		return nil
	}

	token, err := DecodeToken(encoded)
	if err != nil {
		log.Printf("Warning: failed to load token from %s: %v", p.cache.path, err)
		return nil
	}
	debugLog("Loaded token from %s", p.cache.path)
	return token
}

func (p *CredentialProvider) persist(token *oauth2.Token) {
	encoded, err := EncodeToken(token)
	if err != nil {
		log.Printf("✗ Failed to encode token: %v", err)
		return
	}

	if err := p.cache.Save(encoded); err != nil {
		log.Printf("✗ Failed to cache token: %v", err)
	}

	p.printer.TokenHandoff(encoded)
}

type callbackResult struct {
	code string
	err  error
}

// authorize runs the authorization-code flow against a loopback listener.
// The operator has to open the printed URL and grant access.
func (p *CredentialProvider) authorize(ctx context.Context) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}

	cfg := *p.oauthConfig
	cfg.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state, err := randomState()
	if err != nil {
		listener.Close()
		return nil, err
	}

	results := make(chan callbackResult, 1)
	server := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go server.Serve(listener)
	defer server.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	p.printer.Info("Open the following URL in your browser to authorize access:\n\n%s\n", authURL)
	if p.openURL != nil {
		if err := p.openURL(authURL); err != nil {
			log.Printf("Warning: could not open browser: %v", err)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.callbackTimeout)
	defer cancel()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		token, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("exchanging authorization code: %w", err)
		}
		log.Printf("✓ Authorization completed")
		return token, nil
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for authorization callback: %w", waitCtx.Err())
	}
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()

		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("state parameter mismatch")
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("callback carried no authorization code")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}

		select {
		case results <- res:
		default:
		}
	})
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
