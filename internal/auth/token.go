// Package auth obtains and caches API tokens for the fleet environments.
// Tokens are exchanged for client credentials at the token endpoint and
// cached both in memory and in a secure on-disk file keyed by client ID, so
// repeated runs do not hit the token endpoint while a token is still valid.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dispatchware/fleetsync/internal/transport"
	"github.com/dispatchware/fleetsync/pkg/constants"
	"github.com/dispatchware/fleetsync/pkg/errors"
	"github.com/dispatchware/fleetsync/pkg/logging"
)

// Credentials are the client credentials of one environment.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Encoded returns the base64 form used for Basic authentication at the
// token endpoint.
func (c Credentials) Encoded() string {
	return base64.StdEncoding.EncodeToString([]byte(c.ClientID + ":" + c.ClientSecret))
}

// Source exchanges client credentials for bearer tokens and caches them.
// It implements transport.TokenSource.
type Source struct {
	environment string
	tokenURL    string
	creds       Credentials
	cachePath   string
	http        *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithCachePath sets the on-disk token cache file. An empty path disables
// the disk cache.
func WithCachePath(path string) Option {
	return func(s *Source) {
		s.cachePath = path
	}
}

// WithHTTPClient replaces the HTTP client used for token requests.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Source) {
		s.http = h
	}
}

// NewSource creates a token source for one environment.
func NewSource(environment, tokenURL string, creds Credentials, opts ...Option) *Source {
	s := &Source{
		environment: environment,
		tokenURL:    tokenURL,
		creds:       creds,
		cachePath:   constants.TokenCacheFile,
		http:        &http.Client{Timeout: constants.TokenRequestTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ transport.TokenSource = (*Source)(nil)

// Token returns a valid token, fetching a new one when the cached token is
// missing or within the refresh buffer of its expiry.
func (s *Source) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiry) {
		return s.token, nil
	}

	s.loadCached()
	if s.token != "" && time.Now().Before(s.expiry) {
		return s.token, nil
	}

	if err := s.fetch(ctx); err != nil {
		return "", err
	}
	s.saveCached()

	return s.token, nil
}

// tokenResponse is the token endpoint's response body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// fetch exchanges the client credentials for a new token.
func (s *Source) fetch(ctx context.Context) error {
	if s.creds.ClientID == "" || s.creds.ClientSecret == "" {
		return &errors.AuthenticationError{
			Environment: s.environment,
			Method:      "client_credentials",
			Message:     "client ID and secret must be set",
			Err:         errors.ErrCredentialsRequired,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, nil)
	if err != nil {
		return errors.WrapResource("create", "request", "POST "+s.tokenURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	(&transport.BasicAuth{}).Apply(req, s.creds.Encoded())

	resp, err := s.http.Do(req)
	if err != nil {
		return &errors.AuthenticationError{
			Environment: s.environment,
			Method:      "client_credentials",
			Message:     "token endpoint unreachable",
			Err:         err,
		}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close token response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		cause := errors.ErrCredentialsInvalid
		if resp.StatusCode >= 500 {
			cause = errors.ErrEnvironmentUnavailable
		}
		return &errors.AuthenticationError{
			Environment: s.environment,
			Method:      "client_credentials",
			Message:     resp.Status,
			Err:         cause,
		}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return errors.WrapParse("json", "token response", err)
	}
	if tr.AccessToken == "" {
		return &errors.AuthenticationError{
			Environment: s.environment,
			Method:      "client_credentials",
			Message:     "token endpoint returned no access token",
		}
	}

	s.token = tr.AccessToken
	s.expiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - constants.TokenRefreshBuffer)

	logging.Debug().
		Str("environment", s.environment).
		Time("expiry", s.expiry).
		Msg("Fetched new API token")

	return nil
}

// cacheEntry is one client's token in the cache file.
type cacheEntry struct {
	Token  string `json:"token"`
	Expiry int64  `json:"token_expiry_time"` // Unix seconds
}

// loadCached loads a still-valid token for this client from the cache file.
// Cache problems are never fatal; a miss just means a token fetch.
func (s *Source) loadCached() {
	cache := s.readCacheFile()
	entry, ok := cache[s.creds.ClientID]
	if !ok {
		return
	}

	expiry := time.Unix(entry.Expiry, 0)
	if entry.Token == "" || !time.Now().Before(expiry) {
		return
	}

	s.token = entry.Token
	s.expiry = expiry
	logging.Debug().
		Str("environment", s.environment).
		Time("expiry", expiry).
		Msg("Loaded cached API token")
}

// saveCached writes the current token to the cache file alongside any other
// clients' entries.
func (s *Source) saveCached() {
	if s.cachePath == "" {
		return
	}

	cache := s.readCacheFile()
	cache[s.creds.ClientID] = cacheEntry{
		Token:  s.token,
		Expiry: s.expiry.Unix(),
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		logging.Warn().Err(err).Msg("Could not encode token cache")
		return
	}
	if err := os.WriteFile(s.cachePath, data, constants.SecureFilePermissions); err != nil {
		logging.Warn().Err(err).Str("path", s.cachePath).Msg("Could not write token cache")
	}
}

// readCacheFile loads the entire cache file, or an empty cache when the
// file is missing or unreadable.
func (s *Source) readCacheFile() map[string]cacheEntry {
	cache := make(map[string]cacheEntry)
	if s.cachePath == "" {
		return cache
	}

	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		logging.Debug().Err(err).Str("path", s.cachePath).Msg("Ignoring unreadable token cache")
		return make(map[string]cacheEntry)
	}
	return cache
}
