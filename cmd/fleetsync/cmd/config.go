package cmd

import (
	"github.com/spf13/viper"

	"github.com/dispatchware/fleetsync/internal/auth"
	"github.com/dispatchware/fleetsync/internal/qargo"
	"github.com/dispatchware/fleetsync/pkg/errors"
)

// DefaultTokenURL is the production token endpoint.
const DefaultTokenURL = "https://api.qargo.com/v1/auth/token"

// Environment holds the connection settings for one fleet API environment.
type Environment struct {
	Name        string
	BaseURL     string
	TokenURL    string
	Credentials auth.Credentials
}

// Config holds everything a sync run needs to reach both environments.
type Config struct {
	Local  Environment
	Master Environment
}

// loadConfig builds the run configuration from viper (env vars, .env files
// and the optional config file). Missing credentials are a fatal
// precondition: the run must not start without them.
func loadConfig() (*Config, error) {
	cfg := &Config{
		Local: Environment{
			Name:    "local",
			BaseURL: getOrDefault("API_URL", qargo.DefaultBaseURL),
			Credentials: auth.Credentials{
				ClientID:     viper.GetString("CLIENT_ID"),
				ClientSecret: viper.GetString("CLIENT_SECRET"),
			},
		},
		Master: Environment{
			Name:    "master",
			BaseURL: getOrDefault("MASTER_DATA_API_URL", getOrDefault("API_URL", qargo.DefaultBaseURL)),
			Credentials: auth.Credentials{
				ClientID:     viper.GetString("MASTER_DATA_CLIENT_ID"),
				ClientSecret: viper.GetString("MASTER_DATA_CLIENT_SECRET"),
			},
		},
	}

	tokenURL := getOrDefault("AUTH_URL", DefaultTokenURL)
	cfg.Local.TokenURL = tokenURL
	cfg.Master.TokenURL = tokenURL

	for _, env := range []Environment{cfg.Local, cfg.Master} {
		if env.Credentials.ClientID == "" || env.Credentials.ClientSecret == "" {
			return nil, errors.NewConfigError(env.Name,
				"CLIENT_ID, CLIENT_SECRET, MASTER_DATA_CLIENT_ID and MASTER_DATA_CLIENT_SECRET must be set",
				errors.ErrCredentialsRequired)
		}
	}

	return cfg, nil
}

// client builds the API client for an environment, wiring its token source.
func (e Environment) client() *qargo.Client {
	tokens := auth.NewSource(e.Name, e.TokenURL, e.Credentials)
	return qargo.NewClient(e.Name, tokens, qargo.WithBaseURL(e.BaseURL))
}

// getOrDefault returns a viper string or a default when unset.
func getOrDefault(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}
