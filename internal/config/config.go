// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config loads the bot's API credentials.
//
// Credentials are read from a YAML file:
//
//	api_key: ...
//	api_secret_key: ...
//	bearer_token: ...
//	access_token: ...
//	access_token_secret: ...
//
// Each key can be overridden by an environment variable with the RADECBOT_
// prefix, for example RADECBOT_ACCESS_TOKEN.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"go.astrophena.name/radecbot/internal/twitter"
)

// EnvPrefix prefixes environment variables that override the file.
const EnvPrefix = "RADECBOT_"

// Config holds the credentials of the bot account.
type Config struct {
	APIKey            string `yaml:"api_key" env:"API_KEY"`
	APISecretKey      string `yaml:"api_secret_key" env:"API_SECRET_KEY"`
	BearerToken       string `yaml:"bearer_token" env:"BEARER_TOKEN"`
	AccessToken       string `yaml:"access_token" env:"ACCESS_TOKEN"`
	AccessTokenSecret string `yaml:"access_token_secret" env:"ACCESS_TOKEN_SECRET"`
}

// ErrMissing is wrapped by the error Validate returns.
var ErrMissing = errors.New("missing credentials")

// DefaultPath returns $XDG_CONFIG_HOME/radecbot/config.yaml, or
// $HOME/.config/radecbot/config.yaml.
func DefaultPath(getenv func(string) string) string {
	dir := getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "radecbot", "config.yaml")
}

// Load reads the file at path and applies overrides from environ, a list of
// KEY=value pairs as returned by os.Environ. A missing file is not an error
// so that credentials can come from the environment alone.
func Load(path string, environ []string) (*Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		// Keys other than the credentials are ignored.
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	}); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}

// Validate reports every credential that posting needs but cfg lacks.
func (c *Config) Validate() error {
	var missing []string
	for _, f := range []struct {
		key, val string
	}{
		{"api_key", c.APIKey},
		{"api_secret_key", c.APISecretKey},
		{"access_token", c.AccessToken},
		{"access_token_secret", c.AccessTokenSecret},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Credentials converts c for the API client.
func (c *Config) Credentials() twitter.Credentials {
	return twitter.Credentials{
		APIKey:       c.APIKey,
		APISecret:    c.APISecretKey,
		BearerToken:  c.BearerToken,
		AccessToken:  c.AccessToken,
		AccessSecret: c.AccessTokenSecret,
	}
}
