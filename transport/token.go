// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transport

import (
	"os"
	"path/filepath"
	"strings"
)

// tokenEnvVars lists the environment variables consulted for an API token,
// in order.
var tokenEnvVars = []string{"ADS_API_TOKEN", "ADS_DEV_KEY"}

// tokenFiles lists the files consulted after the environment, relative to
// the user's home directory. File contents are trimmed of whitespace.
var tokenFiles = []string{
	filepath.Join(".ads", "token"),
	filepath.Join(".ads", "dev_key"),
}

// discoverToken resolves an API token: environment variables first, then
// token files, then the explicit configuration value. A missing token is not
// an error here; it returns the empty string and the first request fails
// with ErrNoToken.
func (c *Client) discoverToken() string {
	for _, name := range tokenEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			c.log.Debug().Str("source", name).Msg("token resolved from environment")
			return v
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		for _, rel := range tokenFiles {
			path := filepath.Join(home, rel)
			data, err := os.ReadFile(path)
			if err != nil {
				if !os.IsNotExist(err) {
					c.log.Warn().Err(err).Str("path", path).Msg("could not read token file")
				}
				continue
			}
			if v := strings.TrimSpace(string(data)); v != "" {
				c.log.Debug().Str("source", path).Msg("token resolved from file")
				return v
			}
		}
	}

	if v := strings.TrimSpace(c.cfg.Token); v != "" {
		return v
	}

	c.log.Warn().Msg("no ADS API token found; requests will fail until one is configured")
	return ""
}
