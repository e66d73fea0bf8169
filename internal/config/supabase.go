package config

import (
	"fmt"
	"net/url"
)

// SupabaseConfig points at the identity provider used for login.
type SupabaseConfig struct {
	URL     string
	AnonKey string
}

// ValidateConfig checks that the provider can be reached at all.
func (c *SupabaseConfig) ValidateConfig() error {
	if c.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SUPABASE_URL must be an absolute URL, got %q", c.URL)
	}
	return nil
}

// Configured reports whether login is possible.
func (c *SupabaseConfig) Configured() bool {
	return c.ValidateConfig() == nil
}
