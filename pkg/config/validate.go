package config

import (
	"net/url"
	"strings"

	"github.com/matzehuels/libmirror/pkg/errors"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRepository(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if c.Cache.IndexTTLMinutes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.index_ttl_minutes must not be negative")
	}
	if c.Catalog.MongoURI != "" && c.Catalog.MongoDatabase == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "catalog.mongo_database is required with catalog.mongo_uri")
	}
	return nil
}

func (c *Config) validateRepository() error {
	u, err := url.Parse(c.Repository.BaseURL)
	if err != nil || c.Repository.BaseURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "repository.base_url %q is not a valid URL", c.Repository.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrCodeInvalidConfig, "repository.base_url must use http or https")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Destination == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output.destination must be set")
	}
	if err := errors.ValidateSegment("output.library_dir", c.Output.LibraryDir); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid output.library_dir")
	}
	if err := errors.ValidateSegment("output.descriptor_name", c.Output.DescriptorName); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid output.descriptor_name")
	}
	if strings.TrimSpace(c.Output.Category) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output.category must be set")
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "http.timeout_seconds must be positive")
	}
	if c.HTTP.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "http.retries must be at least 1")
	}
	if c.HTTP.RetryDelayMillis < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "http.retry_delay_millis must not be negative")
	}
	return nil
}
