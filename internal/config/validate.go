package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSource() error {
	if c.Source.PageSize > 1000 {
		return errors.New("source.page_size must be at most 1000")
	}
	if c.Source.BaseURL != "" && !strings.HasPrefix(c.Source.BaseURL, "http") {
		return fmt.Errorf("source.base_url %q must be an http(s) URL", c.Source.BaseURL)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.RetrievalFloor < 0 || c.Matching.RetrievalFloor >= 1 {
		return errors.New("matching.retrieval_floor must be in [0, 1)")
	}
	if c.Matching.MediumConfidenceFloor >= c.Matching.HighConfidenceFloor {
		return errors.New("matching.medium_confidence_floor must be below matching.high_confidence_floor")
	}
	for _, word := range c.Matching.IrrelevantWords {
		if strings.TrimSpace(word) == "" {
			return errors.New("matching.irrelevant_words must not contain blank entries")
		}
		if strings.ContainsAny(word, " \t") {
			return fmt.Errorf("matching.irrelevant_words entry %q must be a single token", word)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}
