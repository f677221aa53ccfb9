package qdrant

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

type Config struct {
	// URL is the Qdrant gRPC address, e.g. "https://example.qdrant.io:6334".
	URL        string `split_words:"true"`
	APIKey     string `envconfig:"API_KEY"`
	Collection string `split_words:"true" default:"restaurants"`
}

func (c *Config) New() (*qdrant.Client, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	raw := c.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}

	port := 6334
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return client, nil
}
