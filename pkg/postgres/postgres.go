package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	URL             string `envconfig:"URL"`
	MaxConns        int32  `split_words:"true" default:"8"`
	ConnectTimeout  int    `split_words:"true" default:"5"`
	MaxConnIdleTime int    `split_words:"true" default:"300"`
}

// Configured reports whether a database URL was supplied.
func (c *Config) Configured() bool {
	return strings.TrimSpace(c.URL) != ""
}

func (c *Config) New(ctx context.Context) (*pgxpool.Pool, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("postgres: DATABASE_URL is required")
	}
	pcfg, err := pgxpool.ParseConfig(strings.TrimSpace(c.URL))
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if c.MaxConns > 0 {
		pcfg.MaxConns = c.MaxConns
	}
	if c.MaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = time.Duration(c.MaxConnIdleTime) * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, time.Duration(c.ConnectTimeout)*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
