package errx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to the unified Error type with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(fmt.Errorf("%w: %w", ErrNotFound, err), http.StatusNotFound, NotFoundMessage)
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}

// WrapPostgres maps pgx errors, turning pgx.ErrNoRows into a not-found.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return New(fmt.Errorf("%w: %w", ErrNotFound, err), http.StatusNotFound, NotFoundMessage)
	}
	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}

// WrapQdrant wraps restaurant index transport failures.
func WrapQdrant(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, QdrantErrorMessage)
}

// WrapSupabase wraps PostgREST failures from the hosted detail store.
func WrapSupabase(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, SupabaseErrorMessage)
}

// WrapMail wraps notification dispatch failures.
func WrapMail(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, MailErrorMessage)
}
