// Package postgres implements ports.Store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hbnb/marketplace/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for opening the connection pool.
type Config struct {
	DSN     string
	Timeout time.Duration
}

// Connect opens a pool, verifies it with a ping and returns a Store.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return NewStore(pool), nil
}

// Unique constraint names. Unique violations are mapped back to domain
// conflicts by these names.
const (
	constraintUniqueEmail        = "uniq_email"
	constraintUniqueUsername     = "uniq_username"
	constraintUniqueAmenityName  = "uniq_amenity_name"
	constraintUniqueLocation     = "uniq_location"
	constraintUniquePlaceAmenity = "uniq_place_amenity"
)

const uniqueViolation = "23505"

var conflicts = map[string]error{
	constraintUniqueEmail:        domain.ErrEmailTaken,
	constraintUniqueUsername:     domain.ErrUsernameTaken,
	constraintUniqueAmenityName:  domain.ErrAmenityExists,
	constraintUniqueLocation:     domain.ErrLocationTaken,
	constraintUniquePlaceAmenity: fmt.Errorf("%w: amenity linked twice to the same place", domain.ErrConflict),
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	first_name    VARCHAR(50)  NOT NULL,
	last_name     VARCHAR(50)  NOT NULL,
	email         VARCHAR(255) NOT NULL,
	username      VARCHAR(255) NOT NULL,
	password_hash TEXT         NOT NULL,
	role          TEXT         NOT NULL CHECK (role IN ('owner', 'traveler')),
	is_admin      BOOLEAN      NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ  NOT NULL,
	updated_at    TIMESTAMPTZ  NOT NULL,
	CONSTRAINT uniq_email UNIQUE (email),
	CONSTRAINT uniq_username UNIQUE (username)
);

CREATE TABLE IF NOT EXISTS amenities (
	id         TEXT PRIMARY KEY,
	name       VARCHAR(50) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT uniq_amenity_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS places (
	id           TEXT PRIMARY KEY,
	title        VARCHAR(100)     NOT NULL,
	description  TEXT             NOT NULL DEFAULT '',
	price        DOUBLE PRECISION NOT NULL CHECK (price > 0),
	latitude     DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
	longitude    DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
	location_key TEXT             NOT NULL,
	owner_id     TEXT             NOT NULL REFERENCES users (id),
	created_at   TIMESTAMPTZ      NOT NULL,
	updated_at   TIMESTAMPTZ      NOT NULL,
	CONSTRAINT uniq_location UNIQUE (location_key)
);
CREATE INDEX IF NOT EXISTS places_owner_id_idx ON places (owner_id);

CREATE TABLE IF NOT EXISTS place_amenities (
	place_id   TEXT NOT NULL REFERENCES places (id),
	amenity_id TEXT NOT NULL REFERENCES amenities (id),
	position   INT  NOT NULL,
	CONSTRAINT uniq_place_amenity UNIQUE (place_id, amenity_id)
);
CREATE INDEX IF NOT EXISTS place_amenities_amenity_id_idx ON place_amenities (amenity_id);

CREATE TABLE IF NOT EXISTS reviews (
	id         TEXT PRIMARY KEY,
	text       TEXT        NOT NULL,
	rating     INT         NOT NULL CHECK (rating BETWEEN 1 AND 5),
	user_id    TEXT        NOT NULL REFERENCES users (id),
	place_id   TEXT        NOT NULL REFERENCES places (id),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_place_id_idx ON reviews (place_id);
CREATE INDEX IF NOT EXISTS reviews_user_id_idx ON reviews (user_id);

CREATE TABLE IF NOT EXISTS audit_events (
	id         TEXT PRIMARY KEY,
	action     TEXT        NOT NULL,
	actor_id   TEXT        NOT NULL DEFAULT '',
	subject_id TEXT        NOT NULL,
	at         TIMESTAMPTZ NOT NULL,
	details    JSONB
);
CREATE INDEX IF NOT EXISTS audit_events_subject_id_idx ON audit_events (subject_id);
`

// Migrate creates the tables, constraints and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// mapErr translates driver errors: unique violations become the matching
// domain conflict, anything else is wrapped with op.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if conflict, ok := conflicts[pgErr.ConstraintName]; ok {
			return conflict
		}
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// notFound returns missing when err reports no rows, else mapErr(op, err).
func notFound(op string, err error, missing error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return missing
	}
	return mapErr(op, err)
}
