package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kkkatsube/picc/internal/entities"
)

// ErrEmailTaken is returned on registration with an already-used email.
var ErrEmailTaken = errors.New("email already taken")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Storage) CreateUser(ctx context.Context, name, email, passwordHash string) (entities.User, error) {
	var u entities.User
	err := s.dbpool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, email, password_hash, created_at, updated_at`,
		name, email, passwordHash,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedTimestamp, &u.UpdatedTimestamp)
	if isUniqueViolation(err) {
		return entities.User{}, ErrEmailTaken
	}
	return u, err
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (entities.User, error) {
	var u entities.User
	err := s.dbpool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedTimestamp, &u.UpdatedTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.User{}, ErrNotFound
	}
	return u, err
}

func (s *Storage) GetUser(ctx context.Context, id int64) (entities.User, error) {
	var u entities.User
	err := s.dbpool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedTimestamp, &u.UpdatedTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.User{}, ErrNotFound
	}
	return u, err
}
