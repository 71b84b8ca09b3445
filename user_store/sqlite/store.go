// Package sqlite keeps users in a SQLite database through the pure Go
// modernc driver, for single-node deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	userstore "github.com/w-h-a/brainvault/user_store"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"sqlite",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemSqlite),
	)
	if err != nil {
		detail := "failed to register sqlite user store with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

type sqliteStore struct {
	options userstore.Options
	conn    *sql.DB
}

func (s *sqliteStore) Create(ctx context.Context, email string, passwordHash string) (userstore.User, error) {
	now := time.Now().UTC()

	res, err := s.conn.ExecContext(
		ctx,
		`INSERT INTO users (email, hashed_password, created_at) VALUES (?, ?, ?)`,
		email,
		passwordHash,
		now.Format(time.RFC3339Nano),
	)

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return userstore.User{}, userstore.ErrDuplicate
	}
	if err != nil {
		return userstore.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return userstore.User{}, err
	}

	return userstore.User{
		Id:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (s *sqliteStore) GetByEmail(ctx context.Context, email string) (userstore.User, error) {
	var user userstore.User
	var createdAt string

	err := s.conn.QueryRowContext(
		ctx,
		`SELECT id, email, hashed_password, created_at FROM users WHERE email = ?`,
		email,
	).Scan(
		&user.Id,
		&user.Email,
		&user.PasswordHash,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return userstore.User{}, userstore.ErrNotFound
	}
	if err != nil {
		return userstore.User{}, err
	}

	user.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return user, nil
}

func (s *sqliteStore) Close() error {
	return s.conn.Close()
}

func (s *sqliteStore) configure(ctx context.Context) error {
	// email is compared byte for byte, matching the postgres store
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE COLLATE BINARY,
			hashed_password TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`

	_, err := s.conn.ExecContext(ctx, schema)

	return err
}

func NewStore(opts ...userstore.Option) userstore.UserStore {
	options := userstore.NewOptions(opts...)

	s := &sqliteStore{
		options: options,
	}

	location := options.Location
	if len(location) == 0 {
		location = ":memory:"
	}

	conn, err := sql.Open(DRIVER, location)
	if err != nil {
		detail := "failed to open sqlite user store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	// sqlite serialises writers, and a :memory: database lives only as long
	// as its single connection
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		detail := "failed to ping sqlite user store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	s.conn = conn

	if err := s.configure(context.Background()); err != nil {
		detail := "failed to configure schema for sqlite user store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	return s
}
