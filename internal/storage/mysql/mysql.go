package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

type Storage struct {
	db  *sql.DB
	ttl time.Duration
}

// New opens the session database. parseTime is forced on, the session table stores DATETIME
// columns that are scanned straight into time.Time.
func New(dsn string, ttl time.Duration) (*Storage, error) {
	const op = "storage.mysql.New"

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: некорректный dsn: %w", op, err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: sql.OpenDB(connector), ttl: ttl}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the session table when it does not exist yet.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	const op = "storage.mysql.EnsureSchema"

	stmt := `
		CREATE TABLE IF NOT EXISTS kv_sessions (
			id         VARCHAR(64)  NOT NULL PRIMARY KEY,
			payload    JSON         NOT NULL,
			expires_at DATETIME     NULL,
			updated_at DATETIME     NOT NULL
		)`

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: ошибка создания таблицы сессий: %w", op, err)
	}

	return nil
}
