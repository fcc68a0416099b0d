package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roxat-report/internal/storage"
)

func (s *Storage) SaveSession(ctx context.Context, sess storage.Session) error {
	const op = "storage.mysql.SaveSession"

	if sess.ID == "" {
		return fmt.Errorf("%s: пустой id сессии", op)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	var expiresAt sql.NullTime
	if s.ttl > 0 {
		expiresAt = sql.NullTime{Time: now.Add(s.ttl), Valid: true}
	}

	stmt := `
		INSERT INTO kv_sessions (id, payload, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), expires_at = VALUES(expires_at), updated_at = VALUES(updated_at)`

	if _, err := s.db.ExecContext(ctx, stmt, sess.ID, payload, expiresAt, now); err != nil {
		return fmt.Errorf("%s: ошибка сохранения сессии: %w", op, err)
	}

	return nil
}

func (s *Storage) GetSession(ctx context.Context, id string) (storage.Session, error) {
	const op = "storage.mysql.GetSession"

	stmt := `SELECT payload, expires_at FROM kv_sessions WHERE id = ?`

	var payload []byte
	var expiresAt sql.NullTime

	err := s.db.QueryRowContext(ctx, stmt, id).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Session{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
	}
	if err != nil {
		return storage.Session{}, fmt.Errorf("%s: ошибка чтения сессии: %w", op, err)
	}

	if expiresAt.Valid && !time.Now().UTC().Before(expiresAt.Time) {
		if err := s.DeleteSession(ctx, id); err != nil {
			return storage.Session{}, fmt.Errorf("%s: %w", op, err)
		}
		return storage.Session{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
	}

	var sess storage.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return storage.Session{}, fmt.Errorf("%s: битая запись сессии: %w", op, err)
	}

	return sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.mysql.DeleteSession"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: ошибка удаления сессии: %w", op, err)
	}

	return nil
}
