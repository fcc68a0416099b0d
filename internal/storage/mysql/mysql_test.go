package mysql

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roxat-report/internal/storage"
)

var testStorage *Storage

func TestMain(m *testing.M) {
	// Подключаемся к тестовой БД, если она задана
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn != "" {
		var err error
		testStorage, err = New(dsn, time.Minute)
		if err != nil {
			panic(fmt.Errorf("не удалось подключиться к тестовой БД: %w", err))
		}

		// Проверяем подключение
		if err := testStorage.db.Ping(); err != nil {
			panic(fmt.Errorf("ping failed: %w", err))
		}

		if err := testStorage.EnsureSchema(context.Background()); err != nil {
			panic(err)
		}
	}

	// Запускаем все тесты
	code := m.Run()

	if testStorage != nil {
		_ = testStorage.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *Storage {
	t.Helper()
	if testStorage == nil {
		t.Skip("MYSQL_TEST_DSN не задан")
	}
	return testStorage
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New("not a dsn", time.Minute)
	assert.Error(t, err)
}

func TestStorage_SaveGetDelete(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	sess := storage.Session{ID: uuid.NewString(), Token: "jwt", User: []byte(`{"name":"Boss"}`)}
	require.NoError(t, s.SaveSession(ctx, sess))

	// повторное сохранение обновляет запись
	sess.Token = "jwt-2"
	require.NoError(t, s.SaveSession(ctx, sess))

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "jwt-2", got.Token)

	require.NoError(t, s.DeleteSession(ctx, sess.ID))
	_, err = s.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestStorage_Expired(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_sessions (id, payload, expires_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, `{"id":"`+id+`","token":"old"}`, time.Now().UTC().Add(-time.Minute), time.Now().UTC())
	require.NoError(t, err)

	_, err = s.GetSession(ctx, id)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}
