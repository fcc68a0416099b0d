package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roxat-report/internal/storage"
	"roxat-report/internal/storage/memory"
	"roxat-report/internal/storage/remote"
)

// MockAuthenticator реализует интерфейс Authenticator для тестов
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (string, json.RawMessage, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(json.RawMessage), args.Error(2)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestLogin_Success(t *testing.T) {
	auth := new(MockAuthenticator)
	store := memory.New(0)
	svc := New(discardLogger(), store, auth)

	auth.On("Login", mock.Anything, "boss@roxat.uz", "secret").
		Return("jwt-token", json.RawMessage(`{"name":"Boss"}`), nil)

	sess, err := svc.Login(context.Background(), Credentials{Email: " boss@roxat.uz ", Password: "secret"})
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "jwt-token", sess.Token)
	assert.JSONEq(t, `{"name":"Boss"}`, string(sess.User))

	stored, err := store.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, stored)

	auth.AssertExpectations(t)
}

func TestLogin_Validation(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  map[string]string
	}{
		{
			name:  "both empty",
			creds: Credentials{},
			want: map[string]string{
				"email":    "Please enter your email",
				"password": "Please enter your password",
			},
		},
		{
			name:  "bad email",
			creds: Credentials{Email: "boss", Password: "x"},
			want:  map[string]string{"email": "Please enter a valid email address"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(MockAuthenticator)
			svc := New(discardLogger(), memory.New(0), auth)

			_, err := svc.Login(context.Background(), tt.creds)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr.Fields)
			auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLogin_Rejected(t *testing.T) {
	auth := new(MockAuthenticator)
	svc := New(discardLogger(), memory.New(0), auth)

	auth.On("Login", mock.Anything, "boss@roxat.uz", "wrong").
		Return("", nil, &remote.LoginError{Status: 401, Message: "Wrong password"})

	_, err := svc.Login(context.Background(), Credentials{Email: "boss@roxat.uz", Password: "wrong"})

	var le *remote.LoginError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "Wrong password", le.Message)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	svc := New(discardLogger(), store, new(MockAuthenticator))
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }

	live := storage.Session{ID: "live", Token: signedToken(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))}
	expired := storage.Session{ID: "expired", Token: signedToken(t, time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC))}
	opaque := storage.Session{ID: "opaque", Token: "not-a-jwt"}
	for _, s := range []storage.Session{live, expired, opaque} {
		require.NoError(t, store.SaveSession(ctx, s))
	}

	got, err := svc.Lookup(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, live.Token, got.Token)

	_, err = svc.Lookup(ctx, "opaque")
	assert.NoError(t, err)

	_, err = svc.Lookup(ctx, "expired")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetSession(ctx, "expired")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound, "просроченная сессия должна удаляться")

	_, err = svc.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Lookup(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogoutAndReject(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	svc := New(discardLogger(), store, new(MockAuthenticator))

	require.NoError(t, store.SaveSession(ctx, storage.Session{ID: "a", Token: "t"}))
	require.NoError(t, store.SaveSession(ctx, storage.Session{ID: "b", Token: "t"}))

	require.NoError(t, svc.Logout(ctx, "a"))
	svc.Reject(ctx, "b")

	_, err := svc.Lookup(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Lookup(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_ReportsGoneSessions(t *testing.T) {
	ctx := context.Background()
	store := memory.New(time.Millisecond)
	svc := New(discardLogger(), store, new(MockAuthenticator))
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }

	var gone []string
	svc.OnGone(func(id string) { gone = append(gone, id) })

	require.NoError(t, store.SaveSession(ctx, storage.Session{ID: "ttl", Token: "opaque"}))
	time.Sleep(10 * time.Millisecond)

	_, err := svc.Lookup(ctx, "ttl")
	assert.ErrorIs(t, err, ErrNotFound)

	live := memory.New(0)
	svc = New(discardLogger(), live, new(MockAuthenticator))
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	svc.OnGone(func(id string) { gone = append(gone, id) })

	require.NoError(t, live.SaveSession(ctx, storage.Session{ID: "jwt", Token: signedToken(t, time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC))}))
	require.NoError(t, live.SaveSession(ctx, storage.Session{ID: "ok", Token: "opaque"}))

	_, err = svc.Lookup(ctx, "jwt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Lookup(ctx, "ok")
	require.NoError(t, err)

	assert.Equal(t, []string{"ttl", "jwt"}, gone)
}
