package get

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roxat-report/internal/middleware/auth"
	"roxat-report/internal/service/dashboard"
	"roxat-report/internal/service/report"
	"roxat-report/internal/storage"
	"roxat-report/internal/storage/remote"
)

// MockViewer реализует интерфейс Viewer для тестов
type MockViewer struct {
	mock.Mock
}

func (m *MockViewer) View(ctx context.Context, sess storage.Session) (dashboard.View, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).(dashboard.View), args.Error(1)
}

var sess = storage.Session{ID: "s1", Token: "jwt"}

func request(withSession bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	if withSession {
		req = req.WithContext(auth.WithSession(req.Context(), sess))
	}
	return req
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetDashboard_Success(t *testing.T) {
	viewer := new(MockViewer)
	viewer.On("View", mock.Anything, sess).Return(dashboard.View{
		Branch: "2",
		Loaded: true,
		Report: report.Report{Label: "Daily report • 17.10.2026", Category: "all", Categories: []string{"all"}},
	}, nil)

	rr := httptest.NewRecorder()
	GetDashboard(discard(), viewer).ServeHTTP(rr, request(true))

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, render.DecodeJSON(rr.Body, &body))
	assert.Equal(t, "2", body["branch"])
	assert.Equal(t, "Daily report • 17.10.2026", body["label"])
	assert.Equal(t, []any{"all"}, body["categories"])
	viewer.AssertExpectations(t)
}

func TestGetDashboard_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"order api down", &remote.TransportError{Op: "test", Status: 500, Err: errors.New("boom")}, http.StatusBadGateway},
		{"token rejected", &remote.TransportError{Op: "test", Status: 401, Err: remote.ErrUnauthorized}, http.StatusUnauthorized},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viewer := new(MockViewer)
			viewer.On("View", mock.Anything, sess).Return(dashboard.View{}, tt.err)

			rr := httptest.NewRecorder()
			GetDashboard(discard(), viewer).ServeHTTP(rr, request(true))

			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestGetDashboard_TokenRejectedRedirectsToLogin(t *testing.T) {
	viewer := new(MockViewer)
	viewer.On("View", mock.Anything, sess).Return(dashboard.View{}, remote.ErrUnauthorized)

	rr := httptest.NewRecorder()
	GetDashboard(discard(), viewer).ServeHTTP(rr, request(true))

	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var body auth.Expired
	require.NoError(t, render.DecodeJSON(rr.Body, &body))
	assert.Equal(t, "/login", body.Redirect)
}

func TestGetDashboard_NoSession(t *testing.T) {
	viewer := new(MockViewer)

	rr := httptest.NewRecorder()
	GetDashboard(discard(), viewer).ServeHTTP(rr, request(false))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	viewer.AssertNotCalled(t, "View", mock.Anything, mock.Anything)
}
