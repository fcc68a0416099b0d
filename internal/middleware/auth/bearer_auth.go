package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"roxat-report/internal/storage"
)

type SessionLookup interface {
	Lookup(ctx context.Context, id string) (storage.Session, error)
}

type ctxKey struct{}

// LoginPath is where the dashboard sends users whose session is gone.
const LoginPath = "/login"

// Expired is the body of every 401 answer.
type Expired struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// BearerAuth resolves "Authorization: Bearer <session id>" into the session stored in the
// request context.
func BearerAuth(log *slog.Logger, sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.BearerAuth"

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				RequireLogin(w, r)
				return
			}

			id := strings.TrimSpace(authHeader[len("Bearer "):])
			sess, err := sessions.Lookup(r.Context(), id)
			if err != nil {
				log.With(
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("error", err.Error()),
				).Debug("сессия не найдена")
				RequireLogin(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func WithSession(ctx context.Context, sess storage.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

func SessionFrom(ctx context.Context) (storage.Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(storage.Session)
	return sess, ok
}

// RequireLogin answers 401 and points the client at the login page.
func RequireLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="dashboard"`)
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, Expired{Error: "session expired", Redirect: LoginPath})
}
