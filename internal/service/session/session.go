package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"roxat-report/internal/storage"
)

// ErrNotFound is returned for unknown, expired or rejected sessions.
var ErrNotFound = storage.ErrSessionNotFound

type SessionStore interface {
	SaveSession(ctx context.Context, sess storage.Session) error
	GetSession(ctx context.Context, id string) (storage.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, json.RawMessage, error)
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ValidationError maps a field name to the message shown next to it.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var fieldMessages = map[string]string{
	"email_required":    "Please enter your email",
	"email_email":       "Please enter a valid email address",
	"password_required": "Please enter your password",
}

type Service struct {
	log      *slog.Logger
	store    SessionStore
	auth     Authenticator
	validate *validator.Validate
	now      func() time.Time
	onGone   []func(id string)
}

func New(log *slog.Logger, store SessionStore, auth Authenticator) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		log:      log,
		store:    store,
		auth:     auth,
		validate: v,
		now:      time.Now,
	}
}

// OnGone registers fn to run when Lookup finds that a session no longer exists, whether its
// store entry expired or its token did. Register hooks before serving requests.
func (s *Service) OnGone(fn func(id string)) {
	s.onGone = append(s.onGone, fn)
}

func (s *Service) gone(id string) {
	for _, fn := range s.onGone {
		fn(id)
	}
}

// Login checks the credentials against the order API and opens a session for the token it
// returns. Errors from the API (*remote.LoginError, *remote.TransportError) pass through.
func (s *Service) Login(ctx context.Context, creds Credentials) (storage.Session, error) {
	const op = "service.session.Login"

	creds.Email = strings.TrimSpace(creds.Email)

	if err := s.validate.Struct(creds); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return storage.Session{}, fmt.Errorf("%s: %w", op, err)
		}

		fields := make(map[string]string, len(verrs))
		for _, e := range verrs {
			msg, ok := fieldMessages[e.Field()+"_"+e.Tag()]
			if !ok {
				msg = e.Error()
			}
			if _, seen := fields[e.Field()]; !seen {
				fields[e.Field()] = msg
			}
		}
		return storage.Session{}, &ValidationError{Fields: fields}
	}

	token, user, err := s.auth.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return storage.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	sess := storage.Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return storage.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("сессия открыта", slog.String("op", op), slog.String("session", sess.ID))

	return sess, nil
}

// Lookup returns a live session. A token whose exp claim has passed counts as absent and the
// session is dropped on the spot.
func (s *Service) Lookup(ctx context.Context, id string) (storage.Session, error) {
	const op = "service.session.Lookup"

	if id == "" {
		return storage.Session{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.gone(id)
		}
		return storage.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if tokenExpired(sess.Token, s.now()) {
		if err := s.store.DeleteSession(ctx, id); err != nil {
			s.log.Error("не удалось удалить просроченную сессию", slog.String("op", op), slog.String("error", err.Error()))
		}
		s.gone(id)
		return storage.Session{}, fmt.Errorf("%s: токен истек: %w", op, ErrNotFound)
	}

	return sess, nil
}

func (s *Service) Logout(ctx context.Context, id string) error {
	const op = "service.session.Logout"

	if err := s.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Reject drops a session whose token the order API refused.
func (s *Service) Reject(ctx context.Context, id string) {
	const op = "service.session.Reject"

	s.log.Warn("order api отклонил токен, сессия закрыта", slog.String("op", op), slog.String("session", id))

	if err := s.store.DeleteSession(ctx, id); err != nil {
		s.log.Error("ошибка удаления сессии", slog.String("op", op), slog.String("error", err.Error()))
	}
}

// tokenExpired looks at the exp claim without verifying the signature; the order API is the
// one that verifies. Tokens that are not JWTs never expire here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return !now.Before(exp.Time)
}
