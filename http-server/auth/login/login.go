package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	resp "roxat-report/http-server/response"
	"roxat-report/internal/service/session"
	"roxat-report/internal/storage"
	"roxat-report/internal/storage/remote"
)

type SessionOpener interface {
	Login(ctx context.Context, creds session.Credentials) (storage.Session, error)
}

type Response struct {
	resp.Response
	Token string          `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}

func Login(log *slog.Logger, sessions SessionOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Login"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var creds session.Credentials
		if err := render.DecodeJSON(r.Body, &creds); err != nil {
			log.Error("failed to decode request body", slog.String("error", err.Error()))
			resp.JSON(w, r, http.StatusBadRequest, resp.Error("invalid request body"))
			return
		}

		sess, err := sessions.Login(r.Context(), creds)
		if err != nil {
			var verr *session.ValidationError
			var lerr *remote.LoginError
			var terr *remote.TransportError

			switch {
			case errors.As(err, &verr):
				resp.JSON(w, r, http.StatusBadRequest, resp.Response{Status: resp.StatusError, Error: "validation failed", Fields: verr.Fields})
			case errors.As(err, &lerr):
				log.Info("login rejected", slog.String("email", creds.Email), slog.Int("status", lerr.Status))
				status := http.StatusUnauthorized
				if lerr.Status >= http.StatusInternalServerError {
					status = http.StatusBadGateway
				}
				resp.JSON(w, r, status, resp.Error(lerr.Message))
			case errors.As(err, &terr):
				log.Error("order api unavailable", slog.String("error", err.Error()))
				resp.JSON(w, r, http.StatusBadGateway, resp.Error(remote.DefaultLoginMessage))
			default:
				log.Error("failed to open session", slog.String("error", err.Error()))
				resp.JSON(w, r, http.StatusInternalServerError, resp.Error("internal error"))
			}
			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Token:    sess.ID,
			User:     sess.User,
		})
	}
}
