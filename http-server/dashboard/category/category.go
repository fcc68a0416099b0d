package category

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	resp "roxat-report/http-server/response"
	"roxat-report/internal/constants"
	"roxat-report/internal/middleware/auth"
	"roxat-report/internal/service/dashboard"
	"roxat-report/internal/storage"
)

type CategorySetter interface {
	SetCategory(ctx context.Context, sess storage.Session, category string) (dashboard.View, error)
}

type Request struct {
	Category string `json:"category"`
}

func SetCategory(log *slog.Logger, setter CategorySetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.SetCategory"

		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			resp.JSON(w, r, http.StatusBadRequest, resp.Error("invalid request body"))
			return
		}
		if req.Category == "" {
			req.Category = constants.CategoryAll
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		view, err := setter.SetCategory(ctx, sess, req.Category)
		if err != nil {
			resp.ServiceError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, view)
	}
}
