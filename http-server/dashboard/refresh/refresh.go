package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	resp "roxat-report/http-server/response"
	"roxat-report/internal/middleware/auth"
	"roxat-report/internal/service/dashboard"
	"roxat-report/internal/storage"
)

type Refresher interface {
	Refresh(ctx context.Context, sess storage.Session) (dashboard.View, error)
}

func Refresh(log *slog.Logger, refresher Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.Refresh"

		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		view, err := refresher.Refresh(r.Context(), sess)
		if err != nil {
			resp.ServiceError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, view)
	}
}
