package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	resp "roxat-report/http-server/response"
	"roxat-report/internal/middleware/auth"
)

type SessionCloser interface {
	Logout(ctx context.Context, id string) error
}

type DashboardCloser interface {
	Close(id string)
}

func Logout(log *slog.Logger, sessions SessionCloser, dashboards DashboardCloser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Logout"

		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		dashboards.Close(sess.ID)

		if err := sessions.Logout(r.Context(), sess.ID); err != nil {
			log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			).Error("failed to delete session")
			resp.JSON(w, r, http.StatusInternalServerError, resp.Error("internal error"))
			return
		}

		render.JSON(w, r, resp.OK())
	}
}
