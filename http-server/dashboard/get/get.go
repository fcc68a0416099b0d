package get

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

type Viewer interface {
	View(ctx context.Context, sess storage.Session) (dashboard.View, error)
}

// GetDashboard returns the current view. The first call of a session loads its default branch.
func GetDashboard(log *slog.Logger, viewer Viewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.GetDashboard"

		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		view, err := viewer.View(r.Context(), sess)
		if err != nil {
			resp.ServiceError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, view)
	}
}
