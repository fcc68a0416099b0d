package branch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	resp "roxat-report/http-server/response"
	"roxat-report/internal/middleware/auth"
	"roxat-report/internal/service/dashboard"
	"roxat-report/internal/storage"
)

type BranchSetter interface {
	SetBranch(ctx context.Context, sess storage.Session, branch string) (dashboard.View, error)
}

type Request struct {
	Branch string `json:"branch"`
}

// SetBranch switches the dashboard to another branch and reloads its orders.
func SetBranch(log *slog.Logger, setter BranchSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.SetBranch"

		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil || req.Branch == "" {
			log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			).Info("invalid branch request")
			resp.JSON(w, r, http.StatusBadRequest, resp.Error("branch is required"))
			return
		}

		view, err := setter.SetBranch(r.Context(), sess, req.Branch)
		if err != nil {
			resp.ServiceError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, view)
	}
}
