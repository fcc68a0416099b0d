package summary

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

type SummaryProvider interface {
	BranchSummaries(ctx context.Context, sess storage.Session) ([]dashboard.BranchSummary, error)
}

type Response struct {
	Branches []dashboard.BranchSummary `json:"branches"`
}

// Summary compares all branches under the caller's current date filter.
func Summary(log *slog.Logger, provider SummaryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.branches.Summary"

		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		summaries, err := provider.BranchSummaries(r.Context(), sess)
		if err != nil {
			resp.ServiceError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, Response{Branches: summaries})
	}
}
