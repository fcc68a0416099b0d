package filter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	resp "roxat-report/http-server/response"
	"roxat-report/internal/middleware/auth"
	"roxat-report/internal/service/dashboard"
	"roxat-report/internal/storage"
)

type FilterUpdater interface {
	UpdateFilter(ctx context.Context, sess storage.Session, cmd dashboard.FilterCommand) (dashboard.View, error)
}

// UpdateFilter changes the date filter. Body:
//
//	{"mode":"range","start_date":"2026-10-01","end_date":"2026-10-05"}  (YYYY-MM-DD or RFC3339)
//	{"mode":"start","start_date":"..."} / {"mode":"end","end_date":"..."}
//	{"mode":"period","period":"daily|monthly|yearly"}
//	{"mode":"quick","quick":"Today|Yesterday|7 days|15 days|30 days|Yearly"}
func UpdateFilter(log *slog.Logger, updater FilterUpdater) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.UpdateFilter"

		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		var cmd dashboard.FilterCommand
		if err := render.DecodeJSON(r.Body, &cmd); err != nil {
			log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			).Info("failed to decode filter")
			resp.JSON(w, r, http.StatusBadRequest, resp.Error("invalid request body"))
			return
		}

		if err := validate.Struct(cmd); err != nil {
			resp.JSON(w, r, http.StatusBadRequest, resp.Error("mode must be one of range, start, end, period, quick"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		view, err := updater.UpdateFilter(ctx, sess, cmd)
		if err != nil {
			resp.ServiceError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, view)
	}
}
