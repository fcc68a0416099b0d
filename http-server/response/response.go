package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"roxat-report/internal/middleware/auth"
	"roxat-report/internal/service/dashboard"
	"roxat-report/internal/service/report"
	"roxat-report/internal/storage/remote"
)

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func OK() Response {
	return Response{Status: StatusOK}
}

func Error(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

var badRequest = []error{
	dashboard.ErrUnknownBranch,
	dashboard.ErrBadFilter,
	report.ErrUnknownPeriod,
	report.ErrUnknownQuickFilter,
	report.ErrInvalidRange,
}

// ServiceError maps dashboard and order API errors to an HTTP answer.
func ServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	l := log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)

	if errors.Is(err, remote.ErrUnauthorized) {
		l.Warn("order api отклонил токен")
		auth.RequireLogin(w, r)
		return
	}

	for _, target := range badRequest {
		if errors.Is(err, target) {
			l.Info("некорректный запрос")
			JSON(w, r, http.StatusBadRequest, Error(target.Error()))
			return
		}
	}

	var te *remote.TransportError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		l.Error("таймаут")
		JSON(w, r, http.StatusGatewayTimeout, Error("timeout"))
	case errors.As(err, &te):
		l.Error("order api недоступен")
		JSON(w, r, http.StatusBadGateway, Error("failed to load orders"))
	default:
		l.Error("внутренняя ошибка")
		JSON(w, r, http.StatusInternalServerError, Error("internal error"))
	}
}
