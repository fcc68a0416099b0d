package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	resp "roxat-report/http-server/response"
	"roxat-report/internal/middleware/auth"
	"roxat-report/internal/storage"
)

type GenerateExcelHandler interface {
	GenerateExcel(ctx context.Context, sess storage.Session) ([]byte, error)
}

// ExportExcel sends the current dashboard view as an xlsx workbook.
func ExportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.ExportExcel"

		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			auth.RequireLogin(w, r)
			return
		}

		excelBytes, err := gen.GenerateExcel(r.Context(), sess)
		if err != nil {
			resp.ServiceError(w, r, log, op, err)
			return
		}

		fileName := fmt.Sprintf("Roxat_Report_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		_, _ = w.Write(excelBytes)
	}
}
