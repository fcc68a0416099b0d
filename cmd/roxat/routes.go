package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"roxat-report/http-server/auth/login"
	"roxat-report/http-server/auth/logout"
	sessioninfo "roxat-report/http-server/auth/session"
	"roxat-report/http-server/branches/list"
	"roxat-report/http-server/branches/summary"
	"roxat-report/http-server/dashboard/branch"
	"roxat-report/http-server/dashboard/category"
	"roxat-report/http-server/dashboard/export"
	"roxat-report/http-server/dashboard/filter"
	getdashboard "roxat-report/http-server/dashboard/get"
	"roxat-report/http-server/dashboard/refresh"
	"roxat-report/internal/config"
	"roxat-report/internal/middleware/auth"
	"roxat-report/internal/service/dashboard"
	generate_excel "roxat-report/internal/service/generate-excel"
	"roxat-report/internal/service/session"
)

func routes(cfg config.Config, log *slog.Logger, sessions *session.Service, dashboards *dashboard.Service, genService *generate_excel.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins, // Разрешаем запросы с фронтенда
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	//ip пользователя
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Post("/api/auth/login", login.Login(log, sessions))
	router.Get("/api/branches", list.List(dashboards))

	// Все остальное только с сессией
	router.Group(func(r chi.Router) {
		r.Use(auth.BearerAuth(log, sessions))

		r.Post("/api/auth/logout", logout.Logout(log, sessions, dashboards))
		r.Get("/api/session", sessioninfo.Current())

		r.Get("/api/dashboard", getdashboard.GetDashboard(log, dashboards))
		r.Post("/api/dashboard/refresh", refresh.Refresh(log, dashboards))
		r.Put("/api/dashboard/branch", branch.SetBranch(log, dashboards))
		r.Put("/api/dashboard/filter", filter.UpdateFilter(log, dashboards))
		r.Put("/api/dashboard/category", category.SetCategory(log, dashboards))
		r.Get("/api/dashboard/export", export.ExportExcel(log, genService))

		r.Get("/api/branches/summary", summary.Summary(log, dashboards))
	})

	// Статика фронтенда, если собрана
	frontendDir := cfg.HTTPServer.FrontendDir
	if _, err := os.Stat(frontendDir); os.IsNotExist(err) {
		log.Warn("Папка фронтенда не найдена, отдаем только api", "path", frontendDir)
		return router
	}

	fileServer := http.StripPrefix("/", http.FileServer(http.Dir(frontendDir)))
	router.Handle("/assets/*", fileServer)

	//SPA fallback: любой другой путь → index.html
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})

	return router
}
