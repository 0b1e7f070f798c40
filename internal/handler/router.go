package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/joblog/internal/metrics"
	"github.com/hitoshi/joblog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionValidator  middleware.SessionValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 公開API
	JobService JobServiceInterface
	JobCounter JobCounter
	Domains    DomainLister
	DB         Pinger

	// 管理画面
	AdminAuthService AdminAuthServiceInterface
	ReportService    ReportServiceInterface

	// メトリクス
	Metrics  middleware.HTTPMetricsRecorder
	Gatherer prometheus.Gatherer
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → Logging → Metrics → SecurityHeaders → (公開API: CORS → RateLimit) / (管理画面: AdminSession)
//
// /metricsとログイン画面はセッション検証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewHTTPMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	jobHandler := NewJobHandler(deps.JobService, deps.JobCounter, deps.Domains, deps.DB)
	adminHandler := NewAdminHandler(deps.AdminAuthService, deps.ReportService)

	// --- 公開API（ブラウザ拡張から呼ばれる）---
	// ミドルウェアスタック: CORS → RateLimit(クライアントIP)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(deps.RateLimiter.Middleware())

		r.Get("/", jobHandler.Home)
		r.Get("/api/health", jobHandler.Health)
		r.Get("/api/domains", jobHandler.ListDomains)
		r.Post("/api/log_job", jobHandler.LogJob)
		r.Get("/api/user_job_count", jobHandler.UserJobCount)
	})

	// --- 管理画面 ---
	r.Route("/admin", func(r chi.Router) {
		// 認証不要のルート
		r.Get("/login", adminHandler.LoginForm)
		r.Post("/login", adminHandler.Login)
		r.Get("/logout", adminHandler.Logout)

		// セッション必須のルート
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAdminSessionMiddleware(deps.SessionValidator))

			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/download/{date}", adminHandler.Download)
			r.Get("/summary/{date}", adminHandler.Summary)
		})
	})

	// --- Prometheusスクレイプ ---
	r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)

	return r
}
