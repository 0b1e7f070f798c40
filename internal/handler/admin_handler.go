package handler

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/joblog/internal/middleware"
	"github.com/hitoshi/joblog/internal/model"
	"github.com/hitoshi/joblog/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// AdminAuthServiceInterface は管理者認証ハンドラーが必要とするサービスインターフェース。
type AdminAuthServiceInterface interface {
	// Login は資格情報を検証し、新しいセッションを発行する。
	Login(ctx context.Context, username, password string) (*model.AdminSession, error)
	// Logout はセッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
}

// ReportServiceInterface は管理画面が必要とする集計・エクスポートのインターフェース。
type ReportServiceInterface interface {
	// SummaryForDate は指定UTC日付の集計を返す。
	SummaryForDate(ctx context.Context, date time.Time) (*report.DomainBreakdown, error)
	// ExportArchiveForDate は指定UTC日付のZIPアーカイブを生成し、そのパスを返す。
	ExportArchiveForDate(ctx context.Context, date time.Time) (string, error)
	// PastDates は今日を除く直近n日分のUTC日付を新しい順に返す。
	PastDates(n int) []string
}

// AdminHandler は管理画面のHTTPハンドラー。
type AdminHandler struct {
	auth      AdminAuthServiceInterface
	reports   ReportServiceInterface
	templates *template.Template
}

// NewAdminHandler はAdminHandlerを生成する。
// テンプレートの解析に失敗した場合はpanicする（起動時にのみ呼ばれる前提）。
func NewAdminHandler(auth AdminAuthServiceInterface, reports ReportServiceInterface) *AdminHandler {
	return &AdminHandler{
		auth:      auth,
		reports:   reports,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// LoginForm はログインフォームを表示する。
// GET /admin/login
func (h *AdminHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, "")
}

// Login はログインフォームの送信を処理する。
// POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, http.StatusBadRequest, "フォームの解析に失敗しました。")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	session, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUnauthorized {
			h.renderLogin(w, http.StatusUnauthorized, "ユーザー名またはパスワードが違います。")
			return
		}
		slog.Error("admin login failed", slog.String("error", err.Error()))
		h.renderLogin(w, http.StatusInternalServerError, "内部エラーが発生しました。")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminSessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout はセッションを破棄しログイン画面へ戻す。
// GET /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.AdminSessionCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			slog.Warn("failed to delete admin session",
				slog.String("error", err.Error()),
			)
		}
	}

	// Cookieを無効化
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminSessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// Dashboard は直近7日分のダウンロードリンクを持つダッシュボードを表示する。
// GET /admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Dates []string
	}{
		Dates: h.reports.PastDates(7),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.Error("failed to render dashboard", slog.String("error", err.Error()))
	}
}

// Download は指定UTC日付のZIPアーカイブを返す。
// GET /admin/download/{date}
func (h *AdminHandler) Download(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	zipPath, err := h.reports.ExportArchiveForDate(r.Context(), date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("jobs_%s.zip", date.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, zipPath)
}

// Summary は指定UTC日付の集計をJSONで返す。
// GET /admin/summary/{date}
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	breakdown, err := h.reports.SummaryForDate(r.Context(), date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(breakdown))
}

// summaryResponse は日次集計のAPIレスポンス。
type summaryResponse struct {
	Status      string             `json:"status"`
	Date        string             `json:"date"`
	TotalJobs   int                `json:"total_jobs"`
	ActiveUsers int                `json:"active_users"`
	Domains     []domainCountEntry `json:"domains"`
}

type domainCountEntry struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// toSummaryResponse はreport.DomainBreakdownからAPIレスポンスに変換する。
func toSummaryResponse(b *report.DomainBreakdown) summaryResponse {
	domains := make([]domainCountEntry, 0, len(b.Domains))
	for _, dc := range b.Domains {
		domains = append(domains, domainCountEntry{
			Domain: dc.Domain,
			Count:  dc.Count,
		})
	}

	return summaryResponse{
		Status:      "success",
		Date:        b.Date,
		TotalJobs:   b.TotalJobs,
		ActiveUsers: b.ActiveUsers,
		Domains:     domains,
	}
}

// parseDateParam はURLパラメータの日付（YYYY-MM-DD）を解析する。
// 不正な場合は400を書き込みfalseを返す。
func parseDateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateParam := chi.URLParam(r, "date")
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(dateParam))
		return time.Time{}, false
	}
	return date, true
}

// renderLogin はログインフォームを描画する。
func (h *AdminHandler) renderLogin(w http.ResponseWriter, statusCode int, errMsg string) {
	data := struct {
		Error string
	}{
		Error: errMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := h.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		slog.Error("failed to render login form", slog.String("error", err.Error()))
	}
}
