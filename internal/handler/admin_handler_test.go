package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/joblog/internal/middleware"
	"github.com/hitoshi/joblog/internal/model"
	"github.com/hitoshi/joblog/internal/report"
	"github.com/hitoshi/joblog/internal/repository"
)

// mockAdminAuthService はAdminAuthServiceInterfaceのモック実装。
type mockAdminAuthService struct {
	loginFn  func(ctx context.Context, username, password string) (*model.AdminSession, error)
	logoutFn func(ctx context.Context, sessionID string) error
}

func (m *mockAdminAuthService) Login(ctx context.Context, username, password string) (*model.AdminSession, error) {
	return m.loginFn(ctx, username, password)
}

func (m *mockAdminAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.logoutFn(ctx, sessionID)
}

// mockReportService はReportServiceInterfaceのモック実装。
type mockReportService struct {
	summaryFn   func(ctx context.Context, date time.Time) (*report.DomainBreakdown, error)
	exportFn    func(ctx context.Context, date time.Time) (string, error)
	pastDatesFn func(n int) []string
}

func (m *mockReportService) SummaryForDate(ctx context.Context, date time.Time) (*report.DomainBreakdown, error) {
	return m.summaryFn(ctx, date)
}

func (m *mockReportService) ExportArchiveForDate(ctx context.Context, date time.Time) (string, error) {
	return m.exportFn(ctx, date)
}

func (m *mockReportService) PastDates(n int) []string {
	return m.pastDatesFn(n)
}

// withDateParam はchiのURLパラメータをリクエストコンテキストに設定する。
func withDateParam(req *http.Request, date string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("date", date)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// --- ログインのテスト ---

func TestAdminLoginForm_RendersForm(t *testing.T) {
	h := NewAdminHandler(&mockAdminAuthService{}, &mockReportService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	w := httptest.NewRecorder()

	h.LoginForm(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `<form method="post" action="/admin/login">`) {
		t.Error("expected login form in response body")
	}
}

func TestAdminLogin_Success_SetsCookieAndRedirects(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)
	auth := &mockAdminAuthService{
		loginFn: func(ctx context.Context, username, password string) (*model.AdminSession, error) {
			if username != "admin" || password != "secret" {
				t.Errorf("credentials = %q/%q", username, password)
			}
			return &model.AdminSession{ID: "session-1", ExpiresAt: expires}, nil
		},
	}
	h := NewAdminHandler(auth, &mockReportService{})

	form := url.Values{"username": {"admin"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if got := resp.Header.Get("Location"); got != "/admin/dashboard" {
		t.Errorf("Location = %q, want /admin/dashboard", got)
	}

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AdminSessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != "session-1" {
		t.Errorf("cookie value = %q, want session-1", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
}

func TestAdminLogin_WrongCredentials_Returns401WithError(t *testing.T) {
	auth := &mockAdminAuthService{
		loginFn: func(ctx context.Context, username, password string) (*model.AdminSession, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewAdminHandler(auth, &mockReportService{})

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if !strings.Contains(w.Body.String(), "ユーザー名またはパスワードが違います。") {
		t.Error("expected error message in login form")
	}
	if len(resp.Cookies()) != 0 {
		t.Error("no cookie should be set on failed login")
	}
}

// --- ログアウトのテスト ---

func TestAdminLogout_DeletesSessionAndClearsCookie(t *testing.T) {
	var deletedID string
	auth := &mockAdminAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deletedID = sessionID
			return nil
		},
	}
	h := NewAdminHandler(auth, &mockReportService{})

	req := httptest.NewRequest(http.MethodGet, "/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminSessionCookieName, Value: "session-out"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if got := resp.Header.Get("Location"); got != "/admin/login" {
		t.Errorf("Location = %q, want /admin/login", got)
	}
	if deletedID != "session-out" {
		t.Errorf("deleted session = %q, want session-out", deletedID)
	}

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.AdminSessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be invalidated")
	}
}

// --- ダッシュボードのテスト ---

func TestAdminDashboard_ListsPastDates(t *testing.T) {
	reports := &mockReportService{
		pastDatesFn: func(n int) []string {
			if n != 7 {
				t.Errorf("n = %d, want 7", n)
			}
			return []string{"2025-06-14", "2025-06-13"}
		},
	}
	h := NewAdminHandler(&mockAdminAuthService{}, reports)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w := httptest.NewRecorder()

	h.Dashboard(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	html := w.Body.String()
	for _, want := range []string{
		"/admin/download/2025-06-14",
		"/admin/summary/2025-06-14",
		"/admin/download/2025-06-13",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard does not contain %q", want)
		}
	}
}

// --- ダウンロードのテスト ---

func TestAdminDownload_ServesZipFile(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "2025-06-14.zip")
	// 最小のZIPファイル（空のEnd of Central Directoryレコード）
	if err := os.WriteFile(zipPath, []byte("PK\x05\x06\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"), 0o644); err != nil {
		t.Fatalf("failed to write zip fixture: %v", err)
	}

	reports := &mockReportService{
		exportFn: func(ctx context.Context, date time.Time) (string, error) {
			if got := date.Format("2006-01-02"); got != "2025-06-14" {
				t.Errorf("date = %q, want 2025-06-14", got)
			}
			return zipPath, nil
		},
	}
	h := NewAdminHandler(&mockAdminAuthService{}, reports)

	req := withDateParam(httptest.NewRequest(http.MethodGet, "/admin/download/2025-06-14", nil), "2025-06-14")
	w := httptest.NewRecorder()

	h.Download(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "jobs_2025-06-14.zip") {
		t.Errorf("Content-Disposition = %q, want filename jobs_2025-06-14.zip", got)
	}
}

func TestAdminDownload_NoRecords_Returns404(t *testing.T) {
	reports := &mockReportService{
		exportFn: func(ctx context.Context, date time.Time) (string, error) {
			return "", model.NewNotFoundError("2025-06-14 の記録")
		},
	}
	h := NewAdminHandler(&mockAdminAuthService{}, reports)

	req := withDateParam(httptest.NewRequest(http.MethodGet, "/admin/download/2025-06-14", nil), "2025-06-14")
	w := httptest.NewRecorder()

	h.Download(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestAdminDownload_InvalidDate_Returns400(t *testing.T) {
	h := NewAdminHandler(&mockAdminAuthService{}, &mockReportService{})

	req := withDateParam(httptest.NewRequest(http.MethodGet, "/admin/download/not-a-date", nil), "not-a-date")
	w := httptest.NewRecorder()

	h.Download(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// --- 集計のテスト ---

func TestAdminSummary_ReturnsBreakdownJSON(t *testing.T) {
	reports := &mockReportService{
		summaryFn: func(ctx context.Context, date time.Time) (*report.DomainBreakdown, error) {
			return &report.DomainBreakdown{
				Date:        "2025-06-14",
				TotalJobs:   5,
				ActiveUsers: 2,
				Domains: []repository.DomainCount{
					{Domain: "devops", Count: 3},
					{Domain: "marketing", Count: 2},
				},
			}, nil
		},
	}
	h := NewAdminHandler(&mockAdminAuthService{}, reports)

	req := withDateParam(httptest.NewRequest(http.MethodGet, "/admin/summary/2025-06-14", nil), "2025-06-14")
	w := httptest.NewRecorder()

	h.Summary(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body summaryResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "success" {
		t.Errorf("status = %q, want success", body.Status)
	}
	if body.Date != "2025-06-14" {
		t.Errorf("date = %q, want 2025-06-14", body.Date)
	}
	if body.TotalJobs != 5 || body.ActiveUsers != 2 {
		t.Errorf("totals = %d/%d, want 5/2", body.TotalJobs, body.ActiveUsers)
	}
	if len(body.Domains) != 2 || body.Domains[0].Domain != "devops" || body.Domains[0].Count != 3 {
		t.Errorf("domains = %+v", body.Domains)
	}
}

func TestAdminSummary_StoreError_Returns500(t *testing.T) {
	reports := &mockReportService{
		summaryFn: func(ctx context.Context, date time.Time) (*report.DomainBreakdown, error) {
			return nil, model.NewStoreError(context.DeadlineExceeded)
		},
	}
	h := NewAdminHandler(&mockAdminAuthService{}, reports)

	req := withDateParam(httptest.NewRequest(http.MethodGet, "/admin/summary/2025-06-14", nil), "2025-06-14")
	w := httptest.NewRecorder()

	h.Summary(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}
