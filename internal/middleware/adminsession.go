package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/joblog/internal/model"
)

// AdminSessionCookieName は管理者セッションCookieの名前。
const AdminSessionCookieName = "admin_session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// adminSessionContextKey はリクエストコンテキストにセッションIDを格納するためのキー。
var adminSessionContextKey = contextKey("admin_session_id")

// SessionValidator はセッションの有効性検証に必要なインターフェース。
// adminauth.Serviceの部分集合として定義する。
type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (*model.AdminSession, error)
}

// NewAdminSessionMiddleware はHTTP Only Cookieから管理者セッションを読み取り、
// 有効性を検証するミドルウェアを返す。
// 検証済みセッションIDをリクエストコンテキストに注入する。
// 未認証リクエストはログイン画面(/admin/login)へリダイレクトする。
func NewAdminSessionMiddleware(validator SessionValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieからセッションIDを取得
			cookie, err := r.Cookie(AdminSessionCookieName)
			if err != nil || cookie.Value == "" {
				redirectToLogin(w, r)
				return
			}

			// 2. セッションの有効性を検証（有効なら期限が延長される）
			session, err := validator.Validate(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to validate admin session",
					slog.String("error", err.Error()),
				)
				redirectToLogin(w, r)
				return
			}
			if session == nil {
				redirectToLogin(w, r)
				return
			}

			// 3. 検証済みセッションIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), adminSessionContextKey, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// redirectToLogin は未認証リクエストをログイン画面へ誘導する。
// JSONを期待するクライアントには401を返す。
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") == "application/json" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// AdminSessionIDFromContext はリクエストコンテキストからセッションIDを取得する。
// 管理者セッションミドルウェアを通過したリクエストでのみ有効。
func AdminSessionIDFromContext(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(adminSessionContextKey).(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("admin session ID not found in context")
	}
	return sessionID, nil
}

// ContextWithAdminSessionID はコンテキストにセッションIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAdminSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, adminSessionContextKey, sessionID)
}
