// Package adminauth は管理者のログイン認証とセッション管理を提供する。
package adminauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/joblog/internal/model"
	"github.com/hitoshi/joblog/internal/repository"
)

// Authenticator は資格情報の照合を抽象化するインターフェース。
// 現状は環境変数由来の単一の共有資格情報との比較だが、将来ハッシュ化や
// ローテーション可能な資格情報に差し替えられるようルーティングから分離する。
type Authenticator interface {
	// Authenticate は資格情報が正しい場合にtrueを返す。
	Authenticate(username, password string) bool
}

// StaticAuthenticator は静的に設定された資格情報1組と照合するAuthenticator。
type StaticAuthenticator struct {
	username string
	password string
}

// NewStaticAuthenticator はStaticAuthenticatorを生成する。
func NewStaticAuthenticator(username, password string) *StaticAuthenticator {
	return &StaticAuthenticator{username: username, password: password}
}

// Authenticate は定数時間比較で資格情報を照合する。
func (a *StaticAuthenticator) Authenticate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge time.Duration // セッション有効期間（スライディング）
}

// Service は管理者認証のビジネスロジックを提供する。
type Service struct {
	auth        Authenticator
	sessionRepo repository.SessionRepository
	config      ServiceConfig

	// now はテストで現在時刻を差し替えるためのフック。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(auth Authenticator, sessionRepo repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		auth:        auth,
		sessionRepo: sessionRepo,
		config:      config,
		now:         time.Now,
	}
}

// Login は資格情報を検証し、成功時にセッションを発行する。
// 失敗時はUNAUTHORIZEDエラーを返す。
func (s *Service) Login(ctx context.Context, username, password string) (*model.AdminSession, error) {
	if !s.auth.Authenticate(username, password) {
		slog.Warn("admin login rejected", slog.String("username", username))
		return nil, model.NewUnauthorizedError()
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	session := &model.AdminSession{
		ID:        sessionID,
		ExpiresAt: now.Add(s.config.SessionMaxAge),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save admin session: %w", err)
	}

	slog.Info("admin logged in")
	return session, nil
}

// Validate はセッションの有効性を検証し、有効な場合は有効期限を
// 現在時刻から最大期間ぶん延長する（スライディング期限）。
// 無効・期限切れの場合はnilを返す。
func (s *Service) Validate(ctx context.Context, sessionID string) (*model.AdminSession, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find admin session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	newExpiry := s.now().Add(s.config.SessionMaxAge)
	if err := s.sessionRepo.Touch(ctx, sessionID, newExpiry); err != nil {
		// 延長の失敗はセッション自体の有効性に影響しない
		slog.Warn("failed to extend admin session", slog.String("error", err.Error()))
	} else {
		session.ExpiresAt = newExpiry
	}

	return session, nil
}

// Logout はセッションを即時に破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete admin session: %w", err)
	}
	slog.Info("admin logged out")
	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
