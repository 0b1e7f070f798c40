// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// エラーコードと原因カテゴリ、ユーザー向けの対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, job, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeLimitReached   = "LIMIT_REACHED"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeStoreError     = "STORE_ERROR"
	ErrCodeDomainNotFound = "DOMAIN_NOT_FOUND"
	ErrCodeInvalidDate    = "INVALID_DATE"
)

// NewValidationError は入力不備エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("リクエスト内容が不正です: %s", reason),
		Category: "validation",
		Action:   "必須フィールドがすべて含まれているか確認してください。",
	}
}

// NewLimitReachedError は1日あたりの記録上限エラーを生成する。
func NewLimitReachedError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeLimitReached,
		Message:  fmt.Sprintf("本日の記録上限（%d件）に達しています。", limit),
		Category: "job",
		Action:   "日付が変わってから（UTC基準）再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "管理者としてログインしてください。",
	}
}

// NewNotFoundError は対象データ未検出エラーを生成する。
func NewNotFoundError(subject string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%s が見つかりません。", subject),
		Category: "job",
		Action:   "指定した日付に記録が存在するか確認してください。",
	}
}

// NewStoreError は永続化層のエラーを生成する。
// メッセージはそのまま呼び出し元に返す。リトライは行わない。
func NewStoreError(err error) *APIError {
	return &APIError{
		Code:     ErrCodeStoreError,
		Message:  fmt.Sprintf("データベース処理に失敗しました: %v", err),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewDomainNotFoundError はドメイン未検出エラーを生成する。
func NewDomainNotFoundError(domainID string) *APIError {
	return &APIError{
		Code:     ErrCodeDomainNotFound,
		Message:  fmt.Sprintf("指定されたドメインが見つかりません: %s", domainID),
		Category: "validation",
		Action:   "GET /api/domains で有効なドメインIDを確認してください。",
	}
}

// NewInvalidDateError は日付形式エラーを生成する。
func NewInvalidDateError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付形式です: %s", date),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式（UTC）で指定してください。",
	}
}
