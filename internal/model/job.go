// Package model はドメインモデルを定義する。
package model

import "time"

// JobRecord はユーザーが記録した求人応募1件を表す。
// 作成後は更新・削除されない（保持期間は無期限）。
type JobRecord struct {
	ID             int64
	UserID         string
	CompanyName    string
	JobTitle       string
	Location       string
	JobDescription string
	JobURL         string
	Domain         string // domain.Registry のID。外部キーでは強制しない。
	Timestamp      time.Time
}

// AdminSession は管理者のログインセッションを表す。
// ブラウザのCookieに保存される不透明トークンをIDとして持つ。
type AdminSession struct {
	ID        string
	ExpiresAt time.Time
	CreatedAt time.Time
}
