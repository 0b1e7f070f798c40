// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/joblog/internal/model"
)

// DomainCount はドメインごとの記録件数を表す。
type DomainCount struct {
	Domain string
	Count  int
}

// DailySummary は指定UTC日付の集計結果を表す。
type DailySummary struct {
	TotalJobs    int
	ActiveUsers  int           // 当日1件以上記録したユーザー数
	DomainCounts []DomainCount // 件数降順、同数はドメイン名昇順
}

// JobRepository は求人記録の永続化インターフェース。
type JobRepository interface {
	// Insert は記録を作成し、ストアが採番したIDを返す。
	Insert(ctx context.Context, rec *model.JobRecord) (int64, error)

	// FindDuplicate はトリム済みの(job_title, company_name, job_url)が一致し、
	// timestampがsince以降の記録を1件検索する。見つからない場合はnilを返す。
	FindDuplicate(ctx context.Context, jobTitle, companyName, jobURL string, since time.Time) (*model.JobRecord, error)

	// CountByUserOnDate は指定ユーザーの、timestampが指定UTC日付に
	// 属する記録数を返す。
	CountByUserOnDate(ctx context.Context, userID string, date time.Time) (int, error)

	// ListByDate は指定UTC日付の全記録をID昇順で返す。
	ListByDate(ctx context.Context, date time.Time) ([]*model.JobRecord, error)

	// SummarizeByDate は指定UTC日付の集計を返す。
	// 記録が存在しない場合はゼロ値のDailySummaryを返す（エラーではない）。
	SummarizeByDate(ctx context.Context, date time.Time) (*DailySummary, error)
}

// SessionRepository は管理者セッションの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.AdminSession) error

	// FindByID は指定IDのセッションを取得する。
	// 見つからない場合および期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AdminSession, error)

	// Touch はセッションの有効期限を指定時刻まで延長する。
	Touch(ctx context.Context, id string, expiresAt time.Time) error

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
