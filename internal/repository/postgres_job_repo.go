package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/joblog/internal/model"
)

// PostgresJobRepo はPostgreSQLを使用した求人記録リポジトリ。
type PostgresJobRepo struct {
	db *sql.DB
}

// NewPostgresJobRepo はPostgresJobRepoを生成する。
func NewPostgresJobRepo(db *sql.DB) *PostgresJobRepo {
	return &PostgresJobRepo{db: db}
}

// Insert は記録を作成し、採番されたIDを返す。
func (r *PostgresJobRepo) Insert(ctx context.Context, rec *model.JobRecord) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO jobs (user_id, company_name, job_title, location, job_description, job_url, domain, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		rec.UserID, rec.CompanyName, rec.JobTitle, rec.Location,
		rec.JobDescription, rec.JobURL, rec.Domain, rec.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("求人記録の作成に失敗しました: %w", err)
	}
	return id, nil
}

// FindDuplicate は同一求人の直近の記録を検索する。見つからない場合はnilを返す。
func (r *PostgresJobRepo) FindDuplicate(ctx context.Context, jobTitle, companyName, jobURL string, since time.Time) (*model.JobRecord, error) {
	rec := &model.JobRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, company_name, job_title, location, job_description, job_url, domain, timestamp
		 FROM jobs
		 WHERE job_title = $1 AND company_name = $2 AND job_url = $3
		   AND timestamp >= $4
		 LIMIT 1`,
		jobTitle, companyName, jobURL, since,
	).Scan(
		&rec.ID, &rec.UserID, &rec.CompanyName, &rec.JobTitle, &rec.Location,
		&rec.JobDescription, &rec.JobURL, &rec.Domain, &rec.Timestamp,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("重複記録の検索に失敗しました: %w", err)
	}

	return rec, nil
}

// CountByUserOnDate は指定ユーザーの指定UTC日付の記録数を返す。
func (r *PostgresJobRepo) CountByUserOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs
		 WHERE user_id = $1
		   AND DATE(timestamp AT TIME ZONE 'UTC') = $2::date`,
		userID, date.UTC().Format("2006-01-02"),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("日次記録数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ListByDate は指定UTC日付の全記録をID昇順で返す。
func (r *PostgresJobRepo) ListByDate(ctx context.Context, date time.Time) ([]*model.JobRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, company_name, job_title, location, job_description, job_url, domain, timestamp
		 FROM jobs
		 WHERE DATE(timestamp AT TIME ZONE 'UTC') = $1::date
		 ORDER BY id`,
		date.UTC().Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("日次記録一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var records []*model.JobRecord
	for rows.Next() {
		rec := &model.JobRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.CompanyName, &rec.JobTitle, &rec.Location,
			&rec.JobDescription, &rec.JobURL, &rec.Domain, &rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("記録の読み取りに失敗しました: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記録一覧の走査に失敗しました: %w", err)
	}

	return records, nil
}

// SummarizeByDate は指定UTC日付の集計を返す。
// 記録が存在しない場合はゼロ値のDailySummaryを返す。
func (r *PostgresJobRepo) SummarizeByDate(ctx context.Context, date time.Time) (*DailySummary, error) {
	dateStr := date.UTC().Format("2006-01-02")

	summary := &DailySummary{}
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT user_id)
		 FROM jobs
		 WHERE DATE(timestamp AT TIME ZONE 'UTC') = $1::date`,
		dateStr,
	).Scan(&summary.TotalJobs, &summary.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("日次集計の取得に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT domain, COUNT(*)
		 FROM jobs
		 WHERE DATE(timestamp AT TIME ZONE 'UTC') = $1::date
		 GROUP BY domain
		 ORDER BY COUNT(*) DESC, domain`,
		dateStr,
	)
	if err != nil {
		return nil, fmt.Errorf("ドメイン別集計の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count); err != nil {
			return nil, fmt.Errorf("ドメイン別集計の読み取りに失敗しました: %w", err)
		}
		summary.DomainCounts = append(summary.DomainCounts, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ドメイン別集計の走査に失敗しました: %w", err)
	}

	return summary, nil
}

// compile-time interface check
var _ JobRepository = (*PostgresJobRepo)(nil)
