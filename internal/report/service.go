// Package report は日次集計とZIPアーカイブのエクスポートを提供する。
package report

import (
	"context"
	"time"

	"github.com/hitoshi/joblog/internal/model"
	"github.com/hitoshi/joblog/internal/repository"
)

// DomainBreakdown は指定UTC日付の集計結果を表す。
type DomainBreakdown struct {
	Date        string
	TotalJobs   int
	ActiveUsers int
	Domains     []repository.DomainCount
}

// Collector はエクスポート処理のメトリクス記録インターフェース。
type Collector interface {
	RecordArchiveBuilt()
}

// Service は日次集計とアーカイブ生成のサービス層。
type Service struct {
	jobs      repository.JobRepository
	exportDir string
	collector Collector

	// now はテストで現在時刻を差し替えるためのフック。
	now func() time.Time
}

// NewService はServiceを生成する。
// exportDirは生成済みアーカイブのキャッシュ先ディレクトリ。collectorはnilを許容する。
func NewService(jobs repository.JobRepository, exportDir string, collector Collector) *Service {
	return &Service{
		jobs:      jobs,
		exportDir: exportDir,
		collector: collector,
		now:       time.Now,
	}
}

// SummaryForDate は指定UTC日付の集計を返す。
// 記録が存在しない日付ではゼロ値の集計を返す（エラーではない）。
func (s *Service) SummaryForDate(ctx context.Context, date time.Time) (*DomainBreakdown, error) {
	summary, err := s.jobs.SummarizeByDate(ctx, date)
	if err != nil {
		return nil, model.NewStoreError(err)
	}

	return &DomainBreakdown{
		Date:        date.UTC().Format("2006-01-02"),
		TotalJobs:   summary.TotalJobs,
		ActiveUsers: summary.ActiveUsers,
		Domains:     summary.DomainCounts,
	}, nil
}

// PastDates は今日（UTC）を除く直近n日分の完了したUTC日付を新しい順に返す。
// 管理ダッシュボードのダウンロード一覧に使用する。
func (s *Service) PastDates(n int) []string {
	today := s.now().UTC().Truncate(24 * time.Hour)
	dates := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		dates = append(dates, today.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}
