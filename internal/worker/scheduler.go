// Package worker はバックグラウンドジョブのスケジューリングを提供する。
// 日付変更直後（UTC 00:10）の前日分アーカイブ事前生成と、
// 毎時の期限切れセッション削除をcronで実行する。
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// cronスケジュール（UTC）
const (
	archiveSpec = "10 0 * * *" // 毎日00:10に前日分アーカイブを生成
	cleanupSpec = "0 * * * *"  // 毎時0分に期限切れセッションを削除
)

// Job は定期実行されるジョブのインターフェース。
type Job interface {
	Run(ctx context.Context) error
}

// Scheduler はrobfig/cronをラップし、定期ジョブを管理する。
type Scheduler struct {
	cron    *cron.Cron
	archive Job
	cleanup Job
	logger  *slog.Logger
}

// NewScheduler はSchedulerを生成する。スケジュールはUTC基準。
func NewScheduler(archive, cleanup Job, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		archive: archive,
		cleanup: cleanup,
		logger:  logger,
	}
}

// Start はジョブを登録しスケジューラを開始する。
// 起動時に一度セッションクリーンアップを即時実行する（非ブロッキング）。
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(archiveSpec, func() {
		s.runJob(ctx, "archive", s.archive)
	}); err != nil {
		return fmt.Errorf("アーカイブジョブの登録に失敗: %w", err)
	}

	if _, err := s.cron.AddFunc(cleanupSpec, func() {
		s.runJob(ctx, "cleanup", s.cleanup)
	}); err != nil {
		return fmt.Errorf("クリーンアップジョブの登録に失敗: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		slog.String("archive_spec", archiveSpec),
		slog.String("cleanup_spec", cleanupSpec),
	)

	go s.runJob(ctx, "cleanup", s.cleanup)

	return nil
}

// Stop はスケジューラを停止し、実行中のジョブの完了を待つ。
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

// runJob はジョブを実行し、エラーをログに記録する。
// ジョブのエラーでスケジューラ自体は止めない。
func (s *Scheduler) runJob(ctx context.Context, name string, job Job) {
	if err := job.Run(ctx); err != nil {
		s.logger.Error("scheduled job failed",
			slog.String("job", name),
			slog.String("error", err.Error()),
		)
	}
}
