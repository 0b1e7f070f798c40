// Package archive は前日分ZIPアーカイブの事前生成ジョブを提供する。
// 日付が変わった直後に前日（UTC）のアーカイブを生成してキャッシュしておくことで、
// 管理者の初回ダウンロードを待たせない。
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/joblog/internal/model"
)

// Exporter はアーカイブ生成を抽象化するインターフェース。
// report.Serviceの部分集合として定義する。
type Exporter interface {
	ExportArchiveForDate(ctx context.Context, date time.Time) (string, error)
}

// ArchiveJob は前日分アーカイブの事前生成ジョブ。
type ArchiveJob struct {
	exporter Exporter
	logger   *slog.Logger

	// now はテストで現在時刻を差し替えるためのフック。
	now func() time.Time
}

// NewArchiveJob は新しいArchiveJobを生成する。
func NewArchiveJob(exporter Exporter, logger *slog.Logger) *ArchiveJob {
	return &ArchiveJob{
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Run は前日（UTC）のアーカイブを生成する。
// 前日に記録が1件もない場合は生成をスキップし、エラーにはしない。
// 生成済みアーカイブがある場合はキャッシュが使われるため冪等。
func (j *ArchiveJob) Run(ctx context.Context) error {
	start := time.Now()
	date := j.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)

	zipPath, err := j.exporter.ExportArchiveForDate(ctx, date)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeNotFound {
			j.logger.Info("アーカイブ対象の記録がないためスキップしました",
				slog.String("date", date.Format("2006-01-02")),
			)
			return nil
		}

		j.logger.Error("アーカイブ事前生成ジョブの実行に失敗しました",
			slog.String("date", date.Format("2006-01-02")),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("アーカイブ事前生成の実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("アーカイブ事前生成ジョブが完了しました",
		slog.String("date", date.Format("2006-01-02")),
		slog.String("zip_path", zipPath),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
