package report

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hitoshi/joblog/internal/model"
)

// ExportArchiveForDate は指定UTC日付のZIPアーカイブを生成し、ファイルパスを返す。
// アーカイブにはドメインごとのCSVファイルと集計テキスト（summary.txt）が含まれる。
// 記録が1件も存在しない日付ではNOT_FOUNDエラーを返す。
//
// キャッシュ: 当日より前の日付のアーカイブは不変として扱い、ディスク上の
// <exportDir>/<date>.zip を再利用する。当日分はデータが変化し続けるため
// 常に再生成する。
func (s *Service) ExportArchiveForDate(ctx context.Context, date time.Time) (string, error) {
	dateStr := date.UTC().Format("2006-01-02")
	zipPath := filepath.Join(s.exportDir, dateStr+".zip")

	isToday := dateStr == s.now().UTC().Format("2006-01-02")
	if !isToday {
		if _, err := os.Stat(zipPath); err == nil {
			slog.Info("serving cached archive", slog.String("date", dateStr))
			return zipPath, nil
		}
	}

	records, err := s.jobs.ListByDate(ctx, date)
	if err != nil {
		return "", model.NewStoreError(err)
	}
	if len(records) == 0 {
		return "", model.NewNotFoundError(fmt.Sprintf("%s の記録", dateStr))
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("エクスポートディレクトリの作成に失敗しました: %w", err)
	}

	// ドメインごとにグループ化（初出順を保持）
	groups := make(map[string][]*model.JobRecord)
	var order []string
	for _, rec := range records {
		domain := rec.Domain
		if domain == "" {
			domain = "other"
		}
		if _, ok := groups[domain]; !ok {
			order = append(order, domain)
		}
		groups[domain] = append(groups[domain], rec)
	}

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	totalJobs := 0
	var summaryLines []string
	for _, domain := range order {
		domainJobs := groups[domain]
		filename := fmt.Sprintf("jobs_%s_%s.csv", domain, dateStr)

		// ドメインごとのCSVを一時ファイルに書き出し、アーカイブ追加後に削除する
		tmpPath := filepath.Join(s.exportDir, filename)
		if err := writeDomainCSV(tmpPath, domainJobs); err != nil {
			zw.Close()
			return "", err
		}

		if err := addFileToZip(zw, tmpPath, domain+"/"+filename); err != nil {
			os.Remove(tmpPath)
			zw.Close()
			return "", err
		}
		os.Remove(tmpPath)

		summaryLines = append(summaryLines, fmt.Sprintf("%s: %d jobs", capitalize(domain), len(domainJobs)))
		totalJobs += len(domainJobs)
	}

	summary := fmt.Sprintf(`Job Logger Summary - %s
===============================

Total Jobs: %d
Domains: %d

Domain Breakdown:
------------------
%s
`, dateStr, totalJobs, len(groups), strings.Join(summaryLines, "\n"))

	sw, err := zw.Create("summary.txt")
	if err != nil {
		zw.Close()
		return "", fmt.Errorf("summary.txtの作成に失敗しました: %w", err)
	}
	if _, err := sw.Write([]byte(summary)); err != nil {
		zw.Close()
		return "", fmt.Errorf("summary.txtの書き込みに失敗しました: %w", err)
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("アーカイブのクローズに失敗しました: %w", err)
	}

	if err := os.WriteFile(zipPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("アーカイブの保存に失敗しました: %w", err)
	}

	slog.Info("archive generated",
		slog.String("date", dateStr),
		slog.Int("total_jobs", totalJobs),
		slog.Int("domains", len(groups)),
	)
	if s.collector != nil {
		s.collector.RecordArchiveBuilt()
	}

	return zipPath, nil
}

// csvColumns はドメインごとのCSVに含めるカラム。
var csvColumns = []string{"company_name", "job_title", "location", "job_description", "job_url"}

// writeDomainCSV は1ドメイン分の記録をCSVファイルに書き出す。
func writeDomainCSV(path string, records []*model.JobRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("CSVファイルの作成に失敗しました: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.CompanyName, rec.JobTitle, rec.Location, rec.JobDescription, rec.JobURL}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗しました: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// addFileToZip はファイルをアーカイブに指定のarcnameで追加する。
func addFileToZip(zw *zip.Writer, path, arcname string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("CSVファイルの読み込みに失敗しました: %w", err)
	}

	fw, err := zw.Create(arcname)
	if err != nil {
		return fmt.Errorf("アーカイブエントリの作成に失敗しました: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("アーカイブエントリの書き込みに失敗しました: %w", err)
	}
	return nil
}

// capitalize は先頭文字を大文字化する。summary.txtの表示用。
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
