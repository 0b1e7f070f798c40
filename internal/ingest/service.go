// Package ingest は求人記録の受け付けロジックを提供する。
// 入力検証、日次上限チェック、重複チェック、永続化をこの順で行う。
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/joblog/internal/model"
	"github.com/hitoshi/joblog/internal/repository"
)

// Outcome は記録受け付けの結果種別を表す。
type Outcome string

const (
	// OutcomeLogged は新規に記録されたことを示す。
	OutcomeLogged Outcome = "success"
	// OutcomeDuplicate は重複ウィンドウ内の既存記録が見つかったことを示す。
	// エラーではなく正常系の結果として扱う。
	OutcomeDuplicate Outcome = "duplicate"
)

// Input は記録リクエストの入力を表す。全フィールド必須。
type Input struct {
	UserID         string
	CompanyName    string
	JobTitle       string
	Location       string
	JobDescription string
	JobURL         string
	Domain         string
	Timestamp      time.Time
}

// Result は受け付け結果を表す。
type Result struct {
	Outcome     Outcome
	JobID       int64 // OutcomeLoggedの場合に採番されたID
	DuplicateID int64 // OutcomeDuplicateの場合の既存記録ID
}

// DomainSuggester はドメイン未指定の入力を補完するためのインターフェース。
type DomainSuggester interface {
	Suggest(title, description string) string
}

// Collector は受け付け結果のメトリクス記録インターフェース。
type Collector interface {
	RecordJobLogged(domain string)
	RecordDuplicate()
	RecordLimitReached()
}

// ServiceConfig は受け付けサービスの設定。
type ServiceConfig struct {
	DailyJobLimit   int           // ユーザーごとの1日（UTC）あたり記録上限
	DuplicateWindow time.Duration // 重複とみなす過去参照期間
}

// Service は求人記録の受け付けサービス。
type Service struct {
	jobs      repository.JobRepository
	suggester DomainSuggester
	collector Collector
	config    ServiceConfig

	// now はテストで現在時刻を差し替えるためのフック。
	now func() time.Time
}

// NewService はServiceを生成する。
// suggesterとcollectorはnilを許容する。
func NewService(jobs repository.JobRepository, suggester DomainSuggester, collector Collector, config ServiceConfig) *Service {
	return &Service{
		jobs:      jobs,
		suggester: suggester,
		collector: collector,
		config:    config,
		now:       time.Now,
	}
}

// LogJob は記録リクエストを処理する。
// チェックは順に短絡し、書き込みが発生するのは新規挿入の1回のみ。
//
// 上限チェック・重複チェック・INSERTは単一トランザクションで包んでいない。
// 同一ユーザーからの同時リクエストは両方ともチェックを通過しうるが、
// このシステムの規模では許容する。
func (s *Service) LogJob(ctx context.Context, in Input) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	jobTitle := strings.TrimSpace(in.JobTitle)
	companyName := strings.TrimSpace(in.CompanyName)
	jobURL := strings.TrimSpace(in.JobURL)

	now := s.now().UTC()

	// 1. 日次上限チェック（当日UTC日付の記録数のみが対象）
	count, err := s.jobs.CountByUserOnDate(ctx, in.UserID, now)
	if err != nil {
		return nil, model.NewStoreError(err)
	}
	if count >= s.config.DailyJobLimit {
		if s.collector != nil {
			s.collector.RecordLimitReached()
		}
		slog.Warn("daily job limit reached",
			slog.String("user_id", in.UserID),
			slog.Int("limit", s.config.DailyJobLimit),
		)
		return nil, model.NewLimitReachedError(s.config.DailyJobLimit)
	}

	// 2. 重複チェック（過去7日間の同一求人）
	dup, err := s.jobs.FindDuplicate(ctx, jobTitle, companyName, jobURL, now.Add(-s.config.DuplicateWindow))
	if err != nil {
		return nil, model.NewStoreError(err)
	}
	if dup != nil {
		if s.collector != nil {
			s.collector.RecordDuplicate()
		}
		return &Result{Outcome: OutcomeDuplicate, DuplicateID: dup.ID}, nil
	}

	// 3. ドメイン未指定の場合はタイトルと説明文から推定する
	domain := in.Domain
	if domain == "" && s.suggester != nil {
		domain = s.suggester.Suggest(jobTitle, in.JobDescription)
	}

	// 4. 永続化
	id, err := s.jobs.Insert(ctx, &model.JobRecord{
		UserID:         in.UserID,
		CompanyName:    companyName,
		JobTitle:       jobTitle,
		Location:       in.Location,
		JobDescription: in.JobDescription,
		JobURL:         jobURL,
		Domain:         domain,
		Timestamp:      in.Timestamp,
	})
	if err != nil {
		return nil, model.NewStoreError(err)
	}

	slog.Info("job logged",
		slog.Int64("job_id", id),
		slog.String("user_id", in.UserID),
		slog.String("domain", domain),
	)
	if s.collector != nil {
		s.collector.RecordJobLogged(domain)
	}

	return &Result{Outcome: OutcomeLogged, JobID: id}, nil
}

// validate は必須フィールドの存在を確認する。
// locationとjob_descriptionは空文字を許容する（フィールド自体は必須）。
func validate(in Input) error {
	var missing []string

	if strings.TrimSpace(in.UserID) == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(in.CompanyName) == "" {
		missing = append(missing, "company_name")
	}
	if strings.TrimSpace(in.JobTitle) == "" {
		missing = append(missing, "job_title")
	}
	if strings.TrimSpace(in.JobURL) == "" {
		missing = append(missing, "job_url")
	}
	if in.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}

	if len(missing) > 0 {
		return model.NewValidationError(fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}
