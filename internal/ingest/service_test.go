package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/joblog/internal/model"
	"github.com/hitoshi/joblog/internal/repository"
)

// --- モック ---

type mockJobRepo struct {
	insertFn            func(ctx context.Context, rec *model.JobRecord) (int64, error)
	findDuplicateFn     func(ctx context.Context, jobTitle, companyName, jobURL string, since time.Time) (*model.JobRecord, error)
	countByUserOnDateFn func(ctx context.Context, userID string, date time.Time) (int, error)
}

func (m *mockJobRepo) Insert(ctx context.Context, rec *model.JobRecord) (int64, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, rec)
	}
	return 1, nil
}

func (m *mockJobRepo) FindDuplicate(ctx context.Context, jobTitle, companyName, jobURL string, since time.Time) (*model.JobRecord, error) {
	if m.findDuplicateFn != nil {
		return m.findDuplicateFn(ctx, jobTitle, companyName, jobURL, since)
	}
	return nil, nil
}

func (m *mockJobRepo) CountByUserOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	if m.countByUserOnDateFn != nil {
		return m.countByUserOnDateFn(ctx, userID, date)
	}
	return 0, nil
}

func (m *mockJobRepo) ListByDate(ctx context.Context, date time.Time) ([]*model.JobRecord, error) {
	return nil, nil
}

func (m *mockJobRepo) SummarizeByDate(ctx context.Context, date time.Time) (*repository.DailySummary, error) {
	return nil, nil
}

// --- テストヘルパー ---

func validInput() Input {
	return Input{
		UserID:         "user-1",
		CompanyName:    "Acme Corp",
		JobTitle:       "Backend Engineer",
		Location:       "Tokyo",
		JobDescription: "Build APIs in Go",
		JobURL:         "https://jobs.example.com/42",
		Domain:         "software_development",
		Timestamp:      time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func defaultConfig() ServiceConfig {
	return ServiceConfig{
		DailyJobLimit:   50,
		DuplicateWindow: 7 * 24 * time.Hour,
	}
}

// --- テスト ---

// 正常な入力で記録が作成され、採番IDが返ることを検証
func TestLogJob_Success(t *testing.T) {
	var inserted *model.JobRecord
	repo := &mockJobRepo{
		insertFn: func(ctx context.Context, rec *model.JobRecord) (int64, error) {
			inserted = rec
			return 123, nil
		},
	}
	svc := NewService(repo, nil, nil, defaultConfig())

	result, err := svc.LogJob(context.Background(), validInput())
	if err != nil {
		t.Fatalf("LogJob returned error: %v", err)
	}
	if result.Outcome != OutcomeLogged {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeLogged)
	}
	if result.JobID != 123 {
		t.Errorf("JobID = %d, want 123", result.JobID)
	}
	if inserted == nil {
		t.Fatal("expected Insert to be called")
	}
}

// title/company/urlの前後空白がトリムされて使用されることを検証
func TestLogJob_TrimsFields(t *testing.T) {
	var dupTitle, dupCompany, dupURL string
	var inserted *model.JobRecord
	repo := &mockJobRepo{
		findDuplicateFn: func(ctx context.Context, jobTitle, companyName, jobURL string, since time.Time) (*model.JobRecord, error) {
			dupTitle, dupCompany, dupURL = jobTitle, companyName, jobURL
			return nil, nil
		},
		insertFn: func(ctx context.Context, rec *model.JobRecord) (int64, error) {
			inserted = rec
			return 1, nil
		},
	}
	svc := NewService(repo, nil, nil, defaultConfig())

	in := validInput()
	in.JobTitle = "  Backend Engineer \n"
	in.CompanyName = "\tAcme Corp "
	in.JobURL = " https://jobs.example.com/42 "

	if _, err := svc.LogJob(context.Background(), in); err != nil {
		t.Fatalf("LogJob returned error: %v", err)
	}

	if dupTitle != "Backend Engineer" || dupCompany != "Acme Corp" || dupURL != "https://jobs.example.com/42" {
		t.Errorf("duplicate check used untrimmed fields: %q %q %q", dupTitle, dupCompany, dupURL)
	}
	if inserted.JobTitle != "Backend Engineer" {
		t.Errorf("inserted JobTitle = %q, want trimmed", inserted.JobTitle)
	}
}

// 必須フィールド欠落でValidationErrorとなり、書き込みが発生しないことを検証
func TestLogJob_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing user_id", func(in *Input) { in.UserID = "" }},
		{"missing company_name", func(in *Input) { in.CompanyName = "   " }},
		{"missing job_title", func(in *Input) { in.JobTitle = "" }},
		{"missing job_url", func(in *Input) { in.JobURL = "" }},
		{"missing timestamp", func(in *Input) { in.Timestamp = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inserted := false
			repo := &mockJobRepo{
				insertFn: func(ctx context.Context, rec *model.JobRecord) (int64, error) {
					inserted = true
					return 1, nil
				},
			}
			svc := NewService(repo, nil, nil, defaultConfig())

			in := validInput()
			tt.mutate(&in)

			_, err := svc.LogJob(context.Background(), in)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != model.ErrCodeValidation {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
			}
			if inserted {
				t.Error("Insert should not be called on validation failure")
			}
		})
	}
}

// 日次上限到達でLimitReachedとなり、書き込みが発生しないことを検証
func TestLogJob_LimitReached(t *testing.T) {
	inserted := false
	repo := &mockJobRepo{
		countByUserOnDateFn: func(ctx context.Context, userID string, date time.Time) (int, error) {
			return 50, nil
		},
		insertFn: func(ctx context.Context, rec *model.JobRecord) (int64, error) {
			inserted = true
			return 1, nil
		},
	}
	svc := NewService(repo, nil, nil, defaultConfig())

	_, err := svc.LogJob(context.Background(), validInput())
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeLimitReached {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeLimitReached)
	}
	if inserted {
		t.Error("Insert should not be called when limit reached")
	}
}

// 49件目まではSuccess、50件目でLimitReachedとなる境界を検証
func TestLogJob_LimitBoundary(t *testing.T) {
	count := 49
	repo := &mockJobRepo{
		countByUserOnDateFn: func(ctx context.Context, userID string, date time.Time) (int, error) {
			return count, nil
		},
	}
	svc := NewService(repo, nil, nil, defaultConfig())

	// 既存49件 → 50件目の記録は成功する
	result, err := svc.LogJob(context.Background(), validInput())
	if err != nil {
		t.Fatalf("50th log should succeed, got error: %v", err)
	}
	if result.Outcome != OutcomeLogged {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeLogged)
	}

	// 既存50件 → 51件目はLimitReached
	count = 50
	_, err = svc.LogJob(context.Background(), validInput())
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeLimitReached {
		t.Errorf("51st log should fail with LIMIT_REACHED, got %v", err)
	}
}

// 重複検出時にDuplicate結果と既存IDが返り、書き込みが発生しないことを検証
func TestLogJob_Duplicate(t *testing.T) {
	inserted := false
	repo := &mockJobRepo{
		findDuplicateFn: func(ctx context.Context, jobTitle, companyName, jobURL string, since time.Time) (*model.JobRecord, error) {
			return &model.JobRecord{ID: 77}, nil
		},
		insertFn: func(ctx context.Context, rec *model.JobRecord) (int64, error) {
			inserted = true
			return 1, nil
		},
	}
	svc := NewService(repo, nil, nil, defaultConfig())

	result, err := svc.LogJob(context.Background(), validInput())
	if err != nil {
		t.Fatalf("duplicate should not be an error, got: %v", err)
	}
	if result.Outcome != OutcomeDuplicate {
		t.Errorf("Outcome = %q, want %q", result.Outcome, OutcomeDuplicate)
	}
	if result.DuplicateID != 77 {
		t.Errorf("DuplicateID = %d, want 77", result.DuplicateID)
	}
	if inserted {
		t.Error("Insert should not be called for duplicates")
	}
}

// ドメイン未指定時にsuggesterで補完されることを検証
func TestLogJob_SuggestsDomainWhenEmpty(t *testing.T) {
	var inserted *model.JobRecord
	repo := &mockJobRepo{
		insertFn: func(ctx context.Context, rec *model.JobRecord) (int64, error) {
			inserted = rec
			return 1, nil
		},
	}
	svc := NewService(repo, suggesterFunc(func(title, description string) string {
		return "devops"
	}), nil, defaultConfig())

	in := validInput()
	in.Domain = ""

	if _, err := svc.LogJob(context.Background(), in); err != nil {
		t.Fatalf("LogJob returned error: %v", err)
	}
	if inserted.Domain != "devops" {
		t.Errorf("inserted Domain = %q, want %q", inserted.Domain, "devops")
	}
}

// ストア障害がStoreErrorとして伝搬することを検証
func TestLogJob_StoreError(t *testing.T) {
	repo := &mockJobRepo{
		countByUserOnDateFn: func(ctx context.Context, userID string, date time.Time) (int, error) {
			return 0, errors.New("connection refused")
		},
	}
	svc := NewService(repo, nil, nil, defaultConfig())

	_, err := svc.LogJob(context.Background(), validInput())
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeStoreError {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeStoreError)
	}
}

// suggesterFunc はDomainSuggesterを関数で満たすアダプタ。
type suggesterFunc func(title, description string) string

func (f suggesterFunc) Suggest(title, description string) string {
	return f(title, description)
}
