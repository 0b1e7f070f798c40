// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/joblog/internal/domain"
	"github.com/hitoshi/joblog/internal/ingest"
	"github.com/hitoshi/joblog/internal/model"
)

// serviceVersion はヘルスチェックレスポンスに含めるバージョン文字列。
const serviceVersion = "1.0"

// JobServiceInterface は求人記録ハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	// LogJob は求人記録リクエストを処理する。
	LogJob(ctx context.Context, in ingest.Input) (*ingest.Result, error)
}

// JobCounter はユーザー別・日付別の記録件数取得のためのインターフェース。
// repository.JobRepositoryの部分集合として定義する。
type JobCounter interface {
	CountByUserOnDate(ctx context.Context, userID string, date time.Time) (int, error)
}

// DomainLister はドメイン一覧取得のためのインターフェース。
type DomainLister interface {
	ListActive() []domain.Domain
}

// Pinger はデータベース疎通確認のためのインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// JobHandler は求人記録と公開APIのHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
	counter JobCounter
	domains DomainLister
	db      Pinger

	// now はテストで現在時刻を差し替えるためのフック。
	now func() time.Time
}

// NewJobHandler はJobHandlerを生成する。
func NewJobHandler(service JobServiceInterface, counter JobCounter, domains DomainLister, db Pinger) *JobHandler {
	return &JobHandler{
		service: service,
		counter: counter,
		domains: domains,
		db:      db,
		now:     time.Now,
	}
}

// logJobRequest は求人記録リクエストのボディ。
// 必須キーの欠落を検出するためポインタで受ける。
type logJobRequest struct {
	UserID         *string `json:"user_id"`
	CompanyName    *string `json:"company_name"`
	JobTitle       *string `json:"job_title"`
	Location       *string `json:"location"`
	JobDescription *string `json:"job_description"`
	JobURL         *string `json:"job_url"`
	Domain         *string `json:"domain"`
	Timestamp      *string `json:"timestamp"`
}

// Home はサービス稼働確認のバナーを返す。
// GET /
func (h *JobHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Job Logger Server is Running!",
		"status":        "active",
		"timestamp":     h.now().UTC().Format(time.RFC3339),
		"total_domains": len(h.domains.ListActive()),
	})
}

// Health はヘルスチェックレスポンスを返す。
// GET /api/health
func (h *JobHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	database := "connected"
	statusCode := http.StatusOK

	if err := h.db.PingContext(r.Context()); err != nil {
		status = "unhealthy"
		database = "disconnected"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"status":         status,
		"database":       database,
		"timestamp":      h.now().UTC().Format(time.RFC3339),
		"version":        serviceVersion,
		"domains_loaded": len(h.domains.ListActive()),
	})
}

// ListDomains は有効なドメインの一覧を返す。
// キーワードは先頭3件に切り詰める。
// GET /api/domains
func (h *JobHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	domains := h.domains.ListActive()

	type domainEntry struct {
		ID          string   `json:"id"`
		DisplayName string   `json:"display_name"`
		Keywords    []string `json:"keywords"`
	}

	entries := make([]domainEntry, 0, len(domains))
	for _, d := range domains {
		keywords := d.Keywords
		if len(keywords) > 3 {
			keywords = keywords[:3]
		}
		entries = append(entries, domainEntry{
			ID:          d.ID,
			DisplayName: d.DisplayName,
			Keywords:    keywords,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"total_domains": len(entries),
		"domains":       entries,
	})
}

// LogJob は求人記録リクエストを処理する。
// POST /api/log_job
func (h *JobHandler) LogJob(w http.ResponseWriter, r *http.Request) {
	var req logJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	if hasMissingFields(req) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("必須フィールドが不足しています"))
		return
	}

	ts, err := time.Parse(time.RFC3339, *req.Timestamp)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("timestampはRFC 3339形式で指定してください"))
		return
	}

	result, err := h.service.LogJob(r.Context(), ingest.Input{
		UserID:         *req.UserID,
		CompanyName:    *req.CompanyName,
		JobTitle:       *req.JobTitle,
		Location:       *req.Location,
		JobDescription: *req.JobDescription,
		JobURL:         *req.JobURL,
		Domain:         *req.Domain,
		Timestamp:      ts,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	switch result.Outcome {
	case ingest.OutcomeDuplicate:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "duplicate",
			"duplicate_job_id": result.DuplicateID,
			"message":          "Duplicate job entry detected",
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"job_id": result.JobID,
		})
	}
}

// UserJobCount はユーザーの指定UTC日付の記録件数を返す。
// dateを省略した場合は今日（UTC）を対象とする。
// GET /api/user_job_count?user_id=&date=
func (h *JobHandler) UserJobCount(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("user_idは必須です"))
		return
	}

	date := h.now().UTC()
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(dateParam))
			return
		}
		date = parsed
	}

	count, err := h.counter.CountByUserOnDate(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, model.NewStoreError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"user_id": userID,
		"date":    date.UTC().Format("2006-01-02"),
		"count":   count,
	})
}

// hasMissingFields は必須キーの欠落を判定する。
// locationとjob_descriptionも、値は空でよいがキー自体は必須。
func hasMissingFields(req logJobRequest) bool {
	return req.UserID == nil ||
		req.CompanyName == nil ||
		req.JobTitle == nil ||
		req.Location == nil ||
		req.JobDescription == nil ||
		req.JobURL == nil ||
		req.Domain == nil ||
		req.Timestamp == nil
}
