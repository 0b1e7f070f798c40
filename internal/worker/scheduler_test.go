package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeJob はJobインターフェースのモック実装。
type fakeJob struct {
	calls atomic.Int32
	err   error
}

func (j *fakeJob) Run(ctx context.Context) error {
	j.calls.Add(1)
	return j.err
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestScheduler_Start_RegistersJobsAndRunsImmediateCleanup(t *testing.T) {
	var buf bytes.Buffer
	archive := &fakeJob{}
	cleanup := &fakeJob{}

	s := NewScheduler(archive, cleanup, newTestLogger(&buf))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() がエラーを返した: %v", err)
	}
	defer s.Stop()

	// 起動時の即時クリーンアップが実行されるのを待つ
	deadline := time.Now().Add(1 * time.Second)
	for cleanup.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if cleanup.calls.Load() == 0 {
		t.Error("起動時にクリーンアップジョブが即時実行されるべき")
	}
	// アーカイブジョブはスケジュール時刻まで実行されない
	if archive.calls.Load() != 0 {
		t.Errorf("アーカイブジョブの実行回数 = %d, want 0", archive.calls.Load())
	}

	if !strings.Contains(buf.String(), "scheduler started") {
		t.Error("開始ログが記録されるべき")
	}
}

func TestScheduler_JobError_IsLoggedNotFatal(t *testing.T) {
	var buf bytes.Buffer
	archive := &fakeJob{}
	cleanup := &fakeJob{err: errors.New("db down")}

	s := NewScheduler(archive, cleanup, newTestLogger(&buf))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() がエラーを返した: %v", err)
	}

	deadline := time.Now().Add(1 * time.Second)
	for cleanup.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.Stop()

	if !strings.Contains(buf.String(), "scheduled job failed") {
		t.Errorf("ジョブ失敗がログに記録されるべき。ログ出力: %s", buf.String())
	}
}

func TestScheduler_Stop_LogsShutdown(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(&fakeJob{}, &fakeJob{}, newTestLogger(&buf))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() がエラーを返した: %v", err)
	}

	s.Stop()

	if !strings.Contains(buf.String(), "scheduler stopped") {
		t.Error("停止ログが記録されるべき")
	}
}
