package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/kkk9131/new-gate-sub000/internal/workers"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedWorker struct {
	content string
	err     error
}

func (w *scriptedWorker) Generate(context.Context, []models.Message, []models.ToolDefinition, workers.Options) (workers.Completion, error) {
	if w.err != nil {
		return workers.Completion{}, w.err
	}
	return workers.Completion{Content: w.content}, nil
}

func newTestVerifier(w workers.Worker) *Verifier {
	r := workers.NewRegistry(nil)
	r.Register(models.ProviderOpenAI, "fake", func(context.Context, string, string) (workers.Worker, error) {
		return w, nil
	})
	return New(r)
}

var testCreds = models.Credentials{models.ProviderOpenAI: "sk-test"}

func TestVerify_ParsesJudgment(t *testing.T) {
	v := newTestVerifier(&scriptedWorker{content: `
		The verdict follows.
		{"success": false, "issues": ["予定が登録されていません"], "suggestions": ["再実行してください"], "report": "一部のタスクが完了していません"}
	`})

	report := v.Verify(context.Background(), "予定を追加して", []models.ScreenResult{
		{ScreenID: 1, AppID: "calendar", Result: "failed", Failed: true},
	}, testCreds)

	assert.False(t, report.Success)
	assert.Equal(t, []string{"予定が登録されていません"}, report.Issues)
	assert.Equal(t, []string{"再実行してください"}, report.Suggestions)
	assert.Equal(t, "一部のタスクが完了していません", report.Report)
}

func TestVerify_NilSlicesBecomeEmpty(t *testing.T) {
	v := newTestVerifier(&scriptedWorker{content: `{"success": true, "report": "完了しました"}`})

	report := v.Verify(context.Background(), "メモを作成して", nil, testCreds)

	assert.True(t, report.Success)
	assert.NotNil(t, report.Issues)
	assert.NotNil(t, report.Suggestions)
	assert.Empty(t, report.Issues)
}

func TestVerify_FailsOpenOnModelError(t *testing.T) {
	v := newTestVerifier(&scriptedWorker{err: errors.New("rate limited")})

	report := v.Verify(context.Background(), "何かやって", nil, testCreds)

	assert.True(t, report.Success)
	assert.Equal(t, []string{"検証プロセスでエラーが発生しました"}, report.Issues)
	assert.Equal(t, "検証を実行できませんでした", report.Report)
	assert.Empty(t, report.Suggestions)
}

func TestVerify_FailsOpenOnUnparsableAnswer(t *testing.T) {
	v := newTestVerifier(&scriptedWorker{content: "everything looks fine to me"})

	report := v.Verify(context.Background(), "何かやって", nil, testCreds)

	assert.True(t, report.Success)
	assert.Equal(t, "検証を実行できませんでした", report.Report)
}

func TestVerify_FailsOpenWithoutCredential(t *testing.T) {
	v := newTestVerifier(&scriptedWorker{content: `{"success": true}`})

	report := v.Verify(context.Background(), "何かやって", nil, models.Credentials{})

	require.True(t, report.Success)
	assert.Equal(t, "検証を実行できませんでした", report.Report)
}
