package guardrail

import (
	"testing"

	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestSanitize_PlainTextPassesThrough(t *testing.T) {
	assert.Equal(t, "タスクを完了しました", Sanitize("  タスクを完了しました \n"))
}

func TestSanitize_RendersReportJSON(t *testing.T) {
	got := Sanitize(`{"success": false, "issues": ["予定が重複しています"], "suggestions": ["時間をずらしてください"], "report": "一部のみ完了しました"}`)

	assert.Equal(t, "一部のみ完了しました\n\n問題点:\n- 予定が重複しています\n\n提案:\n- 時間をずらしてください", got)
}

func TestSanitize_SuccessOmitsIssues(t *testing.T) {
	got := Sanitize(`{"success": true, "issues": ["stale issue"], "suggestions": [], "report": "全て完了しました"}`)

	assert.Equal(t, "全て完了しました", got)
}

func TestSanitize_StructuredValue(t *testing.T) {
	got := Sanitize(models.VerificationReport{
		Success:     true,
		Issues:      []string{},
		Suggestions: []string{"フォローアップを作成しましょう"},
		Report:      "完了しました",
	})

	assert.Equal(t, "完了しました\n\n提案:\n- フォローアップを作成しましょう", got)
}

func TestSanitize_DefaultsForMissingFields(t *testing.T) {
	assert.Equal(t, "タスクは正常に完了しました", Sanitize(`{"success": true}`))
	assert.Equal(t, "タスクは完了しませんでした", Sanitize(`{"success": false}`))
}

func TestSanitize_RejectsWrongShapes(t *testing.T) {
	// json without a boolean success field is not a report; hand it back as is
	assert.Equal(t, `{"answer": 42}`, Sanitize(`{"answer": 42}`))
	assert.Equal(t, `{"success": "yes"}`, Sanitize(`{"success": "yes"}`))
	assert.Equal(t, `{"success": true, "issues": [1, 2]}`, Sanitize(`{"success": true, "issues": [1, 2]}`))
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"plain text result",
		`{"success": false, "issues": ["問題"], "suggestions": ["提案"], "report": "要約"}`,
		`{"not": "a report"}`,
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once))
	}
}

func TestSanitize_NonStringValues(t *testing.T) {
	got := Sanitize(map[string]any{"success": true, "report": "done"})
	assert.Equal(t, "done", got)

	got = Sanitize(42)
	assert.Equal(t, "タスクが完了しました: 42", got)
}
