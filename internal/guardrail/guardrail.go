package guardrail

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kkk9131/new-gate-sub000/pkg/data"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
)

// Sanitize is the last stage before output leaves the core. It accepts a
// plain string or a structured value, validates anything json-shaped against
// the verification-report schema, and renders a deterministic report. It
// never fails: unvalidatable input falls back to the raw text.
func Sanitize(raw any) string {
	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if !looksLikeJSON(trimmed) {
			return trimmed
		}
		report, ok := parseReport(trimmed)
		if !ok {
			return trimmed
		}
		return Render(report)
	case models.VerificationReport:
		return Render(v)
	default:
		b, err := json.Marshal(raw)
		if err != nil {
			return fmt.Sprintf("タスクが完了しました: %v", raw)
		}
		if report, ok := parseReport(string(b)); ok {
			return Render(report)
		}
		return fmt.Sprintf("タスクが完了しました: %s", b)
	}
}

// Render writes the fixed multi-section report: summary, issues when
// unsuccessful, suggestions when present.
func Render(r models.VerificationReport) string {
	var b strings.Builder

	summary := strings.TrimSpace(r.Report)
	if summary == "" {
		if r.Success {
			summary = "タスクは正常に完了しました"
		} else {
			summary = "タスクは完了しませんでした"
		}
	}
	b.WriteString(summary)

	if !r.Success && len(r.Issues) > 0 {
		b.WriteString("\n\n問題点:")
		for _, issue := range r.Issues {
			b.WriteString("\n- " + issue)
		}
	}
	if len(r.Suggestions) > 0 {
		b.WriteString("\n\n提案:")
		for _, s := range r.Suggestions {
			b.WriteString("\n- " + s)
		}
	}
	return b.String()
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "```")
}

// parseReport validates the fixed shape: success must be a bool; issues,
// suggestions and report are optional with defaults; wrong types reject the
// whole value rather than coercing it.
func parseReport(s string) (models.VerificationReport, bool) {
	match, err := data.SanitizeAnswer(s)
	if err != nil {
		return models.VerificationReport{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return models.VerificationReport{}, false
	}

	success, ok := raw["success"].(bool)
	if !ok {
		return models.VerificationReport{}, false
	}
	report := models.VerificationReport{Success: success, Issues: []string{}, Suggestions: []string{}}

	if v, present := raw["report"]; present {
		s, ok := v.(string)
		if !ok {
			return models.VerificationReport{}, false
		}
		report.Report = s
	}
	if report.Issues, ok = stringList(raw, "issues"); !ok {
		return models.VerificationReport{}, false
	}
	if report.Suggestions, ok = stringList(raw, "suggestions"); !ok {
		return models.VerificationReport{}, false
	}
	return report, true
}

func stringList(raw map[string]any, key string) ([]string, bool) {
	v, present := raw[key]
	if !present {
		return []string{}, true
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
