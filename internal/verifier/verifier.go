package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kkk9131/new-gate-sub000/internal/workers"
	"github.com/kkk9131/new-gate-sub000/pkg/data"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/kkk9131/new-gate-sub000/pkg/prompts"
	"github.com/kkk9131/new-gate-sub000/pkg/template"
	"github.com/rs/zerolog/log"
)

// Verifier re-judges the aggregated agent results against the literal
// request with one independent model call.
type Verifier struct {
	workers *workers.Registry
}

func New(w *workers.Registry) *Verifier {
	return &Verifier{workers: w}
}

// Verify fails open: when the verification call or its parsing fails, the
// report claims success with a visible caveat, so verification
// infrastructure trouble never blocks the primary result.
func (v *Verifier) Verify(ctx context.Context, request string, results []models.ScreenResult, creds models.Credentials) models.VerificationReport {
	report, err := v.verify(ctx, request, results, creds)
	if err != nil {
		log.Warn().Err(err).Msg("verification could not run, failing open")
		return models.VerificationReport{
			Success:     true,
			Issues:      []string{"検証プロセスでエラーが発生しました"},
			Suggestions: []string{},
			Report:      "検証を実行できませんでした",
		}
	}
	return report
}

func (v *Verifier) verify(ctx context.Context, request string, results []models.ScreenResult, creds models.Credentials) (models.VerificationReport, error) {
	worker, err := v.workers.Resolve(ctx, models.PrimaryProvider, creds)
	if err != nil {
		return models.VerificationReport{}, fmt.Errorf("resolve verifier worker: %w", err)
	}

	prompt, err := template.Parse(prompts.Verification, struct {
		Request string
		Results string
	}{Request: request, Results: renderResults(results)})
	if err != nil {
		return models.VerificationReport{}, fmt.Errorf("render verification prompt: %w", err)
	}

	completion, err := worker.Generate(ctx, []models.Message{
		{Role: models.RoleUser, Content: prompt},
	}, nil, workers.Options{JSONMode: true})
	if err != nil {
		return models.VerificationReport{}, fmt.Errorf("verification call: %w", err)
	}

	match, err := data.SanitizeAnswer(completion.Content)
	if err != nil {
		return models.VerificationReport{}, fmt.Errorf("sanitize verification: %w", err)
	}
	var report models.VerificationReport
	if err := json.Unmarshal([]byte(match), &report); err != nil {
		return models.VerificationReport{}, fmt.Errorf("unmarshal verification: %w", err)
	}
	if report.Issues == nil {
		report.Issues = []string{}
	}
	if report.Suggestions == nil {
		report.Suggestions = []string{}
	}
	return report, nil
}

func renderResults(results []models.ScreenResult) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "[screen %d / %s]\n%s\n\n", r.ScreenID, r.AppID, r.Result)
	}
	return b.String()
}
