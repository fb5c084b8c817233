package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kkk9131/new-gate-sub000/internal/registry"
	"github.com/kkk9131/new-gate-sub000/internal/workers"
	"github.com/kkk9131/new-gate-sub000/pkg/data"
	"github.com/kkk9131/new-gate-sub000/pkg/logger"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/kkk9131/new-gate-sub000/pkg/prompts"
	"github.com/kkk9131/new-gate-sub000/pkg/template"
	"github.com/rs/zerolog/log"
)

var appHint = regexp.MustCompile(`@([A-Za-z][A-Za-z0-9_-]*)`)

// Planner turns one free-text request into a plan decision: typed sub-tasks,
// screen assignments and a scheduling strategy.
type Planner struct {
	workers *workers.Registry
	tools   *registry.Registry
}

func New(w *workers.Registry, t *registry.Registry) *Planner {
	return &Planner{workers: w, tools: t}
}

// Plan decomposes the request. The single-task fallback guarantees at least
// one sub-task; only an explicitly empty decomposition is a hard error.
func (p *Planner) Plan(ctx context.Context, request string, creds models.Credentials, userID string) (models.PlanDecision, error) {
	subtasks, err := p.decompose(ctx, request, creds)
	if err != nil {
		return models.PlanDecision{}, err
	}

	assignments := make([]models.Assignment, 0, len(subtasks))
	maxScreen := 0
	for i, st := range subtasks {
		tools := p.tools.LoadTools(ctx, st.AppID, userID)
		screen := i + 1
		for _, t := range tools {
			if t.Meta.PreferredScreenID > 0 {
				screen = t.Meta.PreferredScreenID
				break
			}
		}
		if screen > maxScreen {
			maxScreen = screen
		}
		assignments = append(assignments, models.Assignment{
			ScreenID:        screen,
			Subtask:         st,
			AppID:           st.AppID,
			SuggestedWorker: workerFor(st.EstimatedComplexity),
			Tools:           tools,
		})
	}
	if len(assignments) > maxScreen {
		maxScreen = len(assignments)
	}

	return models.PlanDecision{
		Layout:      layoutFor(maxScreen),
		Assignments: assignments,
		Strategy:    strategyFor(subtasks),
	}, nil
}

// decompose produces the sub-task list: an @app hint or an unambiguous
// keyword match short-circuits to one sub-task; otherwise one structured
// model call, degraded to a single default-bound sub-task when its answer
// cannot be parsed.
func (p *Planner) decompose(ctx context.Context, request string, creds models.Credentials) ([]models.Subtask, error) {
	if app, cleaned, ok := p.stripHint(request); ok {
		return []models.Subtask{singleTask(cleaned, app)}, nil
	}
	if app, ok := p.tools.MatchApp(request); ok {
		return []models.Subtask{singleTask(request, app)}, nil
	}

	subtasks, err := p.decomposeWithModel(ctx, request, creds)
	if err != nil {
		if errors.Is(err, errEmptyDecomposition) {
			return nil, err
		}
		log.Warn().Err(err).Msg("decomposition failed, falling back to a single sub-task")
		return []models.Subtask{singleTask(request, p.tools.DefaultApp())}, nil
	}

	subtasks = p.normalize(subtasks)
	return collapseSameApp(request, subtasks), nil
}

var errEmptyDecomposition = errors.New("decomposition produced no sub-tasks")

type decomposition struct {
	Subtasks []models.Subtask `json:"subtasks"`
}

func (p *Planner) decomposeWithModel(ctx context.Context, request string, creds models.Credentials) ([]models.Subtask, error) {
	worker, err := p.workers.Resolve(ctx, models.PrimaryProvider, creds)
	if err != nil {
		return nil, fmt.Errorf("resolve planner worker: %w", err)
	}

	prompt, err := template.Parse(prompts.Decomposition, struct {
		Apps    string
		Request string
	}{Apps: p.appCatalog(), Request: request})
	if err != nil {
		return nil, fmt.Errorf("render decomposition prompt: %w", err)
	}

	completion, err := worker.Generate(ctx, []models.Message{
		{Role: models.RoleUser, Content: prompt},
	}, nil, workers.Options{JSONMode: true})
	if err != nil {
		return nil, fmt.Errorf("decomposition call: %w", err)
	}

	match, err := data.SanitizeAnswer(completion.Content)
	if err != nil {
		return nil, fmt.Errorf("sanitize decomposition: %w", err)
	}
	var dec decomposition
	if err := json.Unmarshal([]byte(match), &dec); err != nil {
		return nil, fmt.Errorf("unmarshal decomposition: %w", err)
	}
	if len(dec.Subtasks) == 0 {
		return nil, errEmptyDecomposition
	}

	log.Debug().Int("subtasks", len(dec.Subtasks)).Msg("request decomposed")
	return dec.Subtasks, nil
}

// stripHint removes an explicit @appId marker from the request and forces a
// single sub-task bound to that app.
func (p *Planner) stripHint(request string) (app, cleaned string, ok bool) {
	m := appHint.FindStringSubmatch(request)
	if m == nil {
		return "", "", false
	}
	app = strings.ToLower(m[1])
	if !p.tools.KnownApp(app) {
		return "", "", false
	}
	cleaned = strings.TrimSpace(strings.Replace(request, m[0], "", 1))
	if cleaned == "" {
		cleaned = request
	}
	log.Debug().Str(logger.AppField, app).Msg("explicit app hint in request")
	return app, cleaned, true
}

// normalize repairs what the model got wrong: missing ids, unknown apps,
// unknown complexities.
func (p *Planner) normalize(subtasks []models.Subtask) []models.Subtask {
	for i := range subtasks {
		st := &subtasks[i]
		if st.ID == "" {
			st.ID = fmt.Sprintf("t%d", i+1)
		}
		if !p.tools.KnownApp(st.AppID) {
			if app, ok := p.tools.MatchApp(st.Description); ok {
				st.AppID = app
			} else {
				st.AppID = p.tools.DefaultApp()
			}
		}
		switch st.EstimatedComplexity {
		case models.ComplexityLow, models.ComplexityMedium, models.ComplexityHigh:
		default:
			st.EstimatedComplexity = models.ComplexityMedium
		}
		if len(st.Dependencies) == 0 {
			st.Dependencies = nil
		}
	}
	return subtasks
}

// collapseSameApp folds a multi-task plan back into one sub-task when every
// task targets the same application; parallelism inside one app is
// deliberately avoided.
func collapseSameApp(request string, subtasks []models.Subtask) []models.Subtask {
	if len(subtasks) < 2 {
		return subtasks
	}
	app := subtasks[0].AppID
	max := subtasks[0].EstimatedComplexity
	for _, st := range subtasks[1:] {
		if st.AppID != app {
			return subtasks
		}
		if rank(st.EstimatedComplexity) > rank(max) {
			max = st.EstimatedComplexity
		}
	}
	log.Debug().Str(logger.AppField, app).Msg("collapsing same-app sub-tasks")
	return []models.Subtask{{
		ID:                  "t1",
		Description:         request,
		AppID:               app,
		EstimatedComplexity: max,
	}}
}

func singleTask(description, app string) models.Subtask {
	return models.Subtask{
		ID:                  "t1",
		Description:         description,
		AppID:               app,
		EstimatedComplexity: models.ComplexityMedium,
	}
}

func rank(c models.Complexity) int {
	switch c {
	case models.ComplexityHigh:
		return 2
	case models.ComplexityMedium:
		return 1
	}
	return 0
}

func workerFor(c models.Complexity) models.Provider {
	switch c {
	case models.ComplexityHigh:
		return models.ProviderAnthropic
	case models.ComplexityLow:
		return models.ProviderGemini
	}
	return models.ProviderOpenAI
}

func layoutFor(screens int) models.Layout {
	switch {
	case screens <= 1:
		return models.LayoutSingle
	case screens == 2:
		return models.LayoutSplit2
	case screens == 3:
		return models.LayoutSplit3
	}
	return models.LayoutSplit4
}

func strategyFor(subtasks []models.Subtask) models.Strategy {
	for _, st := range subtasks {
		if len(st.Dependencies) > 0 {
			return models.StrategySequential
		}
	}
	return models.StrategyParallel
}

func (p *Planner) appCatalog() string {
	var b strings.Builder
	for _, app := range p.tools.Apps() {
		fmt.Fprintf(&b, "- %s\n", app)
	}
	return b.String()
}
