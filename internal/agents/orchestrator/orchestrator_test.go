package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	executorHandler "github.com/kkk9131/new-gate-sub000/internal/agents/executor/handler"
	"github.com/kkk9131/new-gate-sub000/internal/planner"
	"github.com/kkk9131/new-gate-sub000/internal/registry"
	"github.com/kkk9131/new-gate-sub000/internal/toolexec"
	"github.com/kkk9131/new-gate-sub000/internal/verifier"
	"github.com/kkk9131/new-gate-sub000/internal/workers"
	"github.com/kkk9131/new-gate-sub000/pkg/dispatch"
	"github.com/kkk9131/new-gate-sub000/pkg/messages"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routedWorker answers by role of the prompt: planning prompts get the
// scripted plan, verification prompts the scripted verdict, agent turns a
// fixed completion.
type routedWorker struct {
	plan    string
	verdict string
}

func (w *routedWorker) Generate(_ context.Context, history []models.Message, _ []models.ToolDefinition, _ workers.Options) (workers.Completion, error) {
	var text strings.Builder
	for _, m := range history {
		text.WriteString(m.Content)
	}
	switch {
	case strings.Contains(text.String(), "Decompose"):
		return workers.Completion{Content: w.plan}, nil
	case strings.Contains(text.String(), "independent reviewer"):
		return workers.Completion{Content: w.verdict}, nil
	default:
		return workers.Completion{Content: "done"}, nil
	}
}

func newTestDeps(w workers.Worker, creds models.Credentials) Dependencies {
	r := workers.NewRegistry(nil)
	for _, p := range models.Providers() {
		r.Register(p, "fake", func(context.Context, string, string) (workers.Worker, error) {
			return w, nil
		})
	}
	tools := registry.New(nil)
	exec := toolexec.Func(func(context.Context, string, map[string]any, string, string) (map[string]any, error) {
		return map[string]any{"success": true}, nil
	})
	return Dependencies{
		Planner:  planner.New(r, tools),
		Verifier: verifier.New(r),
		Workers:  r,
		Handler:  executorHandler.New(exec),
		Merge:    func(map[string]string) models.Credentials { return creds },
	}
}

func actionsOfType(actions []dispatch.Action, t dispatch.ActionType) []dispatch.Action {
	var out []dispatch.Action
	for _, a := range actions {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

var openAICreds = models.Credentials{models.ProviderOpenAI: "sk-test"}

func TestExecute_SingleScreenPipeline(t *testing.T) {
	w := &routedWorker{
		verdict: `{"success": true, "issues": [], "suggestions": [], "report": "全て完了しました"}`,
	}
	deps := newTestDeps(w, openAICreds)
	root := actor.NewActorSystem().Root
	recorder := dispatch.NewRecorder(nil)

	report, err := Execute(root, deps, messages.ExecuteRequest{
		RequestID: uuid.New(),
		Request:   "新規プロジェクト「サーバー移行」を作成して",
		UserID:    "u1",
		Dispatch:  recorder.Dispatch,
	}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "全て完了しました", report)

	actions := recorder.Actions()
	layouts := actionsOfType(actions, dispatch.SetLayout)
	require.Len(t, layouts, 2, "one layout at plan time, one reset at reply time")
	assert.Equal(t, dispatch.LayoutPayload{Layout: 1}, layouts[0].Payload)
	assert.Equal(t, dispatch.LayoutPayload{Layout: 1}, layouts[1].Payload)

	opens := actionsOfType(actions, dispatch.OpenApp)
	require.Len(t, opens, 1)
	assert.Equal(t, dispatch.OpenAppPayload{ScreenID: 1, AppID: "projects"}, opens[0].Payload)

	statuses := actionsOfType(actions, dispatch.UpdateStatus)
	require.NotEmpty(t, statuses)
	first := statuses[0].Payload.(dispatch.StatusPayload)
	assert.Equal(t, models.Initializing, first.Status)
	last := statuses[len(statuses)-1].Payload.(dispatch.StatusPayload)
	assert.Equal(t, 100, last.Progress)

	msgs := actionsOfType(actions, dispatch.AddMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, dispatch.MessagePayload{ScreenID: 1, Message: "done", Level: "info"}, msgs[0].Payload)
}

func TestExecute_SequentialMultiScreen(t *testing.T) {
	w := &routedWorker{
		plan: `{
			"subtasks": [
				{"id": "t1", "description": "set up the plan board", "appId": "projects", "estimatedComplexity": "high"},
				{"id": "t2", "description": "reserve kickoff slot", "appId": "calendar", "estimatedComplexity": "low", "dependencies": ["t1"]}
			]
		}`,
		verdict: `{"success": true, "issues": [], "suggestions": ["次は担当者を割り当てましょう"], "report": "二つのタスクを完了しました"}`,
	}
	deps := newTestDeps(w, openAICreds)
	root := actor.NewActorSystem().Root
	recorder := dispatch.NewRecorder(nil)

	report, err := Execute(root, deps, messages.ExecuteRequest{
		RequestID: uuid.New(),
		Request:   "get everything ready for the kickoff",
		UserID:    "u1",
		Dispatch:  recorder.Dispatch,
	}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "二つのタスクを完了しました\n\n提案:\n- 次は担当者を割り当てましょう", report)

	actions := recorder.Actions()
	layouts := actionsOfType(actions, dispatch.SetLayout)
	require.NotEmpty(t, layouts)
	assert.Equal(t, dispatch.LayoutPayload{Layout: 2}, layouts[0].Payload)

	opens := actionsOfType(actions, dispatch.OpenApp)
	require.Len(t, opens, 2)
	assert.Equal(t, dispatch.OpenAppPayload{ScreenID: 1, AppID: "projects"}, opens[0].Payload)
	assert.Equal(t, dispatch.OpenAppPayload{ScreenID: 2, AppID: "calendar"}, opens[1].Payload)
}

func TestExecute_MissingPrimaryCredential(t *testing.T) {
	deps := newTestDeps(&routedWorker{}, models.Credentials{})
	root := actor.NewActorSystem().Root

	report, err := Execute(root, deps, messages.ExecuteRequest{
		RequestID: uuid.New(),
		Request:   "メモを作成して",
		UserID:    "u1",
	}, 5*time.Second)
	require.NoError(t, err)
	assert.Contains(t, report, "configuration error")
	assert.Contains(t, report, "openai")
}

func TestExecute_FailOpenVerdictOnBrokenVerifier(t *testing.T) {
	// the verdict is prose, so verification fails open
	w := &routedWorker{verdict: "looks good to me"}
	deps := newTestDeps(w, openAICreds)
	root := actor.NewActorSystem().Root

	report, err := Execute(root, deps, messages.ExecuteRequest{
		RequestID: uuid.New(),
		Request:   "メモを作成して",
		UserID:    "u1",
	}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "検証を実行できませんでした", report)
}
