package toolexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Bridge forwards tool invocations to the desktop backend over HTTP. It is
// the process-boundary twin of the frontend's plugin bridge.
type Bridge struct {
	url    string
	client *http.Client
}

func NewBridge(url string) *Bridge {
	return &Bridge{url: url, client: http.DefaultClient}
}

type bridgeRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	UserID    string         `json:"userId"`
	AppID     string         `json:"appId"`
}

func (b *Bridge) ExecuteTool(ctx context.Context, name string, arguments map[string]any, userID, appID string) (map[string]any, error) {
	body, err := json.Marshal(bridgeRequest{Name: name, Arguments: arguments, UserID: userID, AppID: appID})
	if err != nil {
		return nil, fmt.Errorf("encode tool request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tool backend: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tool response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tool backend status %d: %s", resp.StatusCode, raw)
	}

	result := map[string]any{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode tool response: %w", err)
	}
	return result, nil
}
