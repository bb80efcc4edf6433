// Package chat is the UI-side HTTP client for the agent server. It opens a
// session, sends user messages, and extracts the assistant text plus any map
// artifact paths from the returned event list.
package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to an ADK-style agent HTTP API.
type Client struct {
	baseURL string
	appName string
	userID  string
	http    *http.Client
}

// New builds a client for the agent server at baseURL hosting appName.
func New(baseURL, appName string) *Client {
	return &Client{
		baseURL: baseURL,
		appName: appName,
		userID:  "user-" + uuid.NewString(),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

// UserID returns the generated user identifier for this client.
func (c *Client) UserID() string { return c.userID }

// runRequest is the payload for a message turn.
type runRequest struct {
	AppName    string  `json:"app_name"`
	UserID     string  `json:"user_id"`
	SessionID  string  `json:"session_id"`
	NewMessage message `json:"new_message"`
}

type message struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text             *string           `json:"text,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type functionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

type event struct {
	Content message `json:"content"`
}

// Reply is one assistant turn: the final text plus any artifacts the tools
// produced along the way.
type Reply struct {
	Text      string
	Artifacts []string
}

// CreateSession opens a new session and returns its identifier.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	sessionID := fmt.Sprintf("session-%d", time.Now().Unix())
	url := fmt.Sprintf("%s/apps/%s/users/%s/sessions/%s", c.baseURL, c.appName, c.userID, sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("creating session: %s: %s", resp.Status, string(body))
	}
	return sessionID, nil
}

// Send posts one user message and collects the assistant reply from the
// event list the agent server returns.
func (c *Client) Send(ctx context.Context, sessionID, text string) (*Reply, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("no active session")
	}

	payload, err := json.Marshal(runRequest{
		AppName:   c.appName,
		UserID:    c.userID,
		SessionID: sessionID,
		NewMessage: message{
			Role:  "user",
			Parts: []part{{Text: &text}},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sending message: %s: %s", resp.Status, string(body))
	}

	var events []event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	return collectReply(events), nil
}

// Tool names whose responses carry a renderable artifact path.
var artifactTools = map[string]bool{
	"render-map":      true,
	"render-image":    true,
	"enrich-geometry": true,
	"combine-layers":  true,
}

// collectReply walks the events: the last model text wins, and every
// artifact-producing tool response contributes its path.
func collectReply(events []event) *Reply {
	reply := &Reply{}
	for _, ev := range events {
		for _, p := range ev.Content.Parts {
			if ev.Content.Role == "model" && p.Text != nil && *p.Text != "" {
				reply.Text = *p.Text
			}
			if p.FunctionResponse == nil || !artifactTools[p.FunctionResponse.Name] {
				continue
			}
			if path, ok := p.FunctionResponse.Response["artifact_path"].(string); ok && path != "" {
				reply.Artifacts = append(reply.Artifacts, path)
			}
		}
	}
	return reply
}
