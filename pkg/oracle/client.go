// Package oracle talks to the language model service that decides the
// next UI action for a task.
package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/devicelab-dev/agent-runner/pkg/core"
	"github.com/devicelab-dev/agent-runner/pkg/logger"
)

// Defaults matching a local Ollama deployment.
const (
	DefaultModel      = "llama3:70b"
	DefaultTimeout    = 300 * time.Second
	DefaultNumPredict = 200
)

// Config configures the model client.
type Config struct {
	ServerURL  string // e.g. http://localhost:11434
	Model      string
	BasePrompt string
	Timeout    time.Duration
	NumPredict int
}

// Client generates instructions via an Ollama-compatible /api/generate
// endpoint. It never returns a Go error: any transport, protocol, or
// filesystem failure is reported in-band as a synthetic error instruction
// so the step loop records it and terminates cleanly.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a model client. Zero-valued config fields get the
// package defaults.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.NumPredict <= 0 {
		cfg.NumPredict = DefaultNumPredict
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Images  []string               `json:"images"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NextInstruction asks the model for the next action given the task, the
// action history, and the current state artifacts on disk.
func (c *Client) NextInstruction(ctx context.Context, task string, history []string, sourcePath, screenshotPath string, platform core.Platform) string {
	screenshot, err := os.ReadFile(screenshotPath)
	if err != nil {
		return errorInstruction(fmt.Sprintf("cannot read screenshot: %v", err))
	}
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return errorInstruction(fmt.Sprintf("cannot read page source: %v", err))
	}

	prompt := buildPrompt(c.config.BasePrompt, task, history, string(source), platform)

	payload := generateRequest{
		Model:   c.config.Model,
		Prompt:  prompt,
		Images:  []string{base64.StdEncoding.EncodeToString(screenshot)},
		Stream:  false,
		Options: map[string]interface{}{"num_predict": c.config.NumPredict},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errorInstruction(fmt.Sprintf("cannot encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.ServerURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return errorInstruction(fmt.Sprintf("cannot build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("model request failed: %v", err)
		return errorInstruction("API call failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("model response read failed: %v", err)
		return errorInstruction("API call failed")
	}
	if resp.StatusCode != http.StatusOK {
		logger.Error("model returned HTTP %d: %s", resp.StatusCode, respBody)
		return errorInstruction("API call failed")
	}

	var decoded generateResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		logger.Error("model response parse failed: %v", err)
		return errorInstruction("Invalid JSON response")
	}
	return decoded.Response
}

// errorInstruction builds the synthetic terminal instruction used when the
// model cannot be consulted. The reason travels in-band so it lands in the
// step record like any other action.
func errorInstruction(reason string) string {
	data, _ := json.Marshal(map[string]string{
		"action": "error",
		"reason": reason,
	})
	return string(data)
}
