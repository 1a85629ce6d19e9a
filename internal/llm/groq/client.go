package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docstruct/docstruct/internal/common"
	"github.com/docstruct/docstruct/internal/llm"
)

// ExtractPairs implements llm.PairExtractor over chat/completions. Exactly one
// request is sent per call: system instruction plus the fixed user directive,
// JSON-object response format, configured temperature (0 for extraction).
// There is no retry; the first error terminates the run.
func (c *Client) ExtractPairs(ctx context.Context, req llm.ExtractRequest) ([]llm.ExtractedPair, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.DocumentText),
		"source", req.SourceName,
	)

	if !c.Configured() {
		return nil, nil, common.ConnectivityError("no API key configured", common.ErrUnavailable)
	}

	sys := llm.BuildSystemPrompt(req)
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": llm.UserDirective},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, common.ConnectivityError("chat completion request failed", httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, raw, common.ModelAdherenceError("decode completion response", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "raw", string(raw))
		return nil, raw, common.ModelAdherenceError("no choices in completion response", common.ErrValidation)
	}
	rawContent := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	doc, err := llm.ParseDocumentStructure(rawContent)
	if err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(rawContent),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, rawContent, common.ModelAdherenceError("response does not match the extraction schema", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"pairs", len(doc.ExtractedData),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc.ExtractedData, rawContent, nil
}

// CheckConnection probes the models endpoint with the configured credential.
// A nil error means the key is valid and the endpoint reachable; the UI shows
// this as the connected state and enables the run action.
func (c *Client) CheckConnection(ctx context.Context) error {
	if !c.Configured() {
		return common.ConnectivityError("no API key configured", common.ErrUnavailable)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return common.ConnectivityError("endpoint unreachable", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("llm.ping.response_body_close_error", "error", cerr)
		}
	}(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return common.ConnectivityError(fmt.Sprintf("models endpoint returned status %d", resp.StatusCode), common.ErrUnavailable)
	}
	return nil
}
