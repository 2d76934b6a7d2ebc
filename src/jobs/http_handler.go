/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/atombpmn/flowrt/src/core/logger"
)

// httpHandler is the registry's builtin handler for io.camunda:http-json
// style service tasks: it issues a single HTTP request built from the
// task's properties and returns the response (optionally narrowed by a
// JSONPath extraction expression) as a job variable.
type httpHandler struct {
	client *http.Client
	logger logger.ComponentLogger
}

// NewHTTPHandler builds a handler for the "http" task type. Properties
// recognized: url (required), method (default GET), body, responsePath
// (a JSONPath expression evaluated against a JSON response body).
func NewHTTPHandler(log logger.ComponentLogger) Handler {
	return &httpHandler{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: log,
	}
}

func (h *httpHandler) Execute(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
	url := properties["url"]
	if url == "" {
		return nil, fmt.Errorf("http handler: missing url property")
	}
	method := properties["method"]
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if raw := properties["body"]; raw != "" {
		body = bytes.NewBufferString(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("http handler: building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range properties {
		if len(k) > 7 && k[:7] == "header." {
			req.Header.Set(k[7:], v)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http handler: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http handler: reading response: %w", err)
	}

	h.logger.Debug("http handler request completed",
		logger.String("url", url),
		logger.String("method", method),
		logger.Int("status", resp.StatusCode))

	result := map[string]interface{}{
		"statusCode": resp.StatusCode,
		"body":       string(respBody),
	}

	if path := properties["responsePath"]; path != "" && len(respBody) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return nil, fmt.Errorf("http handler: response is not valid JSON for responsePath: %w", err)
		}
		extracted, err := jsonpath.Get(path, decoded)
		if err != nil {
			return nil, fmt.Errorf("http handler: evaluating responsePath %q: %w", path, err)
		}
		result["extracted"] = extracted
	}

	if resp.StatusCode >= 400 {
		return result, fmt.Errorf("http handler: request returned status %d", resp.StatusCode)
	}

	return result, nil
}
