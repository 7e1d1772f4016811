package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/llm"
)

// Extract implements llm.Extractor using text-only chat/completions. The
// response content is scanned for a bracketed JSON array, schema-validated,
// and rejected wholesale if any element is malformed.
func (c *Client) Extract(ctx context.Context, text string) ([]entity.ParsedRecord, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(text)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("%w: decode response: %v", common.ErrExtraction, err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("%w: no choices in response", common.ErrExtraction)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	arr, err := llm.ScanJSONArray(content)
	if err != nil {
		c.log.Error("llm.extract.no_json",
			"req_id", rid, "content", content,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}

	if err := llm.ValidateJSONAgainstSchema(llm.BuildRecordsJSONSchema(), arr); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(arr),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}

	records, err := llm.DecodeRecords(arr)
	if err != nil {
		c.log.Error("llm.extract.invalid_records",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures and timeouts are worth retrying.
		return nil, common.Transient(fmt.Errorf("%w: http error: %v", common.ErrExtraction, err))
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.log.Warn("response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return buf.Bytes(), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Auth failures are permanent; retrying cannot help.
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrExtraction, resp.StatusCode, buf.String())
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, common.Transient(fmt.Errorf("%w: status %d: %s", common.ErrExtraction, resp.StatusCode, buf.String()))
	default:
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrExtraction, resp.StatusCode, buf.String())
	}
}
