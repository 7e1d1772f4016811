package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
)

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"}, nil)
}

func TestExtract_OK(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		fmt.Fprint(w, chatResponse("```json\n[{\"product\":\"كولا\",\"price\":23,\"notes\":\"بارد\"}]\n```"))
	})

	records, err := c.Extract(context.Background(), "كولا ٢٣ بارد")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "كولا", records[0].Product)
	assert.Equal(t, 23.0, *records[0].Price)
	assert.Equal(t, "بارد", records[0].Notes)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestExtract_NoJSONInContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse("عذراً، لم أفهم الرسالة."))
	})

	_, err := c.Extract(context.Background(), "مرحبا")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExtraction))
	assert.False(t, common.IsTransient(err))
}

func TestExtract_SchemaRejectsBadElement(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse(`[{"product":"كولا","price":23},{"price":5}]`))
	})

	_, err := c.Extract(context.Background(), "كولا 23 وشيء آخر")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExtraction))
}

func TestExtract_ServerErrorIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	})

	_, err := c.Extract(context.Background(), "كولا 23")
	require.Error(t, err)
	assert.True(t, common.IsTransient(err))
}

func TestExtract_RateLimitIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := c.Extract(context.Background(), "كولا 23")
	require.Error(t, err)
	assert.True(t, common.IsTransient(err))
}

func TestExtract_AuthFailureIsPermanent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := c.Extract(context.Background(), "كولا 23")
	require.Error(t, err)
	assert.False(t, common.IsTransient(err))
}

func TestExtract_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	_, err := c.Extract(context.Background(), "كولا 23")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExtraction))
}
