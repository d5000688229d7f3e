package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/chatlens/internal/observability"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/store"
)

const chatExport = "15/01/2024, 10:00 - Alice: morning all \U0001F600\n" +
	"15/01/2024, 10:05 - Bob: hi Alice\n" +
	"15/01/2024, 11:30 - Alice: lunch?\n" +
	"16/01/2024, 09:00 - Bob: new day\n"

type analyzeResponse struct {
	ID     string `json:"id"`
	Report struct {
		Summary struct {
			Messages int `json:"messages"`
			Senders  int `json:"senders"`
		} `json:"summary"`
		Metadata struct {
			Sources []string `json:"sources"`
		} `json:"metadata"`
	} `json:"report"`
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) (*Server, *prometheus.Registry) {
	t.Helper()
	cfg := config.DefaultConfig()
	for _, m := range mutate {
		m(cfg)
	}

	st, err := store.NewMemoryStore(16)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	return New(cfg, st, WithMetrics(metrics, reg)), reg
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile(uploadField, name)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server, query string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze"+query, body)
	req.Header.Set("Content-Type", contentType)
	return do(s, req)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyze_Multipart(t *testing.T) {
	s, _ := newTestServer(t)

	rec := upload(t, s, "", map[string]string{"chat.txt": chatExport})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "/api/results/"+resp.ID, rec.Header().Get("Location"))
	assert.Equal(t, 4, resp.Report.Summary.Messages)
	assert.Equal(t, 2, resp.Report.Summary.Senders)
	assert.Equal(t, []string{"chat.txt"}, resp.Report.Metadata.Sources)
}

func TestAnalyze_RawBody(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(chatExport))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	rec := do(s, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"upload.txt"}, resp.Report.Metadata.Sources)
}

func TestAnalyze_SenderQuery(t *testing.T) {
	s, _ := newTestServer(t)

	rec := upload(t, s, "?sender=Bob&top_n=3", map[string]string{"chat.txt": chatExport})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Report.Summary.Messages)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		content    string
		wantStatus int
		wantCode   string
	}{
		{"empty chat", "", "just some text\nwith no headers\n", http.StatusUnprocessableEntity, CodeEmptyChat},
		{"only notices", "", "15/01/2024, 10:00 - Alice: <Media omitted>\n", http.StatusUnprocessableEntity, CodeNoMessagesFiltered},
		{"filters exclude all", "?from=2030-01-01", chatExport, http.StatusUnprocessableEntity, CodeNoMessagesSelected},
		{"bad top_n", "?top_n=zero", chatExport, http.StatusBadRequest, CodeBadRequest},
		{"bad gap", "?gap=soon", chatExport, http.StatusBadRequest, CodeBadRequest},
		{"bad from", "?from=yesterday", chatExport, http.StatusBadRequest, CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := upload(t, s, tt.query, map[string]string{"chat.txt": tt.content})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestAnalyze_EmptyChatMessage(t *testing.T) {
	s, _ := newTestServer(t)
	rec := upload(t, s, "", map[string]string{"chat.txt": "no headers here\n"})
	assert.Equal(t, "no valid messages found", decodeError(t, rec).Error)

	rec = upload(t, s, "", map[string]string{"chat.txt": "15/01/2024, 10:00 - Alice: <Media omitted>\n"})
	assert.Equal(t, "file parsed but all messages were system notices", decodeError(t, rec).Error)
}

func TestAnalyze_MissingFile(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "no file here"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := do(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeBadRequest, decodeError(t, rec).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(""))
	req.Header.Set("Content-Type", "text/plain")
	rec = do(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_TooLarge(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.Server.MaxUploadBytes = 64 })

	rec := upload(t, s, "", map[string]string{"chat.txt": chatExport})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, CodeTooLarge, decodeError(t, rec).Code)
}

func TestResults_GetAndDelete(t *testing.T) {
	s, _ := newTestServer(t)

	rec := upload(t, s, "", map[string]string{"chat.txt": chatExport})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/results/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 4, got.Report.Summary.Messages)

	rec = do(s, httptest.NewRequest(http.MethodDelete, "/api/results/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/results/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, rec).Code)

	rec = do(s, httptest.NewRequest(http.MethodDelete, "/api/results/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	upload(t, s, "", map[string]string{"chat.txt": chatExport})
	upload(t, s, "", map[string]string{"chat.txt": "nothing\n"})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `chatlens_parse_total{result="ok"} 1`)
	assert.Contains(t, body, `chatlens_parse_total{result="empty_chat"} 1`)
	assert.Contains(t, body, "chatlens_messages_parsed_total 4")
	assert.Contains(t, body, "chatlens_results_stored_total 1")
}

func TestAnalyze_FiresWebhooks(t *testing.T) {
	var hits atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	s, _ := newTestServer(t, func(c *config.Config) {
		c.Webhooks = []config.WebhookConfig{{URL: hook.URL, Trigger: config.WebhookTriggerAlways, Timeout: time.Second}}
	})

	upload(t, s, "", map[string]string{"chat.txt": chatExport})
	upload(t, s, "", map[string]string{"chat.txt": "nothing\n"})
	assert.Equal(t, int32(2), hits.Load())
}

func TestRun_Shutdown(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.Server.Addr = "127.0.0.1:0" })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
