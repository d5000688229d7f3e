package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/config"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

func newTestReport() *output.Report {
	first := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	stats := &analyzer.Stats{
		Totals: analyzer.Totals{
			Messages: 12,
			Senders:  2,
			First:    first,
			Last:     first.Add(48 * time.Hour),
			SpanDays: 2,
		},
	}
	return output.NewReport(stats, analyzer.Validation{Valid: true, TotalMessages: 12}, parser.Stats{Lines: 14, Records: 12}, output.Metadata{
		Sources:    []string{"chat.txt"},
		AnalyzedAt: first,
		DurationMS: 5,
	})
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedAuth string
	var receivedEvent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAuth = r.Header.Get("Authorization")
		receivedEvent = r.Header.Get("X-Chatlens-Event")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	payload := NewPayload(newTestReport(), []string{"chat.txt"}, nil)

	resp := client.Send(context.Background(), payload, SendOptions{
		URL: server.URL,
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}

	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}

	if receivedAuth != "" {
		t.Errorf("expected no auth header, got %s", receivedAuth)
	}

	if receivedEvent != EventCompleted {
		t.Errorf("expected event header %s, got %s", EventCompleted, receivedEvent)
	}

	// Verify payload is valid JSON containing expected fields
	var got map[string]interface{}
	if err := json.Unmarshal(receivedBody, &got); err != nil {
		t.Fatalf("failed to parse received payload: %v", err)
	}

	if got["event"] != EventCompleted {
		t.Errorf("payload event = %v, want %s", got["event"], EventCompleted)
	}

	report, ok := got["report"].(map[string]interface{})
	if !ok {
		t.Fatal("payload missing report field")
	}
	if _, ok := report["summary"]; !ok {
		t.Error("report missing summary field")
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()

	resp := client.Send(context.Background(), NewPayload(newTestReport(), nil, nil), SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if receivedAuth != "Bearer secret-token-123" {
		t.Errorf("expected Bearer token, got %s", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	client := NewClient()

	resp := client.Send(context.Background(), NewPayload(newTestReport(), nil, nil), SendOptions{
		URL: server.URL,
	})

	if resp.Success() {
		t.Error("expected failure, got success")
	}

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()

	resp := client.Send(context.Background(), NewPayload(newTestReport(), nil, nil), SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure due to timeout")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	client := NewClient()

	resp := client.Send(context.Background(), NewPayload(newTestReport(), nil, nil), SendOptions{
		URL: "://invalid-url",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}

func TestNewPayload(t *testing.T) {
	ok := NewPayload(newTestReport(), []string{"a.txt"}, nil)
	if !ok.Succeeded() || ok.Report == nil || ok.Error != "" {
		t.Errorf("successful payload = %+v", ok)
	}

	failed := NewPayload(newTestReport(), []string{"a.txt"}, errors.New("empty chat"))
	if failed.Succeeded() {
		t.Error("payload with error should not succeed")
	}
	if failed.Report != nil {
		t.Error("failed payload should not carry a report")
	}
	if failed.Error != "empty chat" {
		t.Errorf("Error = %q, want %q", failed.Error, "empty chat")
	}

	if NewPayload(nil, nil, nil).Succeeded() {
		t.Error("payload without report should not succeed")
	}
}

func TestShouldFire(t *testing.T) {
	tests := []struct {
		trigger   config.WebhookTrigger
		succeeded bool
		want      bool
	}{
		{config.WebhookTriggerOnSuccess, true, true},
		{config.WebhookTriggerOnSuccess, false, false},
		{config.WebhookTriggerAlways, true, true},
		{config.WebhookTriggerAlways, false, true},
		{config.WebhookTriggerNever, true, false},
		{config.WebhookTriggerNever, false, false},
		{"", true, true},
	}

	for _, tt := range tests {
		if got := ShouldFire(tt.trigger, tt.succeeded); got != tt.want {
			t.Errorf("ShouldFire(%q, %v) = %v, want %v", tt.trigger, tt.succeeded, got, tt.want)
		}
	}
}

func TestClient_Dispatch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hooks := []config.WebhookConfig{
		{Name: "success", URL: server.URL, Trigger: config.WebhookTriggerOnSuccess},
		{Name: "always", URL: server.URL, Trigger: config.WebhookTriggerAlways},
		{Name: "never", URL: server.URL, Trigger: config.WebhookTriggerNever},
	}

	client := NewClient()

	results := client.Dispatch(context.Background(), hooks, NewPayload(newTestReport(), nil, nil), nil)
	if len(results) != 2 {
		t.Fatalf("Dispatch() on success sent %d, want 2", len(results))
	}
	for _, r := range results {
		if !r.Response.Success() {
			t.Errorf("webhook %s failed: %v", r.Name, r.Response.Error)
		}
	}

	results = client.Dispatch(context.Background(), hooks, NewPayload(nil, nil, errors.New("boom")), nil)
	if len(results) != 1 || results[0].Name != "always" {
		t.Errorf("Dispatch() on failure = %+v, want only the always hook", results)
	}

	if got := hits.Load(); got != 3 {
		t.Errorf("server received %d requests, want 3", got)
	}
}

func TestClient_Dispatch_UnnamedUsesURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	results := NewClient().Dispatch(context.Background(),
		[]config.WebhookConfig{{URL: server.URL}},
		NewPayload(newTestReport(), nil, nil), nil)

	if len(results) != 1 {
		t.Fatalf("Dispatch() sent %d, want 1", len(results))
	}
	if results[0].Name != server.URL {
		t.Errorf("Name = %q, want %q", results[0].Name, server.URL)
	}
	if results[0].Response.Success() {
		t.Error("502 response should not count as success")
	}
}
