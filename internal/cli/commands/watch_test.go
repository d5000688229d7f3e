package commands

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer is a bytes.Buffer safe for one writer and one poller.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, b *lockedBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(b.String(), want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, got:\n%s", want, b.String())
}

func TestRunWatch_ReanalyzesOnChange(t *testing.T) {
	path := writeExport(t, "chat.txt", sampleExport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr lockedBuffer
	opts := &WatchOptions{Output: "text", Debounce: 50 * time.Millisecond, Quiet: true}

	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, &GlobalOptions{}, opts, []string{path}, &stdout, &stderr)
	}()

	waitFor(t, &stdout, "3 messages, 2 senders")

	more := sampleExport + "16/01/2024, 09:05 - Carol: joining late\n"
	if err := os.WriteFile(path, []byte(more), 0644); err != nil {
		t.Fatalf("failed to rewrite export: %v", err)
	}
	waitFor(t, &stdout, "4 messages, 3 senders")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop after cancel")
	}
}

func TestRunWatch_UnknownFormat(t *testing.T) {
	path := writeExport(t, "chat.txt", sampleExport)

	var stdout, stderr bytes.Buffer
	err := runWatch(context.Background(), &GlobalOptions{}, &WatchOptions{Output: "xml"}, []string{path}, &stdout, &stderr)
	if err == nil {
		t.Error("expected error for unknown output format")
	}
}
