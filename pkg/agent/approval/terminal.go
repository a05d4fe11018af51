package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Terminal prompts on a writer and reads one line per reply.
type Terminal struct {
	out     io.Writer
	timeout time.Duration

	mu      sync.Mutex
	lines   chan string
	scanner *bufio.Scanner
	started bool
	readErr error
}

// NewTerminal creates a prompter over in and out. A zero timeout waits
// indefinitely.
func NewTerminal(in io.Reader, out io.Writer, timeout time.Duration) *Terminal {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Terminal{
		out:     out,
		timeout: timeout,
		lines:   make(chan string),
		scanner: scanner,
	}
}

// Prompt writes text and waits for a line, the timeout, or ctx.
//
// Reads happen on a single background goroutine so a cancelled prompt does
// not lose the line typed afterwards.
func (t *Terminal) Prompt(ctx context.Context, text string) (string, error) {
	if _, err := io.WriteString(t.out, text); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	t.startReader()

	var timeout <-chan time.Time
	if t.timeout > 0 {
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timeout:
		return "", fmt.Errorf("no reply after %s", t.timeout)
	case line, ok := <-t.lines:
		if !ok {
			return "", t.err()
		}
		return strings.TrimRight(line, "\r"), nil
	}
}

func (t *Terminal) err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		return t.readErr
	}
	return io.EOF
}

func (t *Terminal) startReader() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	t.started = true

	go func() {
		defer close(t.lines)
		for t.scanner.Scan() {
			t.lines <- t.scanner.Text()
		}
		t.mu.Lock()
		t.readErr = t.scanner.Err()
		t.mu.Unlock()
	}()
}
