package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/client/client"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	lines   []string
	replies map[string]string
	errs    map[string]error
}

func (f *fakeExec) Execute(ctx context.Context, line string) (string, error) {
	f.lines = append(f.lines, line)
	if err := f.errs[line]; err != nil {
		return "", err
	}
	return f.replies[line], nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_ForwardsLinesUntilExit(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"",
		"  verify 42 7  ",
		"exit",
		"stats",
	}, "\n"))

	exec := &fakeExec{replies: map[string]string{"help": "Commands: ...", "verify 42 7": "Verified 42"}}
	runREPL(context.Background(), exec, func() string { return "OWNER online" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"help", "verify 42 7"}, exec.lines)
	assert.Contains(t, *out, "Commands: ...")
	assert.Contains(t, *out, "Verified 42")
	assert.Contains(t, *out, "mg (OWNER online)> ")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_ReportsErrors(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader("a\nb\nc\n")
	exec := &fakeExec{errs: map[string]error{
		"a": client.ErrUnauthorized,
		"b": client.ErrUnavailable,
		"c": errors.New("rpc error: boom"),
	}}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"a", "b", "c"}, exec.lines)
	assert.Contains(t, *out, "Rejected: check the caller id and service secret.")
	assert.Contains(t, *out, "Command service unavailable, try again later.")
	assert.Contains(t, *out, "Error: rpc error: boom")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("help\n")))
	assert.Empty(t, exec.lines)
}

type fakeClient struct {
	mu      sync.Mutex
	pingErr error
	closed  bool
}

func (f *fakeClient) Execute(ctx context.Context, line string) (string, error) { return "ok", nil }
func (f *fakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}
func (f *fakeClient) CallerID() string { return "42" }
func (f *fakeClient) Close() error     { f.closed = true; return nil }

func TestStartOnlineStatusWatcher_TracksPing(t *testing.T) {
	fc := &fakeClient{}
	a := &App{client: fc}
	assert.Equal(t, "42", a.getStatus())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return a.getStatus() == "42 online" }, time.Second, 5*time.Millisecond)

	fc.mu.Lock()
	fc.pingErr = client.ErrUnavailable
	fc.mu.Unlock()

	assert.Eventually(t, func() bool { return a.getStatus() == "42 offline" }, time.Second, 5*time.Millisecond)
}
