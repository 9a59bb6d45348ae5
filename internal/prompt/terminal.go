package prompt

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"telltales/pkg/logging"
)

const subsystem = "Prompt"

// ErrInterrupted is returned when the operator presses Ctrl-C at a prompt.
var ErrInterrupted = errors.New("input interrupted")

// Terminal reads lines and secrets with readline.
type Terminal struct {
	mu     sync.Mutex
	stdin  io.ReadCloser
	stdout io.Writer
	rl     *readline.Instance
}

// NewTerminal returns a Terminal on the process terminal.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// NewTerminalWithIO returns a Terminal reading from in and echoing to out.
// in is treated as a plain stream, never as a TTY.
func NewTerminalWithIO(in io.ReadCloser, out io.Writer) *Terminal {
	return &Terminal{stdin: in, stdout: out}
}

// ReadLine shows prompt and returns one line of input with surrounding
// whitespace removed. It returns io.EOF at end of input, ErrInterrupted on
// Ctrl-C and ctx.Err() when ctx ends first.
func (t *Terminal) ReadLine(ctx context.Context, prompt string) (string, error) {
	return t.read(ctx, func(rl *readline.Instance) (string, error) {
		rl.SetPrompt(prompt)
		return rl.Readline()
	})
}

// ReadSecret is like ReadLine but does not echo the input.
func (t *Terminal) ReadSecret(ctx context.Context, prompt string) (string, error) {
	return t.read(ctx, func(rl *readline.Instance) (string, error) {
		b, err := rl.ReadPassword(prompt)
		return string(b), err
	})
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.mu.Lock()
	rl := t.rl
	t.rl = nil
	t.mu.Unlock()

	if rl == nil {
		return nil
	}
	return rl.Close()
}

type readResult struct {
	line string
	err  error
}

func (t *Terminal) read(ctx context.Context, fn func(*readline.Instance) (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rl, err := t.instance()
	if err != nil {
		return "", err
	}

	// The read cannot be interrupted. On cancellation it is left to finish
	// into the buffered channel and the instance is closed, which restores
	// the terminal and unblocks the reader.
	done := make(chan readResult, 1)
	go func() {
		line, err := fn(rl)
		done <- readResult{line: line, err: err}
	}()

	select {
	case res := <-done:
		return strings.TrimSpace(res.line), translate(res.err)
	case <-ctx.Done():
		logging.Debug(subsystem, "Abandoning pending read: %v", ctx.Err())
		t.abandon(rl)
		return "", ctx.Err()
	}
}

func (t *Terminal) instance() (*readline.Instance, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rl != nil {
		return t.rl, nil
	}

	cfg := &readline.Config{
		InterruptPrompt:        "^C",
		HistoryLimit:           -1,
		DisableAutoSaveHistory: true,
	}
	if t.stdin != nil {
		cfg.Stdin = t.stdin
		cfg.Stdout = t.stdout
		cfg.Stderr = t.stdout
		cfg.FuncIsTerminal = func() bool { return false }
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	t.rl = rl
	return rl, nil
}

func (t *Terminal) abandon(rl *readline.Instance) {
	t.mu.Lock()
	if t.rl == rl {
		t.rl = nil
	}
	t.mu.Unlock()

	go func() {
		if err := rl.Close(); err != nil {
			logging.Debug(subsystem, "Closing abandoned prompt: %v", err)
		}
	}()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, readline.ErrInterrupt):
		return ErrInterrupted
	case errors.Is(err, io.EOF):
		return io.EOF
	default:
		return err
	}
}
