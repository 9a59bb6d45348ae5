package auth

import (
	"context"
	"sync"
)

// step is one scripted operator answer.
type step struct {
	line string
	err  error
	// wait delays the answer until closed.
	wait <-chan struct{}
}

// scriptedPrompter answers prompts from a script. Once the script is
// exhausted it blocks until ctx ends, like an operator who never types.
type scriptedPrompter struct {
	mu      sync.Mutex
	steps   []step
	prompts []string
}

func newScriptedPrompter(steps ...step) *scriptedPrompter {
	return &scriptedPrompter{steps: steps}
}

func (p *scriptedPrompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	return p.next(ctx, prompt)
}

func (p *scriptedPrompter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	return p.next(ctx, "secret:"+prompt)
}

func (p *scriptedPrompter) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

func (p *scriptedPrompter) next(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	if len(p.steps) == 0 {
		p.mu.Unlock()
		<-ctx.Done()
		return "", ctx.Err()
	}
	s := p.steps[0]
	p.steps = p.steps[1:]
	p.mu.Unlock()

	if s.wait != nil {
		select {
		case <-s.wait:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.line, s.err
}
