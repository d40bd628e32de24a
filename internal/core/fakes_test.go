package core_test

import (
	"context"
	"errors"
	"sync"

	"arogya-intake/internal/core"
)

// fakeCompleter records requests and answers with a fixed reply or error.
type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	block bool
	calls []core.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var errUnavailable = errors.New("service unavailable")
