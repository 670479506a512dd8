package maps

import (
	"context"
	"sync"

	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Loader memoizes provider initialization so every mounted flow shares one
// client instead of bootstrapping the provider again. Initialization failure
// is terminal for the process lifetime; callers get the same error back.
type Loader struct {
	build func(ctx context.Context) (*Client, error)
	group singleflight.Group

	mu     sync.Mutex
	client *Client
	err    error
	done   bool
}

// NewLoader wraps the provider bootstrap function.
func NewLoader(build func(ctx context.Context) (*Client, error)) *Loader {
	return &Loader{build: build}
}

// Ensure returns the shared provider client, initializing it exactly once.
// Concurrent callers converge on a single in-flight bootstrap.
func (l *Loader) Ensure(ctx context.Context) (*Client, error) {
	if l == nil || l.build == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maps loader not configured")
	}

	l.mu.Lock()
	if l.done {
		client, err := l.client, l.err
		l.mu.Unlock()
		return client, err
	}
	l.mu.Unlock()

	result, err, _ := l.group.Do("maps-provider", func() (any, error) {
		l.mu.Lock()
		if l.done {
			client, err := l.client, l.err
			l.mu.Unlock()
			return client, err
		}
		l.mu.Unlock()

		client, err := l.build(ctx)

		l.mu.Lock()
		l.client = client
		l.err = err
		l.done = true
		l.mu.Unlock()

		return client, err
	})
	if err != nil {
		return nil, err
	}

	client, ok := result.(*Client)
	if !ok || client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "maps provider unavailable")
	}
	return client, nil
}

// Ready reports whether initialization has completed, successfully or not.
func (l *Loader) Ready() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}
