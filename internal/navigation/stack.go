// Package navigation tracks the per-session route history used for
// back-navigation after checkout redirects. The stack is deliberately
// in-memory only and starts empty on every process restart.
package navigation

import (
	"strings"
	"sync"

	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

// Stack holds route paths per session.
type Stack struct {
	mu    sync.Mutex
	paths map[string][]string
}

// NewStack builds an empty navigation stack.
func NewStack() *Stack {
	return &Stack{paths: make(map[string][]string)}
}

// Push records a visited path for the session.
func (s *Stack) Push(sessionID, path string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(path) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[sessionID] = append(s.paths[sessionID], path)
	return nil
}

// Pop removes and returns the most recent path. The second return is
// false when the stack is empty.
func (s *Stack) Pop(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack := s.paths[sessionID]
	if len(stack) == 0 {
		return "", false
	}
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(s.paths, sessionID)
	} else {
		s.paths[sessionID] = stack
	}
	return top, true
}

// Peek returns the most recent path without removing it.
func (s *Stack) Peek(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack := s.paths[sessionID]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}

// History returns a copy of the session's ordered path history.
func (s *Stack) History(sessionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack := s.paths[sessionID]
	out := make([]string, len(stack))
	copy(out, stack)
	return out
}

// Reset drops the session's history.
func (s *Stack) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, sessionID)
}
