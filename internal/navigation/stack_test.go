package navigation

import (
	"sync"
	"testing"
)

func TestPushPopOrder(t *testing.T) {
	stack := NewStack()

	for _, path := range []string{"/", "/products", "/cart"} {
		if err := stack.Push("s1", path); err != nil {
			t.Fatalf("push %s: %v", path, err)
		}
	}

	if top, ok := stack.Peek("s1"); !ok || top != "/cart" {
		t.Fatalf("expected peek /cart, got %q %v", top, ok)
	}
	if top, ok := stack.Pop("s1"); !ok || top != "/cart" {
		t.Fatalf("expected pop /cart, got %q %v", top, ok)
	}
	if top, ok := stack.Pop("s1"); !ok || top != "/products" {
		t.Fatalf("expected pop /products, got %q %v", top, ok)
	}
	if top, ok := stack.Pop("s1"); !ok || top != "/" {
		t.Fatalf("expected pop /, got %q %v", top, ok)
	}
	if _, ok := stack.Pop("s1"); ok {
		t.Fatal("expected empty stack")
	}
}

func TestSessionsHaveIndependentHistories(t *testing.T) {
	stack := NewStack()

	if err := stack.Push("a", "/cart"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, ok := stack.Pop("b"); ok {
		t.Fatal("session b should have no history")
	}
	if top, ok := stack.Pop("a"); !ok || top != "/cart" {
		t.Fatalf("expected /cart for session a, got %q %v", top, ok)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	stack := NewStack()
	if err := stack.Push("s1", "/a"); err != nil {
		t.Fatalf("push: %v", err)
	}

	history := stack.History("s1")
	history[0] = "/mutated"

	if top, _ := stack.Peek("s1"); top != "/a" {
		t.Fatalf("internal state mutated through History: %q", top)
	}
}

func TestConcurrentPushes(t *testing.T) {
	stack := NewStack()

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = stack.Push("s1", "/p")
		}()
	}
	wg.Wait()

	if got := len(stack.History("s1")); got != n {
		t.Fatalf("expected %d entries, got %d", n, got)
	}
}
