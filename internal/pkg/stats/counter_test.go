package stats

import (
	"sync"
	"testing"
)

func TestCounter_Add(t *testing.T) {
	c := &counter{}

	c.add(1)
	if c.get() != 1 {
		t.Errorf("expected count to be 1, got %d", c.get())
	}

	c.add(5)
	if c.get() != 6 {
		t.Errorf("expected count to be 6, got %d", c.get())
	}

	c.add(-6)
	if c.get() != 0 {
		t.Errorf("expected count to be 0, got %d", c.get())
	}
}

func TestCounter_Reset(t *testing.T) {
	c := &counter{}

	c.add(10)
	c.reset()
	if c.get() != 0 {
		t.Errorf("expected count to be 0 after reset, got %d", c.get())
	}
}

func TestCounter_Concurrent(t *testing.T) {
	c := &counter{}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); c.add(2) }()
		go func() { defer wg.Done(); c.add(-1) }()
	}
	wg.Wait()

	if c.get() != 100 {
		t.Errorf("expected count to be 100, got %d", c.get())
	}
}
