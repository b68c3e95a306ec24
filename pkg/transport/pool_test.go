package transport

import "testing"

func TestPoolAcquireRelease(t *testing.T) {
	p := NewPool(2)
	if p.Executing() != 0 {
		t.Fatalf("Executing() = %d, want 0", p.Executing())
	}

	c1, ok := p.Acquire()
	if !ok {
		t.Fatal("Acquire() failed with capacity available")
	}
	c2, ok := p.Acquire()
	if !ok {
		t.Fatal("Acquire() failed with capacity available")
	}
	if p.Executing() != 2 {
		t.Fatalf("Executing() = %d, want 2", p.Executing())
	}

	if _, ok := p.Acquire(); ok {
		t.Fatal("Acquire() succeeded past capacity")
	}

	p.Release(c1)
	if p.Executing() != 1 {
		t.Fatalf("Executing() = %d, want 1", p.Executing())
	}

	if _, ok := p.Acquire(); !ok {
		t.Fatal("Acquire() failed after a release freed a slot")
	}

	p.Release(c2)
}

func TestPoolDoubleReleasePanics(t *testing.T) {
	p := NewPool(1)
	c, _ := p.Acquire()
	p.Release(c)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double release")
		}
	}()
	p.Release(c)
}
