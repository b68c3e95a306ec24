package transport

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
)

func TestLogTransportInvokesCallbackInline(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := NewLogTransport(logger)

	pool := NewPool(1)
	c, _ := pool.Acquire()

	called := false
	tr.Send(c, []byte("tb.foo:1|g\n"), func(got *Completion, err error) {
		called = true
		if got != c {
			t.Fatal("callback received wrong completion")
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if !called {
		t.Fatal("callback was not invoked")
	}
	if buf.Len() == 0 {
		t.Fatal("expected log output for the datagram")
	}
}

func TestLogTransportInjectedFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))
	tr := NewLogTransport(logger)
	tr.Fail = func([]byte) error { return errors.New("injected") }

	pool := NewPool(1)
	c, _ := pool.Acquire()

	var gotErr error
	tr.Send(c, []byte("tb.foo:1|g\n"), func(_ *Completion, err error) {
		gotErr = err
	})
	if gotErr == nil {
		t.Fatal("expected injected error")
	}
}
