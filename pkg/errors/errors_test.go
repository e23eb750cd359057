package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errBoom = stderrors.New("boom")

func TestErrorString(t *testing.T) {
	err := &Error{
		Op:   "animation.ProgressRunner.Start",
		Kind: KindInvalidArgument,
		Err:  errBoom,
	}
	got := err.Error()
	want := "animation.ProgressRunner.Start [invalid_argument]: boom"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := InvalidArgument("test.op", errBoom)
	if !stderrors.Is(err, errBoom) {
		t.Error("expected errors.Is to find the wrapped error")
	}
	if err.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errBoom, KindUnknown},
		{"direct", &Error{Kind: KindConfig, Err: errBoom}, KindConfig},
		{"wrapped", fmt.Errorf("outer: %w", &Error{Kind: KindServer, Err: errBoom}), KindServer},
		{"joined", stderrors.Join(errBoom, &Error{Kind: KindConfig, Err: errBoom}), KindConfig},
		{"multi wrapped", fmt.Errorf("a: %w, b: %w", errBoom, &Error{Kind: KindPanic}), KindPanic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindInvalidArgument, "invalid_argument"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
		{KindServer, "server"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "animation.DisplayLink.frame"
	if got, want := err.Error(), "panic in animation.DisplayLink.frame: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *Error
	handler := &testHandler{
		onError: func(err *Error) {
			captured = err
		},
	}

	prev := SetHandler(handler)
	defer SetHandler(prev)

	Report(&Error{Op: "test.op", Kind: KindConfig, Err: errBoom})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			captured = err
		},
	}

	prev := SetHandler(handler)
	defer SetHandler(prev)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
	if captured.StackTrace == "" {
		t.Error("expected stack trace")
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Fatal("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	prev := SetHandler(nil)
	defer SetHandler(prev)

	if _, ok := getHandler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", getHandler())
	}
}

func TestLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := &LogHandler{Logger: zap.New(core), Verbose: true}

	h.HandleError(&Error{Op: "config.Load", Kind: KindConfig, Err: errBoom})
	h.HandlePanic(&PanicError{Op: "frame", Value: "bad", StackTrace: "main.go:1"})
	h.HandleError(nil)
	h.HandlePanic(nil)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["kind"]; got != "config" {
		t.Errorf("kind field = %v, want config", got)
	}
	if _, ok := entries[1].ContextMap()["stack"]; !ok {
		t.Error("verbose panic log should include the stack")
	}
}

type testHandler struct {
	onError func(*Error)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *Error) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
