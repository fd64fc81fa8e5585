package keypool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// statusErr carries an HTTP status for classification tests.
type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("status %d", e.code)
}

func (e *statusErr) HTTPStatus() int { return e.code }

func testPools(name string, keys ...string) *Pools {
	return &Pools{pools: map[string]*Pool{
		name: {Name: name, EnvVar: EnvVarForPool(name), Keys: keys},
	}}
}

func TestInvokeFirstKeySucceeds(t *testing.T) {
	pools := testPools(PoolText, "text-key-alpha-0001", "text-key-alpha-0002")

	var calls []string
	result, err := Invoke(context.Background(), pools, PoolText, func(_ context.Context, key string) (string, error) {
		calls = append(calls, key)
		return "reply", nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result != "reply" {
		t.Errorf("result = %q, want reply", result)
	}
	if len(calls) != 1 || calls[0] != "text-key-alpha-0001" {
		t.Errorf("calls = %v, want single call with first key", calls)
	}
}

func TestInvokeRotatesOnRetryable(t *testing.T) {
	pools := testPools(PoolText,
		"text-key-alpha-0001", "text-key-alpha-0002", "text-key-alpha-0003")

	var calls []string
	result, err := Invoke(context.Background(), pools, PoolText, func(_ context.Context, key string) (string, error) {
		calls = append(calls, key)
		switch len(calls) {
		case 1:
			return "", &statusErr{code: 429}
		case 2:
			return "", &statusErr{code: 503}
		}
		return "reply", nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result != "reply" {
		t.Errorf("result = %q, want reply", result)
	}

	want := []string{"text-key-alpha-0001", "text-key-alpha-0002", "text-key-alpha-0003"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want all three keys in order", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestInvokeTerminalAbortsImmediately(t *testing.T) {
	pools := testPools(PoolText, "text-key-alpha-0001", "text-key-alpha-0002")

	terminal := &statusErr{code: 400, msg: "invalid request payload"}
	var calls int
	_, err := Invoke(context.Background(), pools, PoolText, func(_ context.Context, _ string) (string, error) {
		calls++
		return "", terminal
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no rotation on terminal error)", calls)
	}
	if !errors.Is(err, terminal) {
		t.Errorf("err = %v, want the original terminal error", err)
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("terminal error must not be wrapped as exhaustion")
	}
}

func TestInvokeExhaustionWrapsLastError(t *testing.T) {
	pools := testPools(PoolText, "text-key-alpha-0001", "text-key-alpha-0002")

	last := &statusErr{code: 503, msg: "service briefly unavailable"}
	var calls int
	_, err := Invoke(context.Background(), pools, PoolText, func(_ context.Context, _ string) (string, error) {
		calls++
		if calls == 1 {
			return "", &statusErr{code: 429, msg: "quota exceeded"}
		}
		return "", last
	})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %T, want *ExhaustedError", err)
	}
	if exhausted.Pool != PoolText {
		t.Errorf("Pool = %q, want %q", exhausted.Pool, PoolText)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", exhausted.Attempts)
	}
	if !errors.Is(err, last) {
		t.Error("exhaustion must unwrap to the last attempt's error")
	}
	msg := err.Error()
	if !strings.Contains(msg, PoolText) || !strings.Contains(msg, "service briefly unavailable") {
		t.Errorf("message = %q, want pool name and last error", msg)
	}
}

func TestInvokeEmptyPoolConfigError(t *testing.T) {
	pools := testPools(PoolText) // no keys

	called := false
	_, err := Invoke(context.Background(), pools, PoolText, func(_ context.Context, _ string) (string, error) {
		called = true
		return "", nil
	})

	if called {
		t.Error("operation must not run against an empty pool")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %T, want *ConfigError", err)
	}
	if cfgErr.Pool != PoolText {
		t.Errorf("Pool = %q, want %q", cfgErr.Pool, PoolText)
	}
	msg := err.Error()
	if !strings.Contains(msg, "GEMINI_API_KEY_TEXT1") || !strings.Contains(msg, EnvVarMasterKey) {
		t.Errorf("message = %q, want the variables to set", msg)
	}
}

func TestInvokeUnknownPool(t *testing.T) {
	pools := testPools(PoolText, "text-key-alpha-0001")

	_, err := Invoke(context.Background(), pools, "narration", func(_ context.Context, _ string) (string, error) {
		t.Error("operation must not run for an unknown pool")
		return "", nil
	})

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %T, want *ConfigError", err)
	}
	if cfgErr.Pool != "narration" {
		t.Errorf("Pool = %q, want narration", cfgErr.Pool)
	}
}

func TestInvokeTransportErrorsRotate(t *testing.T) {
	pools := testPools(PoolText, "text-key-alpha-0001", "text-key-alpha-0002")

	var calls int
	result, err := Invoke(context.Background(), pools, PoolText, func(_ context.Context, _ string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("dial tcp: connection refused")
		}
		return "reply", nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result != "reply" || calls != 2 {
		t.Errorf("result = %q after %d calls, want rotation past the transport error", result, calls)
	}
}

func TestInvokeContextCanceled(t *testing.T) {
	pools := testPools(PoolText, "text-key-alpha-0001")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Invoke(ctx, pools, PoolText, func(_ context.Context, _ string) (string, error) {
		t.Error("operation must not run once the context is canceled")
		return "", nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"quota", &statusErr{code: 429}, true},
		{"server error", &statusErr{code: 500}, true},
		{"unavailable", &statusErr{code: 503}, true},
		{"bad request", &statusErr{code: 400}, false},
		{"unauthorized", &statusErr{code: 401}, false},
		{"forbidden", &statusErr{code: 403}, false},
		{"not found", &statusErr{code: 404}, false},
		{"wrapped status", fmt.Errorf("calling API: %w", &statusErr{code: 404}), false},
		{"no status", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
