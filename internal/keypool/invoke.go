package keypool

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
)

var logger = log.WithPrefix("keypool")

// StatusCoder is implemented by errors carrying an upstream HTTP status.
// The invoker classifies retryability through it without depending on any
// particular API client package.
type StatusCoder interface {
	HTTPStatus() int
}

// Operation is one attempt against the upstream API with a single
// credential. The invoker calls it once per key until one succeeds.
type Operation[T any] func(ctx context.Context, apiKey string) (T, error)

// ConfigError reports a pool with no usable credentials. It is a setup
// problem, not an upstream one: fix the environment and restart.
type ConfigError struct {
	Pool   string
	EnvVar string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no API keys configured for pool %q: set %s1 or %s",
		e.Pool, e.EnvVar, EnvVarMasterKey)
}

// ExhaustedError reports that every credential in a pool failed with a
// retryable error. Err holds the last attempt's error.
type ExhaustedError struct {
	Pool     string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d API keys for pool %q failed, last error: %v",
		e.Attempts, e.Pool, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Retryable reports whether err warrants trying the next credential.
// Quota and availability statuses rotate to the next key; any other
// upstream status is a request problem no credential swap can fix.
// Errors without a status (transport failures) rotate as well.
func Retryable(err error) bool {
	var sc StatusCoder
	if errors.As(err, &sc) {
		switch sc.HTTPStatus() {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
			return true
		default:
			return false
		}
	}
	return true
}

// Invoke runs op against each credential of the named pool in stored
// order, strictly sequentially, stopping at the first success. A terminal
// error aborts immediately and is returned unchanged. When every key
// fails the result is an *ExhaustedError wrapping the last failure; an
// empty or unknown pool yields a *ConfigError without calling op.
func Invoke[T any](ctx context.Context, pools *Pools, poolName string, op Operation[T]) (T, error) {
	var zero T

	pool := pools.Pool(poolName)
	if pool == nil {
		return zero, &ConfigError{Pool: poolName, EnvVar: EnvVarForPool(poolName)}
	}
	if len(pool.Keys) == 0 {
		return zero, &ConfigError{Pool: pool.Name, EnvVar: pool.EnvVar}
	}

	var lastErr error
	for i, key := range pool.Keys {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx, key)
		if err == nil {
			return result, nil
		}
		if !Retryable(err) {
			return zero, err
		}

		lastErr = err
		logger.Warn("key attempt failed",
			"pool", pool.Name,
			"key", RedactKey(key),
			"attempt", fmt.Sprintf("%d/%d", i+1, len(pool.Keys)),
			"err", err)
	}

	return zero, &ExhaustedError{Pool: pool.Name, Attempts: len(pool.Keys), Err: lastErr}
}
