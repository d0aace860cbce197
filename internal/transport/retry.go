package transport

import (
	"context"

	"github.com/claudefs/claudefs/pkg/errors"
	"github.com/claudefs/claudefs/pkg/retry"
)

// RetryExecutor wraps pkg/retry's exponential-backoff retryer with the
// opcode-idempotency gate spec.md §4.2.8 requires: only opcodes the
// caller has declared idempotent are retried on failure; everything else
// propagates its first error untouched.
type RetryExecutor struct {
	retryer    *retry.Retryer
	idempotent map[uint16]bool
}

// NewRetryExecutor builds an executor over the given backoff config and
// set of idempotent opcodes.
func NewRetryExecutor(config retry.Config, idempotentOpcodes []uint16) *RetryExecutor {
	set := make(map[uint16]bool, len(idempotentOpcodes))
	for _, op := range idempotentOpcodes {
		set[op] = true
	}
	return &RetryExecutor{retryer: retry.New(config), idempotent: set}
}

// IsIdempotent reports whether opcode has been declared safe to retry.
func (r *RetryExecutor) IsIdempotent(opcode uint16) bool {
	return r.idempotent[opcode]
}

// Do executes fn, retrying with backoff only if opcode is idempotent;
// otherwise fn runs exactly once and its error (if any) propagates as-is.
// Every failure of an idempotent opcode is retried; once attempts run out
// the returned error wraps the last failure.
func (r *RetryExecutor) Do(ctx context.Context, opcode uint16, fn func(context.Context) error) error {
	if !r.IsIdempotent(opcode) {
		return fn(ctx)
	}
	return r.retryer.DoWithContext(ctx, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		wrapped := errors.NewError(errors.ErrCodeOperationFailed, err.Error()).WithCause(err)
		wrapped.Retryable = true
		return wrapped
	})
}
