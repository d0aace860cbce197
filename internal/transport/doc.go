// Package transport implements the L1 layer of the ClaudeFS core: framed
// RPC request/response multiplexing over internal/codec frames, a
// token-bucket rate limiter, a consecutive-failure circuit breaker, a
// probabilistic load shedder, request deduplication, deadline
// propagation, and an idempotency-gated retry executor.
package transport
