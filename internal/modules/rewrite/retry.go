package rewrite

import (
	"context"
	"time"
)

// Backoff holds the wait durations used around model calls.
type Backoff struct {
	// Rotated is the wait before retrying on a freshly rotated key.
	Rotated time.Duration
	// SameKey is the longer wait when the pool handed back the same key.
	SameKey time.Duration
	// SecondPass is the pause between the first and second validation.
	SecondPass time.Duration
}

// DefaultBackoff mirrors the production pacing.
func DefaultBackoff() Backoff {
	return Backoff{
		Rotated:    10 * time.Second,
		SameKey:    15 * time.Second,
		SecondPass: 5 * time.Second,
	}
}

// caller runs model invocations with the single rotate-retry allowance.
type caller struct {
	invoker Invoker
	pool    *KeyPool
	backoff Backoff
	sleep   func(time.Duration)
}

func newCaller(invoker Invoker, pool *KeyPool, backoff Backoff) *caller {
	return &caller{
		invoker: invoker,
		pool:    pool,
		backoff: backoff,
		sleep:   time.Sleep,
	}
}

// invokeResult carries everything a pipeline stage needs from one call.
type invokeResult struct {
	Text     string
	Usage    Usage
	KeyLabel string
}

// callWithRotation performs at most two attempts. A rate-limited first
// attempt rotates to the next pool key and retries once; every other
// failure propagates immediately. Token usage from failed attempts is
// still reported so quota accounting stays honest.
func (c *caller) callWithRotation(ctx context.Context, provider, systemPrompt, userPrompt string) (invokeResult, error) {
	if c.pool == nil {
		return invokeResult{}, errEmptyKeyPool
	}
	cred := c.pool.Next()

	text, usage, err := c.invoker.Invoke(ctx, provider, cred.Secret, systemPrompt, userPrompt)
	if err == nil {
		return invokeResult{Text: text, Usage: usage, KeyLabel: cred.Label}, nil
	}
	if !IsRateLimited(err) {
		return invokeResult{Usage: usage, KeyLabel: cred.Label}, err
	}

	next := c.pool.Next()
	wait := c.backoff.Rotated
	if next.Secret == cred.Secret {
		wait = c.backoff.SameKey
	}
	c.sleep(wait)

	text, retryUsage, retryErr := c.invoker.Invoke(ctx, provider, next.Secret, systemPrompt, userPrompt)
	combined := Usage{
		InputTokens:  usage.InputTokens + retryUsage.InputTokens,
		OutputTokens: usage.OutputTokens + retryUsage.OutputTokens,
	}
	if retryErr != nil {
		return invokeResult{Usage: combined, KeyLabel: next.Label}, retryErr
	}
	return invokeResult{Text: text, Usage: combined, KeyLabel: next.Label}, nil
}

// callDirect invokes with a caller-supplied credential, bypassing the
// pool. Used when a reporter carries a personal key. There is no
// alternative key to rotate to, so a rate-limited first attempt waits
// the same-key backoff and retries once with the same credential.
func (c *caller) callDirect(ctx context.Context, provider, credential, label, systemPrompt, userPrompt string) (invokeResult, error) {
	text, usage, err := c.invoker.Invoke(ctx, provider, credential, systemPrompt, userPrompt)
	if err == nil {
		return invokeResult{Text: text, Usage: usage, KeyLabel: label}, nil
	}
	if !IsRateLimited(err) {
		return invokeResult{Usage: usage, KeyLabel: label}, err
	}

	c.sleep(c.backoff.SameKey)

	text, retryUsage, retryErr := c.invoker.Invoke(ctx, provider, credential, systemPrompt, userPrompt)
	combined := Usage{
		InputTokens:  usage.InputTokens + retryUsage.InputTokens,
		OutputTokens: usage.OutputTokens + retryUsage.OutputTokens,
	}
	if retryErr != nil {
		return invokeResult{Usage: combined, KeyLabel: label}, retryErr
	}
	return invokeResult{Text: text, Usage: combined, KeyLabel: label}, nil
}
