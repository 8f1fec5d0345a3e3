package rewrite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", "2026-03-15")
	assert.NoError(t, err)
	return ts
}

func TestGuardBlocksOverlongInput(t *testing.T) {
	g := NewGuard(nil, nil, nil)

	d := g.CanProceed(context.Background(), "naju", 20001, GuardLimits{MaxInputLength: 20000})
	assert.False(t, d.Allowed)
	assert.Equal(t, GuardCodeInputTooLong, d.Code)
	assert.Contains(t, d.Reason, "20001")
}

func TestGuardAllowsAtLimit(t *testing.T) {
	g := NewGuard(nil, nil, nil)

	d := g.CanProceed(context.Background(), "naju", 20000, GuardLimits{MaxInputLength: 20000})
	assert.True(t, d.Allowed)
}

func TestGuardZeroLimitsDisableChecks(t *testing.T) {
	g := NewGuard(nil, nil, nil)

	d := g.CanProceed(context.Background(), "", 1_000_000, GuardLimits{})
	assert.True(t, d.Allowed)
}

func TestGuardFailsOpenWithoutCounters(t *testing.T) {
	g := NewGuard(nil, nil, nil)

	// Counter backend unavailable: request quotas cannot be read, the
	// request proceeds rather than blocking editorial work.
	d := g.CanProceed(context.Background(), "naju", 100, GuardLimits{
		MaxInputLength:     20000,
		DailyRequestLimit:  10,
		MonthlyTokenBudget: 1000,
	})
	assert.True(t, d.Allowed)
}

func TestGuardLogUsageNeverPanicsWithoutBackends(t *testing.T) {
	g := NewGuard(nil, nil, nil)

	assert.NotPanics(t, func() {
		g.LogUsage(context.Background(), UsageEntry{
			Region:   "naju",
			Provider: ProviderOpenAI,
			Usage:    Usage{InputTokens: 10, OutputTokens: 20},
		})
	})
}

func TestQuotaKeys(t *testing.T) {
	// Region-scoped day counter, global month counter.
	assert.Contains(t, dailyQuotaKey("naju", mustTime(t)), "rp:quota:day:")
	assert.Contains(t, dailyQuotaKey("naju", mustTime(t)), ":naju")
	assert.Contains(t, dailyQuotaKey("", mustTime(t)), ":global")
	assert.Contains(t, monthlyQuotaKey(mustTime(t)), "rp:quota:month:")
}
